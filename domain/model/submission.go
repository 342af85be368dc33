package model

import "time"

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission is one video entered into one contest by one owner.
// (ContestID, OwnerID, VideoID) is unique.
type Submission struct {
	ID        string           `json:"id"`
	ContestID string           `json:"contest_id"`
	OwnerID   string           `json:"owner_id"`
	VideoID   string           `json:"video_id"`
	VideoURL  string           `json:"video_url"`
	Status    SubmissionStatus `json:"status"`

	Stats VideoStats `json:"stats"`

	EngagementScore int `json:"engagement_score"`
	QualityScore    int `json:"quality_score"`
	ViralityScore   int `json:"virality_score"`
	FinalScore      int `json:"final_score"`

	RankPosition *int       `json:"rank_position,omitempty"`
	IsWinner     bool       `json:"is_winner"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	LastScoredAt *time.Time `json:"last_scored_at,omitempty"`
}

// ApplyScores copies a breakdown onto the submission's score fields.
func (s *Submission) ApplyScores(b ScoreBreakdown) {
	s.EngagementScore = b.EngagementScore
	s.QualityScore = b.QualityScore
	s.ViralityScore = b.ViralityScore
	s.FinalScore = b.FinalScore
}

// RankAssignment is the persisted outcome of a ranking pass for one submission.
type RankAssignment struct {
	SubmissionID string `json:"submission_id"`
	RankPosition int    `json:"rank_position"`
	IsWinner     bool   `json:"is_winner"`
}
