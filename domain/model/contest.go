package model

import "time"

type ContestStatus string

const (
	ContestDraft     ContestStatus = "draft"
	ContestActive    ContestStatus = "active"
	ContestCompleted ContestStatus = "completed"
	ContestCancelled ContestStatus = "cancelled"
)

// Contest is the aggregate view of a contest. Totals are recomputed from approved submissions.
type Contest struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Status          ContestStatus `json:"status"`
	WinnerCount     int           `json:"winner_count"`
	SubmissionCount int64         `json:"submission_count"`
	TotalViews      int64         `json:"total_views"`
	TotalLikes      int64         `json:"total_likes"`
	TotalComments   int64         `json:"total_comments"`
	TotalShares     int64         `json:"total_shares"`
	StartsAt        *time.Time    `json:"starts_at,omitempty"`
	EndsAt          *time.Time    `json:"ends_at,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// LeaderboardEvent is emitted after a contest has been re-ranked.
type LeaderboardEvent struct {
	Type      string       `json:"type"`
	ContestID string       `json:"contest_id"`
	RankedAt  time.Time    `json:"ranked_at"`
	Winners   []string     `json:"winners"`
	Entries   []Submission `json:"entries"`
}
