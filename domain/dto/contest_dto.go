package dto

import "time"

type SubmitVideoRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

// LeaderboardEntry is a ranked row as shown to the UI.
type LeaderboardEntry struct {
	SubmissionID   string    `json:"submission_id"`
	OwnerID        string    `json:"owner_id"`
	DisplayName    string    `json:"display_name,omitempty"`
	PlatformHandle string    `json:"platform_handle,omitempty"`
	VideoID        string    `json:"video_id"`
	VideoURL       string    `json:"video_url"`
	RankPosition   *int      `json:"rank_position,omitempty"`
	IsWinner       bool      `json:"is_winner"`
	FinalScore     int       `json:"final_score"`
	Views          int64     `json:"views"`
	Likes          int64     `json:"likes"`
	Comments       int64     `json:"comments"`
	Shares         int64     `json:"shares"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type LeaderboardResponse struct {
	ContestID string             `json:"contest_id"`
	Entries   []LeaderboardEntry `json:"entries"`
	Cached    bool               `json:"cached"`
}

// SyncReport summarizes one scheduler cycle.
type SyncReport struct {
	Skipped         bool      `json:"skipped"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Contests        int       `json:"contests"`
	ContestsFailed  int       `json:"contests_failed"`
	Scored          int       `json:"scored"`
	SkippedNoToken  int       `json:"skipped_no_token"`
	SkippedAPIError int       `json:"skipped_api_error"`
}
