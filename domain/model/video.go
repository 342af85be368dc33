package model

import "time"

// VideoStats is a snapshot of a video's raw statistics and the metadata scoring looks at.
type VideoStats struct {
	Views           int64     `json:"views"`
	Likes           int64     `json:"likes"`
	Comments        int64     `json:"comments"`
	Shares          int64     `json:"shares"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
}

// ScoreBreakdown is produced fresh on every scoring pass and never carried forward.
type ScoreBreakdown struct {
	EngagementScore int `json:"engagement_score"`
	QualityScore    int `json:"quality_score"`
	ViralityScore   int `json:"virality_score"`
	FinalScore      int `json:"final_score"`
}

// PlatformVideo is a video as returned by the platform API.
type PlatformVideo struct {
	ID    string     `json:"id"`
	Stats VideoStats `json:"stats"`
}

// VideoPage is one cursor page of a user's videos.
type VideoPage struct {
	Videos  []PlatformVideo `json:"videos"`
	Cursor  int64           `json:"cursor"`
	HasMore bool            `json:"has_more"`
}
