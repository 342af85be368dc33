package repository

import (
	"context"
	"time"

	"creator-contest/domain/dto"
	"creator-contest/domain/model"
)

type ISubmission interface {
	Exists(ctx context.Context, contestID, ownerID, videoID string) (bool, error)
	// Create returns model.ErrDuplicateSubmission when the unique triple already exists.
	Create(ctx context.Context, s *model.Submission) error
	ListApproved(ctx context.Context, contestID string) ([]model.Submission, error)
	// UpdateScores writes stats and scores only while the submission is approved and its contest active.
	UpdateScores(ctx context.Context, id string, stats model.VideoStats, b model.ScoreBreakdown, scoredAt time.Time) error
	// ApplyRanking persists every assignment in one transaction.
	ApplyRanking(ctx context.Context, contestID string, ranks []model.RankAssignment) error
	Leaderboard(ctx context.Context, contestID string) ([]dto.LeaderboardEntry, error)
}
