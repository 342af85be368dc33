package repository

import (
	"context"
	"time"

	"creator-contest/domain/dto"
	"creator-contest/domain/model"
)

// ILeaderboardCache caches ranked leaderboards between scheduler runs.
type ILeaderboardCache interface {
	// Get returns (nil, false, nil) on a miss.
	Get(ctx context.Context, contestID string) ([]dto.LeaderboardEntry, bool, error)
	Set(ctx context.Context, contestID string, entries []dto.LeaderboardEntry, ttl time.Duration) error
	Invalidate(ctx context.Context, contestID string) error
}

type IEventPublisher interface {
	PublishLeaderboard(ctx context.Context, evt model.LeaderboardEvent) error
}

type ILeaderboardBroadcaster interface {
	BroadcastLeaderboard(evt model.LeaderboardEvent)
}
