package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"creator-contest/domain/dto"

	"github.com/redis/go-redis/v9"
)

const leaderboardKeyPrefix = "contest:leaderboard:"

type LeaderboardCache struct {
	client redis.Cmdable
}

func NewLeaderboardCache(client redis.Cmdable) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

func leaderboardKey(contestID string) string {
	return leaderboardKeyPrefix + contestID
}

func (c *LeaderboardCache) Get(ctx context.Context, contestID string) ([]dto.LeaderboardEntry, bool, error) {
	raw, err := c.client.Get(ctx, leaderboardKey(contestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entries []dto.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, contestID string, entries []dto.LeaderboardEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardKey(contestID), raw, ttl).Err()
}

func (c *LeaderboardCache) Invalidate(ctx context.Context, contestID string) error {
	return c.client.Del(ctx, leaderboardKey(contestID)).Err()
}
