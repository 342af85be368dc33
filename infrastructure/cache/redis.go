package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis and pings it. Callers treat an error as "run without cache".
func NewCache(ctx context.Context, addr, username, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(options(addr, username, password, db))
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func options(addr, username, password string, db int) *redis.Options {
	return &redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	}
}
