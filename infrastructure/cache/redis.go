package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis and pings it. An empty addr host means Redis is not configured.
func NewCache(ctx context.Context, host, port, username, password string, db int) (*redis.Client, error) {
	if host == "" {
		return nil, errors.New("redis host not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Username: username,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
