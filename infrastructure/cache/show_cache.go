package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
)

const showKeyPrefix = "rhythmlab:show:"

// ShowCache stores serialized show details by slug. A nil client turns every
// call into a miss.
type ShowCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewShowCache(client *redis.Client, ttl time.Duration) *ShowCache {
	return &ShowCache{client: client, ttl: ttl}
}

func (c *ShowCache) Get(ctx context.Context, slug string) ([]byte, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, showKeyPrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *ShowCache) Set(ctx context.Context, slug string, payload []byte) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, showKeyPrefix+slug, payload, c.ttl).Err()
}

func (c *ShowCache) Invalidate(ctx context.Context, slug string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, showKeyPrefix+slug).Err()
}

var _ repository.IShowCache = (*ShowCache)(nil)
