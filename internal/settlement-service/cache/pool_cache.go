package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// PoolCache guarda o snapshot do pool de um evento (total apostado e
// participantes) pra não recalcular a cada GET.
type PoolCache struct {
	R      *redis.Client
	Prefix string
	TTL    time.Duration
}

func New(r *redis.Client, prefix string, ttl time.Duration) *PoolCache {
	return &PoolCache{R: r, Prefix: prefix, TTL: ttl}
}

func (c *PoolCache) key(eventID string) string { return c.Prefix + eventID }

func (c *PoolCache) Get(ctx context.Context, eventID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, c.key(eventID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *PoolCache) Set(ctx context.Context, eventID string, v any) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, c.key(eventID), b, c.TTL).Err()
}

// Invalidate derruba o snapshot após colocação de aposta ou liquidação.
func (c *PoolCache) Invalidate(ctx context.Context, eventID string) error {
	return c.R.Del(ctx, c.key(eventID)).Err()
}
