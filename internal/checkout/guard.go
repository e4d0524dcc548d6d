package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/chronovashop/chronova-backend/pkg/redis"
)

// SubmitGuard is the single-flight lock around order placement. One
// in-flight checkout per cart session; the TTL is a backstop against a
// stalled attempt holding the lock forever.
type SubmitGuard interface {
	Acquire(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

type redisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmitGuard builds a redis-backed single-flight guard.
func NewSubmitGuard(client *redis.Client, ttl time.Duration) (SubmitGuard, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisGuard{client: client, ttl: ttl}, nil
}

func (g *redisGuard) Acquire(ctx context.Context, sessionID string) (bool, error) {
	return g.client.SetNX(ctx, g.client.CheckoutLockKey(sessionID), "1", g.ttl)
}

func (g *redisGuard) Release(ctx context.Context, sessionID string) error {
	return g.client.Del(ctx, g.client.CheckoutLockKey(sessionID))
}
