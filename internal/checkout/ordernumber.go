package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/chronovashop/chronova-backend/pkg/redis"
)

// OrderNumberSource mints human-facing order numbers.
type OrderNumberSource interface {
	Next(ctx context.Context, now time.Time) (string, error)
}

type redisOrderNumbers struct {
	client *redis.Client
}

// NewOrderNumberSource builds a daily-sequence order number source.
func NewOrderNumberSource(client *redis.Client) (OrderNumberSource, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisOrderNumbers{client: client}, nil
}

// Next returns numbers like CH-260830-0042: a daily counter scoped by date.
// The counter key expires after two days; uniqueness across restarts rides
// on the date component.
func (s *redisOrderNumbers) Next(ctx context.Context, now time.Time) (string, error) {
	day := now.Format("060102")
	seq, err := s.client.IncrWithTTL(ctx, s.client.OrderSeqKey(day), 48*time.Hour)
	if err != nil {
		return "", fmt.Errorf("minting order number: %w", err)
	}
	return fmt.Sprintf("CH-%s-%04d", day, seq), nil
}
