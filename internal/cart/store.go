package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chronovashop/chronova-backend/pkg/redis"
)

// SnapshotStore persists cart snapshots under stable per-session keys. The
// cart has no server-side row; this store is how it survives reloads.
type SnapshotStore interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, sessionID string, snap *Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a snapshot store over the shared redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) (SnapshotStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func (s *redisStore) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}
	return DecodeSnapshot([]byte(raw))
}

func (s *redisStore) Save(ctx context.Context, sessionID string, snap *Snapshot) error {
	encoded, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.client.CartKey(sessionID), string(encoded), s.ttl); err != nil {
		return fmt.Errorf("saving cart snapshot: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.client.CartKey(sessionID))
}

// MemoryStore is an in-process snapshot store used in tests and local dev.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemoryStore builds an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string][]byte{}}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	s.mu.Lock()
	raw, ok := s.items[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return DecodeSnapshot(raw)
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, snap *Snapshot) error {
	encoded, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[sessionID] = encoded
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.items, sessionID)
	s.mu.Unlock()
	return nil
}
