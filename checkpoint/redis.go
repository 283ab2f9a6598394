package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists checkpoints in Redis so a suspended run can be
// resumed by a different process. Payloads are JSON; state values must
// therefore be JSON-serializable.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the default "codegraph:run:" key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.keyPrefix = prefix }
}

// WithTTL expires checkpoints after d. Zero keeps them forever.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

// NewRedisStore wraps an existing Redis client. The client is owned by the
// caller; the store never closes it.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: "codegraph:run:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(runID string) string {
	return s.keyPrefix + runID
}

// Save marshals the checkpoint and overwrites the run's key.
func (s *RedisStore) Save(ctx context.Context, cp *Checkpoint) error {
	if cp == nil || cp.RunID == "" {
		return errors.New("checkpoint requires a run id")
	}
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint %s: %w", cp.RunID, err)
	}
	if err := s.client.Set(ctx, s.key(cp.RunID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.RunID, err)
	}
	return nil
}

// Load fetches and unmarshals the run's checkpoint.
func (s *RedisStore) Load(ctx context.Context, runID string) (*Checkpoint, error) {
	payload, err := s.client.Get(ctx, s.key(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", runID, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(payload, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", runID, err)
	}
	return &cp, nil
}

// Delete removes the run's checkpoint.
func (s *RedisStore) Delete(ctx context.Context, runID string) error {
	if err := s.client.Del(ctx, s.key(runID)).Err(); err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", runID, err)
	}
	return nil
}
