package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore persists serialized snapshots in Redis so warmed caches
// survive process restarts and are shared across instances.
type RedisSnapshotStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisSnapshotStore creates a snapshot store on top of an existing Redis
// client. Entries do not expire; mutation-driven invalidation is the only
// eviction path.
func NewRedisSnapshotStore(client redis.UniversalClient) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

// NewRedisSnapshotStoreTTL creates a snapshot store whose entries expire
// after ttl as a safety net on top of explicit invalidation.
func NewRedisSnapshotStoreTTL(client redis.UniversalClient, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

// Get implements SnapshotStore.
func (s *RedisSnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Set implements SnapshotStore.
func (s *RedisSnapshotStore) Set(ctx context.Context, key string, payload []byte) error {
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

// Delete implements SnapshotStore.
func (s *RedisSnapshotStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

var _ SnapshotStore = (*RedisSnapshotStore)(nil)
