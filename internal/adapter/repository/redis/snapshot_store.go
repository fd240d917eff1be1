package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/iho/loanticker/internal/domain"
)

// SnapshotStore implements usecase.SnapshotStore using plain Redis strings.
type SnapshotStore struct {
	client *redis.Client
	prefix string
}

// NewSnapshotStore creates a new SnapshotStore. Keys are stored under prefix.
func NewSnapshotStore(client *redis.Client, prefix string) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		prefix: prefix,
	}
}

// Load retrieves the snapshot stored under key.
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSnapshotNotFound
	}
	return data, err
}

// Save replaces the snapshot under key. Snapshots never expire.
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.prefix+key, data, 0).Err()
}

func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
