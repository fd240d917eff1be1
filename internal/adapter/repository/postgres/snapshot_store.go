package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/loanticker/internal/domain"
)

type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

const (
	loadSnapshotSQL = `SELECT value FROM snapshots WHERE key = $1`
	saveSnapshotSQL = `INSERT INTO snapshots (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// SnapshotStore implements usecase.SnapshotStore on the snapshots table.
type SnapshotStore struct {
	pool    pgxPool
	retrier *Retrier
}

// NewSnapshotStore creates a new SnapshotStore. Saves are retried on
// transient errors when retrier is non-nil.
func NewSnapshotStore(pool pgxPool, retrier *Retrier) *SnapshotStore {
	return &SnapshotStore{pool: pool, retrier: retrier}
}

func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	if err := s.pool.QueryRow(ctx, loadSnapshotSQL, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return data, nil
}

func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	save := func() error {
		_, err := s.pool.Exec(ctx, saveSnapshotSQL, key, data)
		return err
	}

	var err error
	if s.retrier != nil {
		err = s.retrier.Retry(ctx, key, save)
	} else {
		err = save()
	}
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
