package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/easypills/easypills/internal/database"
)

// PostgresStore persists records in a single key/value table. One row
// per logical record, whole-value JSONB upserted on write.
type PostgresStore struct {
	db *database.DB
}

func NewPostgres(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Read(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.Pool.QueryRow(ctx,
		"SELECT value FROM records WHERE key = $1", key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Write(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO records (key, value, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	_, err := s.db.Pool.Exec(ctx,
		"DELETE FROM records WHERE key = ANY($1)", keys,
	)
	if err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }
