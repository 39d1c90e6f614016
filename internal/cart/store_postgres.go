package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	getSnapshotQuery    = `SELECT payload FROM cart_snapshot WHERE owner_key = $1`
	upsertSnapshotQuery = `
		INSERT INTO cart_snapshot (owner_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`
	deleteSnapshotQuery = `DELETE FROM cart_snapshot WHERE owner_key = $1`
)

// PostgresStore keeps snapshots in the cart_snapshot table as jsonb.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var raw sql.NullString
	if err := s.db.QueryRowContext(ctx, getSnapshotQuery, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	if !raw.Valid {
		return nil, nil
	}
	return []byte(raw.String), nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, payload []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertSnapshotQuery, key, string(payload)); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteSnapshotQuery, key); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}
