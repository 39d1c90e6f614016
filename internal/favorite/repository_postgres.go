package favorite

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listFavoritesQuery  = `SELECT product_id FROM favorite WHERE owner_key = $1 ORDER BY created_at, product_id`
	addFavoriteQuery    = `INSERT INTO favorite (owner_key, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	removeFavoriteQuery = `DELETE FROM favorite WHERE owner_key = $1 AND product_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, owner string, productID int) ([]int, error) {
	res, err := r.db.ExecContext(ctx, addFavoriteQuery, owner, productID)
	if err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrAlreadyFavorite
	}
	return r.List(ctx, owner)
}

func (r *PostgresRepository) Remove(ctx context.Context, owner string, productID int) ([]int, error) {
	res, err := r.db.ExecContext(ctx, removeFavoriteQuery, owner, productID)
	if err != nil {
		return nil, fmt.Errorf("remove favorite: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFavorite
	}
	return r.List(ctx, owner)
}

func (r *PostgresRepository) List(ctx context.Context, owner string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, listFavoritesQuery, owner)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
