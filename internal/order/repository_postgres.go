package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
)

const (
	orderColumns = `"orderID", "userID", lines, quantity, boxes, "totalPrice", "shippingPrice", "grandPrice", status, "createdAt", "updatedAt"`

	insertOrderQuery = `INSERT INTO orders ("userID", lines, quantity, boxes, "totalPrice", "shippingPrice", "grandPrice", status, "createdAt", "updatedAt")
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING "orderID"`
	listOrdersByUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE "userID" = $1 ORDER BY "orderID" DESC`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ord Order) (Order, error) {
	linesJSON, err := cart.Encode(ord.Lines)
	if err != nil {
		return Order{}, fmt.Errorf("encode order lines: %w", err)
	}

	err = r.db.QueryRowContext(ctx, insertOrderQuery,
		ord.UserID, string(linesJSON), ord.Quantity, ord.Boxes, ord.TotalPrice, ord.ShippingPrice, ord.GrandPrice,
		ord.Status, ord.CreatedAt, ord.UpdatedAt).Scan(&ord.OrderID)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return ord, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersByUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var (
			ord       Order
			linesJSON []byte
			status    sql.NullString
			createdAt sql.NullString
			updatedAt sql.NullString
		)
		if err := rows.Scan(&ord.OrderID, &ord.UserID, &linesJSON, &ord.Quantity, &ord.Boxes, &ord.TotalPrice,
			&ord.ShippingPrice, &ord.GrandPrice, &status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		ord.Status = status.String
		ord.CreatedAt = createdAt.String
		ord.UpdatedAt = updatedAt.String
		ord.Lines = decodeLines(linesJSON)
		orders = append(orders, ord)
	}
	return orders, rows.Err()
}

// decodeLines keeps the lines exactly as stored; a broken payload yields no lines.
func decodeLines(b []byte) []cart.Line {
	lines := make([]cart.Line, 0)
	if len(b) == 0 {
		return lines
	}
	if err := json.Unmarshal(b, &lines); err != nil {
		return []cart.Line{}
	}
	return lines
}
