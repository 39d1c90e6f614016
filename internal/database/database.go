package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// schema is applied in order on startup; every statement must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS product (
		product_id SERIAL PRIMARY KEY,
		product_name TEXT NOT NULL,
		product_desc TEXT,
		category TEXT,
		tags TEXT[] NOT NULL DEFAULT '{}',
		product_price NUMERIC NOT NULL DEFAULT 0,
		sale_price NUMERIC,
		weight_kg NUMERIC,
		volume_cm3 NUMERIC,
		created_at TEXT,
		updated_at TEXT
	)`,
	// older deployments created product without packing attributes
	`ALTER TABLE product ADD COLUMN IF NOT EXISTS tags TEXT[] NOT NULL DEFAULT '{}'`,
	`ALTER TABLE product ADD COLUMN IF NOT EXISTS sale_price NUMERIC`,
	`ALTER TABLE product ADD COLUMN IF NOT EXISTS weight_kg NUMERIC`,
	`ALTER TABLE product ADD COLUMN IF NOT EXISTS volume_cm3 NUMERIC`,
	`CREATE TABLE IF NOT EXISTS cart_snapshot (
		owner_key TEXT PRIMARY KEY,
		payload JSONB NOT NULL DEFAULT '[]',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		"orderID" SERIAL PRIMARY KEY,
		"userID" INT NOT NULL,
		lines JSONB NOT NULL DEFAULT '[]',
		quantity INT NOT NULL DEFAULT 0,
		boxes INT NOT NULL DEFAULT 0,
		"totalPrice" NUMERIC NOT NULL DEFAULT 0,
		"shippingPrice" NUMERIC NOT NULL DEFAULT 0,
		"grandPrice" NUMERIC NOT NULL DEFAULT 0,
		status TEXT,
		"createdAt" TEXT,
		"updatedAt" TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_idx ON orders ("userID")`,
	`CREATE TABLE IF NOT EXISTS favorite (
		owner_key TEXT NOT NULL,
		product_id INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (owner_key, product_id)
	)`,
}

// Open connects to Postgres through the pgx stdlib driver and checks the connection.
func Open(url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates or upgrades the tables the storefront needs.
func EnsureSchema(db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}
	return nil
}
