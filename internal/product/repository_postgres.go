package product

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `product_id, product_name, product_desc, category, tags, product_price, sale_price, weight_kg, volume_cm3, created_at, updated_at`

	listProductsQuery   = `SELECT ` + productColumns + ` FROM product ORDER BY product_id`
	getProductByIDQuery = `SELECT ` + productColumns + ` FROM product WHERE product_id = $1`
	listByIDsQuery      = `SELECT ` + productColumns + ` FROM product WHERE product_id = ANY($1) ORDER BY product_id`
	insertProductQuery  = `
		INSERT INTO product (product_name, product_desc, category, tags, product_price, sale_price, weight_kg, volume_cm3, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING product_id
	`
	insertProductWithIDQuery = `
		INSERT INTO product (product_id, product_name, product_desc, category, tags, product_price, sale_price, weight_kg, volume_cm3, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	updateProductQuery = `
		UPDATE product
		SET product_name = $1,
			product_desc = $2,
			category = $3,
			tags = $4,
			product_price = $5,
			sale_price = $6,
			weight_kg = $7,
			volume_cm3 = $8,
			updated_at = $9
		WHERE product_id = $10
	`
	deleteProductQuery = `DELETE FROM product WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns the whole catalog. Rows that fail to scan are skipped and a query
// failure yields an empty catalog so read paths stay available.
func (r *PostgresRepository) List() []Product {
	rows, err := r.db.Query(listProductsQuery)
	if err != nil {
		return []Product{}
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}
	rows, err := r.db.Query(listByIDsQuery, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("list products by id: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	var id int
	err := r.db.QueryRow(
		insertProductQuery,
		p.Name,
		p.Description,
		p.Category,
		pq.Array(tagsOrEmpty(p.Tags)),
		p.Price,
		p.SalePrice,
		p.WeightKg,
		p.VolumeCm3,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	result, err := r.db.Exec(
		updateProductQuery,
		p.Name,
		p.Description,
		p.Category,
		pq.Array(tagsOrEmpty(p.Tags)),
		p.Price,
		p.SalePrice,
		p.WeightKg,
		p.VolumeCm3,
		p.UpdatedAt,
		id,
	)
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset deletes all products and inserts the provided list in a single transaction.
// Seeded ids are kept so carts referencing them stay valid.
func (r *PostgresRepository) Reset(products []Product) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(`DELETE FROM product`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	for _, p := range products {
		if p.ID > 0 {
			_, err = tx.Exec(insertProductWithIDQuery, p.ID, p.Name, p.Description, p.Category,
				pq.Array(tagsOrEmpty(p.Tags)), p.Price, p.SalePrice, p.WeightKg, p.VolumeCm3, p.CreatedAt, p.UpdatedAt)
		} else {
			var id int
			err = tx.QueryRow(insertProductQuery, p.Name, p.Description, p.Category,
				pq.Array(tagsOrEmpty(p.Tags)), p.Price, p.SalePrice, p.WeightKg, p.VolumeCm3, p.CreatedAt, p.UpdatedAt).Scan(&id)
		}
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var (
		desc      sql.NullString
		category  sql.NullString
		tags      []string
		salePrice sql.NullFloat64
		weight    sql.NullFloat64
		volume    sql.NullFloat64
		createdAt sql.NullString
		updatedAt sql.NullString
	)

	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&desc,
		&category,
		pq.Array(&tags),
		&p.Price,
		&salePrice,
		&weight,
		&volume,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Product{}, err
	}

	p.Description = desc.String
	p.Category = category.String
	p.Tags = NormalizeTags(tags...)
	if salePrice.Valid {
		p.SalePrice = &salePrice.Float64
	}
	if weight.Valid {
		p.WeightKg = &weight.Float64
	}
	if volume.Valid {
		p.VolumeCm3 = &volume.Float64
	}
	if createdAt.Valid {
		p.CreatedAt = &createdAt.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.String
	}
	return p, nil
}

func tagsOrEmpty(t Tags) []string {
	if t == nil {
		return []string{}
	}
	return []string(t)
}
