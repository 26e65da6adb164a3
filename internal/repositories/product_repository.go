package repositories

import (
	"database/sql"
	"fmt"

	"ispcrm/internal/models"
)

type ProductRepository struct {
	db Querier
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) WithTx(tx *sql.Tx) *ProductRepository {
	return &ProductRepository{db: tx}
}

const productColumns = `id, code, name, description, hpp, margin_percent, selling_price, speed_mbps, is_active, created_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.HPP, &p.MarginPercent,
		&p.SellingPrice, &p.SpeedMbps, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(product *models.Product) (int64, error) {
	const q = `
        INSERT INTO products (code, name, description, hpp, margin_percent, selling_price, speed_mbps, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(q, product.Code, product.Name, product.Description, product.HPP,
		product.MarginPercent, product.SellingPrice, product.SpeedMbps, product.IsActive, product.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

func (r *ProductRepository) Update(product *models.Product) error {
	const q = `
        UPDATE products
        SET code=$1, name=$2, description=$3, hpp=$4, margin_percent=$5, selling_price=$6, speed_mbps=$7, is_active=$8
        WHERE id=$9
    `
	if _, err := r.db.Exec(q, product.Code, product.Name, product.Description, product.HPP,
		product.MarginPercent, product.SellingPrice, product.SpeedMbps, product.IsActive, product.ID); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(id int) (*models.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	product, err := scanProduct(r.db.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetActiveByID is the read-only catalog lookup the pricing flow depends on.
func (r *ProductRepository) GetActiveByID(id int) (*models.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 AND is_active = TRUE`, productColumns)
	product, err := scanProduct(r.db.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active product: %w", err)
	}
	return product, nil
}

func (r *ProductRepository) List(includeInactive bool, limit, offset int) ([]*models.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products`, productColumns)
	if !includeInactive {
		q += ` WHERE is_active = TRUE`
	}
	q += ` ORDER BY code LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// Deactivate soft-deletes: services referencing the product keep working.
func (r *ProductRepository) Deactivate(id int) error {
	result, err := r.db.Exec(`UPDATE products SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
