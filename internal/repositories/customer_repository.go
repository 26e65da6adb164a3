package repositories

import (
	"database/sql"
	"fmt"

	"ispcrm/internal/models"
)

type CustomerRepository struct {
	db Querier
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) WithTx(tx *sql.Tx) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

const customerColumns = `id, customer_code, name, contact, email, address, created_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.CustomerCode, &c.Name, &c.Contact, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Create(customer *models.Customer) (int64, error) {
	const q = `
        INSERT INTO customers (customer_code, name, contact, email, address, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(q, customer.CustomerCode, customer.Name, customer.Contact,
		customer.Email, customer.Address, customer.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

func (r *CustomerRepository) GetByID(id int) (*models.Customer, error) {
	q := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	customer, err := scanCustomer(r.db.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return customer, nil
}

// ListActive lists customers that have at least one APPROVED deal, optionally
// restricted to deals owned by ownerID (0 = all owners).
func (r *CustomerRepository) ListActive(ownerID int, search string, limit, offset int) ([]*models.Customer, error) {
	q := `
        SELECT DISTINCT c.id, c.customer_code, c.name, c.contact, c.email, c.address, c.created_at
        FROM customers c
        JOIN deals d ON d.customer_id = c.id AND d.status = 'APPROVED'
        WHERE 1=1
    `
	args := []interface{}{}
	i := 1

	if ownerID > 0 {
		q += fmt.Sprintf(" AND d.owner_id = $%d", i)
		args = append(args, ownerID)
		i++
	}
	if search != "" {
		q += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.customer_code ILIKE $%d OR c.email ILIKE $%d OR c.contact ILIKE $%d)", i, i, i, i)
		args = append(args, "%"+search+"%")
		i++
	}

	q += fmt.Sprintf(" ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list active customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

// IsOwnedBy reports whether the user owns the originating lead or any
// APPROVED deal of the customer. Used for the sales access check.
func (r *CustomerRepository) IsOwnedBy(customerID, userID int) (bool, error) {
	const q = `
        SELECT EXISTS (
            SELECT 1 FROM leads WHERE customer_id = $1 AND owner_id = $2
            UNION
            SELECT 1 FROM deals WHERE customer_id = $1 AND owner_id = $2 AND status = 'APPROVED'
        )
    `
	var owned bool
	if err := r.db.QueryRow(q, customerID, userID).Scan(&owned); err != nil {
		return false, fmt.Errorf("check customer ownership: %w", err)
	}
	return owned, nil
}
