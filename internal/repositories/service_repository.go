package repositories

import (
	"database/sql"
	"fmt"

	"ispcrm/internal/models"
)

type ServiceRepository struct {
	db Querier
}

func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) WithTx(tx *sql.Tx) *ServiceRepository {
	return &ServiceRepository{db: tx}
}

func (r *ServiceRepository) Create(svc *models.Service) (int64, error) {
	const q = `
        INSERT INTO services (customer_id, product_id, monthly_fee, status, start_date, installation_address, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(q, svc.CustomerID, svc.ProductID, svc.MonthlyFee, svc.Status,
		svc.StartDate, svc.InstallationAddress, svc.Notes, svc.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create service: %w", err)
	}
	return id, nil
}

func (r *ServiceRepository) ListByCustomer(customerID int) ([]*models.Service, error) {
	const q = `
        SELECT id, customer_id, product_id, monthly_fee, status, start_date, installation_address, notes, created_at
        FROM services
        WHERE customer_id = $1
        ORDER BY start_date DESC
    `
	rows, err := r.db.Query(q, customerID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.ProductID, &s.MonthlyFee, &s.Status,
			&s.StartDate, &s.InstallationAddress, &s.Notes, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, &s)
	}
	return services, rows.Err()
}
