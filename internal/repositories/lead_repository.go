package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"ispcrm/internal/models"
)

type LeadRepository struct {
	db Querier
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *LeadRepository) WithTx(tx *sql.Tx) *LeadRepository {
	return &LeadRepository{db: tx}
}

const leadColumns = `id, name, contact, email, address, source, status, owner_id, customer_id, converted_at, created_at`

func scanLead(row interface{ Scan(...interface{}) error }) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Contact, &l.Email, &l.Address, &l.Source,
		&l.Status, &l.OwnerID, &l.CustomerID, &l.ConvertedAt, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) Create(lead *models.Lead) (int64, error) {
	const q = `
        INSERT INTO leads (name, contact, email, address, source, status, owner_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(q, lead.Name, lead.Contact, lead.Email, lead.Address,
		lead.Source, lead.Status, lead.OwnerID, lead.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create lead: %w", err)
	}
	return id, nil
}

func (r *LeadRepository) GetByID(id int) (*models.Lead, error) {
	q := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1`, leadColumns)
	lead, err := scanLead(r.db.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) Update(lead *models.Lead) error {
	const q = `
        UPDATE leads
        SET name=$1, contact=$2, email=$3, address=$4, source=$5
        WHERE id=$6
    `
	if _, err := r.db.Exec(q, lead.Name, lead.Contact, lead.Email, lead.Address, lead.Source, lead.ID); err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *LeadRepository) UpdateStatus(id int, status string) error {
	_, err := r.db.Exec(`UPDATE leads SET status = $1 WHERE id = $2`, status, id)
	return err
}

// MarkConverted flips a QUALIFIED lead to CONVERTED and records the customer
// it became. The status guard in the WHERE clause is the exclusivity guard
// against concurrent conversion: the second caller sees zero rows affected.
func (r *LeadRepository) MarkConverted(id, customerID int, at time.Time) (bool, error) {
	const q = `
        UPDATE leads
        SET status=$1, customer_id=$2, converted_at=$3
        WHERE id=$4 AND status=$5
    `
	result, err := r.db.Exec(q, models.LeadStatusConverted, customerID, at, id, models.LeadStatusQualified)
	if err != nil {
		return false, fmt.Errorf("mark lead converted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Filter lists leads matching the given filters. ownerID 0 means all owners.
func (r *LeadRepository) Filter(ownerID int, status, source, search string, limit, offset int) ([]*models.Lead, error) {
	q := fmt.Sprintf(`SELECT %s FROM leads WHERE 1=1`, leadColumns)
	args := []interface{}{}
	i := 1

	if ownerID > 0 {
		q += fmt.Sprintf(" AND owner_id = $%d", i)
		args = append(args, ownerID)
		i++
	}
	if status != "" {
		q += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, status)
		i++
	}
	if source != "" {
		q += fmt.Sprintf(" AND source = $%d", i)
		args = append(args, source)
		i++
	}
	if search != "" {
		q += fmt.Sprintf(" AND (name ILIKE $%d OR contact ILIKE $%d OR email ILIKE $%d OR address ILIKE $%d)", i, i, i, i)
		args = append(args, "%"+search+"%")
		i++
	}

	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("filter leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// CountFiltered returns the total for the same filters, for pagination.
func (r *LeadRepository) CountFiltered(ownerID int, status, source, search string) (int, error) {
	q := `SELECT COUNT(*) FROM leads WHERE 1=1`
	args := []interface{}{}
	i := 1

	if ownerID > 0 {
		q += fmt.Sprintf(" AND owner_id = $%d", i)
		args = append(args, ownerID)
		i++
	}
	if status != "" {
		q += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, status)
		i++
	}
	if source != "" {
		q += fmt.Sprintf(" AND source = $%d", i)
		args = append(args, source)
		i++
	}
	if search != "" {
		q += fmt.Sprintf(" AND (name ILIKE $%d OR contact ILIKE $%d OR email ILIKE $%d OR address ILIKE $%d)", i, i, i, i)
		args = append(args, "%"+search+"%")
		i++
	}

	var count int
	err := r.db.QueryRow(q, args...).Scan(&count)
	return count, err
}

func (r *LeadRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
