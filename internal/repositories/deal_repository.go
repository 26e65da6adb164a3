package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"ispcrm/internal/models"
)

type DealRepository struct {
	db Querier
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) WithTx(tx *sql.Tx) *DealRepository {
	return &DealRepository{db: tx}
}

const dealColumns = `id, lead_id, customer_id, owner_id, title, total_amount, status, created_at, submitted_at, approved_at, rejected_at, activated_at`

func scanDeal(row interface{ Scan(...interface{}) error }) (*models.Deal, error) {
	var d models.Deal
	err := row.Scan(&d.ID, &d.LeadID, &d.CustomerID, &d.OwnerID, &d.Title, &d.TotalAmount,
		&d.Status, &d.CreatedAt, &d.SubmittedAt, &d.ApprovedAt, &d.RejectedAt, &d.ActivatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DealRepository) Create(deal *models.Deal) (int64, error) {
	const q = `
        INSERT INTO deals (lead_id, customer_id, owner_id, title, total_amount, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(q, deal.LeadID, deal.CustomerID, deal.OwnerID, deal.Title,
		deal.TotalAmount, deal.Status, deal.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create deal: %w", err)
	}
	return id, nil
}

func (r *DealRepository) CreateItem(item *models.DealItem) (int64, error) {
	const q = `
        INSERT INTO deal_items (deal_id, product_id, quantity, standard_price, agreed_price, subtotal, needs_approval)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(q, item.DealID, item.ProductID, item.Quantity, item.StandardPrice,
		item.AgreedPrice, item.Subtotal, item.NeedsApproval).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create deal item: %w", err)
	}
	return id, nil
}

func (r *DealRepository) GetByID(id int) (*models.Deal, error) {
	q := fmt.Sprintf(`SELECT %s FROM deals WHERE id = $1`, dealColumns)
	deal, err := scanDeal(r.db.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", err)
	}
	return deal, nil
}

func (r *DealRepository) GetItems(dealID int) ([]*models.DealItem, error) {
	const q = `
        SELECT id, deal_id, product_id, quantity, standard_price, agreed_price, subtotal, needs_approval
        FROM deal_items
        WHERE deal_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(q, dealID)
	if err != nil {
		return nil, fmt.Errorf("get deal items: %w", err)
	}
	defer rows.Close()

	var items []*models.DealItem
	for rows.Next() {
		var it models.DealItem
		if err := rows.Scan(&it.ID, &it.DealID, &it.ProductID, &it.Quantity,
			&it.StandardPrice, &it.AgreedPrice, &it.Subtotal, &it.NeedsApproval); err != nil {
			return nil, fmt.Errorf("scan deal item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *DealRepository) ListPaginated(limit, offset int) ([]*models.Deal, error) {
	q := fmt.Sprintf(`SELECT %s FROM deals ORDER BY created_at DESC LIMIT $1 OFFSET $2`, dealColumns)
	return r.list(q, limit, offset)
}

func (r *DealRepository) ListByOwner(ownerID, limit, offset int) ([]*models.Deal, error) {
	q := fmt.Sprintf(`SELECT %s FROM deals WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, dealColumns)
	return r.list(q, ownerID, limit, offset)
}

func (r *DealRepository) list(q string, args ...interface{}) ([]*models.Deal, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

// The Mark* methods move a deal through the state machine. Each carries the
// required current status in the WHERE clause and reports whether a row was
// actually updated, so a stale transition is detected inside the transaction.

func (r *DealRepository) MarkSubmitted(id int, at time.Time) (bool, error) {
	const q = `UPDATE deals SET status=$1, submitted_at=$2 WHERE id=$3 AND status=$4`
	return r.transition(q, models.DealStatusWaitingApproval, at, id, models.DealStatusDraft)
}

func (r *DealRepository) MarkApproved(id int, at time.Time) (bool, error) {
	const q = `UPDATE deals SET status=$1, approved_at=$2 WHERE id=$3 AND status=$4`
	return r.transition(q, models.DealStatusApproved, at, id, models.DealStatusWaitingApproval)
}

func (r *DealRepository) MarkRejected(id int, at time.Time) (bool, error) {
	const q = `UPDATE deals SET status=$1, rejected_at=$2 WHERE id=$3 AND status=$4`
	return r.transition(q, models.DealStatusRejected, at, id, models.DealStatusWaitingApproval)
}

// ClaimActivation stamps activated_at exactly once per deal.
func (r *DealRepository) ClaimActivation(id int, at time.Time) (bool, error) {
	const q = `UPDATE deals SET activated_at=$1 WHERE id=$2 AND status=$3 AND activated_at IS NULL`
	result, err := r.db.Exec(q, at, id, models.DealStatusApproved)
	if err != nil {
		return false, fmt.Errorf("claim deal activation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *DealRepository) transition(q string, args ...interface{}) (bool, error) {
	result, err := r.db.Exec(q, args...)
	if err != nil {
		return false, fmt.Errorf("deal status transition: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *DealRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM deals GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count deals by status: %w", err)
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

func (r *DealRepository) TotalApprovedAmount() (float64, error) {
	var total float64
	err := r.db.QueryRow(`SELECT COALESCE(SUM(total_amount), 0) FROM deals WHERE status = $1`,
		models.DealStatusApproved).Scan(&total)
	return total, err
}
