package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"ispcrm/internal/models"
)

type ApprovalRepository struct {
	db Querier
}

func NewApprovalRepository(db *sql.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) WithTx(tx *sql.Tx) *ApprovalRepository {
	return &ApprovalRepository{db: tx}
}

func (r *ApprovalRepository) Create(a *models.PriceApproval) (int64, error) {
	const q = `
        INSERT INTO price_approvals (deal_id, deal_item_id, requested_by_id, requested_price, standard_price, discount_amount, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(q, a.DealID, a.DealItemID, a.RequestedByID, a.RequestedPrice,
		a.StandardPrice, a.DiscountAmount, a.Status, a.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create price approval: %w", err)
	}
	return id, nil
}

func (r *ApprovalRepository) ListByDeal(dealID int) ([]*models.PriceApproval, error) {
	const q = `
        SELECT id, deal_id, deal_item_id, requested_by_id, requested_price, standard_price,
               discount_amount, status, approved_by_id, decision_note, decided_at, created_at
        FROM price_approvals
        WHERE deal_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(q, dealID)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*models.PriceApproval
	for rows.Next() {
		var a models.PriceApproval
		if err := rows.Scan(&a.ID, &a.DealID, &a.DealItemID, &a.RequestedByID, &a.RequestedPrice,
			&a.StandardPrice, &a.DiscountAmount, &a.Status, &a.ApprovedByID, &a.DecisionNote,
			&a.DecidedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		approvals = append(approvals, &a)
	}
	return approvals, rows.Err()
}

// ItemIDsWithRecord returns the deal item ids that already have a ledger row,
// so submit can backfill only the missing ones.
func (r *ApprovalRepository) ItemIDsWithRecord(dealID int) (map[int]bool, error) {
	rows, err := r.db.Query(`SELECT deal_item_id FROM price_approvals WHERE deal_id = $1`, dealID)
	if err != nil {
		return nil, fmt.Errorf("list approval item ids: %w", err)
	}
	defer rows.Close()

	ids := map[int]bool{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// ResolveAllPending moves every PENDING row of the deal to the given terminal
// status in one statement. This is the only resolution path.
func (r *ApprovalRepository) ResolveAllPending(dealID, approverID int, status string, note *string, at time.Time) error {
	const q = `
        UPDATE price_approvals
        SET status=$1, approved_by_id=$2, decision_note=$3, decided_at=$4
        WHERE deal_id=$5 AND status=$6
    `
	if _, err := r.db.Exec(q, status, approverID, note, at, dealID, models.ApprovalStatusPending); err != nil {
		return fmt.Errorf("resolve pending approvals: %w", err)
	}
	return nil
}

// AuditList is the joined read view of the ledger, newest first.
func (r *ApprovalRepository) AuditList(status string, limit, offset int) ([]*models.ApprovalAuditRow, error) {
	q := `
        SELECT a.id, a.deal_id, a.deal_item_id, a.requested_by_id, a.requested_price, a.standard_price,
               a.discount_amount, a.status, a.approved_by_id, a.decision_note, a.decided_at, a.created_at,
               d.title, p.name, req.name, COALESCE(app.name, '')
        FROM price_approvals a
        JOIN deals d ON d.id = a.deal_id
        JOIN deal_items di ON di.id = a.deal_item_id
        JOIN products p ON p.id = di.product_id
        JOIN users req ON req.id = a.requested_by_id
        LEFT JOIN users app ON app.id = a.approved_by_id
        WHERE 1=1
    `
	args := []interface{}{}
	i := 1
	if status != "" {
		q += fmt.Sprintf(" AND a.status = $%d", i)
		args = append(args, status)
		i++
	}
	q += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("approval audit list: %w", err)
	}
	defer rows.Close()

	var out []*models.ApprovalAuditRow
	for rows.Next() {
		var row models.ApprovalAuditRow
		if err := rows.Scan(&row.ID, &row.DealID, &row.DealItemID, &row.RequestedByID, &row.RequestedPrice,
			&row.StandardPrice, &row.DiscountAmount, &row.Status, &row.ApprovedByID, &row.DecisionNote,
			&row.DecidedAt, &row.CreatedAt, &row.DealTitle, &row.ProductName, &row.Requester, &row.Approver); err != nil {
			return nil, fmt.Errorf("scan approval audit row: %w", err)
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}
