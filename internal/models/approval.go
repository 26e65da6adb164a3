package models

import "time"

// Approval statuses. A row moves from PENDING to a terminal status exactly
// once, and only through the per-deal bulk resolution.
const (
	ApprovalStatusPending  = "PENDING"
	ApprovalStatusApproved = "APPROVED"
	ApprovalStatusRejected = "REJECTED"
)

// PriceApproval records one manager decision for a deal item whose agreed
// price undercuts the standard price.
type PriceApproval struct {
	ID             int        `json:"id"`
	DealID         int        `json:"deal_id"`
	DealItemID     int        `json:"deal_item_id"`
	RequestedByID  int        `json:"requested_by_id"`
	RequestedPrice float64    `json:"requested_price"`
	StandardPrice  float64    `json:"standard_price"`
	DiscountAmount float64    `json:"discount_amount"`
	Status         string     `json:"status"`
	ApprovedByID   *int       `json:"approved_by_id,omitempty"`
	DecisionNote   *string    `json:"decision_note,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ApprovalAuditRow is the joined read view of the ledger for one deal.
type ApprovalAuditRow struct {
	PriceApproval
	DealTitle   string `json:"deal_title"`
	ProductName string `json:"product_name"`
	Requester   string `json:"requester"`
	Approver    string `json:"approver,omitempty"`
}
