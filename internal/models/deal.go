package models

import "time"

// Deal statuses. APPROVED and REJECTED are terminal.
const (
	DealStatusDraft           = "DRAFT"
	DealStatusWaitingApproval = "WAITING_APPROVAL"
	DealStatusApproved        = "APPROVED"
	DealStatusRejected        = "REJECTED"
)

// Deal is a negotiated bundle of products for one customer. TotalAmount is
// always the sum of the item subtotals; status changes only through the
// submit/approve/reject transitions.
type Deal struct {
	ID          int        `json:"id"`
	LeadID      *int       `json:"lead_id,omitempty"`
	CustomerID  int        `json:"customer_id"`
	OwnerID     int        `json:"owner_id"`
	Title       string     `json:"title"`
	TotalAmount float64    `json:"total_amount"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`

	Items []*DealItem `json:"items,omitempty"`
}

// DealItem is one priced product line. StandardPrice is a snapshot of the
// catalog price at creation time and is never recomputed.
type DealItem struct {
	ID            int     `json:"id"`
	DealID        int     `json:"deal_id"`
	ProductID     int     `json:"product_id"`
	Quantity      int     `json:"quantity"`
	StandardPrice float64 `json:"standard_price"`
	AgreedPrice   float64 `json:"agreed_price"`
	Subtotal      float64 `json:"subtotal"`
	NeedsApproval bool    `json:"needs_approval"`
}
