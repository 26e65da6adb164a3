package services

import (
	"fmt"
	"log/slog"
	"time"

	"ispcrm/internal/apperr"
	"ispcrm/internal/authz"
	"ispcrm/internal/models"
	"ispcrm/internal/repositories"

	"github.com/google/uuid"
)

// DealItemRequest is one requested product line.
type DealItemRequest struct {
	ProductID   int     `json:"product_id" binding:"required"`
	AgreedPrice float64 `json:"agreed_price" binding:"required"`
	Quantity    int     `json:"quantity"`
}

// CreateDealRequest targets either a QUALIFIED lead owned by the requester or
// an existing customer, never both.
type CreateDealRequest struct {
	LeadID     *int              `json:"lead_id"`
	CustomerID *int              `json:"customer_id"`
	Title      string            `json:"title"`
	Items      []DealItemRequest `json:"items" binding:"required"`
}

// DealDetail bundles a deal, its items and its approval ledger rows.
type DealDetail struct {
	*models.Deal
	Approvals []*models.PriceApproval `json:"approvals,omitempty"`
}

// ApprovalNotifier is told, after commit, that a deal entered
// WAITING_APPROVAL. Implementations must not block the request for long;
// failures are logged and ignored.
type ApprovalNotifier interface {
	DealPendingApproval(deal *models.Deal)
}

// DealService implements the deal lifecycle: creation with price evaluation,
// submission, manager approve/reject and service activation. Every mutation
// runs in one unit of work; deal status is re-checked inside the transaction
// so a concurrent transition fails fast instead of double-applying.
type DealService struct {
	store     repositories.DealStore
	notifiers []ApprovalNotifier
	log       *slog.Logger
	now       func() time.Time
}

func NewDealService(store repositories.DealStore, log *slog.Logger, notifiers ...ApprovalNotifier) *DealService {
	return &DealService{
		store:     store,
		notifiers: notifiers,
		log:       log,
		now:       time.Now,
	}
}

func newCustomerCode() string {
	return "CUST-" + uuid.NewString()[:8]
}

// Create builds a deal for the actor. When targeting a lead it atomically
// creates the customer, marks the lead CONVERTED and links everything; the
// status-guarded lead update doubles as the guard against two concurrent
// conversions of the same lead.
func (s *DealService) Create(actor authz.Actor, req CreateDealRequest) (*models.Deal, error) {
	if (req.LeadID == nil) == (req.CustomerID == nil) {
		return nil, apperr.InvalidRequest("Provide exactly one of lead_id or customer_id")
	}
	if len(req.Items) == 0 {
		return nil, apperr.InvalidRequest("At least one product is required")
	}
	for i := range req.Items {
		if req.Items[i].Quantity == 0 {
			req.Items[i].Quantity = 1
		}
		if err := validateItemShape(req.Items[i].ProductID, req.Items[i].Quantity, req.Items[i].AgreedPrice); err != nil {
			return nil, err
		}
	}

	unit, err := s.store.Begin()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to start transaction", err)
	}
	defer unit.Rollback()

	now := s.now()

	// Resolve the customer, converting the lead if needed. All referenced
	// entities are re-read inside the transaction before any write.
	var customer *models.Customer
	var leadID *int
	if req.LeadID != nil {
		lead, err := unit.GetLead(*req.LeadID)
		if err != nil {
			return nil, err
		}
		if lead == nil {
			return nil, apperr.NotFound("Lead not found")
		}
		if d := authz.CanAct(actor, authz.Resource{OwnerID: lead.OwnerID}, authz.ActionEdit); !d.Allowed {
			return nil, apperr.Forbidden("Access denied: " + d.Reason)
		}
		if lead.Status != models.LeadStatusQualified {
			return nil, apperr.InvalidState("Only QUALIFIED leads can be converted")
		}

		customer = &models.Customer{
			CustomerCode: newCustomerCode(),
			Name:         lead.Name,
			Contact:      lead.Contact,
			Email:        lead.Email,
			Address:      lead.Address,
			CreatedAt:    now,
		}
		customerID, err := unit.CreateCustomer(customer)
		if err != nil {
			return nil, err
		}
		customer.ID = customerID

		converted, err := unit.MarkLeadConverted(lead.ID, customerID, now)
		if err != nil {
			return nil, err
		}
		if !converted {
			// a concurrent request converted the lead first
			return nil, apperr.InvalidState("Lead has already been converted")
		}
		leadID = &lead.ID
	} else {
		customer, err = unit.GetCustomer(*req.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperr.NotFound("Customer not found")
		}
	}

	// Price every item against the catalog snapshot.
	var totalAmount float64
	var needsApproval bool
	evaluated := make([]EvaluatedItem, 0, len(req.Items))
	for _, it := range req.Items {
		product, err := unit.GetActiveProduct(it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperr.NotFound(fmt.Sprintf("Product %d not found or inactive", it.ProductID))
		}
		ev, err := EvaluateItem(it.ProductID, product.SellingPrice, it.AgreedPrice, it.Quantity)
		if err != nil {
			return nil, err
		}
		evaluated = append(evaluated, ev)
		totalAmount += ev.Subtotal
		needsApproval = needsApproval || ev.NeedsApproval
	}

	title := req.Title
	if title == "" {
		title = "Deal for " + customer.Name
	}
	status := models.DealStatusDraft
	if needsApproval {
		status = models.DealStatusWaitingApproval
	}

	deal := &models.Deal{
		LeadID:      leadID,
		CustomerID:  customer.ID,
		OwnerID:     actor.UserID,
		Title:       title,
		TotalAmount: totalAmount,
		Status:      status,
		CreatedAt:   now,
	}
	dealID, err := unit.CreateDeal(deal)
	if err != nil {
		return nil, err
	}
	deal.ID = dealID

	for _, ev := range evaluated {
		item := &models.DealItem{
			DealID:        dealID,
			ProductID:     ev.ProductID,
			Quantity:      ev.Quantity,
			StandardPrice: ev.StandardPrice,
			AgreedPrice:   ev.AgreedPrice,
			Subtotal:      ev.Subtotal,
			NeedsApproval: ev.NeedsApproval,
		}
		itemID, err := unit.CreateDealItem(item)
		if err != nil {
			return nil, err
		}
		item.ID = itemID
		deal.Items = append(deal.Items, item)

		if ev.NeedsApproval {
			if _, err := unit.CreatePriceApproval(&models.PriceApproval{
				DealID:         dealID,
				DealItemID:     itemID,
				RequestedByID:  actor.UserID,
				RequestedPrice: ev.AgreedPrice,
				StandardPrice:  ev.StandardPrice,
				DiscountAmount: ev.StandardPrice - ev.AgreedPrice,
				Status:         models.ApprovalStatusPending,
				CreatedAt:      now,
			}); err != nil {
				return nil, err
			}
		}
	}

	if err := unit.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to commit deal", err)
	}

	s.log.Info("deal created",
		"deal_id", deal.ID, "customer_id", customer.ID, "owner_id", actor.UserID,
		"total_amount", totalAmount, "status", status)

	if needsApproval {
		s.notify(deal)
	}
	return deal, nil
}

// GetByID returns the deal with items and approvals, enforcing ownership for
// sales users.
func (s *DealService) GetByID(actor authz.Actor, id int) (*DealDetail, error) {
	deal, err := s.store.GetDeal(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, apperr.NotFound("Deal not found")
	}
	if d := authz.CanAct(actor, authz.Resource{OwnerID: deal.OwnerID}, authz.ActionView); !d.Allowed {
		return nil, apperr.Forbidden("Access denied: " + d.Reason)
	}
	deal.Items, err = s.store.GetDealItems(id)
	if err != nil {
		return nil, err
	}
	approvals, err := s.store.ListApprovals(id)
	if err != nil {
		return nil, err
	}
	return &DealDetail{Deal: deal, Approvals: approvals}, nil
}

// List is scoped to the actor's own deals unless they are a manager.
func (s *DealService) List(actor authz.Actor, limit, offset int) ([]*models.Deal, error) {
	if actor.IsManager() {
		return s.store.ListDeals(limit, offset)
	}
	return s.store.ListDealsByOwner(actor.UserID, limit, offset)
}

// Submit moves a DRAFT deal to WAITING_APPROVAL. Missing approval records are
// backfilled idempotently; items that already have a ledger row are skipped.
func (s *DealService) Submit(actor authz.Actor, id int) (*models.Deal, error) {
	unit, err := s.store.Begin()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to start transaction", err)
	}
	defer unit.Rollback()

	deal, err := unit.GetDeal(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, apperr.NotFound("Deal not found")
	}
	if d := authz.CanAct(actor, authz.Resource{OwnerID: deal.OwnerID}, authz.ActionSubmit); !d.Allowed {
		return nil, apperr.Forbidden("Access denied: " + d.Reason)
	}
	if deal.Status != models.DealStatusDraft {
		return nil, apperr.InvalidState("Deal is not in DRAFT status")
	}

	now := s.now()
	items, err := unit.GetDealItems(id)
	if err != nil {
		return nil, err
	}
	existing, err := unit.ApprovalItemIDs(id)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if !item.NeedsApproval || existing[item.ID] {
			continue
		}
		if _, err := unit.CreatePriceApproval(&models.PriceApproval{
			DealID:         id,
			DealItemID:     item.ID,
			RequestedByID:  deal.OwnerID,
			RequestedPrice: item.AgreedPrice,
			StandardPrice:  item.StandardPrice,
			DiscountAmount: item.StandardPrice - item.AgreedPrice,
			Status:         models.ApprovalStatusPending,
			CreatedAt:      now,
		}); err != nil {
			return nil, err
		}
	}

	ok, err := unit.MarkDealSubmitted(id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("Deal is not in DRAFT status")
	}
	if err := unit.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to commit submission", err)
	}

	deal.Status = models.DealStatusWaitingApproval
	deal.SubmittedAt = &now
	deal.Items = items
	s.log.Info("deal submitted", "deal_id", id, "user_id", actor.UserID)
	s.notify(deal)
	return deal, nil
}

// Approve resolves every pending approval on the deal to APPROVED and moves
// the deal to APPROVED, all in one transaction.
func (s *DealService) Approve(actor authz.Actor, id int, note string) (*models.Deal, error) {
	return s.decide(actor, id, note, authz.ActionApprove)
}

// Reject is symmetric to Approve with the REJECTED terminal status.
func (s *DealService) Reject(actor authz.Actor, id int, note string) (*models.Deal, error) {
	return s.decide(actor, id, note, authz.ActionReject)
}

func (s *DealService) decide(actor authz.Actor, id int, note string, action authz.Action) (*models.Deal, error) {
	unit, err := s.store.Begin()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to start transaction", err)
	}
	defer unit.Rollback()

	deal, err := unit.GetDeal(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, apperr.NotFound("Deal not found")
	}
	if d := authz.CanAct(actor, authz.Resource{OwnerID: deal.OwnerID}, action); !d.Allowed {
		return nil, apperr.Forbidden("Access denied: " + d.Reason)
	}
	if deal.Status != models.DealStatusWaitingApproval {
		return nil, apperr.InvalidState("Deal is not in WAITING_APPROVAL status")
	}

	now := s.now()
	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	approvalStatus := models.ApprovalStatusApproved
	if action == authz.ActionReject {
		approvalStatus = models.ApprovalStatusRejected
	}
	if err := unit.ResolvePendingApprovals(id, actor.UserID, approvalStatus, notePtr, now); err != nil {
		return nil, err
	}

	var ok bool
	if action == authz.ActionApprove {
		ok, err = unit.MarkDealApproved(id, now)
	} else {
		ok, err = unit.MarkDealRejected(id, now)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("Deal is not in WAITING_APPROVAL status")
	}
	if err := unit.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to commit decision", err)
	}

	if action == authz.ActionApprove {
		deal.Status = models.DealStatusApproved
		deal.ApprovedAt = &now
		s.log.Info("deal approved", "deal_id", id, "manager_id", actor.UserID)
	} else {
		deal.Status = models.DealStatusRejected
		deal.RejectedAt = &now
		s.log.Info("deal rejected", "deal_id", id, "manager_id", actor.UserID)
	}
	return deal, nil
}

// Activate turns every line item of an APPROVED deal into an ACTIVE service
// subscription. The activated_at claim inside the transaction makes a second
// activation fail instead of creating duplicate services.
func (s *DealService) Activate(actor authz.Actor, id int) ([]*models.Service, error) {
	unit, err := s.store.Begin()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to start transaction", err)
	}
	defer unit.Rollback()

	deal, err := unit.GetDeal(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, apperr.NotFound("Deal not found")
	}
	if d := authz.CanAct(actor, authz.Resource{OwnerID: deal.OwnerID}, authz.ActionActivate); !d.Allowed {
		return nil, apperr.Forbidden("Access denied: " + d.Reason)
	}
	if deal.Status != models.DealStatusApproved {
		return nil, apperr.InvalidState("Deal is not in APPROVED status")
	}

	now := s.now()
	ok, err := unit.ClaimDealActivation(id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("Deal has already been activated")
	}

	customer, err := unit.GetCustomer(deal.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.NotFound("Customer not found")
	}
	items, err := unit.GetDealItems(id)
	if err != nil {
		return nil, err
	}

	services := make([]*models.Service, 0, len(items))
	for _, item := range items {
		svc := &models.Service{
			CustomerID:          deal.CustomerID,
			ProductID:           item.ProductID,
			MonthlyFee:          item.AgreedPrice,
			Status:              models.ServiceStatusActive,
			StartDate:           now,
			InstallationAddress: customer.Address,
			Notes:               fmt.Sprintf("Activated from deal #%d", id),
			CreatedAt:           now,
		}
		svcID, err := unit.CreateService(svc)
		if err != nil {
			return nil, err
		}
		svc.ID = svcID
		services = append(services, svc)
	}

	if err := unit.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to commit activation", err)
	}
	s.log.Info("deal activated", "deal_id", id, "services", len(services), "user_id", actor.UserID)
	return services, nil
}

func (s *DealService) notify(deal *models.Deal) {
	for _, n := range s.notifiers {
		n.DealPendingApproval(deal)
	}
}
