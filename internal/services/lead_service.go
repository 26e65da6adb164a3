package services

import (
	"log/slog"
	"time"

	"ispcrm/internal/apperr"
	"ispcrm/internal/authz"
	"ispcrm/internal/models"
	"ispcrm/internal/repositories"
)

// Allowed lead status transitions. CONVERTED is reachable only through the
// conversion paths (deal creation from a lead, or the explicit convert).
var LeadTransitions = map[string]map[string]bool{
	models.LeadStatusNew:       {models.LeadStatusContacted: true, models.LeadStatusQualified: true, models.LeadStatusLost: true},
	models.LeadStatusContacted: {models.LeadStatusQualified: true, models.LeadStatusLost: true},
	models.LeadStatusQualified: {models.LeadStatusLost: true},
	models.LeadStatusConverted: {},
	models.LeadStatusLost:      {},
}

func canTransition(current, to string, table map[string]map[string]bool) bool {
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[to]
}

// LeadFilter mirrors the list query parameters.
type LeadFilter struct {
	Status string
	Source string
	Search string
	Page   int
	Limit  int
}

// Pagination is the list metadata returned alongside filtered rows.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type LeadPage struct {
	Data       []*models.Lead `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

type LeadService struct {
	repo  *repositories.LeadRepository
	store repositories.DealStore
	log   *slog.Logger
}

func NewLeadService(repo *repositories.LeadRepository, store repositories.DealStore, log *slog.Logger) *LeadService {
	return &LeadService{repo: repo, store: store, log: log}
}

func (s *LeadService) Create(actor authz.Actor, lead *models.Lead) error {
	if lead.Name == "" {
		return apperr.InvalidRequest("Lead name is required")
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.OwnerID == 0 {
		lead.OwnerID = actor.UserID
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	id, err := s.repo.Create(lead)
	if err != nil {
		return err
	}
	lead.ID = int(id)
	return nil
}

func (s *LeadService) GetByID(actor authz.Actor, id int) (*models.Lead, error) {
	lead, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, apperr.NotFound("Lead not found")
	}
	if d := authz.CanAct(actor, authz.Resource{OwnerID: lead.OwnerID}, authz.ActionView); !d.Allowed {
		return nil, apperr.Forbidden("Access denied: " + d.Reason)
	}
	return lead, nil
}

func (s *LeadService) Update(actor authz.Actor, lead *models.Lead) (*models.Lead, error) {
	current, err := s.GetByID(actor, lead.ID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanAct(actor, authz.Resource{OwnerID: current.OwnerID}, authz.ActionEdit); !d.Allowed {
		return nil, apperr.Forbidden("Access denied: " + d.Reason)
	}
	if err := s.repo.Update(lead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(lead.ID)
}

func (s *LeadService) Delete(actor authz.Actor, id int) error {
	if _, err := s.GetByID(actor, id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// List is scoped to the actor's own leads unless they are a manager.
func (s *LeadService) List(actor authz.Actor, f LeadFilter) (*LeadPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	ownerID := 0
	if !actor.IsManager() {
		ownerID = actor.UserID
	}

	total, err := s.repo.CountFiltered(ownerID, f.Status, f.Source, f.Search)
	if err != nil {
		return nil, err
	}
	leads, err := s.repo.Filter(ownerID, f.Status, f.Source, f.Search, f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		return nil, err
	}

	totalPages := (total + f.Limit - 1) / f.Limit
	return &LeadPage{
		Data:       leads,
		Pagination: Pagination{Page: f.Page, Limit: f.Limit, Total: total, TotalPages: totalPages},
	}, nil
}

// UpdateStatus applies one transition from the table above.
func (s *LeadService) UpdateStatus(actor authz.Actor, id int, to string) (*models.Lead, error) {
	lead, err := s.GetByID(actor, id)
	if err != nil {
		return nil, err
	}
	if d := authz.CanAct(actor, authz.Resource{OwnerID: lead.OwnerID}, authz.ActionEdit); !d.Allowed {
		return nil, apperr.Forbidden("Access denied: " + d.Reason)
	}
	if !canTransition(lead.Status, to, LeadTransitions) {
		return nil, apperr.InvalidState("Invalid status transition")
	}
	if err := s.repo.UpdateStatus(id, to); err != nil {
		return nil, err
	}
	lead.Status = to
	return lead, nil
}

// ConvertToCustomer is the standalone manager-only conversion. It shares the
// status-guarded lead update with deal creation, so the two paths can never
// both convert the same lead.
func (s *LeadService) ConvertToCustomer(actor authz.Actor, leadID int) (*models.Customer, error) {
	if d := authz.CanAct(actor, authz.Resource{}, authz.ActionConvert); !d.Allowed {
		return nil, apperr.Forbidden("Only managers can convert leads")
	}

	unit, err := s.store.Begin()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to start transaction", err)
	}
	defer unit.Rollback()

	lead, err := unit.GetLead(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, apperr.NotFound("Lead not found")
	}
	if lead.Status != models.LeadStatusQualified {
		return nil, apperr.InvalidState("Only QUALIFIED leads can be converted to customer")
	}

	now := time.Now()
	customer := &models.Customer{
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

	converted, err := unit.MarkLeadConverted(leadID, customerID, now)
	if err != nil {
		return nil, err
	}
	if !converted {
		return nil, apperr.InvalidState("Lead has already been converted")
	}
	if err := unit.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to commit conversion", err)
	}

	s.log.Info("lead converted", "lead_id", leadID, "customer_id", customerID, "manager_id", actor.UserID)
	return customer, nil
}
