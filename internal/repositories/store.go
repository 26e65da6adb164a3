package repositories

import (
	"database/sql"
	"time"

	"ispcrm/internal/models"
)

// DealUnit is one atomic unit of work for the deal workflow. All writes made
// through it land in a single transaction; Commit applies everything or
// Rollback discards everything.
type DealUnit interface {
	Commit() error
	Rollback() error

	GetLead(id int) (*models.Lead, error)
	MarkLeadConverted(leadID, customerID int, at time.Time) (bool, error)
	CreateCustomer(c *models.Customer) (int, error)
	GetCustomer(id int) (*models.Customer, error)
	GetActiveProduct(id int) (*models.Product, error)

	CreateDeal(d *models.Deal) (int, error)
	CreateDealItem(it *models.DealItem) (int, error)
	GetDeal(id int) (*models.Deal, error)
	GetDealItems(dealID int) ([]*models.DealItem, error)
	MarkDealSubmitted(id int, at time.Time) (bool, error)
	MarkDealApproved(id int, at time.Time) (bool, error)
	MarkDealRejected(id int, at time.Time) (bool, error)
	ClaimDealActivation(id int, at time.Time) (bool, error)

	CreatePriceApproval(a *models.PriceApproval) (int, error)
	ApprovalItemIDs(dealID int) (map[int]bool, error)
	ResolvePendingApprovals(dealID, approverID int, status string, note *string, at time.Time) error

	CreateService(s *models.Service) (int, error)
}

// DealStore opens deal units and serves the non-transactional deal reads.
type DealStore interface {
	Begin() (DealUnit, error)
	GetDeal(id int) (*models.Deal, error)
	GetDealItems(dealID int) ([]*models.DealItem, error)
	ListApprovals(dealID int) ([]*models.PriceApproval, error)
	ListDeals(limit, offset int) ([]*models.Deal, error)
	ListDealsByOwner(ownerID, limit, offset int) ([]*models.Deal, error)
}

// Store is the Postgres-backed DealStore.
type Store struct {
	db        *sql.DB
	deals     *DealRepository
	approvals *ApprovalRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		deals:     NewDealRepository(db),
		approvals: NewApprovalRepository(db),
	}
}

func (s *Store) Begin() (DealUnit, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &dealUnit{tx: tx}, nil
}

func (s *Store) GetDeal(id int) (*models.Deal, error) { return s.deals.GetByID(id) }

func (s *Store) GetDealItems(dealID int) ([]*models.DealItem, error) {
	return s.deals.GetItems(dealID)
}

func (s *Store) ListApprovals(dealID int) ([]*models.PriceApproval, error) {
	return s.approvals.ListByDeal(dealID)
}

func (s *Store) ListDeals(limit, offset int) ([]*models.Deal, error) {
	return s.deals.ListPaginated(limit, offset)
}

func (s *Store) ListDealsByOwner(ownerID, limit, offset int) ([]*models.Deal, error) {
	return s.deals.ListByOwner(ownerID, limit, offset)
}

// dealUnit binds the repositories to one *sql.Tx.
type dealUnit struct {
	tx *sql.Tx
}

func (u *dealUnit) Commit() error   { return u.tx.Commit() }
func (u *dealUnit) Rollback() error { return u.tx.Rollback() }

func (u *dealUnit) leads() *LeadRepository         { return &LeadRepository{db: u.tx} }
func (u *dealUnit) customers() *CustomerRepository { return &CustomerRepository{db: u.tx} }
func (u *dealUnit) products() *ProductRepository   { return &ProductRepository{db: u.tx} }
func (u *dealUnit) deals() *DealRepository         { return &DealRepository{db: u.tx} }
func (u *dealUnit) approvals() *ApprovalRepository { return &ApprovalRepository{db: u.tx} }
func (u *dealUnit) services() *ServiceRepository   { return &ServiceRepository{db: u.tx} }

func (u *dealUnit) GetLead(id int) (*models.Lead, error) { return u.leads().GetByID(id) }

func (u *dealUnit) MarkLeadConverted(leadID, customerID int, at time.Time) (bool, error) {
	return u.leads().MarkConverted(leadID, customerID, at)
}

func (u *dealUnit) CreateCustomer(c *models.Customer) (int, error) {
	id, err := u.customers().Create(c)
	return int(id), err
}

func (u *dealUnit) GetCustomer(id int) (*models.Customer, error) {
	return u.customers().GetByID(id)
}

func (u *dealUnit) GetActiveProduct(id int) (*models.Product, error) {
	return u.products().GetActiveByID(id)
}

func (u *dealUnit) CreateDeal(d *models.Deal) (int, error) {
	id, err := u.deals().Create(d)
	return int(id), err
}

func (u *dealUnit) CreateDealItem(it *models.DealItem) (int, error) {
	id, err := u.deals().CreateItem(it)
	return int(id), err
}

func (u *dealUnit) GetDeal(id int) (*models.Deal, error) { return u.deals().GetByID(id) }

func (u *dealUnit) GetDealItems(dealID int) ([]*models.DealItem, error) {
	return u.deals().GetItems(dealID)
}

func (u *dealUnit) MarkDealSubmitted(id int, at time.Time) (bool, error) {
	return u.deals().MarkSubmitted(id, at)
}

func (u *dealUnit) MarkDealApproved(id int, at time.Time) (bool, error) {
	return u.deals().MarkApproved(id, at)
}

func (u *dealUnit) MarkDealRejected(id int, at time.Time) (bool, error) {
	return u.deals().MarkRejected(id, at)
}

func (u *dealUnit) ClaimDealActivation(id int, at time.Time) (bool, error) {
	return u.deals().ClaimActivation(id, at)
}

func (u *dealUnit) CreatePriceApproval(a *models.PriceApproval) (int, error) {
	id, err := u.approvals().Create(a)
	return int(id), err
}

func (u *dealUnit) ApprovalItemIDs(dealID int) (map[int]bool, error) {
	return u.approvals().ItemIDsWithRecord(dealID)
}

func (u *dealUnit) ResolvePendingApprovals(dealID, approverID int, status string, note *string, at time.Time) error {
	return u.approvals().ResolveAllPending(dealID, approverID, status, note, at)
}

func (u *dealUnit) CreateService(s *models.Service) (int, error) {
	id, err := u.services().Create(s)
	return int(id), err
}
