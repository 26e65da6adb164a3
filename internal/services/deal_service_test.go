package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"ispcrm/internal/apperr"
	"ispcrm/internal/authz"
	"ispcrm/internal/models"
	"ispcrm/internal/repositories"
)

// fakeStore is an in-memory DealStore. Writes apply immediately; the guarded
// Mark* methods reproduce the status checks the SQL versions perform, which is
// what the lifecycle tests care about.
type fakeStore struct {
	leads     map[int]*models.Lead
	customers map[int]*models.Customer
	products  map[int]*models.Product
	deals     map[int]*models.Deal
	items     map[int][]*models.DealItem
	approvals map[int][]*models.PriceApproval
	services  []*models.Service

	nextID     int
	committed  int
	rolledBack int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:     map[int]*models.Lead{},
		customers: map[int]*models.Customer{},
		products:  map[int]*models.Product{},
		deals:     map[int]*models.Deal{},
		items:     map[int][]*models.DealItem{},
		approvals: map[int][]*models.PriceApproval{},
		nextID:    1000,
	}
}

func (f *fakeStore) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Begin() (repositories.DealUnit, error) { return &fakeUnit{s: f}, nil }

func (f *fakeStore) GetDeal(id int) (*models.Deal, error) {
	if d, ok := f.deals[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) GetDealItems(dealID int) ([]*models.DealItem, error) {
	return f.items[dealID], nil
}

func (f *fakeStore) ListApprovals(dealID int) ([]*models.PriceApproval, error) {
	return f.approvals[dealID], nil
}

func (f *fakeStore) ListDeals(limit, offset int) ([]*models.Deal, error) {
	out := make([]*models.Deal, 0, len(f.deals))
	for _, d := range f.deals {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) ListDealsByOwner(ownerID, limit, offset int) ([]*models.Deal, error) {
	var out []*models.Deal
	for _, d := range f.deals {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeUnit struct {
	s    *fakeStore
	done bool
}

func (u *fakeUnit) Commit() error {
	u.done = true
	u.s.committed++
	return nil
}

func (u *fakeUnit) Rollback() error {
	if !u.done {
		u.s.rolledBack++
	}
	return nil
}

func (u *fakeUnit) GetLead(id int) (*models.Lead, error) {
	if l, ok := u.s.leads[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (u *fakeUnit) MarkLeadConverted(leadID, customerID int, at time.Time) (bool, error) {
	l, ok := u.s.leads[leadID]
	if !ok || l.Status != models.LeadStatusQualified {
		return false, nil
	}
	l.Status = models.LeadStatusConverted
	l.CustomerID = &customerID
	l.ConvertedAt = &at
	return true, nil
}

func (u *fakeUnit) CreateCustomer(c *models.Customer) (int, error) {
	c.ID = u.s.id()
	u.s.customers[c.ID] = c
	return c.ID, nil
}

func (u *fakeUnit) GetCustomer(id int) (*models.Customer, error) {
	if c, ok := u.s.customers[id]; ok {
		return c, nil
	}
	return nil, nil
}

func (u *fakeUnit) GetActiveProduct(id int) (*models.Product, error) {
	if p, ok := u.s.products[id]; ok && p.IsActive {
		return p, nil
	}
	return nil, nil
}

func (u *fakeUnit) CreateDeal(d *models.Deal) (int, error) {
	d.ID = u.s.id()
	cp := *d
	u.s.deals[d.ID] = &cp
	return d.ID, nil
}

func (u *fakeUnit) CreateDealItem(it *models.DealItem) (int, error) {
	it.ID = u.s.id()
	u.s.items[it.DealID] = append(u.s.items[it.DealID], it)
	return it.ID, nil
}

func (u *fakeUnit) GetDeal(id int) (*models.Deal, error)              { return u.s.GetDeal(id) }
func (u *fakeUnit) GetDealItems(dealID int) ([]*models.DealItem, error) { return u.s.items[dealID], nil }

func (u *fakeUnit) markStatus(id int, from, to string, set func(*models.Deal)) (bool, error) {
	d, ok := u.s.deals[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	set(d)
	return true, nil
}

func (u *fakeUnit) MarkDealSubmitted(id int, at time.Time) (bool, error) {
	return u.markStatus(id, models.DealStatusDraft, models.DealStatusWaitingApproval,
		func(d *models.Deal) { d.SubmittedAt = &at })
}

func (u *fakeUnit) MarkDealApproved(id int, at time.Time) (bool, error) {
	return u.markStatus(id, models.DealStatusWaitingApproval, models.DealStatusApproved,
		func(d *models.Deal) { d.ApprovedAt = &at })
}

func (u *fakeUnit) MarkDealRejected(id int, at time.Time) (bool, error) {
	return u.markStatus(id, models.DealStatusWaitingApproval, models.DealStatusRejected,
		func(d *models.Deal) { d.RejectedAt = &at })
}

func (u *fakeUnit) ClaimDealActivation(id int, at time.Time) (bool, error) {
	d, ok := u.s.deals[id]
	if !ok || d.Status != models.DealStatusApproved || d.ActivatedAt != nil {
		return false, nil
	}
	d.ActivatedAt = &at
	return true, nil
}

func (u *fakeUnit) CreatePriceApproval(a *models.PriceApproval) (int, error) {
	a.ID = u.s.id()
	u.s.approvals[a.DealID] = append(u.s.approvals[a.DealID], a)
	return a.ID, nil
}

func (u *fakeUnit) ApprovalItemIDs(dealID int) (map[int]bool, error) {
	out := map[int]bool{}
	for _, a := range u.s.approvals[dealID] {
		out[a.DealItemID] = true
	}
	return out, nil
}

func (u *fakeUnit) ResolvePendingApprovals(dealID, approverID int, status string, note *string, at time.Time) error {
	for _, a := range u.s.approvals[dealID] {
		if a.Status != models.ApprovalStatusPending {
			continue
		}
		a.Status = status
		a.ApprovedByID = &approverID
		a.DecisionNote = note
		a.DecidedAt = &at
	}
	return nil
}

func (u *fakeUnit) CreateService(s *models.Service) (int, error) {
	s.ID = u.s.id()
	u.s.services = append(u.s.services, s)
	return s.ID, nil
}

type recordingNotifier struct {
	deals []*models.Deal
}

func (r *recordingNotifier) DealPendingApproval(deal *models.Deal) {
	r.deals = append(r.deals, deal)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func seedProduct(s *fakeStore, id int, price float64) {
	s.products[id] = &models.Product{
		ID: id, Code: "NET-100", Name: "Home Fiber 100", SellingPrice: price,
		SpeedMbps: 100, IsActive: true,
	}
}

func seedQualifiedLead(s *fakeStore, id, ownerID int) {
	s.leads[id] = &models.Lead{
		ID: id, Name: "PT Maju Jaya", Contact: "081234", Email: "it@majujaya.co",
		Address: "Jl. Sudirman 1", Status: models.LeadStatusQualified, OwnerID: ownerID,
	}
}

var (
	salesActor   = authz.Actor{UserID: 7, Role: models.RoleSales}
	managerActor = authz.Actor{UserID: 2, Role: models.RoleManager}
)

func TestCreateDealFromLeadWithDiscount(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 455000)
	seedQualifiedLead(store, 10, salesActor.UserID)
	notifier := &recordingNotifier{}
	svc := NewDealService(store, testLogger(), notifier)

	deal, err := svc.Create(salesActor, CreateDealRequest{
		LeadID: intPtr(10),
		Items:  []DealItemRequest{{ProductID: 1, AgreedPrice: 400000, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if deal.Status != models.DealStatusWaitingApproval {
		t.Errorf("status = %s, want WAITING_APPROVAL", deal.Status)
	}
	if deal.TotalAmount != 800000 {
		t.Errorf("total = %v, want 800000", deal.TotalAmount)
	}
	if deal.Title != "Deal for PT Maju Jaya" {
		t.Errorf("title = %q", deal.Title)
	}

	lead := store.leads[10]
	if lead.Status != models.LeadStatusConverted {
		t.Errorf("lead status = %s, want CONVERTED", lead.Status)
	}
	if lead.CustomerID == nil || store.customers[*lead.CustomerID] == nil {
		t.Fatal("lead not linked to a customer")
	}
	if store.customers[*lead.CustomerID].Address != "Jl. Sudirman 1" {
		t.Errorf("customer address not copied from lead")
	}

	approvals := store.approvals[deal.ID]
	if len(approvals) != 1 {
		t.Fatalf("approvals = %d, want 1", len(approvals))
	}
	a := approvals[0]
	if a.Status != models.ApprovalStatusPending {
		t.Errorf("approval status = %s, want PENDING", a.Status)
	}
	if a.DiscountAmount != 55000 {
		t.Errorf("discount = %v, want 55000", a.DiscountAmount)
	}
	if a.RequestedByID != salesActor.UserID {
		t.Errorf("requested_by = %d, want %d", a.RequestedByID, salesActor.UserID)
	}

	if len(notifier.deals) != 1 {
		t.Errorf("notifier called %d times, want 1", len(notifier.deals))
	}
	if store.committed != 1 {
		t.Errorf("committed = %d, want 1", store.committed)
	}
}

func TestCreateDealAtStandardPriceStaysDraft(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 455000)
	store.customers[20] = &models.Customer{ID: 20, Name: "CV Abadi"}
	notifier := &recordingNotifier{}
	svc := NewDealService(store, testLogger(), notifier)

	deal, err := svc.Create(salesActor, CreateDealRequest{
		CustomerID: intPtr(20),
		Title:      "Renewal",
		Items:      []DealItemRequest{{ProductID: 1, AgreedPrice: 500000}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if deal.Status != models.DealStatusDraft {
		t.Errorf("status = %s, want DRAFT", deal.Status)
	}
	if deal.TotalAmount != 500000 {
		t.Errorf("total = %v, want 500000 (quantity defaults to 1)", deal.TotalAmount)
	}
	if len(store.approvals[deal.ID]) != 0 {
		t.Errorf("approvals created for a standard-price deal")
	}
	if len(notifier.deals) != 0 {
		t.Errorf("notifier called for a DRAFT deal")
	}
}

func TestCreateDealValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewDealService(store, testLogger())

	cases := []struct {
		name string
		req  CreateDealRequest
		kind apperr.Kind
	}{
		{"both targets", CreateDealRequest{LeadID: intPtr(1), CustomerID: intPtr(2),
			Items: []DealItemRequest{{ProductID: 1, AgreedPrice: 100}}}, apperr.KindInvalidRequest},
		{"no target", CreateDealRequest{
			Items: []DealItemRequest{{ProductID: 1, AgreedPrice: 100}}}, apperr.KindInvalidRequest},
		{"no items", CreateDealRequest{LeadID: intPtr(1)}, apperr.KindInvalidRequest},
		{"negative price", CreateDealRequest{LeadID: intPtr(1),
			Items: []DealItemRequest{{ProductID: 1, AgreedPrice: -5}}}, apperr.KindInvalidRequest},
		{"missing lead", CreateDealRequest{LeadID: intPtr(99),
			Items: []DealItemRequest{{ProductID: 1, AgreedPrice: 100}}}, apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(managerActor, tc.req)
			if !apperr.Is(err, tc.kind) {
				t.Errorf("err = %v, want kind %v", err, tc.kind)
			}
		})
	}
}

func TestCreateDealFromUnqualifiedLead(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 455000)
	store.leads[10] = &models.Lead{ID: 10, Name: "Cold lead", Status: models.LeadStatusNew, OwnerID: salesActor.UserID}
	svc := NewDealService(store, testLogger())

	_, err := svc.Create(salesActor, CreateDealRequest{
		LeadID: intPtr(10),
		Items:  []DealItemRequest{{ProductID: 1, AgreedPrice: 455000}},
	})
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("err = %v, want InvalidState", err)
	}
	if store.committed != 0 {
		t.Errorf("transaction committed despite failure")
	}
}

func TestCreateDealForOthersLeadForbidden(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 455000)
	seedQualifiedLead(store, 10, 99)
	svc := NewDealService(store, testLogger())

	_, err := svc.Create(salesActor, CreateDealRequest{
		LeadID: intPtr(10),
		Items:  []DealItemRequest{{ProductID: 1, AgreedPrice: 455000}},
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("err = %v, want Forbidden", err)
	}
	if store.leads[10].Status != models.LeadStatusQualified {
		t.Errorf("lead mutated despite forbidden request")
	}
}

func TestSubmitDraftDeal(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, Status: models.DealStatusDraft}
	store.items[50] = []*models.DealItem{
		{ID: 51, DealID: 50, ProductID: 1, AgreedPrice: 400000, StandardPrice: 455000, NeedsApproval: true},
		{ID: 52, DealID: 50, ProductID: 2, AgreedPrice: 250000, StandardPrice: 250000},
	}
	notifier := &recordingNotifier{}
	svc := NewDealService(store, testLogger(), notifier)

	deal, err := svc.Submit(salesActor, 50)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if deal.Status != models.DealStatusWaitingApproval {
		t.Errorf("status = %s, want WAITING_APPROVAL", deal.Status)
	}
	if deal.SubmittedAt == nil {
		t.Error("SubmittedAt not set")
	}

	approvals := store.approvals[50]
	if len(approvals) != 1 {
		t.Fatalf("approvals = %d, want 1 (only the discounted item)", len(approvals))
	}
	if approvals[0].DealItemID != 51 {
		t.Errorf("approval targets item %d, want 51", approvals[0].DealItemID)
	}
	if len(notifier.deals) != 1 {
		t.Errorf("notifier called %d times, want 1", len(notifier.deals))
	}
}

func TestSubmitIsIdempotentOnApprovalRows(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, Status: models.DealStatusDraft}
	store.items[50] = []*models.DealItem{
		{ID: 51, DealID: 50, ProductID: 1, AgreedPrice: 400000, StandardPrice: 455000, NeedsApproval: true},
	}
	// row already created by the creation path
	store.approvals[50] = []*models.PriceApproval{
		{ID: 60, DealID: 50, DealItemID: 51, Status: models.ApprovalStatusPending},
	}
	svc := NewDealService(store, testLogger())

	if _, err := svc.Submit(salesActor, 50); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(store.approvals[50]) != 1 {
		t.Errorf("approvals = %d, want 1 (no duplicate rows)", len(store.approvals[50]))
	}
}

func TestSubmitWrongStateAndOwner(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, Status: models.DealStatusApproved}
	store.deals[51] = &models.Deal{ID: 51, OwnerID: 99, Status: models.DealStatusDraft}
	svc := NewDealService(store, testLogger())

	if _, err := svc.Submit(salesActor, 50); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("submit approved deal: err = %v, want InvalidState", err)
	}
	if _, err := svc.Submit(salesActor, 51); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("submit foreign deal: err = %v, want Forbidden", err)
	}
	if _, err := svc.Submit(salesActor, 404); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("submit missing deal: err = %v, want NotFound", err)
	}
}

func TestApproveResolvesLedgerAndDeal(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, Status: models.DealStatusWaitingApproval}
	store.approvals[50] = []*models.PriceApproval{
		{ID: 60, DealID: 50, DealItemID: 51, Status: models.ApprovalStatusPending},
		{ID: 61, DealID: 50, DealItemID: 52, Status: models.ApprovalStatusPending},
	}
	svc := NewDealService(store, testLogger())

	deal, err := svc.Approve(managerActor, 50, "ok")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if deal.Status != models.DealStatusApproved {
		t.Errorf("status = %s, want APPROVED", deal.Status)
	}
	if deal.ApprovedAt == nil {
		t.Error("ApprovedAt not set")
	}
	for _, a := range store.approvals[50] {
		if a.Status != models.ApprovalStatusApproved {
			t.Errorf("approval %d status = %s, want APPROVED", a.ID, a.Status)
		}
		if a.ApprovedByID == nil || *a.ApprovedByID != managerActor.UserID {
			t.Errorf("approval %d not attributed to the manager", a.ID)
		}
		if a.DecisionNote == nil || *a.DecisionNote != "ok" {
			t.Errorf("approval %d note not recorded", a.ID)
		}
	}
}

func TestRejectResolvesLedgerAndDeal(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, Status: models.DealStatusWaitingApproval}
	store.approvals[50] = []*models.PriceApproval{
		{ID: 60, DealID: 50, DealItemID: 51, Status: models.ApprovalStatusPending},
	}
	svc := NewDealService(store, testLogger())

	deal, err := svc.Reject(managerActor, 50, "margin too thin")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if deal.Status != models.DealStatusRejected {
		t.Errorf("status = %s, want REJECTED", deal.Status)
	}
	if store.approvals[50][0].Status != models.ApprovalStatusRejected {
		t.Errorf("ledger row not rejected")
	}
}

func TestApproveRequiresManager(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, Status: models.DealStatusWaitingApproval}
	svc := NewDealService(store, testLogger())

	if _, err := svc.Approve(salesActor, 50, ""); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("err = %v, want Forbidden (even for the owner)", err)
	}
}

func TestApproveWrongState(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, Status: models.DealStatusDraft}
	svc := NewDealService(store, testLogger())

	if _, err := svc.Approve(managerActor, 50, ""); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("err = %v, want InvalidState", err)
	}
}

func TestActivateCreatesOneServicePerItem(t *testing.T) {
	store := newFakeStore()
	store.customers[20] = &models.Customer{ID: 20, Name: "CV Abadi", Address: "Jl. Melati 5"}
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, CustomerID: 20, Status: models.DealStatusApproved}
	store.items[50] = []*models.DealItem{
		{ID: 51, DealID: 50, ProductID: 1, AgreedPrice: 400000},
		{ID: 52, DealID: 50, ProductID: 2, AgreedPrice: 250000},
	}
	svc := NewDealService(store, testLogger())

	created, err := svc.Activate(salesActor, 50)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("services = %d, want 2", len(created))
	}
	for i, s := range created {
		if s.Status != models.ServiceStatusActive {
			t.Errorf("service %d status = %s, want ACTIVE", i, s.Status)
		}
		if s.CustomerID != 20 {
			t.Errorf("service %d customer = %d, want 20", i, s.CustomerID)
		}
		if s.InstallationAddress != "Jl. Melati 5" {
			t.Errorf("service %d address = %q", i, s.InstallationAddress)
		}
	}
	if created[0].MonthlyFee != 400000 || created[1].MonthlyFee != 250000 {
		t.Errorf("monthly fees = %v/%v, want agreed prices", created[0].MonthlyFee, created[1].MonthlyFee)
	}
	if store.deals[50].ActivatedAt == nil {
		t.Error("ActivatedAt not claimed")
	}
}

func TestActivateTwiceFails(t *testing.T) {
	store := newFakeStore()
	store.customers[20] = &models.Customer{ID: 20}
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, CustomerID: 20, Status: models.DealStatusApproved}
	store.items[50] = []*models.DealItem{{ID: 51, DealID: 50, ProductID: 1, AgreedPrice: 400000}}
	svc := NewDealService(store, testLogger())

	if _, err := svc.Activate(salesActor, 50); err != nil {
		t.Fatalf("first Activate: %v", err)
	}
	_, err := svc.Activate(salesActor, 50)
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("second Activate: err = %v, want InvalidState", err)
	}
	if len(store.services) != 1 {
		t.Errorf("services = %d, want 1 (no duplicates)", len(store.services))
	}
}

func TestActivateUnapprovedDeal(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: salesActor.UserID, Status: models.DealStatusWaitingApproval}
	svc := NewDealService(store, testLogger())

	if _, err := svc.Activate(salesActor, 50); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("err = %v, want InvalidState", err)
	}
}

func TestGetByIDScopesToOwner(t *testing.T) {
	store := newFakeStore()
	store.deals[50] = &models.Deal{ID: 50, OwnerID: 99, Status: models.DealStatusDraft}
	svc := NewDealService(store, testLogger())

	if _, err := svc.GetByID(salesActor, 50); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("sales read of foreign deal: err = %v, want Forbidden", err)
	}
	if _, err := svc.GetByID(managerActor, 50); err != nil {
		t.Errorf("manager read: %v", err)
	}
}
