package services

import (
	"testing"

	"ispcrm/internal/apperr"
	"ispcrm/internal/models"
)

func TestLeadTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.LeadStatusNew, models.LeadStatusContacted, true},
		{models.LeadStatusNew, models.LeadStatusQualified, true},
		{models.LeadStatusNew, models.LeadStatusLost, true},
		{models.LeadStatusContacted, models.LeadStatusQualified, true},
		{models.LeadStatusContacted, models.LeadStatusNew, false},
		{models.LeadStatusQualified, models.LeadStatusLost, true},
		{models.LeadStatusQualified, models.LeadStatusConverted, false}, // conversion paths only
		{models.LeadStatusConverted, models.LeadStatusNew, false},
		{models.LeadStatusLost, models.LeadStatusContacted, false},
		{"GARBAGE", models.LeadStatusNew, false},
	}
	for _, tc := range cases {
		if got := canTransition(tc.from, tc.to, LeadTransitions); got != tc.want {
			t.Errorf("canTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestConvertToCustomerRequiresManager(t *testing.T) {
	store := newFakeStore()
	seedQualifiedLead(store, 10, salesActor.UserID)
	svc := NewLeadService(nil, store, testLogger())

	if _, err := svc.ConvertToCustomer(salesActor, 10); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("err = %v, want Forbidden", err)
	}
}

func TestConvertToCustomer(t *testing.T) {
	store := newFakeStore()
	seedQualifiedLead(store, 10, salesActor.UserID)
	svc := NewLeadService(nil, store, testLogger())

	customer, err := svc.ConvertToCustomer(managerActor, 10)
	if err != nil {
		t.Fatalf("ConvertToCustomer: %v", err)
	}
	if customer.Name != "PT Maju Jaya" {
		t.Errorf("customer name = %q, want lead name", customer.Name)
	}
	if customer.CustomerCode == "" {
		t.Error("customer code not generated")
	}

	lead := store.leads[10]
	if lead.Status != models.LeadStatusConverted {
		t.Errorf("lead status = %s, want CONVERTED", lead.Status)
	}
	if lead.CustomerID == nil || *lead.CustomerID != customer.ID {
		t.Error("lead not linked to the new customer")
	}
}

func TestConvertToCustomerOnlyOnce(t *testing.T) {
	store := newFakeStore()
	seedQualifiedLead(store, 10, salesActor.UserID)
	svc := NewLeadService(nil, store, testLogger())

	if _, err := svc.ConvertToCustomer(managerActor, 10); err != nil {
		t.Fatalf("first conversion: %v", err)
	}
	_, err := svc.ConvertToCustomer(managerActor, 10)
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("second conversion: err = %v, want InvalidState", err)
	}
}

func TestConvertNonQualifiedLead(t *testing.T) {
	store := newFakeStore()
	store.leads[10] = &models.Lead{ID: 10, Name: "Fresh", Status: models.LeadStatusNew, OwnerID: salesActor.UserID}
	svc := NewLeadService(nil, store, testLogger())

	if _, err := svc.ConvertToCustomer(managerActor, 10); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("err = %v, want InvalidState", err)
	}
}
