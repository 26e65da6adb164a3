package authz

import (
	"testing"

	"ispcrm/internal/models"
)

func TestManagerMayDoEverything(t *testing.T) {
	manager := Actor{UserID: 1, Role: models.RoleManager}
	foreign := Resource{OwnerID: 99}

	for _, action := range []Action{ActionView, ActionSubmit, ActionApprove, ActionReject, ActionActivate, ActionConvert, ActionEdit} {
		if d := CanAct(manager, foreign, action); !d.Allowed {
			t.Errorf("manager denied %s: %s", action, d.Reason)
		}
	}
}

func TestSalesOwnershipActions(t *testing.T) {
	sales := Actor{UserID: 7, Role: models.RoleSales}
	own := Resource{OwnerID: 7}
	foreign := Resource{OwnerID: 99}

	for _, action := range []Action{ActionView, ActionSubmit, ActionActivate, ActionEdit} {
		if d := CanAct(sales, own, action); !d.Allowed {
			t.Errorf("owner denied %s: %s", action, d.Reason)
		}
		if d := CanAct(sales, foreign, action); d.Allowed {
			t.Errorf("non-owner allowed %s", action)
		}
	}
}

func TestManagerOnlyActionsDeniedToSales(t *testing.T) {
	sales := Actor{UserID: 7, Role: models.RoleSales}
	own := Resource{OwnerID: 7}

	for _, action := range []Action{ActionApprove, ActionReject, ActionConvert} {
		d := CanAct(sales, own, action)
		if d.Allowed {
			t.Errorf("sales allowed %s on own resource", action)
		}
		if d.Reason == "" {
			t.Errorf("denial for %s carries no reason", action)
		}
	}
}

func TestUnknownActionDenied(t *testing.T) {
	sales := Actor{UserID: 7, Role: models.RoleSales}
	if d := CanAct(sales, Resource{OwnerID: 7}, Action("delete-everything")); d.Allowed {
		t.Error("unknown action allowed")
	}
}
