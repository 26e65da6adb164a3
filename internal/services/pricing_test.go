package services

import (
	"testing"

	"ispcrm/internal/apperr"
)

func TestEvaluateItemBelowStandardPrice(t *testing.T) {
	ev, err := EvaluateItem(1, 455000, 400000, 2)
	if err != nil {
		t.Fatalf("EvaluateItem: %v", err)
	}
	if !ev.NeedsApproval {
		t.Error("agreed price below standard must need approval")
	}
	if ev.Subtotal != 800000 {
		t.Errorf("subtotal = %v, want 800000", ev.Subtotal)
	}
	if ev.StandardPrice != 455000 {
		t.Errorf("standard price snapshot = %v, want 455000", ev.StandardPrice)
	}
}

func TestEvaluateItemAtStandardPrice(t *testing.T) {
	ev, err := EvaluateItem(1, 455000, 455000, 1)
	if err != nil {
		t.Fatalf("EvaluateItem: %v", err)
	}
	if ev.NeedsApproval {
		t.Error("exact standard price must not need approval")
	}
}

func TestEvaluateItemAboveStandardPrice(t *testing.T) {
	ev, err := EvaluateItem(1, 455000, 500000, 3)
	if err != nil {
		t.Fatalf("EvaluateItem: %v", err)
	}
	if ev.NeedsApproval {
		t.Error("upsell must not need approval")
	}
	if ev.Subtotal != 1500000 {
		t.Errorf("subtotal = %v, want 1500000", ev.Subtotal)
	}
}

func TestEvaluateItemRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		price    float64
		quantity int
	}{
		{"zero quantity", 100, 0},
		{"negative quantity", 100, -1},
		{"zero price", 0, 1},
		{"negative price", -10, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EvaluateItem(1, 455000, tc.price, tc.quantity)
			if !apperr.Is(err, apperr.KindInvalidRequest) {
				t.Errorf("err = %v, want InvalidRequest", err)
			}
		})
	}
}
