package billing

import (
	"testing"

	"github.com/policyflow/policyflow/pkg/domain"
)

func TestNewCatalog_Valid(t *testing.T) {
	catalog, err := NewCatalog("price_found", "price_ops", "price_strat")
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	tests := []struct {
		priceID string
		want    domain.PlanTier
	}{
		{"price_found", domain.PlanFoundational},
		{"price_ops", domain.PlanOperational},
		{"price_strat", domain.PlanStrategic},
	}
	for _, tt := range tests {
		plan := catalog.PlanForPrice(tt.priceID)
		if plan == nil || *plan != tt.want {
			t.Errorf("PlanForPrice(%q) = %v, want %s", tt.priceID, plan, tt.want)
		}
	}
}

func TestNewCatalog_RejectsEmptyPriceID(t *testing.T) {
	if _, err := NewCatalog("price_found", "", "price_strat"); err == nil {
		t.Error("NewCatalog should reject an empty price id")
	}
}

func TestNewCatalog_RejectsDuplicatePriceIDs(t *testing.T) {
	if _, err := NewCatalog("price_same", "price_same", "price_strat"); err == nil {
		t.Error("NewCatalog should reject duplicate price ids")
	}
}

func TestPlanForPrice_UnmatchedResolvesToNil(t *testing.T) {
	catalog, err := NewCatalog("price_found", "price_ops", "price_strat")
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	// No partial or fuzzy matching.
	for _, priceID := range []string{"", "price", "price_found_v2", "PRICE_FOUND"} {
		if plan := catalog.PlanForPrice(priceID); plan != nil {
			t.Errorf("PlanForPrice(%q) = %s, want nil", priceID, *plan)
		}
	}
}

func TestEmptyCatalog_ResolvesNothing(t *testing.T) {
	catalog := EmptyCatalog()

	for _, priceID := range []string{"", "price_found", "price_ops"} {
		if plan := catalog.PlanForPrice(priceID); plan != nil {
			t.Errorf("PlanForPrice(%q) = %s, want nil", priceID, *plan)
		}
	}
	for _, tier := range []domain.PlanTier{domain.PlanFoundational, domain.PlanOperational, domain.PlanStrategic} {
		if got := catalog.PriceForPlan(tier); got != "" {
			t.Errorf("PriceForPlan(%s) = %q, want empty", tier, got)
		}
	}
}

func TestPriceForPlan(t *testing.T) {
	catalog, err := NewCatalog("price_found", "price_ops", "price_strat")
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	if got := catalog.PriceForPlan(domain.PlanOperational); got != "price_ops" {
		t.Errorf("PriceForPlan(OPERATIONAL) = %q, want %q", got, "price_ops")
	}
	if got := catalog.PriceForPlan(domain.PlanTier("UNKNOWN")); got != "" {
		t.Errorf("PriceForPlan(UNKNOWN) = %q, want empty", got)
	}
}
