package billing

import (
	"testing"

	"github.com/policyflow/policyflow/pkg/domain"
)

func activeStatus(plan domain.PlanTier) domain.SubscriptionStatus {
	return domain.SubscriptionStatus{
		IsActive: true,
		Plan:     &plan,
		Interval: domain.IntervalMonth,
	}
}

func TestAllows_AllPlanMinimumPairs(t *testing.T) {
	tests := []struct {
		plan    domain.PlanTier
		minimum domain.PlanTier
		want    bool
	}{
		{domain.PlanFoundational, domain.PlanFoundational, true},
		{domain.PlanFoundational, domain.PlanOperational, false},
		{domain.PlanFoundational, domain.PlanStrategic, false},
		{domain.PlanOperational, domain.PlanFoundational, true},
		{domain.PlanOperational, domain.PlanOperational, true},
		{domain.PlanOperational, domain.PlanStrategic, false},
		{domain.PlanStrategic, domain.PlanFoundational, true},
		{domain.PlanStrategic, domain.PlanOperational, true},
		{domain.PlanStrategic, domain.PlanStrategic, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan)+"_vs_"+string(tt.minimum), func(t *testing.T) {
			got := Allows(activeStatus(tt.plan), tt.minimum)
			if got != tt.want {
				t.Errorf("Allows(plan=%s, minimum=%s) = %v, want %v", tt.plan, tt.minimum, got, tt.want)
			}
		})
	}
}

func TestAllows_InactiveSubscription(t *testing.T) {
	status := activeStatus(domain.PlanStrategic)
	status.IsActive = false

	if Allows(status, domain.PlanFoundational) {
		t.Error("inactive subscription should never be granted access")
	}
}

func TestAllows_NilPlan(t *testing.T) {
	status := domain.SubscriptionStatus{IsActive: true, Plan: nil}

	if Allows(status, domain.PlanFoundational) {
		t.Error("active subscription without a resolved plan should be denied")
	}
}

func TestAllows_DefaultStatus(t *testing.T) {
	if Allows(domain.DefaultSubscriptionStatus(), domain.PlanFoundational) {
		t.Error("default status should be denied")
	}
}

func TestTierLevel_Ordering(t *testing.T) {
	if !(TierLevel(domain.PlanFoundational) < TierLevel(domain.PlanOperational) &&
		TierLevel(domain.PlanOperational) < TierLevel(domain.PlanStrategic)) {
		t.Error("tier levels must rank foundational < operational < strategic")
	}
	if TierLevel(domain.PlanTier("UNKNOWN")) != 0 {
		t.Error("unknown tier should rank 0")
	}
}
