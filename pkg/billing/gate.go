package billing

import "github.com/policyflow/policyflow/pkg/domain"

// Fixed ordinal ranking of plan tiers.
var tierLevels = map[domain.PlanTier]int{
	domain.PlanFoundational: 1,
	domain.PlanOperational:  2,
	domain.PlanStrategic:    3,
}

// TierLevel returns the ordinal rank of a tier, 0 for unknown tiers.
func TierLevel(tier domain.PlanTier) int {
	return tierLevels[tier]
}

// Allows reports whether a resolved subscription status grants access to
// a feature requiring the given minimum tier: the subscription must be
// active, carry a known plan, and rank at or above the minimum.
func Allows(status domain.SubscriptionStatus, minimum domain.PlanTier) bool {
	if !status.IsActive || status.Plan == nil {
		return false
	}
	return tierLevels[*status.Plan] >= tierLevels[minimum]
}
