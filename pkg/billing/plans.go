// Package billing resolves provider subscription rows into a normalized
// status and gates feature access by plan tier.
package billing

import (
	"fmt"

	"github.com/policyflow/policyflow/pkg/domain"
)

// Catalog maps provider price ids to plan tiers. It is built from
// configuration once at startup; resolution is exact string match only,
// so an unknown price id yields no plan.
type Catalog struct {
	prices map[string]domain.PlanTier
}

// NewCatalog builds the price-id catalog for the three plan tiers.
// Every price id must be set and the three must be distinct.
func NewCatalog(foundationalPriceID, operationalPriceID, strategicPriceID string) (*Catalog, error) {
	ids := map[string]domain.PlanTier{
		foundationalPriceID: domain.PlanFoundational,
		operationalPriceID:  domain.PlanOperational,
		strategicPriceID:    domain.PlanStrategic,
	}
	for id := range ids {
		if id == "" {
			return nil, fmt.Errorf("billing: price id for every plan tier must be configured")
		}
	}
	if len(ids) != 3 {
		return nil, fmt.Errorf("billing: plan price ids must be distinct")
	}
	return &Catalog{prices: ids}, nil
}

// EmptyCatalog returns a catalog with no configured prices, for running
// without a billing provider. Every price id resolves to no plan, so
// tier-gated features stay locked.
func EmptyCatalog() *Catalog {
	return &Catalog{prices: map[string]domain.PlanTier{}}
}

// PlanForPrice returns the tier for a provider price id, or nil when the
// price id is not one of the configured plans.
func (c *Catalog) PlanForPrice(priceID string) *domain.PlanTier {
	tier, ok := c.prices[priceID]
	if !ok {
		return nil
	}
	return &tier
}

// PriceForPlan returns the configured price id for a tier, or "" when
// the tier is unknown.
func (c *Catalog) PriceForPlan(tier domain.PlanTier) string {
	for id, t := range c.prices {
		if t == tier {
			return id
		}
	}
	return ""
}
