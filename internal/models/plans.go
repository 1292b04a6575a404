package models

// Plan tier names recognized by the catalog.
const (
	PlanStarter      = "Starter"
	PlanProfessional = "Professional"
	PlanPremium      = "Premium"
	PlanEnterprise   = "Enterprise"

	// UnknownPlan is returned for price IDs the catalog does not know.
	UnknownPlan = "Unknown Plan"
)

// PlanTiers lists the recognized tiers in ascending order.
var PlanTiers = []string{PlanStarter, PlanProfessional, PlanPremium, PlanEnterprise}

// PlanCatalog maps provider price IDs to plan tier names.
type PlanCatalog struct {
	byPrice map[string]string
}

// NewPlanCatalog builds a catalog from tier name -> price ID pairs. Tiers with
// an empty price ID are left unmapped.
func NewPlanCatalog(priceIDs map[string]string) PlanCatalog {
	byPrice := make(map[string]string, len(priceIDs))
	for _, tier := range PlanTiers {
		if priceID := priceIDs[tier]; priceID != "" {
			byPrice[priceID] = tier
		}
	}
	return PlanCatalog{byPrice: byPrice}
}

// Lookup returns the plan name for priceID, or UnknownPlan.
func (c PlanCatalog) Lookup(priceID string) string {
	if priceID == "" {
		return UnknownPlan
	}
	if name, ok := c.byPrice[priceID]; ok {
		return name
	}
	return UnknownPlan
}

// Len reports how many price IDs are mapped.
func (c PlanCatalog) Len() int {
	return len(c.byPrice)
}
