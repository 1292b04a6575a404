package models

import "testing"

func TestPlanCatalogLookup(t *testing.T) {
	catalog := NewPlanCatalog(map[string]string{
		PlanStarter:      "price_s",
		PlanProfessional: "price_p",
		PlanPremium:      "",
		PlanEnterprise:   "price_e",
	})

	cases := map[string]string{
		"price_s":    PlanStarter,
		"price_p":    PlanProfessional,
		"price_e":    PlanEnterprise,
		"price_none": UnknownPlan,
		"":           UnknownPlan,
	}
	for priceID, want := range cases {
		if got := catalog.Lookup(priceID); got != want {
			t.Fatalf("Lookup(%q) = %q, want %q", priceID, got, want)
		}
	}

	if catalog.Len() != 3 {
		t.Fatalf("expected 3 mapped prices, got %d", catalog.Len())
	}
}

func TestPlanCatalogIgnoresUnknownTiers(t *testing.T) {
	catalog := NewPlanCatalog(map[string]string{"Gold": "price_gold"})

	if got := catalog.Lookup("price_gold"); got != UnknownPlan {
		t.Fatalf("expected unknown plan for unrecognized tier, got %q", got)
	}
}

func TestSessionContactEmail(t *testing.T) {
	s := Session{CustomerDetails: CustomerDetails{Email: "details@example.com"}}
	if s.ContactEmail() != "details@example.com" {
		t.Fatalf("expected fallback to customer details email, got %q", s.ContactEmail())
	}

	s.CustomerEmail = "top@example.com"
	if s.ContactEmail() != "top@example.com" {
		t.Fatalf("expected top-level email, got %q", s.ContactEmail())
	}
}
