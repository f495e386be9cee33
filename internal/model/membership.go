package model

import "time"

// planTerm describes how a plan moves the expiry date. A zero term never expires.
type planTerm struct {
	years  int
	months int
}

var planTerms = map[string]planTerm{
	"Basic Monthly":    {months: 1},
	"Standard Monthly": {months: 1},
	"Premium Annual":   {years: 1},
	"VIP Lifetime":     {},
}

// MembershipChange is the result of selecting a plan
type MembershipChange struct {
	Plan      string
	Status    string
	ExpiresAt *time.Time
}

// DeriveMembership computes plan, status and expiry for a plan selected at now.
// Unknown or empty plans reset the membership to Inactive with no expiry.
func DeriveMembership(plan string, now time.Time) MembershipChange {
	term, ok := planTerms[plan]
	if !ok {
		if plan == "" {
			plan = PlanNone
		}
		return MembershipChange{Plan: plan, Status: StatusInactive}
	}

	change := MembershipChange{Plan: plan, Status: StatusActive}
	if term.years != 0 || term.months != 0 {
		expiresAt := now.AddDate(term.years, term.months, 0)
		change.ExpiresAt = &expiresAt
	}
	return change
}
