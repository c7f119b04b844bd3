package policy

import (
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// ReadinessPolicy orders cases by the composite priority score, highest
// first. Balances pendency, readiness, urgency and recent adjournments.
type ReadinessPolicy struct{}

// NewReadinessPolicy creates a composite readiness policy
func NewReadinessPolicy() *ReadinessPolicy {
	return &ReadinessPolicy{}
}

// Name returns the policy name
func (p *ReadinessPolicy) Name() string {
	return "readiness"
}

// Prioritize recomputes and caches the priority score for each case, then
// orders by score descending with the standard tie-break
func (p *ReadinessPolicy) Prioritize(cases []*models.Case, today time.Time) []*models.Case {
	for _, c := range cases {
		c.ComputePriority(today)
	}
	return sortStable(cases, func(a, b *models.Case) bool {
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		return a.TieBreakLess(b)
	})
}
