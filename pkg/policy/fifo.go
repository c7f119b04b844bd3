package policy

import (
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// FIFOPolicy orders cases by filing date ascending, oldest filed first.
// The listing discipline most registries default to.
type FIFOPolicy struct{}

// NewFIFOPolicy creates a FIFO policy
func NewFIFOPolicy() *FIFOPolicy {
	return &FIFOPolicy{}
}

// Name returns the policy name
func (p *FIFOPolicy) Name() string {
	return "fifo"
}

// Prioritize orders by filed date ascending, ties by case id
func (p *FIFOPolicy) Prioritize(cases []*models.Case, today time.Time) []*models.Case {
	return sortStable(cases, func(a, b *models.Case) bool {
		return a.TieBreakLess(b)
	})
}
