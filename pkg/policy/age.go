package policy

import (
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// AgePolicy orders cases by pendency descending, oldest cases first
type AgePolicy struct{}

// NewAgePolicy creates an age-first policy
func NewAgePolicy() *AgePolicy {
	return &AgePolicy{}
}

// Name returns the policy name
func (p *AgePolicy) Name() string {
	return "age"
}

// Prioritize orders by age descending, ties by filed date then case id
func (p *AgePolicy) Prioritize(cases []*models.Case, today time.Time) []*models.Case {
	return sortStable(cases, func(a, b *models.Case) bool {
		if a.AgeDays != b.AgeDays {
			return a.AgeDays > b.AgeDays
		}
		return a.TieBreakLess(b)
	})
}
