package policy

import (
	"fmt"
	"sort"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// Policy orders an eligible case set for a day. Policies are pure ordering
// functions; the only case field they may touch is the cached priority
// score.
type Policy interface {
	Name() string
	Prioritize(cases []*models.Case, today time.Time) []*models.Case
}

// DayContext carries the per-day inputs the external scorer's feature
// vector needs. Set by the scheduler before ordering.
type DayContext struct {
	CapacityRatio float64
	MinGapDays    int
	PreferredType models.CaseType
	HasPreference bool
}

// ContextAware is implemented by policies whose ordering depends on the
// day's scheduling context
type ContextAware interface {
	SetDayContext(ctx DayContext)
}

// Registry maps policy names to constructors
var registry = map[string]func(params map[string]interface{}) (Policy, error){
	"fifo":      func(map[string]interface{}) (Policy, error) { return NewFIFOPolicy(), nil },
	"age":       func(map[string]interface{}) (Policy, error) { return NewAgePolicy(), nil },
	"readiness": func(map[string]interface{}) (Policy, error) { return NewReadinessPolicy(), nil },
	"external":  newExternalFromParams,
}

// New constructs a policy by name. An unknown name is a configuration
// error surfaced at engine construction.
func New(name string, params map[string]interface{}) (Policy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy %q (available: %v)", name, Names())
	}
	return factory(params)
}

// Names returns the registered policy names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortStable copies the input and sorts it with the given comparator.
// Policies never reorder the caller's slice in place.
func sortStable(cases []*models.Case, less func(a, b *models.Case) bool) []*models.Case {
	out := make([]*models.Case, len(cases))
	copy(out, cases)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
