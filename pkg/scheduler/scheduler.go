package scheduler

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/allocator"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/overrides"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/policy"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/ripeness"
)

// InvariantViolationError marks a condition that would silently bias the
// schedule: a disposed case reaching allocation, or a duplicate candidate.
// Fatal when Options.StrictInvariants is set, counted and skipped
// otherwise.
type InvariantViolationError struct {
	CaseID string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation for case %s: %s", e.CaseID, e.Detail)
}

// Options configures the scheduling algorithm
type Options struct {
	MinGapDays int `json:"min_gap_days"`

	// StrictInvariants turns invariant violations into returned errors.
	// Test harnesses set it; production runs count and skip.
	StrictInvariants bool `json:"strict_invariants"`

	// HardMaxCapacity bounds capacity overrides
	HardMaxCapacity int `json:"hard_max_capacity"`

	// Day-level case type preference, exposed to the external scorer
	PreferredType models.CaseType `json:"preferred_type,omitempty"`
	HasPreference bool            `json:"has_preference,omitempty"`
}

// Validate performs validation on the options
func (o Options) Validate() models.ValidationErrors {
	var errors models.ValidationErrors

	errors.AddIf(o.MinGapDays < 0, "min_gap_days", o.MinGapDays, "cannot be negative")
	errors.AddIf(o.HardMaxCapacity < 0, "hard_max_capacity", o.HardMaxCapacity, "cannot be negative")
	errors.AddIf(o.HasPreference && !o.PreferredType.IsValid(), "preferred_type",
		o.PreferredType, "invalid case type")

	return errors
}

// Algorithm composes the daily pipeline: ripeness filter, eligibility
// filter, policy ordering, override application, allocation. It borrows
// the case population for the duration of a day and mutates cases only
// through their documented operations.
type Algorithm struct {
	classifier *ripeness.Classifier
	pol        policy.Policy
	applier    *overrides.Applier
	alloc      *allocator.Allocator
	options    Options

	invariantSkips atomic.Int64
}

// NewAlgorithm creates the daily scheduling algorithm
func NewAlgorithm(classifier *ripeness.Classifier, pol policy.Policy, options Options) (*Algorithm, error) {
	if classifier == nil {
		return nil, fmt.Errorf("scheduling algorithm requires a ripeness classifier")
	}
	if pol == nil {
		return nil, fmt.Errorf("scheduling algorithm requires a policy")
	}
	if errs := options.Validate(); errs.HasErrors() {
		return nil, fmt.Errorf("invalid scheduler options: %w", errs)
	}
	if options.HardMaxCapacity == 0 {
		options.HardMaxCapacity = 1000
	}
	return &Algorithm{
		classifier: classifier,
		pol:        pol,
		applier:    overrides.NewApplier(options.HardMaxCapacity),
		alloc:      allocator.NewAllocator(),
		options:    options,
	}, nil
}

// Policy returns the algorithm's ordering policy
func (a *Algorithm) Policy() policy.Policy {
	return a.pol
}

// InvariantSkips returns how many invariant violations were skipped
func (a *Algorithm) InvariantSkips() int64 {
	return a.invariantSkips.Load()
}

// ScheduleDay runs the full pipeline for one day. The ovs list is consumed
// as a value and never mutated; per-day overlays live on the result and are
// dropped when it goes out of scope.
func (a *Algorithm) ScheduleDay(pool []*models.Case, courtrooms []*models.Courtroom,
	today time.Time, ovs []overrides.Override) (*SchedulingResult, error) {

	result := newSchedulingResult(today, a.pol.Name())

	if len(courtrooms) == 0 {
		return nil, fmt.Errorf("cannot schedule with an empty courtroom set")
	}
	for _, room := range courtrooms {
		room.ResetDay(today)
	}

	// Step 1: exclude disposed cases. An all-disposed population
	// short-circuits with nothing filtered.
	live := make([]*models.Case, 0, len(pool))
	for _, c := range pool {
		if c.IsDisposed() {
			result.DisposedSkipped++
			continue
		}
		live = append(live, c)
	}
	if len(live) == 0 {
		return result, nil
	}

	// Step 2: refresh derived scores
	for _, c := range live {
		c.AdvanceAge(today)
		c.ComputeReadiness(today)
	}

	// Step 3: ripeness filter. Cases never evaluated get a verdict now;
	// otherwise the cadence-refreshed state on the case decides.
	ripe := make([]*models.Case, 0, len(live))
	for _, c := range live {
		if c.Ripeness.EvaluatedAt.IsZero() {
			v := a.classifier.Classify(c, today)
			c.SetRipeness(v.Status, v.Reason, today)
		}
		if c.Ripeness.Status.IsRipe() {
			ripe = append(ripe, c)
			continue
		}
		result.UnripeFiltered = append(result.UnripeFiltered, FilterRecord{
			CaseID: c.ID,
			Reason: fmt.Sprintf("%s: %s", c.Ripeness.Status, c.Ripeness.Reason),
		})
	}

	// Step 4: eligibility filter on hearing spacing
	eligible := make([]*models.Case, 0, len(ripe))
	for _, c := range ripe {
		if c.IsReadyForScheduling(today, a.options.MinGapDays) {
			eligible = append(eligible, c)
			continue
		}
		result.GapBlocked = append(result.GapBlocked, FilterRecord{
			CaseID: c.ID,
			Reason: fmt.Sprintf("last heard %d days ago, minimum gap %d",
				c.DaysSinceLastHearing(today), a.options.MinGapDays),
		})
	}
	result.TotalEligible = len(eligible)

	// Step 5: policy ordering
	if aware, ok := a.pol.(policy.ContextAware); ok {
		aware.SetDayContext(a.dayContext(courtrooms, today))
	}
	ordered := a.pol.Prioritize(eligible, today)

	// Step 6: overrides
	poolByID := make(map[string]*models.Case, len(pool))
	for _, c := range pool {
		poolByID[c.ID] = c
	}
	roomIDs := make(map[int]bool, len(courtrooms))
	for _, room := range courtrooms {
		roomIDs[room.ID] = true
	}
	ovResult := a.applier.Apply(ordered, poolByID, roomIDs, ovs)
	result.OverridesApplied = ovResult.Applied
	result.OverridesRejected = ovResult.Rejections

	// Invariant check before allocation: no disposed cases, no duplicates
	candidates := make([]*models.Case, 0, len(ovResult.Candidates))
	seen := make(map[string]bool, len(ovResult.Candidates))
	for _, c := range ovResult.Candidates {
		switch {
		case c.IsDisposed():
			if err := a.violate(result, c.ID, "disposed case reached allocation"); err != nil {
				return nil, err
			}
		case seen[c.ID]:
			if err := a.violate(result, c.ID, "case appears twice in the candidate list"); err != nil {
				return nil, err
			}
		default:
			seen[c.ID] = true
			candidates = append(candidates, c)
		}
	}

	// Step 7: allocation
	alloc := a.alloc.Allocate(candidates, courtrooms, today, ovResult.CapacityOverlay)
	for _, c := range alloc.CapacityLimited {
		result.CapacityLimited = append(result.CapacityLimited, FilterRecord{
			CaseID: c.ID,
			Reason: "all courtrooms at capacity",
		})
	}

	// Step 8: mark scheduled and explain
	result.Assignments = alloc.ByCourtroom
	for _, roomID := range result.CourtroomIDs() {
		for pos, c := range result.Assignments[roomID] {
			c.MarkScheduled(today)
			result.Explanations[c.ID] = explain(c, roomID, pos, a.pol.Name(), ovResult.ForcedRipe[c.ID])
			result.TotalScheduled++
		}
	}

	// Step 9: per-day overlays die with ovResult; nothing was persisted on
	// cases or courtrooms
	return result, nil
}

// dayContext builds the external scorer's day inputs
func (a *Algorithm) dayContext(courtrooms []*models.Courtroom, today time.Time) policy.DayContext {
	nominal, effective := 0, 0
	for _, room := range courtrooms {
		nominal += room.DailyCapacity
		effective += room.EffectiveCapacity(today)
	}
	ratio := 1.0
	if nominal > 0 {
		ratio = float64(effective) / float64(nominal)
	}
	return policy.DayContext{
		CapacityRatio: ratio,
		MinGapDays:    a.options.MinGapDays,
		PreferredType: a.options.PreferredType,
		HasPreference: a.options.HasPreference,
	}
}

// violate handles an invariant violation per the strictness option
func (a *Algorithm) violate(result *SchedulingResult, caseID, detail string) error {
	if a.options.StrictInvariants {
		return &InvariantViolationError{CaseID: caseID, Detail: detail}
	}
	a.invariantSkips.Add(1)
	result.InvariantSkips++
	return nil
}
