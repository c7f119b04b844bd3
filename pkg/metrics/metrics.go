package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/allocator"
)

// DayMetrics holds the counters for one simulated day
type DayMetrics struct {
	Date              time.Time   `json:"date"`
	Scheduled         int         `json:"scheduled"`
	Heard             int         `json:"heard"`
	Adjourned         int         `json:"adjourned"`
	Disposed          int         `json:"disposed"`
	Filed             int         `json:"filed"`
	UnripeFiltered    int         `json:"unripe_filtered"`
	GapBlocked        int         `json:"gap_blocked"`
	CapacityLimited   int         `json:"capacity_limited"`
	DisposedSkipped   int         `json:"disposed_skipped"`
	OverridesApplied  int         `json:"overrides_applied"`
	OverridesRejected int         `json:"overrides_rejected"`
	PendingPool       int         `json:"pending_pool"`
	PerCourtroom      map[int]int `json:"per_courtroom"`
	Utilization       float64     `json:"utilization"`
}

// Summary is the finalization pass over a run's accumulated days
type Summary struct {
	DaysCompleted     int     `json:"days_completed"`
	InitialPopulation int     `json:"initial_population"`
	TotalInflow       int     `json:"total_inflow"`
	TotalScheduled    int     `json:"total_scheduled"`
	TotalHeard        int     `json:"total_heard"`
	TotalAdjourned    int     `json:"total_adjourned"`
	TotalDisposed     int     `json:"total_disposed"`
	UnripeFiltered    int     `json:"unripe_filtered"`
	GapBlocked        int     `json:"gap_blocked"`
	CapacityLimited   int     `json:"capacity_limited"`
	OverridesApplied  int     `json:"overrides_applied"`
	OverridesRejected int     `json:"overrides_rejected"`
	DisposalRate      float64 `json:"disposal_rate"`
	AdjournmentRate   float64 `json:"adjournment_rate"`
	Utilization       float64 `json:"utilization"`
	LoadBalanceGini   float64 `json:"load_balance_gini"`
	CaseCoverage      float64 `json:"case_coverage"`
	ParameterMisses   int64   `json:"parameter_misses"`
	ClampWarnings     int64   `json:"clamp_warnings"`
	InvariantSkips    int64   `json:"invariant_skips"`
	Partial           bool    `json:"partial"`
}

// Collector accumulates per-day metrics and computes the run summary.
// Copies out on every read so consumers never see internal state.
type Collector struct {
	mu sync.RWMutex

	initialPopulation int
	days              []DayMetrics
	courtroomTotals   map[int]int
	scheduledEver     map[string]bool
	totalInflow       int

	// Utilization denominator: the bench's total nominal daily capacity
	nominalCapacity int
}

// NewCollector creates a collector for a run over the given bench
func NewCollector(initialPopulation, nominalCapacity int) *Collector {
	return &Collector{
		initialPopulation: initialPopulation,
		courtroomTotals:   make(map[int]int),
		scheduledEver:     make(map[string]bool),
		nominalCapacity:   nominalCapacity,
	}
}

// Observe records one day's metrics and the ids scheduled that day
func (c *Collector) Observe(day DayMetrics, scheduledIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nominalCapacity > 0 {
		day.Utilization = float64(day.Scheduled) / float64(c.nominalCapacity)
	}

	c.days = append(c.days, day)
	c.totalInflow += day.Filed
	for id, count := range day.PerCourtroom {
		c.courtroomTotals[id] += count
	}
	for _, id := range scheduledIDs {
		c.scheduledEver[id] = true
	}
}

// Days returns a copy of the accumulated day metrics in order
func (c *Collector) Days() []DayMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]DayMetrics, len(c.days))
	copy(out, c.days)
	return out
}

// CourtroomTotals returns per-courtroom totals across the horizon
func (c *Collector) CourtroomTotals() map[int]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int]int, len(c.courtroomTotals))
	for id, n := range c.courtroomTotals {
		out[id] = n
	}
	return out
}

// FinalizeInput carries the run-level counters the collector cannot see
type FinalizeInput struct {
	ParameterMisses int64
	ClampWarnings   int64
	InvariantSkips  int64
	Partial         bool
}

// Finalize computes the aggregate rates over the days observed so far.
// Safe to call after a cancelled run; Partial marks the summary.
func (c *Collector) Finalize(in FinalizeInput) Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Summary{
		DaysCompleted:     len(c.days),
		InitialPopulation: c.initialPopulation,
		TotalInflow:       c.totalInflow,
		ParameterMisses:   in.ParameterMisses,
		ClampWarnings:     in.ClampWarnings,
		InvariantSkips:    in.InvariantSkips,
		Partial:           in.Partial,
	}

	utilizationSum := 0.0
	for _, d := range c.days {
		s.TotalScheduled += d.Scheduled
		s.TotalHeard += d.Heard
		s.TotalAdjourned += d.Adjourned
		s.TotalDisposed += d.Disposed
		s.UnripeFiltered += d.UnripeFiltered
		s.GapBlocked += d.GapBlocked
		s.CapacityLimited += d.CapacityLimited
		s.OverridesApplied += d.OverridesApplied
		s.OverridesRejected += d.OverridesRejected
		utilizationSum += d.Utilization
	}

	if c.initialPopulation > 0 {
		s.DisposalRate = float64(s.TotalDisposed) / float64(c.initialPopulation)
	}
	if s.TotalHeard+s.TotalAdjourned > 0 {
		s.AdjournmentRate = float64(s.TotalAdjourned) / float64(s.TotalHeard+s.TotalAdjourned)
	}
	if len(c.days) > 0 {
		s.Utilization = utilizationSum / float64(len(c.days))
	}

	ids := make([]int, 0, len(c.courtroomTotals))
	for id := range c.courtroomTotals {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	counts := make([]int, len(ids))
	for i, id := range ids {
		counts[i] = c.courtroomTotals[id]
	}
	s.LoadBalanceGini = allocator.Gini(counts)

	population := c.initialPopulation + c.totalInflow
	if population > 0 {
		s.CaseCoverage = float64(len(c.scheduledEver)) / float64(population)
	}

	return s
}

// CoverageCount returns how many distinct cases were scheduled at least
// once
func (c *Collector) CoverageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scheduledEver)
}
