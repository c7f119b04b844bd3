package params

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync/atomic"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// Probability tolerance for distribution validation at load time
const ProbabilityTolerance = 1e-6

// Default distribution used on a parameter miss: the case stays in its
// stage with probability 0.9 and the remaining 0.1 is spread uniformly
// over the successors known for that stage across all case types.
const (
	DefaultSelfLoopProbability = 0.9
	DefaultTailProbability     = 0.1
)

// Percentile selects which duration column a lookup reads
type Percentile string

const (
	PercentileMedian Percentile = "median"
	PercentileP90    Percentile = "p90"
)

// IsValid checks if a Percentile is valid
func (p Percentile) IsValid() bool {
	return p == PercentileMedian || p == PercentileP90
}

// Distribution is a discrete distribution over next stages. Stages are kept
// sorted so cumulative sampling is deterministic.
type Distribution struct {
	Stages []models.Stage
	Probs  []float64
}

// NewDistribution builds a distribution from a stage-probability map
func NewDistribution(probs map[models.Stage]float64) Distribution {
	stages := make([]models.Stage, 0, len(probs))
	for s := range probs {
		stages = append(stages, s)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })

	d := Distribution{Stages: stages, Probs: make([]float64, len(stages))}
	for i, s := range stages {
		d.Probs[i] = probs[s]
	}
	return d
}

// Sum returns the total probability mass
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, p := range d.Probs {
		total += p
	}
	return total
}

// Sample maps a uniform draw u in [0,1) to a stage by cumulative mass.
// When u lands beyond the accumulated mass (a numerical shortfall) the draw
// clamps to the last stage and clamped reports it.
func (d Distribution) Sample(u float64) (stage models.Stage, clamped bool) {
	cumulative := 0.0
	for i, p := range d.Probs {
		cumulative += p
		if u < cumulative {
			return d.Stages[i], false
		}
	}
	return d.Stages[len(d.Stages)-1], true
}

// StageDuration holds fitted day counts for time spent in a stage
type StageDuration struct {
	MedianDays int `json:"median_days"`
	P90Days    int `json:"p90_days"`
}

// TypeStats holds per-case-type summary statistics from the fitted data
type TypeStats struct {
	MedianHearings int     `json:"median_hearings"`
	MedianGapDays  float64 `json:"median_gap_days"`
	Share          float64 `json:"share"`
}

// TablesConfig is the JSON shape the parameter bundle is loaded from.
// Transition and adjournment rows are keyed by stage then case type.
type TablesConfig struct {
	Transitions  map[string]map[string]map[string]float64 `json:"transitions"`
	Durations    map[string]StageDuration                 `json:"durations"`
	Adjournments map[string]map[string]float64            `json:"adjournments"`
	TypeStats    map[string]TypeStats                     `json:"type_stats"`
	Capacity     CapacityConfig                           `json:"capacity"`
}

// CapacityConfig holds the fitted daily capacity per courtroom
type CapacityConfig struct {
	NominalDaily int `json:"nominal_daily"`
	P90Daily     int `json:"p90_daily"`
}

type stageTypeKey struct {
	stage    models.Stage
	caseType models.CaseType
}

// Tables is the immutable parameter bundle shared read-only across a run.
// Lookups fail closed: a miss substitutes the documented default and bumps
// the miss counter.
type Tables struct {
	transitions  map[stageTypeKey]Distribution
	durations    map[models.Stage]StageDuration
	adjournments map[stageTypeKey]float64
	typeStats    map[models.CaseType]TypeStats
	capacity     CapacityConfig

	// Defaults precomputed per stage from the successors seen across types
	defaults map[models.Stage]Distribution

	transitionMisses  atomic.Int64
	adjournmentMisses atomic.Int64
	durationMisses    atomic.Int64
	typeStatMisses    atomic.Int64
}

// LoadTablesFromFile reads a parameter bundle from a JSON file
func LoadTablesFromFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}
	var cfg TablesConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse parameter file: %w", err)
	}
	return NewTables(cfg)
}

// NewTables validates and indexes a parameter bundle. Each transition
// distribution must sum to 1 within tolerance and every adjournment
// probability must lie in [0,1].
func NewTables(cfg TablesConfig) (*Tables, error) {
	t := &Tables{
		transitions:  make(map[stageTypeKey]Distribution),
		durations:    make(map[models.Stage]StageDuration),
		adjournments: make(map[stageTypeKey]float64),
		typeStats:    make(map[models.CaseType]TypeStats),
		defaults:     make(map[models.Stage]Distribution),
		capacity:     cfg.Capacity,
	}

	successors := make(map[models.Stage]map[models.Stage]bool)

	for stageName, byType := range cfg.Transitions {
		stage := models.Stage(stageName)
		if !stage.IsValid() {
			return nil, fmt.Errorf("transition table references unknown stage %q", stageName)
		}
		for typeName, probs := range byType {
			caseType := models.CaseType(typeName)
			if !caseType.IsValid() {
				return nil, fmt.Errorf("transition table references unknown case type %q", typeName)
			}

			byStage := make(map[models.Stage]float64, len(probs))
			for nextName, p := range probs {
				next := models.Stage(nextName)
				if !next.IsValid() {
					return nil, fmt.Errorf("transition %s/%s references unknown next stage %q",
						stageName, typeName, nextName)
				}
				if p < 0 {
					return nil, fmt.Errorf("transition %s/%s has negative probability for %q",
						stageName, typeName, nextName)
				}
				byStage[next] = p
				if successors[stage] == nil {
					successors[stage] = make(map[models.Stage]bool)
				}
				successors[stage][next] = true
			}

			dist := NewDistribution(byStage)
			if math.Abs(dist.Sum()-1.0) > ProbabilityTolerance {
				return nil, fmt.Errorf("transition %s/%s probabilities sum to %.9f, expected 1",
					stageName, typeName, dist.Sum())
			}
			t.transitions[stageTypeKey{stage, caseType}] = dist
		}
	}

	for stageName, d := range cfg.Durations {
		stage := models.Stage(stageName)
		if !stage.IsValid() {
			return nil, fmt.Errorf("duration table references unknown stage %q", stageName)
		}
		if d.MedianDays < 0 || d.P90Days < 0 {
			return nil, fmt.Errorf("duration table has negative days for stage %q", stageName)
		}
		t.durations[stage] = d
	}

	for stageName, byType := range cfg.Adjournments {
		stage := models.Stage(stageName)
		if !stage.IsValid() {
			return nil, fmt.Errorf("adjournment table references unknown stage %q", stageName)
		}
		for typeName, p := range byType {
			caseType := models.CaseType(typeName)
			if !caseType.IsValid() {
				return nil, fmt.Errorf("adjournment table references unknown case type %q", typeName)
			}
			if p < 0 || p > 1 {
				return nil, fmt.Errorf("adjournment probability %s/%s out of range: %f",
					stageName, typeName, p)
			}
			t.adjournments[stageTypeKey{stage, caseType}] = p
		}
	}

	for typeName, ts := range cfg.TypeStats {
		caseType := models.CaseType(typeName)
		if !caseType.IsValid() {
			return nil, fmt.Errorf("type stats reference unknown case type %q", typeName)
		}
		t.typeStats[caseType] = ts
	}

	if t.capacity.NominalDaily < 0 {
		return nil, fmt.Errorf("nominal daily capacity cannot be negative: %d", t.capacity.NominalDaily)
	}

	for stage, nexts := range successors {
		t.defaults[stage] = buildDefaultDistribution(stage, nexts)
	}

	return t, nil
}

// buildDefaultDistribution spreads the tail mass uniformly over the known
// successors other than the stage itself. A stage with no other successors
// self-loops with certainty.
func buildDefaultDistribution(stage models.Stage, successors map[models.Stage]bool) Distribution {
	others := make([]models.Stage, 0, len(successors))
	for s := range successors {
		if s != stage {
			others = append(others, s)
		}
	}
	if len(others) == 0 {
		return NewDistribution(map[models.Stage]float64{stage: 1.0})
	}

	probs := make(map[models.Stage]float64, len(others)+1)
	probs[stage] = DefaultSelfLoopProbability
	tail := DefaultTailProbability / float64(len(others))
	for _, s := range others {
		probs[s] = tail
	}
	return NewDistribution(probs)
}

// Transition returns the next-stage distribution for a (stage, type) pair.
// hit is false when the default distribution was substituted.
func (t *Tables) Transition(stage models.Stage, caseType models.CaseType) (dist Distribution, hit bool) {
	if d, ok := t.transitions[stageTypeKey{stage, caseType}]; ok {
		return d, true
	}
	t.transitionMisses.Add(1)
	if d, ok := t.defaults[stage]; ok {
		return d, false
	}
	return NewDistribution(map[models.Stage]float64{stage: 1.0}), false
}

// Duration returns the day count for a stage at the given percentile.
// A miss substitutes zero days and is counted.
func (t *Tables) Duration(stage models.Stage, percentile Percentile) int {
	d, ok := t.durations[stage]
	if !ok {
		t.durationMisses.Add(1)
		return 0
	}
	if percentile == PercentileP90 {
		return d.P90Days
	}
	return d.MedianDays
}

// Adjournment returns the adjournment probability for a (stage, type) pair.
// A miss substitutes the global mean of the loaded table and is counted.
func (t *Tables) Adjournment(stage models.Stage, caseType models.CaseType) float64 {
	if p, ok := t.adjournments[stageTypeKey{stage, caseType}]; ok {
		return p
	}
	t.adjournmentMisses.Add(1)
	if len(t.adjournments) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range t.adjournments {
		total += p
	}
	return total / float64(len(t.adjournments))
}

// TypeStatsFor returns the summary statistics for a case type.
// A miss substitutes zeroes and is counted.
func (t *Tables) TypeStatsFor(caseType models.CaseType) TypeStats {
	ts, ok := t.typeStats[caseType]
	if !ok {
		t.typeStatMisses.Add(1)
		return TypeStats{}
	}
	return ts
}

// Capacity returns the nominal daily capacity per courtroom
func (t *Tables) Capacity() int {
	return t.capacity.NominalDaily
}

// CapacityP90 returns the high-percentile daily capacity per courtroom
func (t *Tables) CapacityP90() int {
	return t.capacity.P90Daily
}

// MissCounts summarises fail-closed lookups since load
type MissCounts struct {
	Transitions  int64 `json:"transitions"`
	Adjournments int64 `json:"adjournments"`
	Durations    int64 `json:"durations"`
	TypeStats    int64 `json:"type_stats"`
}

// Total returns the total number of misses
func (m MissCounts) Total() int64 {
	return m.Transitions + m.Adjournments + m.Durations + m.TypeStats
}

// Misses returns the current miss counters
func (t *Tables) Misses() MissCounts {
	return MissCounts{
		Transitions:  t.transitionMisses.Load(),
		Adjournments: t.adjournmentMisses.Load(),
		Durations:    t.durationMisses.Load(),
		TypeStats:    t.typeStatMisses.Load(),
	}
}
