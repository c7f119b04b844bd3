package policy

import (
	"fmt"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// FeatureCount is the length of the fixed feature vector handed to an
// external scorer
const FeatureCount = 9

// Feature vector positions
const (
	FeatureStageIndex = iota
	FeatureAgeDays
	FeatureDaysSinceLastHearing
	FeatureUrgency
	FeatureRipe
	FeatureHearingCount
	FeatureCapacityRatio
	FeatureMinGapDays
	FeaturePreferenceScore
)

// ScoreFunc is an opaque scoring function over the fixed feature vector.
// Higher scores are scheduled earlier.
type ScoreFunc func(features []float64) float64

// ScorerPolicy orders cases by an externally supplied scoring function.
// The training harness that produces such functions lives outside the
// core; here they are opaque values.
type ScorerPolicy struct {
	score ScoreFunc
	ctx   DayContext
}

// NewScorerPolicy creates an external-scorer policy
func NewScorerPolicy(score ScoreFunc) (*ScorerPolicy, error) {
	if score == nil {
		return nil, fmt.Errorf("external policy requires a scoring function")
	}
	return &ScorerPolicy{score: score}, nil
}

// Name returns the policy name
func (p *ScorerPolicy) Name() string {
	return "external"
}

// SetDayContext installs the day's capacity and preference inputs
func (p *ScorerPolicy) SetDayContext(ctx DayContext) {
	p.ctx = ctx
}

// Features builds the fixed feature vector for a case on a day
func (p *ScorerPolicy) Features(c *models.Case, today time.Time) []float64 {
	f := make([]float64, FeatureCount)
	f[FeatureStageIndex] = float64(c.CurrentStage.Index())
	f[FeatureAgeDays] = float64(c.AgeDays)
	f[FeatureDaysSinceLastHearing] = float64(c.DaysSinceLastHearing(today))
	if c.IsUrgent {
		f[FeatureUrgency] = 1
	}
	if c.Ripeness.Status.IsRipe() {
		f[FeatureRipe] = 1
	}
	f[FeatureHearingCount] = float64(c.HearingCount)
	f[FeatureCapacityRatio] = p.ctx.CapacityRatio
	f[FeatureMinGapDays] = float64(p.ctx.MinGapDays)
	if p.ctx.HasPreference && c.Type == p.ctx.PreferredType {
		f[FeaturePreferenceScore] = 1
	}
	return f
}

// Prioritize orders by the external score descending, caching the score as
// the case's priority, with the standard tie-break
func (p *ScorerPolicy) Prioritize(cases []*models.Case, today time.Time) []*models.Case {
	for _, c := range cases {
		c.PriorityScore = p.score(p.Features(c, today))
	}
	return sortStable(cases, func(a, b *models.Case) bool {
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		return a.TieBreakLess(b)
	})
}

// NewLinearScorer builds a scoring function as a dot product over the
// feature vector. Weight vectors typically come from an offline fit.
func NewLinearScorer(weights []float64) (ScoreFunc, error) {
	if len(weights) != FeatureCount {
		return nil, fmt.Errorf("linear scorer needs %d weights, got %d", FeatureCount, len(weights))
	}
	w := make([]float64, FeatureCount)
	copy(w, weights)
	return func(features []float64) float64 {
		total := 0.0
		for i := 0; i < FeatureCount && i < len(features); i++ {
			total += w[i] * features[i]
		}
		return total
	}, nil
}

// newExternalFromParams builds an external policy from registry params.
// Accepts either a "score" function value or a "weights" slice for the
// linear form.
func newExternalFromParams(params map[string]interface{}) (Policy, error) {
	if fn, ok := params["score"].(ScoreFunc); ok {
		return NewScorerPolicy(fn)
	}
	if fn, ok := params["score"].(func([]float64) float64); ok {
		return NewScorerPolicy(fn)
	}
	if raw, ok := params["weights"]; ok {
		weights, err := toFloatSlice(raw)
		if err != nil {
			return nil, err
		}
		score, err := NewLinearScorer(weights)
		if err != nil {
			return nil, err
		}
		return NewScorerPolicy(score)
	}
	return nil, fmt.Errorf("external policy requires a 'score' function or 'weights' parameter")
}

func toFloatSlice(raw interface{}) ([]float64, error) {
	switch v := raw.(type) {
	case []float64:
		return v, nil
	case []interface{}:
		out := make([]float64, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("weight %d is not a number", i)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("weights must be a numeric slice")
	}
}
