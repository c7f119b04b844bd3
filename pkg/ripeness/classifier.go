package ripeness

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// Purpose keywords mapped to bottleneck kinds. The last hearing purpose is
// free text; matching is case-insensitive substring containment.
var (
	summonsKeywords   = []string{"summons", "notice"}
	dependentKeywords = []string{"stay", "pending"}
	documentKeywords  = []string{"document", "record"}
)

// Thresholds bundles the classifier's calibration knobs
type Thresholds struct {
	MinServiceHearings int `json:"min_service_hearings"`
	StuckHearingCount  int `json:"stuck_hearing_count"`
	StuckAvgGapDays    int `json:"stuck_avg_gap_days"`
}

// DefaultThresholds returns the thresholds calibrated on the historical data
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinServiceHearings: 2,
		StuckHearingCount:  20,
		StuckAvgGapDays:    90,
	}
}

// Validate performs validation on the thresholds
func (t Thresholds) Validate() models.ValidationErrors {
	var errors models.ValidationErrors

	errors.AddIf(t.MinServiceHearings < 0, "min_service_hearings",
		t.MinServiceHearings, "cannot be negative")
	errors.AddIf(t.StuckHearingCount < 0, "stuck_hearing_count",
		t.StuckHearingCount, "cannot be negative")
	errors.AddIf(t.StuckAvgGapDays < 0, "stuck_avg_gap_days",
		t.StuckAvgGapDays, "cannot be negative")

	return errors
}

// Verdict is a ripeness decision for a case on a day. The classifier
// returns verdicts; the engine writes them onto cases.
type Verdict struct {
	Status models.RipenessStatus `json:"status"`
	Reason string                `json:"reason"`
}

// IsRipe reports whether the verdict admits the case to scheduling
func (v Verdict) IsRipe() bool {
	return v.Status.IsRipe()
}

// Classifier maps a case and a date to a ripeness verdict. In strict mode
// the fallthrough verdict is unknown instead of ripe, so cases the rules
// cannot place are filtered rather than admitted.
type Classifier struct {
	mu         sync.RWMutex
	thresholds Thresholds
	strict     bool
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(thresholds Thresholds, strict bool) (*Classifier, error) {
	if errs := thresholds.Validate(); errs.HasErrors() {
		return nil, fmt.Errorf("invalid ripeness thresholds: %w", errs)
	}
	return &Classifier{thresholds: thresholds, strict: strict}, nil
}

// SetThresholds replaces the threshold bundle, for calibration between runs
func (cl *Classifier) SetThresholds(thresholds Thresholds) error {
	if errs := thresholds.Validate(); errs.HasErrors() {
		return fmt.Errorf("invalid ripeness thresholds: %w", errs)
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.thresholds = thresholds
	return nil
}

// GetThresholds returns the current threshold bundle
func (cl *Classifier) GetThresholds() Thresholds {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.thresholds
}

// Strict reports whether strict mode is enabled
func (cl *Classifier) Strict() bool {
	return cl.strict
}

// Classify applies the decision rules in order, first match wins:
// purpose keywords, early admission, stuck case, advanced stage, default.
func (cl *Classifier) Classify(c *models.Case, today time.Time) Verdict {
	cl.mu.RLock()
	th := cl.thresholds
	cl.mu.RUnlock()

	purpose := strings.ToLower(c.LastHearingPurpose)
	if purpose != "" {
		if containsAny(purpose, summonsKeywords) {
			return Verdict{models.UNRIPE_SUMMONS, "last hearing purpose indicates pending service"}
		}
		if containsAny(purpose, dependentKeywords) {
			return Verdict{models.UNRIPE_DEPENDENT, "blocked on a stay or a connected matter"}
		}
		if containsAny(purpose, documentKeywords) {
			return Verdict{models.UNRIPE_DOCUMENT, "records or documents outstanding"}
		}
	}

	if c.CurrentStage == models.StageAdmission && c.HearingCount < th.MinServiceHearings {
		return Verdict{models.UNRIPE_SUMMONS,
			fmt.Sprintf("admission stage with only %d hearings, service likely incomplete", c.HearingCount)}
	}

	if c.HearingCount > th.StuckHearingCount && c.MeanHearingGap() > float64(th.StuckAvgGapDays) {
		return Verdict{models.UNRIPE_PARTY,
			fmt.Sprintf("%d hearings with %.0f day average gap, parties not progressing", c.HearingCount, c.MeanHearingGap())}
	}

	if c.CurrentStage.IsAdvanced() {
		return Verdict{models.RIPE, fmt.Sprintf("advanced stage %s", c.CurrentStage)}
	}

	if cl.strict {
		return Verdict{models.UNKNOWN, "no rule matched"}
	}
	return Verdict{models.RIPE, "no bottleneck detected"}
}

// Schedulable is the engine's convenience check: the verdict admits the
// case, treating unknown as non-ripe in strict mode
func (cl *Classifier) Schedulable(c *models.Case, today time.Time) bool {
	return cl.Classify(c, today).IsRipe()
}

// RipeningETA estimates calendar days until a non-ripe case becomes ripe.
// A heuristic used only for reporting; ripe cases return 0 and unknowns -1.
func (cl *Classifier) RipeningETA(c *models.Case, today time.Time) int {
	verdict := cl.Classify(c, today)
	switch verdict.Status {
	case models.RIPE:
		return 0
	case models.UNRIPE_SUMMONS:
		cl.mu.RLock()
		missing := cl.thresholds.MinServiceHearings - c.HearingCount
		cl.mu.RUnlock()
		if missing < 1 {
			missing = 1
		}
		// Each outstanding service hearing costs roughly a listing cycle
		return missing * 30
	case models.UNRIPE_DOCUMENT:
		return 45
	case models.UNRIPE_DEPENDENT:
		return 120
	case models.UNRIPE_PARTY:
		gap := int(c.MeanHearingGap())
		if gap < 30 {
			gap = 30
		}
		return gap
	default:
		return -1
	}
}

// EvaluateAll classifies every case and writes the verdicts back.
// Disposed cases are skipped; their ripeness no longer matters.
func (cl *Classifier) EvaluateAll(cases []*models.Case, today time.Time) {
	for _, c := range cases {
		if c.IsDisposed() {
			continue
		}
		v := cl.Classify(c, today)
		c.SetRipeness(v.Status, v.Reason, today)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
