package backlog

import (
	"sync"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// State classifies the pending pool relative to daily throughput
type State string

const (
	StateEmpty    State = "empty"
	StateLow      State = "low"
	StateNormal   State = "normal"
	StateHigh     State = "high"
	StateCritical State = "critical"
)

// Pressure thresholds in days of backlog at current throughput
const (
	lowPressureDays      = 30.0
	normalPressureDays   = 180.0
	highPressureDays     = 720.0
	defaultHistoryLength = 365
)

// Snapshot is one day's view of the pending pool
type Snapshot struct {
	Date      time.Time `json:"date"`
	Pending   int       `json:"pending"`
	Scheduled int       `json:"scheduled"`
	Disposed  int       `json:"disposed"`
	Filed     int       `json:"filed"`
}

// Tracker observes the pending pool once per simulated day and derives
// depth, velocity and pressure. Velocity above zero means the backlog is
// growing faster than the court disposes.
type Tracker struct {
	mu         sync.RWMutex
	history    []Snapshot
	maxHistory int
}

// NewTracker creates a tracker keeping a year of daily history
func NewTracker() *Tracker {
	return &Tracker{maxHistory: defaultHistoryLength}
}

// Observe appends a day's snapshot, trimming history beyond the window
func (t *Tracker) Observe(date time.Time, pending, scheduled, disposed, filed int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, Snapshot{
		Date:      models.Day(date),
		Pending:   pending,
		Scheduled: scheduled,
		Disposed:  disposed,
		Filed:     filed,
	})
	if len(t.history) > t.maxHistory {
		t.history = t.history[len(t.history)-t.maxHistory:]
	}
}

// Depth returns the latest pending-pool size
func (t *Tracker) Depth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.history) == 0 {
		return 0
	}
	return t.history[len(t.history)-1].Pending
}

// Velocity returns pending-pool growth in cases per day over the last
// week of observations
func (t *Tracker) Velocity() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.velocityLocked(7)
}

// Acceleration returns the change in velocity, comparing the last week to
// the week before it
func (t *Tracker) Acceleration() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	recent := t.velocityLocked(7)
	if len(t.history) < 9 {
		return 0
	}
	earlier := t.velocityWindowLocked(len(t.history)-8, 7)
	return recent - earlier
}

func (t *Tracker) velocityLocked(window int) float64 {
	return t.velocityWindowLocked(len(t.history)-1, window)
}

// velocityWindowLocked measures growth per day ending at history index end
func (t *Tracker) velocityWindowLocked(end, window int) float64 {
	if end < 1 || end >= len(t.history) {
		if end >= len(t.history) {
			end = len(t.history) - 1
		}
		if end < 1 {
			return 0
		}
	}
	start := end - window
	if start < 0 {
		start = 0
	}
	days := models.DaysBetween(t.history[start].Date, t.history[end].Date)
	if days <= 0 {
		return 0
	}
	return float64(t.history[end].Pending-t.history[start].Pending) / float64(days)
}

// PressureDays estimates how many days of full-capacity sittings the
// current backlog represents
func (t *Tracker) PressureDays(dailyThroughput int) float64 {
	if dailyThroughput <= 0 {
		return 0
	}
	return float64(t.Depth()) / float64(dailyThroughput)
}

// Classify maps the current pressure to a backlog state
func (t *Tracker) Classify(dailyThroughput int) State {
	depth := t.Depth()
	if depth == 0 {
		return StateEmpty
	}
	pressure := t.PressureDays(dailyThroughput)
	switch {
	case pressure <= lowPressureDays:
		return StateLow
	case pressure <= normalPressureDays:
		return StateNormal
	case pressure <= highPressureDays:
		return StateHigh
	default:
		return StateCritical
	}
}

// History returns a copy of the retained snapshots
func (t *Tracker) History() []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Snapshot, len(t.history))
	copy(out, t.history)
	return out
}
