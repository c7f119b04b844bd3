package models

import "time"

// Courtroom represents a courtroom with a bounded daily hearing capacity
type Courtroom struct {
	ID              int    `json:"id"`
	Name            string `json:"name,omitempty"`
	DailyCapacity   int    `json:"daily_capacity"`
	capacityByDate  map[int64]int
	scheduledByDate map[int64][]string
}

// NewCourtroom creates a courtroom with the given nominal capacity
func NewCourtroom(id int, name string, dailyCapacity int) *Courtroom {
	return &Courtroom{
		ID:              id,
		Name:            name,
		DailyCapacity:   dailyCapacity,
		capacityByDate:  make(map[int64]int),
		scheduledByDate: make(map[int64][]string),
	}
}

// Validate performs validation on the courtroom
func (cr *Courtroom) Validate() ValidationErrors {
	var errors ValidationErrors

	errors.AddIf(cr.ID < 0, "id", cr.ID, "courtroom id cannot be negative")
	errors.AddIf(cr.DailyCapacity < 0, "daily_capacity", cr.DailyCapacity,
		"daily capacity cannot be negative")

	return errors
}

// EffectiveCapacity returns the capacity for a date, honouring any per-date
// override
func (cr *Courtroom) EffectiveCapacity(date time.Time) int {
	if cap, ok := cr.capacityByDate[DateOrdinal(date)]; ok {
		return cap
	}
	return cr.DailyCapacity
}

// SetCapacityOverride sets the capacity for a single date
func (cr *Courtroom) SetCapacityOverride(date time.Time, capacity int) {
	cr.capacityByDate[DateOrdinal(date)] = capacity
}

// ClearCapacityOverride removes a per-date capacity override
func (cr *Courtroom) ClearCapacityOverride(date time.Time) {
	delete(cr.capacityByDate, DateOrdinal(date))
}

// ScheduledCount returns the number of cases scheduled for a date
func (cr *Courtroom) ScheduledCount(date time.Time) int {
	return len(cr.scheduledByDate[DateOrdinal(date)])
}

// ScheduledCases returns a copy of the case ids scheduled for a date,
// in scheduling order
func (cr *Courtroom) ScheduledCases(date time.Time) []string {
	ids := cr.scheduledByDate[DateOrdinal(date)]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// HasSpace checks whether the courtroom can accept another case on a date
func (cr *Courtroom) HasSpace(date time.Time) bool {
	return cr.ScheduledCount(date) < cr.EffectiveCapacity(date)
}

// Schedule appends a case to the date's list. Returns false when the
// courtroom is at effective capacity.
func (cr *Courtroom) Schedule(caseID string, date time.Time) bool {
	if !cr.HasSpace(date) {
		return false
	}
	ord := DateOrdinal(date)
	cr.scheduledByDate[ord] = append(cr.scheduledByDate[ord], caseID)
	return true
}

// ResetDay clears the scheduled list for a date. Called by the engine at
// the start of each simulated day.
func (cr *Courtroom) ResetDay(date time.Time) {
	delete(cr.scheduledByDate, DateOrdinal(date))
}
