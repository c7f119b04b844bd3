package calendar

import (
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// The court sits roughly 192 days a year once weekends, holidays and
// vacation benches are accounted for. The default calendar approximates
// that with weekends plus a fixed holiday list.
const WorkingDaysPerYear = 192

// Calendar answers whether the court sits on a given day. Shared read-only
// across a run.
type Calendar interface {
	IsWorkingDay(date time.Time) bool
}

// CourtCalendar is the default calendar: Monday to Friday minus holidays,
// with monthly seasonality factors for filing volume and capacity.
type CourtCalendar struct {
	holidays    map[int64]bool
	seasonality map[time.Month]float64
}

// DefaultSeasonality returns the monthly filing seasonality factors fitted
// from the historical data. May and December dip for court vacations.
func DefaultSeasonality() map[time.Month]float64 {
	return map[time.Month]float64{
		time.January:   1.05,
		time.February:  1.10,
		time.March:     1.15,
		time.April:     1.00,
		time.May:       0.60,
		time.June:      1.00,
		time.July:      1.10,
		time.August:    1.05,
		time.September: 1.00,
		time.October:   0.90,
		time.November:  1.00,
		time.December:  0.70,
	}
}

// NewCourtCalendar creates a calendar with the given holidays and the
// default seasonality factors
func NewCourtCalendar(holidays []time.Time) *CourtCalendar {
	c := &CourtCalendar{
		holidays:    make(map[int64]bool, len(holidays)),
		seasonality: DefaultSeasonality(),
	}
	for _, h := range holidays {
		c.holidays[models.DateOrdinal(h)] = true
	}
	return c
}

// IsWorkingDay reports whether the court sits on the given date
func (c *CourtCalendar) IsWorkingDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.holidays[models.DateOrdinal(date)]
}

// NextWorkingDay returns the first working day strictly after date
func (c *CourtCalendar) NextWorkingDay(date time.Time) time.Time {
	d := models.Day(date).AddDate(0, 0, 1)
	for !c.IsWorkingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// WorkingDaysBetween counts working days in [from, to)
func (c *CourtCalendar) WorkingDaysBetween(from, to time.Time) int {
	count := 0
	for d := models.Day(from); d.Before(models.Day(to)); d = d.AddDate(0, 0, 1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// SeasonalityFactor returns the filing-volume multiplier for the date's month
func (c *CourtCalendar) SeasonalityFactor(date time.Time) float64 {
	if f, ok := c.seasonality[date.Month()]; ok {
		return f
	}
	return 1.0
}

// SeasonalCapacity scales a nominal capacity by the month's factor,
// never dropping below 1 for a positive nominal capacity
func (c *CourtCalendar) SeasonalCapacity(nominal int, date time.Time) int {
	if nominal <= 0 {
		return nominal
	}
	scaled := int(float64(nominal) * c.SeasonalityFactor(date))
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

// FuncCalendar adapts a predicate to the Calendar interface
type FuncCalendar func(time.Time) bool

// IsWorkingDay reports whether the predicate accepts the date
func (f FuncCalendar) IsWorkingDay(date time.Time) bool {
	return f(date)
}

// EveryDay is a calendar on which the court always sits. Used by tests and
// closed-population experiments.
func EveryDay() Calendar {
	return FuncCalendar(func(time.Time) bool { return true })
}
