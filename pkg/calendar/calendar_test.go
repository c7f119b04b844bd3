package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Calendar requirements:
// - Weekends and listed holidays are non-working
// - NextWorkingDay skips weekends and holidays
// - Seasonality factors default to 1.0 for unlisted months

func TestWeekendsAreNonWorking(t *testing.T) {
	c := NewCourtCalendar(nil)

	saturday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	assert.False(t, c.IsWorkingDay(saturday))
	assert.False(t, c.IsWorkingDay(sunday))
	assert.True(t, c.IsWorkingDay(monday))
}

func TestHolidays(t *testing.T) {
	holiday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	c := NewCourtCalendar([]time.Time{holiday})

	assert.False(t, c.IsWorkingDay(holiday))
	assert.True(t, c.IsWorkingDay(holiday.AddDate(0, 0, 1)))
}

func TestNextWorkingDay(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	c := NewCourtCalendar([]time.Time{monday})

	friday := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	// Saturday, Sunday and the Monday holiday are all skipped
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), c.NextWorkingDay(friday))
}

func TestWorkingDaysBetween(t *testing.T) {
	c := NewCourtCalendar(nil)
	// Monday through the next Monday, end exclusive
	from := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, c.WorkingDaysBetween(from, to))
	assert.Equal(t, 0, c.WorkingDaysBetween(to, from))
}

func TestSeasonality(t *testing.T) {
	c := NewCourtCalendar(nil)

	may := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 0.60, c.SeasonalityFactor(may), 1e-12)

	assert.Equal(t, 90, c.SeasonalCapacity(150, may))
	assert.Equal(t, 1, c.SeasonalCapacity(1, may))
	assert.Equal(t, 0, c.SeasonalCapacity(0, may))
}

func TestFuncCalendar(t *testing.T) {
	every := EveryDay()
	assert.True(t, every.IsWorkingDay(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))

	weekdaysOnly := FuncCalendar(func(d time.Time) bool {
		return d.Weekday() != time.Saturday && d.Weekday() != time.Sunday
	})
	assert.False(t, weekdaysOnly.IsWorkingDay(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}
