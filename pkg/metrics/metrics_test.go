package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Metrics requirements:
// - Disposal rate is disposed over initial population
// - Adjournment rate is adjourned over heard plus adjourned
// - Utilization is mean scheduled over bench capacity
// - Coverage is the fraction of the full population scheduled at least once
// - Gini runs over per-courtroom totals across the horizon
// - The event log is append-only with monotonically increasing sequence

type MetricsTestSuite struct {
	suite.Suite
	collector *Collector
	day       time.Time
}

func (s *MetricsTestSuite) SetupTest() {
	// 100 initial cases, a bench with total daily capacity 20
	s.collector = NewCollector(100, 20)
	s.day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
}

func (s *MetricsTestSuite) observe(day DayMetrics, ids ...string) {
	s.collector.Observe(day, ids)
}

func (s *MetricsTestSuite) TestRates() {
	s.observe(DayMetrics{
		Date: s.day, Scheduled: 10, Heard: 6, Adjourned: 3, Disposed: 1,
		PerCourtroom: map[int]int{1: 5, 2: 5},
	}, "A", "B")
	s.observe(DayMetrics{
		Date: s.day.AddDate(0, 0, 1), Scheduled: 10, Heard: 5, Adjourned: 4, Disposed: 1,
		PerCourtroom: map[int]int{1: 5, 2: 5},
	}, "C")

	summary := s.collector.Finalize(FinalizeInput{})

	assert.Equal(s.T(), 2, summary.DaysCompleted)
	assert.InDelta(s.T(), 2.0/100.0, summary.DisposalRate, 1e-12)
	assert.InDelta(s.T(), 7.0/18.0, summary.AdjournmentRate, 1e-12)
	assert.InDelta(s.T(), 0.5, summary.Utilization, 1e-12)
	assert.InDelta(s.T(), 0.0, summary.LoadBalanceGini, 1e-12)
	assert.InDelta(s.T(), 3.0/100.0, summary.CaseCoverage, 1e-12)
}

func (s *MetricsTestSuite) TestCoverageCountsDistinctCases() {
	s.observe(DayMetrics{Date: s.day, Scheduled: 2}, "A", "B")
	s.observe(DayMetrics{Date: s.day.AddDate(0, 0, 1), Scheduled: 2}, "A", "C")

	assert.Equal(s.T(), 3, s.collector.CoverageCount())
}

func (s *MetricsTestSuite) TestInflowGrowsCoverageDenominator() {
	s.observe(DayMetrics{Date: s.day, Scheduled: 1, Filed: 100}, "A")

	summary := s.collector.Finalize(FinalizeInput{})
	assert.Equal(s.T(), 100, summary.TotalInflow)
	assert.InDelta(s.T(), 1.0/200.0, summary.CaseCoverage, 1e-12)
}

func (s *MetricsTestSuite) TestUtilizationOnUnequalBench() {
	// Capacities {1, 2}: the denominator is the bench total of 3, so a
	// fully booked day sits at exactly 1.0
	collector := NewCollector(10, 3)
	collector.Observe(DayMetrics{Date: s.day, Scheduled: 3}, nil)

	summary := collector.Finalize(FinalizeInput{})
	assert.InDelta(s.T(), 1.0, summary.Utilization, 1e-12)
	assert.InDelta(s.T(), 1.0, collector.Days()[0].Utilization, 1e-12)
}

func (s *MetricsTestSuite) TestGiniOverSkewedCourtrooms() {
	s.observe(DayMetrics{Date: s.day, Scheduled: 10, PerCourtroom: map[int]int{1: 10, 2: 0}})

	summary := s.collector.Finalize(FinalizeInput{})
	assert.Greater(s.T(), summary.LoadBalanceGini, 0.0)
}

func (s *MetricsTestSuite) TestPartialAndCounters() {
	s.observe(DayMetrics{Date: s.day, Scheduled: 1, UnripeFiltered: 4, GapBlocked: 2,
		CapacityLimited: 3, OverridesApplied: 1, OverridesRejected: 2})

	summary := s.collector.Finalize(FinalizeInput{
		ParameterMisses: 7, ClampWarnings: 1, InvariantSkips: 2, Partial: true,
	})

	assert.True(s.T(), summary.Partial)
	assert.Equal(s.T(), int64(7), summary.ParameterMisses)
	assert.Equal(s.T(), int64(1), summary.ClampWarnings)
	assert.Equal(s.T(), int64(2), summary.InvariantSkips)
	assert.Equal(s.T(), 4, summary.UnripeFiltered)
	assert.Equal(s.T(), 2, summary.GapBlocked)
	assert.Equal(s.T(), 3, summary.CapacityLimited)
	assert.Equal(s.T(), 1, summary.OverridesApplied)
	assert.Equal(s.T(), 2, summary.OverridesRejected)
}

func (s *MetricsTestSuite) TestEmptyRunFinalizes() {
	summary := s.collector.Finalize(FinalizeInput{})

	assert.Equal(s.T(), 0, summary.DaysCompleted)
	assert.InDelta(s.T(), 0.0, summary.DisposalRate, 1e-12)
	assert.InDelta(s.T(), 0.0, summary.AdjournmentRate, 1e-12)
	assert.InDelta(s.T(), 0.0, summary.Utilization, 1e-12)
}

func TestMetricsTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func TestEventLogAppendOnly(t *testing.T) {
	log := NewEventLog()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	log.Emit(day, EventScheduled, "A", 1, "")
	log.Emit(day, EventHeard, "A", 1, "stage EVIDENCE to ARGUMENTS")
	log.Emit(day.AddDate(0, 0, 1), EventDisposed, "A", 2, "")

	events := log.Events()
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, int64(i), e.Seq)
	}
	assert.Equal(t, EventHeard, events[1].Type)

	// Mutating the returned copy never touches the log
	events[0].CaseID = "HACKED"
	assert.Equal(t, "A", log.Events()[0].CaseID)
}

func TestEventLogSince(t *testing.T) {
	log := NewEventLog()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		log.Emit(day, EventScheduled, "A", 1, "")
	}

	tail := log.EventsSince(3)
	require.Len(t, tail, 2)
	assert.Equal(t, int64(3), tail[0].Seq)
}

func TestEventLogCSVExport(t *testing.T) {
	log := NewEventLog()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	log.Emit(day, EventAdjourned, "CRP-1", 2, "adjournment draw")

	var sb strings.Builder
	require.NoError(t, log.ExportCSV(&sb))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "seq,date,type,case_id,courtroom_id,detail", lines[0])
	assert.Contains(t, lines[1], "2024-06-03")
	assert.Contains(t, lines[1], "adjourned")
	assert.Contains(t, lines[1], "CRP-1")
}
