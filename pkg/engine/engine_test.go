package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/calendar"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/metrics"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/overrides"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/params"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/scheduler"
)

// Simulation engine requirements:
// - Identical inputs and seed give identical cause lists, events and
//   metrics
// - Case conservation: disposed plus active equals initial plus inflow
// - Once disposed, a case never appears on a later cause list
// - Hearing spacing holds across consecutive hearings of the same case
// - Cancellation finalises a partial summary over completed days
// - Configuration problems fail at construction

type EngineTestSuite struct {
	suite.Suite
	tables *params.Tables
}

func (s *EngineTestSuite) SetupTest() {
	tables, err := params.NewTables(params.DefaultConfig())
	require.NoError(s.T(), err)
	s.tables = tables
}

func (s *EngineTestSuite) config(horizon int) Config {
	cfg := DefaultConfig()
	cfg.HorizonDays = horizon
	cfg.Courtrooms = []CourtroomConfig{
		{ID: 1, Name: "Court Hall 1", Capacity: 20},
		{ID: 2, Name: "Court Hall 2", Capacity: 20},
	}
	cfg.Inflow.Enabled = false
	return cfg
}

func (s *EngineTestSuite) population(n int) []*models.Case {
	cases := make([]*models.Case, n)
	stages := []models.Stage{models.StageAdmission, models.StageFraming,
		models.StageEvidence, models.StageArguments}
	types := models.ValidCaseTypes()
	filed := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	for i := range cases {
		cases[i] = models.NewCase(fmt.Sprintf("CASE-%04d", i), types[i%len(types)],
			filed.AddDate(0, 0, i%300), stages[i%len(stages)], i%17 == 0)
	}
	return cases
}

func (s *EngineTestSuite) run(cfg Config, n int) *RunResult {
	eng, err := New(cfg, s.tables, calendar.NewCourtCalendar(nil), s.population(n))
	require.NoError(s.T(), err)
	result, err := eng.Run(context.Background())
	require.NoError(s.T(), err)
	return result
}

func (s *EngineTestSuite) TestDeterminism() {
	cfg := s.config(20)
	cfg.Inflow.Enabled = true
	cfg.Inflow.AnnualRate = 1200

	first := s.run(cfg, 60)
	tables2, err := params.NewTables(params.DefaultConfig())
	require.NoError(s.T(), err)
	eng2, err := New(cfg, tables2, calendar.NewCourtCalendar(nil), s.population(60))
	require.NoError(s.T(), err)
	second, err := eng2.Run(context.Background())
	require.NoError(s.T(), err)

	assert.Equal(s.T(), first.CauseLists, second.CauseLists)
	assert.Equal(s.T(), first.Days, second.Days)
	require.Equal(s.T(), len(first.Events), len(second.Events))
	for i := range first.Events {
		assert.Equal(s.T(), first.Events[i], second.Events[i])
	}
	assert.Equal(s.T(), first.Summary.TotalDisposed, second.Summary.TotalDisposed)
}

func (s *EngineTestSuite) TestCaseConservation() {
	cfg := s.config(30)
	cfg.Inflow.Enabled = true
	cfg.Inflow.AnnualRate = 2000

	eng, err := New(cfg, s.tables, calendar.NewCourtCalendar(nil), s.population(50))
	require.NoError(s.T(), err)
	result, err := eng.Run(context.Background())
	require.NoError(s.T(), err)

	snapshot := eng.Cases()
	disposed, active := 0, 0
	for _, c := range snapshot {
		if c.IsDisposed() {
			disposed++
		} else {
			active++
		}
	}
	assert.Equal(s.T(), 50+result.Summary.TotalInflow, disposed+active)
	assert.Equal(s.T(), disposed, result.Summary.TotalDisposed)
}

func (s *EngineTestSuite) TestNoHearingAfterDisposal() {
	result := s.run(s.config(60), 40)

	disposalDay := make(map[string]time.Time)
	for _, e := range result.Events {
		if e.Type == metrics.EventDisposed {
			disposalDay[e.CaseID] = e.Date
		}
	}
	require.NotEmpty(s.T(), disposalDay)

	for _, entry := range result.CauseLists {
		if d, ok := disposalDay[entry.CaseID]; ok {
			assert.False(s.T(), entry.Date.After(d),
				"case %s listed on %s after disposal on %s", entry.CaseID, entry.Date, d)
		}
	}
}

func (s *EngineTestSuite) TestGapRespectedAcrossHearings() {
	cfg := s.config(60)
	cfg.MinGapDays = 14
	result := s.run(cfg, 40)

	lastListed := make(map[string]time.Time)
	for _, entry := range result.CauseLists {
		if prev, ok := lastListed[entry.CaseID]; ok {
			assert.GreaterOrEqual(s.T(), models.DaysBetween(prev, entry.Date), 14,
				"case %s relisted too soon", entry.CaseID)
		}
		lastListed[entry.CaseID] = entry.Date
	}
}

func (s *EngineTestSuite) TestNoDoubleSchedulingWithinDay() {
	result := s.run(s.config(30), 80)

	byDay := make(map[int64]map[string]bool)
	for _, entry := range result.CauseLists {
		ord := models.DateOrdinal(entry.Date)
		if byDay[ord] == nil {
			byDay[ord] = make(map[string]bool)
		}
		assert.False(s.T(), byDay[ord][entry.CaseID],
			"case %s scheduled twice on %s", entry.CaseID, entry.Date)
		byDay[ord][entry.CaseID] = true
	}
}

func (s *EngineTestSuite) TestCapacityNeverExceeded() {
	result := s.run(s.config(30), 200)

	counts := make(map[int64]map[int]int)
	for _, entry := range result.CauseLists {
		ord := models.DateOrdinal(entry.Date)
		if counts[ord] == nil {
			counts[ord] = make(map[int]int)
		}
		counts[ord][entry.CourtroomID]++
	}
	for _, perRoom := range counts {
		for roomID, n := range perRoom {
			assert.LessOrEqual(s.T(), n, 20, "courtroom %d over capacity", roomID)
		}
	}
}

func (s *EngineTestSuite) TestUtilizationBoundedOnUnequalBench() {
	cfg := s.config(10)
	cfg.Courtrooms = []CourtroomConfig{
		{ID: 1, Name: "Court Hall 1", Capacity: 1},
		{ID: 2, Name: "Court Hall 2", Capacity: 2},
	}

	result := s.run(cfg, 40)

	// Denominator is the bench total of 3, never a floored per-room mean
	for _, day := range result.Days {
		assert.LessOrEqual(s.T(), day.Utilization, 1.0)
		assert.InDelta(s.T(), float64(day.Scheduled)/3.0, day.Utilization, 1e-12)
	}
	assert.LessOrEqual(s.T(), result.Summary.Utilization, 1.0)
}

func (s *EngineTestSuite) TestCancellationYieldsPartialSummary() {
	cfg := s.config(5000)
	eng, err := New(cfg, s.tables, calendar.NewCourtCalendar(nil), s.population(40))
	require.NoError(s.T(), err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := eng.Run(ctx)
	require.NoError(s.T(), err)

	assert.True(s.T(), result.Summary.Partial)
	assert.Equal(s.T(), 0, result.Summary.DaysCompleted)
}

func (s *EngineTestSuite) TestStagedOverridesApply() {
	cfg := s.config(5)
	eng, err := New(cfg, s.tables, calendar.NewCourtCalendar(nil), s.population(10))
	require.NoError(s.T(), err)

	// First working day on or after the start
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	eng.StageOverrides(day, overrides.Override{
		ID: "ov-1", Kind: overrides.KindRemove, CaseID: "CASE-0003",
		Actor: "registrar", Reason: "counsel unavailable",
	})

	result, err := eng.Run(context.Background())
	require.NoError(s.T(), err)

	applied := 0
	for _, e := range result.Events {
		if e.Type == metrics.EventOverrideApplied || e.Type == metrics.EventOverrideRejected {
			applied++
		}
	}
	assert.Equal(s.T(), 1, applied)
	assert.Equal(s.T(), 1, result.Summary.OverridesApplied+result.Summary.OverridesRejected)
}

func (s *EngineTestSuite) TestInflowFilesCases() {
	cfg := s.config(20)
	cfg.Inflow.Enabled = true
	cfg.Inflow.AnnualRate = 3650

	result := s.run(cfg, 10)

	assert.Greater(s.T(), result.Summary.TotalInflow, 0)
	filedEvents := 0
	for _, e := range result.Events {
		if e.Type == metrics.EventFiled {
			filedEvents++
		}
	}
	assert.Equal(s.T(), result.Summary.TotalInflow, filedEvents)
}

func (s *EngineTestSuite) TestConfigurationErrors() {
	base := s.config(10)

	noRooms := base
	noRooms.Courtrooms = nil
	_, err := New(noRooms, s.tables, nil, nil)
	var ce *ConfigError
	require.ErrorAs(s.T(), err, &ce)

	badPolicy := base
	badPolicy.PolicyName = "oracle"
	_, err = New(badPolicy, s.tables, nil, nil)
	assert.ErrorAs(s.T(), err, &ce)

	negGap := base
	negGap.MinGapDays = -1
	_, err = New(negGap, s.tables, nil, nil)
	assert.ErrorAs(s.T(), err, &ce)

	dupRooms := base
	dupRooms.Courtrooms = []CourtroomConfig{{ID: 1, Capacity: 5}, {ID: 1, Capacity: 5}}
	_, err = New(dupRooms, s.tables, nil, nil)
	assert.ErrorAs(s.T(), err, &ce)

	dupCases := s.population(2)
	dupCases[1].ID = dupCases[0].ID
	_, err = New(base, s.tables, nil, dupCases)
	assert.ErrorAs(s.T(), err, &ce)

	_, err = New(base, nil, nil, nil)
	assert.ErrorAs(s.T(), err, &ce)
}

func (s *EngineTestSuite) TestObserverReceivesDays() {
	cfg := s.config(5)
	eng, err := New(cfg, s.tables, calendar.NewCourtCalendar(nil), s.population(20))
	require.NoError(s.T(), err)

	obs := &recordingObserver{}
	eng.AddObserver(obs)

	result, err := eng.Run(context.Background())
	require.NoError(s.T(), err)

	assert.Equal(s.T(), result.Summary.DaysCompleted, len(obs.days))
}

type recordingObserver struct {
	days []metrics.DayMetrics
}

func (r *recordingObserver) ObserveDay(day metrics.DayMetrics, result *scheduler.SchedulingResult, causeList []CauseListEntry) {
	r.days = append(r.days, day)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
