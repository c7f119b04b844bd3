package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/overrides"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/policy"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/ripeness"
)

// Scheduling algorithm requirements:
// - FIFO with capacity 1 schedules the older filing and marks the other
//   capacity limited
// - Gap-blocked cases are reported and readmitted once the gap elapses
// - All-disposed populations short-circuit to an empty result
// - Disposed cases reaching allocation are invariant violations: fatal
//   under strict invariants, counted and skipped otherwise
// - Per-day overlays never leak onto cases

type SchedulerTestSuite struct {
	suite.Suite
	classifier *ripeness.Classifier
	today      time.Time
}

func (s *SchedulerTestSuite) SetupTest() {
	cl, err := ripeness.NewClassifier(ripeness.DefaultThresholds(), false)
	require.NoError(s.T(), err)
	s.classifier = cl
	s.today = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
}

func (s *SchedulerTestSuite) newAlgorithm(pol policy.Policy, opts Options) *Algorithm {
	alg, err := NewAlgorithm(s.classifier, pol, opts)
	require.NoError(s.T(), err)
	return alg
}

func (s *SchedulerTestSuite) newCase(id string, filed time.Time) *models.Case {
	return models.NewCase(id, models.CRP, filed, models.StageArguments, false)
}

func rooms(n, capacity int) []*models.Courtroom {
	out := make([]*models.Courtroom, n)
	for i := range out {
		out[i] = models.NewCourtroom(i+1, fmt.Sprintf("Court Hall %d", i+1), capacity)
	}
	return out
}

func (s *SchedulerTestSuite) TestFIFOWithCapacityOne() {
	a := s.newCase("A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := s.newCase("B", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{MinGapDays: 0})

	result, err := alg.ScheduleDay([]*models.Case{b, a}, rooms(1, 1), s.today, nil)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), []string{"A"}, result.ScheduledCaseIDs())
	require.Len(s.T(), result.CapacityLimited, 1)
	assert.Equal(s.T(), "B", result.CapacityLimited[0].CaseID)
	assert.Equal(s.T(), models.SCHEDULED, a.Status)
	assert.NotEmpty(s.T(), result.Explanations["A"])
}

func (s *SchedulerTestSuite) TestGapEnforcement() {
	c := s.newCase("C", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	c.RecordHearing(models.NewHearingRecord(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), models.HEARD,
		models.StageArguments, models.StageArguments, 1))
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{MinGapDays: 14})

	blocked, err := alg.ScheduleDay([]*models.Case{c}, rooms(1, 10),
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), blocked.ScheduledCaseIDs())
	require.Len(s.T(), blocked.GapBlocked, 1)
	assert.Equal(s.T(), "C", blocked.GapBlocked[0].CaseID)

	open, err := alg.ScheduleDay([]*models.Case{c}, rooms(1, 10),
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"C"}, open.ScheduledCaseIDs())
	assert.Empty(s.T(), open.GapBlocked)
}

func (s *SchedulerTestSuite) TestUnripeFiltered() {
	unripe := models.NewCase("U", models.CRP,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), models.StageAdmission, false)
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{})

	result, err := alg.ScheduleDay([]*models.Case{unripe}, rooms(1, 10), s.today, nil)
	require.NoError(s.T(), err)

	assert.Empty(s.T(), result.ScheduledCaseIDs())
	require.Len(s.T(), result.UnripeFiltered, 1)
	assert.Contains(s.T(), result.UnripeFiltered[0].Reason, "UNRIPE_SUMMONS")
	// The on-demand verdict was written to the case
	assert.Equal(s.T(), models.UNRIPE_SUMMONS, unripe.Ripeness.Status)
}

func (s *SchedulerTestSuite) TestAllDisposedShortCircuits() {
	cases := make([]*models.Case, 3)
	for i := range cases {
		cases[i] = s.newCase(fmt.Sprintf("D-%d", i), time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
		cases[i].MarkDisposed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	}
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{})

	result, err := alg.ScheduleDay(cases, rooms(1, 10), s.today, nil)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 3, result.DisposedSkipped)
	assert.Empty(s.T(), result.ScheduledCaseIDs())
	assert.Empty(s.T(), result.UnripeFiltered)
	assert.Empty(s.T(), result.GapBlocked)
	assert.Empty(s.T(), result.CapacityLimited)
}

func (s *SchedulerTestSuite) TestZeroCapacity() {
	a := s.newCase("A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := s.newCase("B", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{})

	result, err := alg.ScheduleDay([]*models.Case{a, b}, rooms(2, 0), s.today, nil)
	require.NoError(s.T(), err)

	assert.Empty(s.T(), result.ScheduledCaseIDs())
	assert.Len(s.T(), result.CapacityLimited, 2)
}

func (s *SchedulerTestSuite) TestOverrideAddAndReorder() {
	x := s.newCase("X", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	y := s.newCase("Y", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	z := s.newCase("Z", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	w := s.newCase("W", time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))

	// W starts off-list: marking it unripe keeps it out of the candidate
	// set so only the add override lists it
	w.SetRipeness(models.UNRIPE_DOCUMENT, "records awaited", s.today)

	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{})
	result, err := alg.ScheduleDay([]*models.Case{x, y, z, w}, rooms(1, 3), s.today, []overrides.Override{
		{ID: "o1", Kind: overrides.KindAdd, CaseID: "W", Position: 0, Actor: "registrar"},
		{ID: "o2", Kind: overrides.KindReorder, CaseID: "Z", Position: 0, Actor: "registrar"},
	})
	require.NoError(s.T(), err)

	// Candidate order [Z, W, X, Y] truncated to capacity 3
	assert.Equal(s.T(), []string{"Z", "W", "X"}, result.ScheduledCaseIDs())
	require.Len(s.T(), result.CapacityLimited, 1)
	assert.Equal(s.T(), "Y", result.CapacityLimited[0].CaseID)
	assert.Len(s.T(), result.OverridesApplied, 2)
}

func (s *SchedulerTestSuite) TestRejectedOverrideDoesNotAlterSchedule() {
	a := s.newCase("A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := s.newCase("B", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{})

	baseline, err := alg.ScheduleDay([]*models.Case{a, b}, rooms(1, 10), s.today, nil)
	require.NoError(s.T(), err)

	a2 := s.newCase("A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b2 := s.newCase("B", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	withBad, err := alg.ScheduleDay([]*models.Case{a2, b2}, rooms(1, 10), s.today, []overrides.Override{
		{ID: "o1", Kind: overrides.KindRemove, CaseID: "MISSING"},
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), baseline.ScheduledCaseIDs(), withBad.ScheduledCaseIDs())
	assert.Len(s.T(), withBad.OverridesRejected, 1)
}

func (s *SchedulerTestSuite) TestForcedRipeOverlayDoesNotPersist() {
	u := models.NewCase("U", models.CRP,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), models.StageAdmission, false)
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{})

	result, err := alg.ScheduleDay([]*models.Case{u}, rooms(1, 10), s.today, []overrides.Override{
		{ID: "o1", Kind: overrides.KindRipeness, CaseID: "U", Actor: "judge"},
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), []string{"U"}, result.ScheduledCaseIDs())
	assert.Contains(s.T(), result.Explanations["U"], "override")
	// The case's intrinsic ripeness state still says unripe
	assert.Equal(s.T(), models.UNRIPE_SUMMONS, u.Ripeness.Status)
}

func (s *SchedulerTestSuite) TestStrictModeSkipsFilteredDisposed() {
	// A disposed case in the pool is filtered at the first step, so strict
	// invariants never fire on it
	d := s.newCase("D", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	d.MarkDisposed(s.today)
	live := s.newCase("L", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{StrictInvariants: true})

	result, err := alg.ScheduleDay([]*models.Case{d, live}, rooms(1, 10), s.today, nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, result.DisposedSkipped)
	assert.Equal(s.T(), []string{"L"}, result.ScheduledCaseIDs())
}

func (s *SchedulerTestSuite) TestNonStrictCountsInvariantSkips() {
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{})
	// Duplicate pool entries surface as a duplicate-candidate violation
	a := s.newCase("A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	result, err := alg.ScheduleDay([]*models.Case{a, a}, rooms(1, 10), s.today, nil)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 1, result.InvariantSkips)
	assert.Equal(s.T(), int64(1), alg.InvariantSkips())
	assert.Equal(s.T(), []string{"A"}, result.ScheduledCaseIDs())
}

func (s *SchedulerTestSuite) TestStrictInvariantsReturnError() {
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{StrictInvariants: true})
	a := s.newCase("A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := alg.ScheduleDay([]*models.Case{a, a}, rooms(1, 10), s.today, nil)
	require.Error(s.T(), err)

	var iv *InvariantViolationError
	assert.ErrorAs(s.T(), err, &iv)
	assert.Equal(s.T(), "A", iv.CaseID)
}

func (s *SchedulerTestSuite) TestEmptyCourtroomSetIsConfigurationError() {
	alg := s.newAlgorithm(policy.NewFIFOPolicy(), Options{})
	a := s.newCase("A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := alg.ScheduleDay([]*models.Case{a}, nil, s.today, nil)
	assert.Error(s.T(), err)
}

func (s *SchedulerTestSuite) TestConstructorValidation() {
	_, err := NewAlgorithm(nil, policy.NewFIFOPolicy(), Options{})
	assert.Error(s.T(), err)

	_, err = NewAlgorithm(s.classifier, nil, Options{})
	assert.Error(s.T(), err)

	_, err = NewAlgorithm(s.classifier, policy.NewFIFOPolicy(), Options{MinGapDays: -1})
	assert.Error(s.T(), err)
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}
