package overrides

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// Override layer requirements:
// - Fixed application order: add, remove, priority, ripeness, capacity,
//   reorder
// - Priority overrides trigger a re-sort; reorder positions survive it
// - Invalid overrides land in the rejections list and never abort the day
// - The caller's candidate slice and override list are never mutated
// - Overlays (forced ripe, priority, capacity) live on the result only

type OverridesTestSuite struct {
	suite.Suite
	applier *Applier
	pool    map[string]*models.Case
	rooms   map[int]bool
}

func (s *OverridesTestSuite) SetupTest() {
	s.applier = NewApplier(200)
	s.pool = make(map[string]*models.Case)
	s.rooms = map[int]bool{1: true, 2: true}

	filed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"W", "X", "Y", "Z", "D"} {
		c := models.NewCase(id, models.CRP, filed, models.StageArguments, false)
		s.pool[id] = c
		filed = filed.AddDate(0, 0, 1)
	}
	s.pool["D"].MarkDisposed(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
}

func (s *OverridesTestSuite) candidates(ids ...string) []*models.Case {
	out := make([]*models.Case, len(ids))
	for i, id := range ids {
		out[i] = s.pool[id]
	}
	return out
}

func ids(cases []*models.Case) []string {
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.ID
	}
	return out
}

func (s *OverridesTestSuite) TestAddThenReorder() {
	input := s.candidates("X", "Y", "Z")
	result := s.applier.Apply(input, s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindAdd, CaseID: "W", Position: 0, Actor: "registrar"},
		{ID: "o2", Kind: KindReorder, CaseID: "Z", Position: 0, Actor: "registrar"},
	})

	assert.Equal(s.T(), []string{"Z", "W", "X", "Y"}, ids(result.Candidates))
	assert.Len(s.T(), result.Applied, 2)
	assert.Empty(s.T(), result.Rejections)

	// Caller's slice untouched
	assert.Equal(s.T(), []string{"X", "Y", "Z"}, ids(input))
}

func (s *OverridesTestSuite) TestAddValidation() {
	result := s.applier.Apply(s.candidates("X"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindAdd, CaseID: "NOPE"},
		{ID: "o2", Kind: KindAdd, CaseID: "D"},
		{ID: "o3", Kind: KindAdd, CaseID: "X"},
	})

	assert.Equal(s.T(), []string{"X"}, ids(result.Candidates))
	assert.Empty(s.T(), result.Applied)
	require.Len(s.T(), result.Rejections, 3)
	assert.Contains(s.T(), result.Rejections[0].Reason, "does not exist")
	assert.Contains(s.T(), result.Rejections[1].Reason, "disposed")
	assert.Contains(s.T(), result.Rejections[2].Reason, "already")
}

func (s *OverridesTestSuite) TestRemove() {
	result := s.applier.Apply(s.candidates("X", "Y"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindRemove, CaseID: "X"},
		{ID: "o2", Kind: KindRemove, CaseID: "Z"},
	})

	assert.Equal(s.T(), []string{"Y"}, ids(result.Candidates))
	assert.Len(s.T(), result.Applied, 1)
	assert.Len(s.T(), result.Rejections, 1)
}

func (s *OverridesTestSuite) TestPriorityResort() {
	s.pool["X"].PriorityScore = 0.9
	s.pool["Y"].PriorityScore = 0.5
	s.pool["Z"].PriorityScore = 0.3

	result := s.applier.Apply(s.candidates("X", "Y", "Z"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindPriority, CaseID: "Z", Priority: 1.0},
	})

	assert.Equal(s.T(), []string{"Z", "X", "Y"}, ids(result.Candidates))
	assert.Equal(s.T(), 1.0, result.PriorityOverlay["Z"])
	// The case's own cached score is untouched
	assert.Equal(s.T(), 0.3, s.pool["Z"].PriorityScore)
}

func (s *OverridesTestSuite) TestPriorityOutOfRange() {
	result := s.applier.Apply(s.candidates("X"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindPriority, CaseID: "X", Priority: 1.5},
	})

	assert.Empty(s.T(), result.Applied)
	assert.Len(s.T(), result.Rejections, 1)
	assert.Equal(s.T(), []string{"X"}, ids(result.Candidates))
}

func (s *OverridesTestSuite) TestRipenessForcesOntoList() {
	s.pool["X"].PriorityScore = 0.8
	s.pool["Y"].PriorityScore = 0.4
	s.pool["W"].PriorityScore = 0.6

	result := s.applier.Apply(s.candidates("X", "Y"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindRipeness, CaseID: "W"},
	})

	assert.Equal(s.T(), []string{"X", "W", "Y"}, ids(result.Candidates))
	assert.True(s.T(), result.ForcedRipe["W"])

	// Disposed cases cannot be forced ripe
	result = s.applier.Apply(s.candidates("X"), s.pool, s.rooms, []Override{
		{ID: "o2", Kind: KindRipeness, CaseID: "D"},
	})
	assert.Len(s.T(), result.Rejections, 1)
	assert.False(s.T(), result.ForcedRipe["D"])
}

func (s *OverridesTestSuite) TestCapacityOverlay() {
	result := s.applier.Apply(s.candidates("X"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindCapacity, CourtroomID: 1, Capacity: 50},
		{ID: "o2", Kind: KindCapacity, CourtroomID: 9, Capacity: 50},
		{ID: "o3", Kind: KindCapacity, CourtroomID: 2, Capacity: 500},
	})

	assert.Equal(s.T(), map[int]int{1: 50}, result.CapacityOverlay)
	assert.Len(s.T(), result.Applied, 1)
	assert.Len(s.T(), result.Rejections, 2)
}

func (s *OverridesTestSuite) TestReorderOutOfRange() {
	result := s.applier.Apply(s.candidates("X", "Y"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindReorder, CaseID: "Y", Position: 5},
	})

	assert.Len(s.T(), result.Rejections, 1)
	assert.Equal(s.T(), []string{"X", "Y"}, ids(result.Candidates))
}

func (s *OverridesTestSuite) TestRejectionLeavesScheduleUnchanged() {
	baseline := s.applier.Apply(s.candidates("X", "Y", "Z"), s.pool, s.rooms, nil)
	withBad := s.applier.Apply(s.candidates("X", "Y", "Z"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindRemove, CaseID: "MISSING"},
		{ID: "o2", Kind: Kind("bogus"), CaseID: "X"},
	})

	assert.Equal(s.T(), ids(baseline.Candidates), ids(withBad.Candidates))
	assert.Len(s.T(), withBad.Rejections, 2)
}

func (s *OverridesTestSuite) TestReorderRunsAfterPriorityResort() {
	s.pool["X"].PriorityScore = 0.2
	s.pool["Y"].PriorityScore = 0.4
	s.pool["Z"].PriorityScore = 0.6

	result := s.applier.Apply(s.candidates("X", "Y", "Z"), s.pool, s.rooms, []Override{
		{ID: "o1", Kind: KindPriority, CaseID: "X", Priority: 0.9},
		{ID: "o2", Kind: KindReorder, CaseID: "Y", Position: 0},
	})

	// Priority re-sort gives [X, Z, Y]; the reorder then pins Y first
	assert.Equal(s.T(), []string{"Y", "X", "Z"}, ids(result.Candidates))
}

func TestOverridesTestSuite(t *testing.T) {
	suite.Run(t, new(OverridesTestSuite))
}
