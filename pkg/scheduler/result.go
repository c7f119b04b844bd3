package scheduler

import (
	"sort"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/overrides"
)

// FilterRecord explains why a case was kept off the day's list
type FilterRecord struct {
	CaseID string `json:"case_id"`
	Reason string `json:"reason"`
}

// SchedulingResult is the outcome of one day's scheduling pass
type SchedulingResult struct {
	Date        time.Time              `json:"date"`
	PolicyName  string                 `json:"policy_name"`
	Assignments map[int][]*models.Case `json:"-"`

	Explanations map[string]string `json:"explanations"`

	OverridesApplied  []overrides.Override  `json:"overrides_applied"`
	OverridesRejected []overrides.Rejection `json:"overrides_rejected"`

	UnripeFiltered  []FilterRecord `json:"unripe_filtered"`
	GapBlocked      []FilterRecord `json:"gap_blocked"`
	CapacityLimited []FilterRecord `json:"capacity_limited"`
	DisposedSkipped int            `json:"disposed_skipped"`
	InvariantSkips  int            `json:"invariant_skips"`

	TotalScheduled int `json:"total_scheduled"`
	TotalEligible  int `json:"total_eligible"`
}

// newSchedulingResult creates an empty result for a date
func newSchedulingResult(date time.Time, policyName string) *SchedulingResult {
	return &SchedulingResult{
		Date:              models.Day(date),
		PolicyName:        policyName,
		Assignments:       make(map[int][]*models.Case),
		Explanations:      make(map[string]string),
		OverridesApplied:  make([]overrides.Override, 0),
		OverridesRejected: make([]overrides.Rejection, 0),
		UnripeFiltered:    make([]FilterRecord, 0),
		GapBlocked:        make([]FilterRecord, 0),
		CapacityLimited:   make([]FilterRecord, 0),
	}
}

// CourtroomIDs returns the assigned courtroom ids in ascending order
func (r *SchedulingResult) CourtroomIDs() []int {
	ids := make([]int, 0, len(r.Assignments))
	for id := range r.Assignments {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ScheduledCaseIDs returns all scheduled case ids ordered by courtroom then
// list position
func (r *SchedulingResult) ScheduledCaseIDs() []string {
	out := make([]string, 0, r.TotalScheduled)
	for _, roomID := range r.CourtroomIDs() {
		for _, c := range r.Assignments[roomID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// PerCourtroomCounts returns scheduled counts keyed by courtroom id
func (r *SchedulingResult) PerCourtroomCounts() map[int]int {
	out := make(map[int]int, len(r.Assignments))
	for id, cases := range r.Assignments {
		out[id] = len(cases)
	}
	return out
}
