package allocator

import (
	"sort"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// Allocation maps courtroom ids to their ordered cause list for a day
type Allocation struct {
	ByCourtroom     map[int][]*models.Case
	CapacityLimited []*models.Case
}

// TotalScheduled returns the number of cases placed across all courtrooms
func (a Allocation) TotalScheduled() int {
	total := 0
	for _, cases := range a.ByCourtroom {
		total += len(cases)
	}
	return total
}

// Counts returns per-courtroom scheduled counts keyed by courtroom id
func (a Allocation) Counts() map[int]int {
	counts := make(map[int]int, len(a.ByCourtroom))
	for id, cases := range a.ByCourtroom {
		counts[id] = len(cases)
	}
	return counts
}

// Allocator assigns an ordered candidate list to courtrooms least loaded
// first. Deterministic: ties go to the lowest courtroom id.
type Allocator struct{}

// NewAllocator creates an allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate walks the ordered list, placing each case in the courtroom with
// the fewest cases so far. capacityOverlay (from capacity overrides)
// replaces a courtroom's effective capacity for this date. Cases that fit
// nowhere are returned as capacity limited. Courtroom state is written
// through Schedule so the per-day capacity invariant is enforced twice.
func (a *Allocator) Allocate(ordered []*models.Case, courtrooms []*models.Courtroom,
	date time.Time, capacityOverlay map[int]int) Allocation {

	rooms := make([]*models.Courtroom, len(courtrooms))
	copy(rooms, courtrooms)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	// Capacity overlays apply for this date only; the per-date override on
	// the courtroom is cleared before returning
	for _, room := range rooms {
		if cap, ok := capacityOverlay[room.ID]; ok {
			room.SetCapacityOverride(date, cap)
			defer room.ClearCapacityOverride(date)
		}
	}

	capacities := make(map[int]int, len(rooms))
	counts := make(map[int]int, len(rooms))
	for _, room := range rooms {
		capacities[room.ID] = room.EffectiveCapacity(date)
	}

	alloc := Allocation{
		ByCourtroom:     make(map[int][]*models.Case, len(rooms)),
		CapacityLimited: make([]*models.Case, 0),
	}

	for _, c := range ordered {
		var target *models.Courtroom
		for _, room := range rooms {
			if counts[room.ID] >= capacities[room.ID] {
				continue
			}
			if target == nil || counts[room.ID] < counts[target.ID] {
				target = room
			}
		}
		if target == nil {
			alloc.CapacityLimited = append(alloc.CapacityLimited, c)
			continue
		}
		counts[target.ID]++
		alloc.ByCourtroom[target.ID] = append(alloc.ByCourtroom[target.ID], c)
		target.Schedule(c.ID, date)
	}

	return alloc
}

// Gini computes the standard Gini coefficient over nonnegative counts.
// Zero for a uniform vector, approaching 1 as load concentrates.
func Gini(counts []int) float64 {
	n := len(counts)
	if n == 0 {
		return 0
	}

	sorted := make([]int, n)
	copy(sorted, counts)
	sort.Ints(sorted)

	total := 0
	weighted := 0
	for i, x := range sorted {
		total += x
		weighted += (i + 1) * x
	}
	if total == 0 {
		return 0
	}

	return (2.0*float64(weighted))/(float64(n)*float64(total)) - float64(n+1)/float64(n)
}
