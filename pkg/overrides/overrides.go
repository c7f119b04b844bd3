package overrides

import (
	"fmt"
	"sort"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// Kind identifies the override variant
type Kind string

const (
	KindAdd      Kind = "add"
	KindRemove   Kind = "remove"
	KindReorder  Kind = "reorder"
	KindPriority Kind = "priority"
	KindRipeness Kind = "ripeness"
	KindCapacity Kind = "capacity"
)

// IsValid checks if a Kind is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindAdd, KindRemove, KindReorder, KindPriority, KindRipeness, KindCapacity:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Override is a human modification request for one day's candidate list or
// a courtroom's capacity. Overrides are values; the core never mutates
// them.
type Override struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	CaseID      string    `json:"case_id,omitempty"`
	CourtroomID int       `json:"courtroom_id,omitempty"`
	Actor       string    `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Position    int       `json:"position,omitempty"`
	Priority    float64   `json:"priority,omitempty"`
	Capacity    int       `json:"capacity,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// Rejection pairs a failed override with the reason it was dropped
type Rejection struct {
	Override Override `json:"override"`
	Reason   string   `json:"reason"`
}

// Result is the outcome of applying a day's overrides. The overlays live
// here for one day and never persist onto cases.
type Result struct {
	Candidates      []*models.Case
	Applied         []Override
	Rejections      []Rejection
	CapacityOverlay map[int]int
	ForcedRipe      map[string]bool
	PriorityOverlay map[string]float64
}

// Applier validates and applies overrides in the documented fixed order:
// add, remove, priority, ripeness, capacity, reorder. Reorder runs last so
// the priority re-sort cannot disturb explicit positions.
type Applier struct {
	// HardMaxCapacity bounds capacity overrides
	HardMaxCapacity int
}

// NewApplier creates an applier with the given capacity ceiling
func NewApplier(hardMaxCapacity int) *Applier {
	return &Applier{HardMaxCapacity: hardMaxCapacity}
}

// Apply runs the day's overrides against a candidate list. pool is the full
// case population keyed by id (adds and force-ripes may target cases
// outside the candidate list); courtroomIDs identifies valid capacity
// targets. The input slices and the override list are not mutated.
func (a *Applier) Apply(candidates []*models.Case, pool map[string]*models.Case,
	courtroomIDs map[int]bool, overrides []Override) Result {

	result := Result{
		Candidates:      make([]*models.Case, len(candidates)),
		Applied:         make([]Override, 0),
		Rejections:      make([]Rejection, 0),
		CapacityOverlay: make(map[int]int),
		ForcedRipe:      make(map[string]bool),
		PriorityOverlay: make(map[string]float64),
	}
	copy(result.Candidates, candidates)

	byKind := make(map[Kind][]Override)
	for _, ov := range overrides {
		if !ov.Kind.IsValid() {
			result.Rejections = append(result.Rejections, Rejection{ov, fmt.Sprintf("unknown override kind %q", ov.Kind)})
			continue
		}
		byKind[ov.Kind] = append(byKind[ov.Kind], ov)
	}

	for _, ov := range byKind[KindAdd] {
		a.applyAdd(&result, pool, ov)
	}
	for _, ov := range byKind[KindRemove] {
		a.applyRemove(&result, ov)
	}

	prioritized := false
	for _, ov := range byKind[KindPriority] {
		if a.applyPriority(&result, ov) {
			prioritized = true
		}
	}
	if prioritized {
		resortByPriority(&result)
	}

	for _, ov := range byKind[KindRipeness] {
		a.applyRipeness(&result, pool, ov)
	}
	for _, ov := range byKind[KindCapacity] {
		a.applyCapacity(&result, courtroomIDs, ov)
	}
	for _, ov := range byKind[KindReorder] {
		a.applyReorder(&result, ov)
	}

	return result
}

func (a *Applier) applyAdd(result *Result, pool map[string]*models.Case, ov Override) {
	c, ok := pool[ov.CaseID]
	if !ok {
		result.reject(ov, fmt.Sprintf("case %s does not exist", ov.CaseID))
		return
	}
	if c.IsDisposed() {
		result.reject(ov, fmt.Sprintf("case %s is disposed", ov.CaseID))
		return
	}
	if indexOf(result.Candidates, ov.CaseID) >= 0 {
		result.reject(ov, fmt.Sprintf("case %s is already on the candidate list", ov.CaseID))
		return
	}

	pos := ov.Position
	if pos < 0 {
		pos = 0
	}
	if pos > len(result.Candidates) {
		pos = len(result.Candidates)
	}
	result.Candidates = append(result.Candidates, nil)
	copy(result.Candidates[pos+1:], result.Candidates[pos:])
	result.Candidates[pos] = c
	result.accept(ov)
}

func (a *Applier) applyRemove(result *Result, ov Override) {
	idx := indexOf(result.Candidates, ov.CaseID)
	if idx < 0 {
		result.reject(ov, fmt.Sprintf("case %s is not on the candidate list", ov.CaseID))
		return
	}
	result.Candidates = append(result.Candidates[:idx], result.Candidates[idx+1:]...)
	result.accept(ov)
}

func (a *Applier) applyPriority(result *Result, ov Override) bool {
	if ov.Priority < 0 || ov.Priority > 1 {
		result.reject(ov, fmt.Sprintf("priority %.3f outside [0,1]", ov.Priority))
		return false
	}
	if indexOf(result.Candidates, ov.CaseID) < 0 {
		result.reject(ov, fmt.Sprintf("case %s is not on the candidate list", ov.CaseID))
		return false
	}
	result.PriorityOverlay[ov.CaseID] = ov.Priority
	result.accept(ov)
	return true
}

// applyRipeness force-ripes a case for this day only. A case not on the
// candidate list is inserted at the position its effective priority earns.
func (a *Applier) applyRipeness(result *Result, pool map[string]*models.Case, ov Override) {
	c, ok := pool[ov.CaseID]
	if !ok {
		result.reject(ov, fmt.Sprintf("case %s does not exist", ov.CaseID))
		return
	}
	if c.IsDisposed() {
		result.reject(ov, fmt.Sprintf("case %s is disposed", ov.CaseID))
		return
	}

	result.ForcedRipe[ov.CaseID] = true
	if indexOf(result.Candidates, ov.CaseID) < 0 {
		insertByPriority(result, c)
	}
	result.accept(ov)
}

func (a *Applier) applyCapacity(result *Result, courtroomIDs map[int]bool, ov Override) {
	if !courtroomIDs[ov.CourtroomID] {
		result.reject(ov, fmt.Sprintf("courtroom %d does not exist", ov.CourtroomID))
		return
	}
	if ov.Capacity < 0 || ov.Capacity > a.HardMaxCapacity {
		result.reject(ov, fmt.Sprintf("capacity %d outside [0,%d]", ov.Capacity, a.HardMaxCapacity))
		return
	}
	result.CapacityOverlay[ov.CourtroomID] = ov.Capacity
	result.accept(ov)
}

func (a *Applier) applyReorder(result *Result, ov Override) {
	idx := indexOf(result.Candidates, ov.CaseID)
	if idx < 0 {
		result.reject(ov, fmt.Sprintf("case %s is not on the candidate list", ov.CaseID))
		return
	}
	if ov.Position < 0 || ov.Position >= len(result.Candidates) {
		result.reject(ov, fmt.Sprintf("position %d outside [0,%d)", ov.Position, len(result.Candidates)))
		return
	}

	c := result.Candidates[idx]
	result.Candidates = append(result.Candidates[:idx], result.Candidates[idx+1:]...)
	pos := ov.Position
	result.Candidates = append(result.Candidates, nil)
	copy(result.Candidates[pos+1:], result.Candidates[pos:])
	result.Candidates[pos] = c
	result.accept(ov)
}

// effectivePriority reads the overlay first, falling back to the case's
// cached score
func (r *Result) effectivePriority(c *models.Case) float64 {
	if p, ok := r.PriorityOverlay[c.ID]; ok {
		return p
	}
	return c.PriorityScore
}

func resortByPriority(result *Result) {
	sort.SliceStable(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		pa, pb := result.effectivePriority(a), result.effectivePriority(b)
		if pa != pb {
			return pa > pb
		}
		return a.TieBreakLess(b)
	})
}

func insertByPriority(result *Result, c *models.Case) {
	p := result.effectivePriority(c)
	pos := len(result.Candidates)
	for i, existing := range result.Candidates {
		ep := result.effectivePriority(existing)
		if p > ep || (p == ep && c.TieBreakLess(existing)) {
			pos = i
			break
		}
	}
	result.Candidates = append(result.Candidates, nil)
	copy(result.Candidates[pos+1:], result.Candidates[pos:])
	result.Candidates[pos] = c
}

func (r *Result) accept(ov Override) {
	r.Applied = append(r.Applied, ov)
}

func (r *Result) reject(ov Override, reason string) {
	r.Rejections = append(r.Rejections, Rejection{Override: ov, Reason: reason})
}

func indexOf(cases []*models.Case, id string) int {
	for i, c := range cases {
		if c.ID == id {
			return i
		}
	}
	return -1
}
