package models

import (
	"math"
	"time"
)

// Readiness score weights. The three terms measure procedural progress,
// hearing momentum, and stage maturity.
const (
	ReadinessHearingWeight = 0.4
	ReadinessGapWeight     = 0.3
	ReadinessStageWeight   = 0.3

	// Hearing counts saturate the progress term at this many hearings
	ReadinessHearingSaturation = 50.0
)

// Priority score weights
const (
	PriorityAgeWeight         = 0.35
	PriorityReadinessWeight   = 0.25
	PriorityUrgencyWeight     = 0.25
	PriorityAdjournmentWeight = 0.15

	// Age term saturates at one year of pendency
	PriorityAgeSaturationDays = 365.0

	// Decay constant for the adjournment boost in days
	AdjournmentBoostDecayDays = 21.0
)

// RipenessState is the last ripeness verdict written to a case.
// A non-ripe state always carries a reason.
type RipenessState struct {
	Status      RipenessStatus `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	EvaluatedAt time.Time      `json:"evaluated_at"`
}

// Case represents a civil case moving through the court lifecycle
type Case struct {
	ID                 string     `json:"id"`
	Type               CaseType   `json:"type"`
	FiledDate          time.Time  `json:"filed_date"`
	CurrentStage       Stage      `json:"current_stage"`
	StageSince         time.Time  `json:"stage_since"`
	Status             CaseStatus `json:"status"`
	HearingCount       int        `json:"hearing_count"`
	LastHearingDate    *time.Time `json:"last_hearing_date,omitempty"`
	LastHearingPurpose string     `json:"last_hearing_purpose,omitempty"`
	IsUrgent           bool       `json:"is_urgent"`

	Ripeness RipenessState `json:"ripeness"`

	// Derived scores, recomputed by the scheduling pipeline each day
	AgeDays        int     `json:"age_days"`
	ReadinessScore float64 `json:"readiness_score"`
	PriorityScore  float64 `json:"priority_score"`

	LastScheduledDate *time.Time `json:"last_scheduled_date,omitempty"`
	DisposalDate      *time.Time `json:"disposal_date,omitempty"`

	History []HearingRecord `json:"history"`
}

// NewCase creates a case in the pending state
func NewCase(id string, caseType CaseType, filedDate time.Time, stage Stage, isUrgent bool) *Case {
	filed := Day(filedDate)
	return &Case{
		ID:           id,
		Type:         caseType,
		FiledDate:    filed,
		CurrentStage: stage,
		StageSince:   filed,
		Status:       PENDING,
		IsUrgent:     isUrgent,
		Ripeness:     RipenessState{Status: UNKNOWN},
		History:      make([]HearingRecord, 0),
	}
}

// Validate performs validation on the case
func (c *Case) Validate() ValidationErrors {
	var errors ValidationErrors

	errors.AddIf(c.ID == "", "id", c.ID, "case id is required")
	errors.AddIf(!c.Type.IsValid(), "type", c.Type, "invalid case type")
	errors.AddIf(c.FiledDate.IsZero(), "filed_date", c.FiledDate, "filed date is required")
	errors.AddIf(!c.CurrentStage.IsValid(), "current_stage", c.CurrentStage, "invalid stage")
	errors.AddIf(!c.Status.IsValid(), "status", c.Status, "invalid status")
	errors.AddIf(c.HearingCount < 0, "hearing_count", c.HearingCount, "hearing count cannot be negative")

	if c.LastHearingDate != nil {
		errors.AddIf(c.LastHearingDate.Before(c.FiledDate), "last_hearing_date",
			*c.LastHearingDate, "last hearing date cannot precede filed date")
	}
	if c.Status == DISPOSED {
		errors.AddIf(!c.CurrentStage.IsTerminal(), "current_stage", c.CurrentStage,
			"disposed case must be in a terminal stage")
	}
	errors.AddIf(c.Ripeness.Status.IsUnripe() && c.Ripeness.Reason == "",
		"ripeness", c.Ripeness.Status, "non-ripe state requires a reason")

	counted := 0
	for _, hr := range c.History {
		if hr.CountsTowardHearings() {
			counted++
		}
	}
	errors.AddIf(counted != c.HearingCount, "hearing_count", c.HearingCount,
		"hearing count does not match history")

	return errors
}

// IsDisposed checks whether the case has reached a terminal state
func (c *Case) IsDisposed() bool {
	return c.Status == DISPOSED
}

// AdvanceAge recomputes the case age as of today
func (c *Case) AdvanceAge(today time.Time) {
	age := DaysBetween(c.FiledDate, today)
	if age < 0 {
		age = 0
	}
	c.AgeDays = age
}

// DaysSinceLastHearing returns whole days since the last hearing, falling
// back to the case age when the case has never been heard
func (c *Case) DaysSinceLastHearing(today time.Time) int {
	if c.LastHearingDate == nil {
		return DaysBetween(c.FiledDate, today)
	}
	return DaysBetween(*c.LastHearingDate, today)
}

// MeanHearingGap returns the average calendar days between consecutive
// hearings in the history, or 0 with fewer than two hearings
func (c *Case) MeanHearingGap() float64 {
	if len(c.History) < 2 {
		return 0
	}
	total := 0
	for i := 1; i < len(c.History); i++ {
		total += DaysBetween(c.History[i-1].Date, c.History[i].Date)
	}
	return float64(total) / float64(len(c.History)-1)
}

// ComputeReadiness recomputes and caches the readiness score in [0,1].
// The gap term rewards cases with recent hearing activity.
func (c *Case) ComputeReadiness(today time.Time) float64 {
	hearingTerm := clamp(float64(c.HearingCount)/ReadinessHearingSaturation, 0, 1)

	gap := c.DaysSinceLastHearing(today)
	if gap < 1 {
		gap = 1
	}
	gapTerm := clamp(100.0/float64(gap), 0, 1)

	stageTerm := 0.0
	if c.CurrentStage.IsAdvanced() {
		stageTerm = 1.0
	}

	c.ReadinessScore = ReadinessHearingWeight*hearingTerm +
		ReadinessGapWeight*gapTerm +
		ReadinessStageWeight*stageTerm
	return c.ReadinessScore
}

// ComputePriority recomputes and caches the composite priority score in
// [0,1]. ComputeReadiness must have run for the same day first.
func (c *Case) ComputePriority(today time.Time) float64 {
	ageTerm := clamp(float64(c.AgeDays)/PriorityAgeSaturationDays, 0, 1)

	urgencyTerm := 0.5
	if c.IsUrgent {
		urgencyTerm = 1.0
	}

	boost := 0.0
	if c.LastHearingDate != nil {
		since := float64(DaysBetween(*c.LastHearingDate, today))
		if since < 0 {
			since = 0
		}
		boost = math.Exp(-since / AdjournmentBoostDecayDays)
	}

	c.PriorityScore = PriorityAgeWeight*ageTerm +
		PriorityReadinessWeight*c.ReadinessScore +
		PriorityUrgencyWeight*urgencyTerm +
		PriorityAdjournmentWeight*boost
	return c.PriorityScore
}

// IsReadyForScheduling checks the inter-hearing spacing rule. A case with no
// hearings yet is always ready; a disposed case never is.
func (c *Case) IsReadyForScheduling(today time.Time, minGapDays int) bool {
	if c.IsDisposed() {
		return false
	}
	if c.LastHearingDate == nil {
		return true
	}
	return DaysBetween(*c.LastHearingDate, today) >= minGapDays
}

// MarkScheduled places the case on today's cause list
func (c *Case) MarkScheduled(today time.Time) {
	day := Day(today)
	c.Status = SCHEDULED
	c.LastScheduledDate = &day
}

// MarkDisposed terminates the case as of today. The stage is forced terminal
// so the disposed-implies-terminal invariant holds.
func (c *Case) MarkDisposed(today time.Time) {
	day := Day(today)
	c.Status = DISPOSED
	c.DisposalDate = &day
	if !c.CurrentStage.IsTerminal() {
		c.CurrentStage = StageFinalDisposal
		c.StageSince = day
	}
}

// ProgressToStage moves the case to a new stage as of today
func (c *Case) ProgressToStage(stage Stage, today time.Time) {
	if stage == c.CurrentStage {
		return
	}
	c.CurrentStage = stage
	c.StageSince = Day(today)
}

// DaysInCurrentStage returns whole days the case has spent in its stage
func (c *Case) DaysInCurrentStage(today time.Time) int {
	if c.StageSince.IsZero() {
		return DaysBetween(c.FiledDate, today)
	}
	return DaysBetween(c.StageSince, today)
}

// RecordHearing appends a hearing record and updates the derived fields.
// Disposal records update the last hearing date but not the hearing count.
func (c *Case) RecordHearing(record HearingRecord) {
	c.History = append(c.History, record)
	day := Day(record.Date)
	c.LastHearingDate = &day
	if record.CountsTowardHearings() {
		c.HearingCount++
	}

	switch record.Outcome {
	case HEARD:
		c.Status = ACTIVE
	case ADJOURNEDCASE:
		c.Status = ADJOURNED
	case DISPOSEDCASE:
		c.MarkDisposed(record.Date)
	}
}

// SetRipeness writes a ripeness verdict onto the case
func (c *Case) SetRipeness(status RipenessStatus, reason string, evaluatedAt time.Time) {
	c.Ripeness = RipenessState{
		Status:      status,
		Reason:      reason,
		EvaluatedAt: Day(evaluatedAt),
	}
}

// TieBreakLess orders cases deterministically when scores are equal:
// older filed date first, then lexicographic case id
func (c *Case) TieBreakLess(other *Case) bool {
	if !c.FiledDate.Equal(other.FiledDate) {
		return c.FiledDate.Before(other.FiledDate)
	}
	return c.ID < other.ID
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
