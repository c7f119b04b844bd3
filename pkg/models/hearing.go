package models

import "time"

// HearingRecord captures one hearing of a case. Records are appended to the
// case history and never mutated afterwards.
type HearingRecord struct {
	Date        time.Time      `json:"date"`
	Outcome     HearingOutcome `json:"outcome"`
	StageBefore Stage          `json:"stage_before"`
	StageAfter  Stage          `json:"stage_after"`
	CourtroomID int            `json:"courtroom_id"`
}

// NewHearingRecord creates a hearing record with the date truncated to a day
func NewHearingRecord(date time.Time, outcome HearingOutcome, before, after Stage, courtroomID int) HearingRecord {
	return HearingRecord{
		Date:        Day(date),
		Outcome:     outcome,
		StageBefore: before,
		StageAfter:  after,
		CourtroomID: courtroomID,
	}
}

// Validate performs validation on the hearing record
func (hr HearingRecord) Validate() ValidationErrors {
	var errors ValidationErrors

	errors.AddIf(hr.Date.IsZero(), "date", hr.Date, "date is required")
	errors.AddIf(!hr.Outcome.IsValid(), "outcome", hr.Outcome, "invalid hearing outcome")
	errors.AddIf(!hr.StageBefore.IsValid(), "stage_before", hr.StageBefore, "invalid stage")
	errors.AddIf(!hr.StageAfter.IsValid(), "stage_after", hr.StageAfter, "invalid stage")
	errors.AddIf(hr.CourtroomID < 0, "courtroom_id", hr.CourtroomID, "courtroom id cannot be negative")

	return errors
}

// CountsTowardHearings reports whether this record increments the case's
// hearing count. Disposal records update the last hearing date only.
func (hr HearingRecord) CountsTowardHearings() bool {
	return hr.Outcome == HEARD || hr.Outcome == ADJOURNEDCASE
}
