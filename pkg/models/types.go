package models

import (
	"fmt"
	"time"
)

// CaseType represents the civil case taxonomy codes
type CaseType string

const (
	CRP CaseType = "CRP" // Civil Revision Petition
	CA  CaseType = "CA"  // Civil Appeal
	RSA CaseType = "RSA" // Regular Second Appeal
	RFA CaseType = "RFA" // Regular First Appeal
	CCC CaseType = "CCC" // Civil Contempt Petition
	CP  CaseType = "CP"  // Civil Petition
	CMP CaseType = "CMP" // Civil Miscellaneous Petition
)

// Stage represents a position in the case lifecycle
type Stage string

const (
	StagePreAdmission   Stage = "PRE-ADMISSION"
	StageAdmission      Stage = "ADMISSION"
	StageFraming        Stage = "FRAMING OF CHARGES"
	StageEvidence       Stage = "EVIDENCE"
	StageArguments      Stage = "ARGUMENTS"
	StageInterlocutory  Stage = "INTERLOCUTORY APPLICATION"
	StageSettlement     Stage = "SETTLEMENT"
	StageOrdersJudgment Stage = "ORDERS / JUDGMENT"
	StageFinalDisposal  Stage = "FINAL DISPOSAL"
	StageOther          Stage = "OTHER"
	StageNA             Stage = "NA"
)

// CaseStatus represents the current state of a case
type CaseStatus string

const (
	PENDING   CaseStatus = "pending"   // Filed, awaiting first hearing
	ACTIVE    CaseStatus = "active"    // Has had at least one heard hearing
	ADJOURNED CaseStatus = "adjourned" // Last hearing was adjourned
	SCHEDULED CaseStatus = "scheduled" // On today's cause list
	DISPOSED  CaseStatus = "disposed"  // Terminal; no further scheduling
)

// HearingOutcome represents the result of a single hearing
type HearingOutcome string

const (
	HEARD         HearingOutcome = "heard"
	ADJOURNEDCASE HearingOutcome = "adjourned"
	DISPOSEDCASE  HearingOutcome = "disposed"
)

// RipenessStatus indicates whether a case is ready for a substantive hearing
type RipenessStatus string

const (
	RIPE             RipenessStatus = "RIPE"
	UNRIPE_SUMMONS   RipenessStatus = "UNRIPE_SUMMONS"   // Waiting for summons service
	UNRIPE_DEPENDENT RipenessStatus = "UNRIPE_DEPENDENT" // Waiting for another case or order
	UNRIPE_PARTY     RipenessStatus = "UNRIPE_PARTY"     // Party or lawyer unavailable
	UNRIPE_DOCUMENT  RipenessStatus = "UNRIPE_DOCUMENT"  // Missing documents or records
	UNKNOWN          RipenessStatus = "UNKNOWN"          // Cannot determine
)

// ValidCaseTypes returns all valid case types
func ValidCaseTypes() []CaseType {
	return []CaseType{CRP, CA, RSA, RFA, CCC, CP, CMP}
}

// IsValid checks if a CaseType is valid
func (ct CaseType) IsValid() bool {
	for _, valid := range ValidCaseTypes() {
		if ct == valid {
			return true
		}
	}
	return false
}

// String returns the string representation of CaseType
func (ct CaseType) String() string {
	return string(ct)
}

// StageVocabulary returns the ordered stage vocabulary
func StageVocabulary() []Stage {
	return []Stage{
		StagePreAdmission,
		StageAdmission,
		StageFraming,
		StageEvidence,
		StageArguments,
		StageInterlocutory,
		StageSettlement,
		StageOrdersJudgment,
		StageFinalDisposal,
		StageOther,
		StageNA,
	}
}

// TerminalStages returns stages after which a case is disposed.
// NA represents case closure in the historical data.
func TerminalStages() []Stage {
	return []Stage{StageFinalDisposal, StageSettlement, StageNA}
}

// AdvancedStages returns stages indicating a case is ready for substantive
// judicial time
func AdvancedStages() []Stage {
	return []Stage{StageArguments, StageEvidence, StageOrdersJudgment}
}

// IsValid checks if a Stage is in the vocabulary
func (s Stage) IsValid() bool {
	for _, valid := range StageVocabulary() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsTerminal checks if a stage is terminal
func (s Stage) IsTerminal() bool {
	for _, t := range TerminalStages() {
		if s == t {
			return true
		}
	}
	return false
}

// IsAdvanced checks if a stage is in the advanced set
func (s Stage) IsAdvanced() bool {
	for _, a := range AdvancedStages() {
		if s == a {
			return true
		}
	}
	return false
}

// Index returns the position of the stage in the vocabulary, or -1
func (s Stage) Index() int {
	for i, v := range StageVocabulary() {
		if s == v {
			return i
		}
	}
	return -1
}

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// IsValid checks if a CaseStatus is valid
func (cs CaseStatus) IsValid() bool {
	switch cs {
	case PENDING, ACTIVE, ADJOURNED, SCHEDULED, DISPOSED:
		return true
	}
	return false
}

// String returns the string representation of CaseStatus
func (cs CaseStatus) String() string {
	return string(cs)
}

// IsValid checks if a HearingOutcome is valid
func (ho HearingOutcome) IsValid() bool {
	switch ho {
	case HEARD, ADJOURNEDCASE, DISPOSEDCASE:
		return true
	}
	return false
}

// String returns the string representation of HearingOutcome
func (ho HearingOutcome) String() string {
	return string(ho)
}

// IsRipe checks if the status indicates readiness for hearing
func (rs RipenessStatus) IsRipe() bool {
	return rs == RIPE
}

// IsUnripe checks if the status indicates a known bottleneck
func (rs RipenessStatus) IsUnripe() bool {
	switch rs {
	case UNRIPE_SUMMONS, UNRIPE_DEPENDENT, UNRIPE_PARTY, UNRIPE_DOCUMENT:
		return true
	}
	return false
}

// String returns the string representation of RipenessStatus
func (rs RipenessStatus) String() string {
	return string(rs)
}

// Score represents a normalized score (0.0-1.0)
type Score float64

// IsValid checks if a Score is valid
func (s Score) IsValid() bool {
	return s >= 0.0 && s <= 1.0
}

// Day truncates a timestamp to a calendar day in UTC
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateOrdinal returns the calendar day number used for RNG keying and
// per-date tables
func DateOrdinal(t time.Time) int64 {
	return Day(t).Unix() / 86400
}

// DaysBetween returns whole calendar days from a to b (negative if b < a)
func DaysBetween(a, b time.Time) int {
	return int(DateOrdinal(b) - DateOrdinal(a))
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s' (value: %v): %s",
		ve.Field, ve.Value, ve.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", ve[0].Error(), len(ve)-1)
}

// HasErrors returns true if there are validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a validation error
func (ve *ValidationErrors) Add(field string, value interface{}, message string) {
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// AddIf adds a validation error if the condition is true
func (ve *ValidationErrors) AddIf(condition bool, field string, value interface{}, message string) {
	if condition {
		ve.Add(field, value, message)
	}
}
