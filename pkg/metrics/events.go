package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
)

// EventType identifies what happened
type EventType string

const (
	EventFiled            EventType = "filed"
	EventScheduled        EventType = "scheduled"
	EventHeard            EventType = "heard"
	EventAdjourned        EventType = "adjourned"
	EventDisposed         EventType = "disposed"
	EventUnripeFiltered   EventType = "unripe_filtered"
	EventGapBlocked       EventType = "gap_blocked"
	EventCapacityLimited  EventType = "capacity_limited"
	EventOverrideApplied  EventType = "override_applied"
	EventOverrideRejected EventType = "override_rejected"
	EventInvariantSkipped EventType = "invariant_skipped"
)

// Event is one append-only audit entry
type Event struct {
	Seq         int64     `json:"seq"`
	Date        time.Time `json:"date"`
	Type        EventType `json:"type"`
	CaseID      string    `json:"case_id,omitempty"`
	CourtroomID int       `json:"courtroom_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}

// EventLog is an append-only log of everything that happened during a run.
// Supports streaming export; entries are never mutated or removed.
type EventLog struct {
	mu      sync.RWMutex
	events  []Event
	nextSeq int64
}

// NewEventLog creates an empty event log
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Emit appends an event, assigning the next sequence number
func (l *EventLog) Emit(date time.Time, eventType EventType, caseID string, courtroomID int, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, Event{
		Seq:         l.nextSeq,
		Date:        models.Day(date),
		Type:        eventType,
		CaseID:      caseID,
		CourtroomID: courtroomID,
		Detail:      detail,
	})
	l.nextSeq++
}

// Len returns the number of events logged
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Events returns a copy of all events in sequence order
func (l *EventLog) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// EventsSince returns a copy of events with sequence >= seq, for streaming
// consumers that poll
func (l *EventLog) EventsSince(seq int64) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := len(l.events)
	for i, e := range l.events {
		if e.Seq >= seq {
			start = i
			break
		}
	}
	out := make([]Event, len(l.events)-start)
	copy(out, l.events[start:])
	return out
}

// ExportCSV streams the full log as CSV
func (l *EventLog) ExportCSV(w io.Writer) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"seq", "date", "type", "case_id", "courtroom_id", "detail"}); err != nil {
		return fmt.Errorf("failed to write event log header: %w", err)
	}
	for _, e := range l.events {
		row := []string{
			strconv.FormatInt(e.Seq, 10),
			e.Date.Format("2006-01-02"),
			string(e.Type),
			e.CaseID,
			strconv.Itoa(e.CourtroomID),
			e.Detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write event %d: %w", e.Seq, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
