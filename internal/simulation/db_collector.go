package simulation

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/internal/database"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/engine"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/metrics"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/scheduler"
)

// DBCollector observes engine days and stores them in the database. It
// buffers cause-list rows and events, flushing in batches at day
// boundaries so the day loop never blocks on I/O.
type DBCollector struct {
	repo  *database.Repository
	runID string

	causeBuffer []database.CauseListRow
	auditBuffer []database.OverrideAudit
	flushSize   int
}

// NewDBCollector creates the run record and a collector bound to it
func NewDBCollector(repo *database.Repository, eng *engine.Engine, cfg engine.Config, name, description string) (*DBCollector, error) {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}

	run := &database.Run{
		ID:          eng.RunID(),
		Name:        name,
		Description: description,
		PolicyName:  cfg.PolicyName,
		Seed:        cfg.Seed,
		StartDate:   cfg.StartDate,
		HorizonDays: cfg.HorizonDays,
		StartTime:   time.Now(),
		Status:      "running",
		Config:      string(configJSON),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := repo.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return &DBCollector{
		repo:        repo,
		runID:       run.ID,
		causeBuffer: make([]database.CauseListRow, 0, 500),
		auditBuffer: make([]database.OverrideAudit, 0, 100),
		flushSize:   500,
	}, nil
}

// GetRunID returns the run ID
func (dc *DBCollector) GetRunID() string {
	return dc.runID
}

// ObserveDay stores one completed day: snapshot, cause list, overrides
func (dc *DBCollector) ObserveDay(day metrics.DayMetrics, result *scheduler.SchedulingResult, causeList []engine.CauseListEntry) {
	snapshot := &database.DailySnapshot{
		RunID:             dc.runID,
		Date:              day.Date,
		Scheduled:         day.Scheduled,
		Heard:             day.Heard,
		Adjourned:         day.Adjourned,
		Disposed:          day.Disposed,
		Filed:             day.Filed,
		UnripeFiltered:    day.UnripeFiltered,
		GapBlocked:        day.GapBlocked,
		CapacityLimited:   day.CapacityLimited,
		OverridesApplied:  day.OverridesApplied,
		OverridesRejected: day.OverridesRejected,
		PendingPool:       day.PendingPool,
		Utilization:       day.Utilization,
		CreatedAt:         time.Now(),
	}
	if err := dc.repo.SaveDailySnapshot(snapshot); err != nil {
		log.Printf("Warning: failed to save daily snapshot: %v", err)
	}

	for _, entry := range causeList {
		dc.causeBuffer = append(dc.causeBuffer, database.CauseListRow{
			RunID:       dc.runID,
			Date:        entry.Date,
			CourtroomID: entry.CourtroomID,
			Sequence:    entry.Sequence,
			CaseID:      entry.CaseID,
			CaseType:    string(entry.CaseType),
			Stage:       string(entry.Stage),
			Explanation: entry.Explanation,
			CreatedAt:   time.Now(),
		})
	}

	for _, ov := range result.OverridesApplied {
		dc.auditBuffer = append(dc.auditBuffer, database.OverrideAudit{
			RunID:       dc.runID,
			Date:        result.Date,
			OverrideID:  ov.ID,
			Kind:        string(ov.Kind),
			CaseID:      ov.CaseID,
			CourtroomID: ov.CourtroomID,
			Actor:       ov.Actor,
			Applied:     true,
			Reason:      ov.Reason,
			CreatedAt:   time.Now(),
		})
	}
	for _, rej := range result.OverridesRejected {
		dc.auditBuffer = append(dc.auditBuffer, database.OverrideAudit{
			RunID:       dc.runID,
			Date:        result.Date,
			OverrideID:  rej.Override.ID,
			Kind:        string(rej.Override.Kind),
			CaseID:      rej.Override.CaseID,
			CourtroomID: rej.Override.CourtroomID,
			Actor:       rej.Override.Actor,
			Applied:     false,
			Reason:      rej.Reason,
			CreatedAt:   time.Now(),
		})
	}

	if len(dc.causeBuffer) >= dc.flushSize || len(dc.auditBuffer) >= dc.flushSize {
		dc.flush()
	}
}

// flush writes the buffered rows
func (dc *DBCollector) flush() {
	if err := dc.repo.SaveCauseListRows(dc.causeBuffer); err != nil {
		log.Printf("Warning: failed to save cause list rows: %v", err)
	}
	dc.causeBuffer = dc.causeBuffer[:0]

	if err := dc.repo.SaveOverrideAudits(dc.auditBuffer); err != nil {
		log.Printf("Warning: failed to save override audits: %v", err)
	}
	dc.auditBuffer = dc.auditBuffer[:0]
}

// SaveEvents stores the run's event log
func (dc *DBCollector) SaveEvents(events []metrics.Event) error {
	records := make([]database.EventRecord, len(events))
	for i, e := range events {
		records[i] = database.EventRecord{
			RunID:       dc.runID,
			Seq:         e.Seq,
			Date:        e.Date,
			Type:        string(e.Type),
			CaseID:      e.CaseID,
			CourtroomID: e.CourtroomID,
			Detail:      e.Detail,
			CreatedAt:   time.Now(),
		}
	}
	return dc.repo.SaveEvents(records)
}

// Finalize flushes buffers and writes the run's summary aggregates
func (dc *DBCollector) Finalize(summary metrics.Summary) error {
	dc.flush()

	status := "completed"
	if summary.Partial {
		status = "cancelled"
	}
	return dc.repo.EndRun(dc.runID, status, map[string]interface{}{
		"days_completed":    summary.DaysCompleted,
		"disposal_rate":     summary.DisposalRate,
		"adjournment_rate":  summary.AdjournmentRate,
		"utilization":       summary.Utilization,
		"load_balance_gini": summary.LoadBalanceGini,
		"case_coverage":     summary.CaseCoverage,
		"total_disposed":    summary.TotalDisposed,
		"total_inflow":      summary.TotalInflow,
		"parameter_misses":  summary.ParameterMisses,
	})
}
