package database

import (
	"time"

	"gorm.io/gorm"
)

// Repository provides data access methods
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateRun creates a new run record
func (r *Repository) CreateRun(run *Run) error {
	return r.db.Create(run).Error
}

// GetRun retrieves a run by ID
func (r *Repository) GetRun(id string) (*Run, error) {
	var run Run
	err := r.db.First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns lists all runs, newest first
func (r *Repository) ListRuns() ([]Run, error) {
	var runs []Run
	err := r.db.Order("created_at DESC").Find(&runs).Error
	return runs, err
}

// UpdateRun updates a run record
func (r *Repository) UpdateRun(run *Run) error {
	return r.db.Save(run).Error
}

// EndRun marks a run as finished with its final aggregates
func (r *Repository) EndRun(id string, status string, updates map[string]interface{}) error {
	now := time.Now()
	fields := map[string]interface{}{
		"end_time": now,
		"status":   status,
	}
	for k, v := range updates {
		fields[k] = v
	}
	return r.db.Model(&Run{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SaveDailySnapshot saves one day's metrics
func (r *Repository) SaveDailySnapshot(snapshot *DailySnapshot) error {
	return r.db.Create(snapshot).Error
}

// GetDailySnapshots retrieves daily snapshots for a run in date order
func (r *Repository) GetDailySnapshots(runID string, limit int) ([]DailySnapshot, error) {
	var snapshots []DailySnapshot
	query := r.db.Where("run_id = ?", runID).Order("date ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&snapshots).Error
	return snapshots, err
}

// SaveCauseListRows batch-inserts a day's cause list
func (r *Repository) SaveCauseListRows(rows []CauseListRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.CreateInBatches(rows, 200).Error
}

// GetCauseList retrieves the cause list for a run and date, ordered by
// courtroom then sequence
func (r *Repository) GetCauseList(runID string, date time.Time) ([]CauseListRow, error) {
	var rows []CauseListRow
	err := r.db.Where("run_id = ? AND date = ?", runID, date).
		Order("courtroom_id ASC, sequence ASC").
		Find(&rows).Error
	return rows, err
}

// GetCaseHistory retrieves every listing of a case across a run
func (r *Repository) GetCaseHistory(runID, caseID string) ([]CauseListRow, error) {
	var rows []CauseListRow
	err := r.db.Where("run_id = ? AND case_id = ?", runID, caseID).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

// SaveEvents batch-inserts event records
func (r *Repository) SaveEvents(events []EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.CreateInBatches(events, 500).Error
}

// GetEvents retrieves events for a run with optional type filter
func (r *Repository) GetEvents(runID string, eventType string, limit int) ([]EventRecord, error) {
	var events []EventRecord
	query := r.db.Where("run_id = ?", runID)
	if eventType != "" {
		query = query.Where("type = ?", eventType)
	}
	query = query.Order("seq ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&events).Error
	return events, err
}

// SaveOverrideAudits batch-inserts override audit records
func (r *Repository) SaveOverrideAudits(audits []OverrideAudit) error {
	if len(audits) == 0 {
		return nil
	}
	return r.db.CreateInBatches(audits, 200).Error
}

// GetOverrideAudits retrieves the override audit trail for a run
func (r *Repository) GetOverrideAudits(runID string) ([]OverrideAudit, error) {
	var audits []OverrideAudit
	err := r.db.Where("run_id = ?", runID).Order("date ASC, id ASC").Find(&audits).Error
	return audits, err
}

// CountDisposals counts disposal events for a run
func (r *Repository) CountDisposals(runID string) (int64, error) {
	var count int64
	err := r.db.Model(&EventRecord{}).
		Where("run_id = ? AND type = ?", runID, "disposed").
		Count(&count).Error
	return count, err
}

// RunExists checks whether a run id is present
func (r *Repository) RunExists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&Run{}).Where("id = ?", id).Count(&count).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, err
	}
	return count > 0, nil
}
