package database

import (
	"time"
)

// Run represents a single simulation run
type Run struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	PolicyName  string     `json:"policy_name"`
	Seed        int64      `json:"seed"`
	StartDate   time.Time  `json:"start_date"`
	HorizonDays int        `json:"horizon_days"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Status      string     `json:"status"` // running, completed, cancelled, failed
	Config      string     `json:"config"` // JSON configuration

	// Finalized aggregates, written when the run ends
	DaysCompleted   int     `json:"days_completed"`
	DisposalRate    float64 `json:"disposal_rate"`
	AdjournmentRate float64 `json:"adjournment_rate"`
	Utilization     float64 `json:"utilization"`
	LoadBalanceGini float64 `json:"load_balance_gini"`
	CaseCoverage    float64 `json:"case_coverage"`
	TotalDisposed   int     `json:"total_disposed"`
	TotalInflow     int     `json:"total_inflow"`
	ParameterMisses int64   `json:"parameter_misses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DailySnapshot represents one simulated day's metrics
type DailySnapshot struct {
	ID    uint      `json:"id" gorm:"primaryKey"`
	RunID string    `json:"run_id" gorm:"index"`
	Date  time.Time `json:"date" gorm:"index"`

	Scheduled         int `json:"scheduled"`
	Heard             int `json:"heard"`
	Adjourned         int `json:"adjourned"`
	Disposed          int `json:"disposed"`
	Filed             int `json:"filed"`
	UnripeFiltered    int `json:"unripe_filtered"`
	GapBlocked        int `json:"gap_blocked"`
	CapacityLimited   int `json:"capacity_limited"`
	OverridesApplied  int `json:"overrides_applied"`
	OverridesRejected int `json:"overrides_rejected"`
	PendingPool       int `json:"pending_pool"`

	Utilization float64 `json:"utilization"`

	CreatedAt time.Time `json:"created_at"`
}

// CauseListRow represents one case listed in a courtroom on a day
type CauseListRow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RunID       string    `json:"run_id" gorm:"index"`
	Date        time.Time `json:"date" gorm:"index"`
	CourtroomID int       `json:"courtroom_id" gorm:"index"`
	Sequence    int       `json:"sequence"`
	CaseID      string    `json:"case_id" gorm:"index"`
	CaseType    string    `json:"case_type"`
	Stage       string    `json:"stage"`
	Explanation string    `json:"explanation"`

	CreatedAt time.Time `json:"created_at"`
}

// EventRecord represents one audit event from the run's event log
type EventRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RunID       string    `json:"run_id" gorm:"index"`
	Seq         int64     `json:"seq" gorm:"index"`
	Date        time.Time `json:"date" gorm:"index"`
	Type        string    `json:"type" gorm:"index"`
	CaseID      string    `json:"case_id" gorm:"index"`
	CourtroomID int       `json:"courtroom_id"`
	Detail      string    `json:"detail"`

	CreatedAt time.Time `json:"created_at"`
}

// OverrideAudit represents one applied or rejected override
type OverrideAudit struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RunID       string    `json:"run_id" gorm:"index"`
	Date        time.Time `json:"date" gorm:"index"`
	OverrideID  string    `json:"override_id"`
	Kind        string    `json:"kind"`
	CaseID      string    `json:"case_id"`
	CourtroomID int       `json:"courtroom_id"`
	Actor       string    `json:"actor"`
	Applied     bool      `json:"applied"`
	Reason      string    `json:"reason"` // requester's reason, or rejection reason

	CreatedAt time.Time `json:"created_at"`
}
