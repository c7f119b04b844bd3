package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/backlog"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/calendar"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/metrics"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/overrides"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/params"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/policy"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/ripeness"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/sampler"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/scheduler"
)

// CauseListEntry is one row of a day's cause list for a courtroom
type CauseListEntry struct {
	Date        time.Time       `json:"date"`
	CourtroomID int             `json:"courtroom_id"`
	Sequence    int             `json:"sequence"`
	CaseID      string          `json:"case_id"`
	CaseType    models.CaseType `json:"case_type"`
	Stage       models.Stage    `json:"stage"`
	Explanation string          `json:"explanation"`
}

// DayObserver receives each completed day. Observers run synchronously at
// the day boundary; the engine does no I/O inside the day itself.
type DayObserver interface {
	ObserveDay(day metrics.DayMetrics, result *scheduler.SchedulingResult, causeList []CauseListEntry)
}

// RunResult is the full output of a simulation run
type RunResult struct {
	RunID      string               `json:"run_id"`
	Summary    metrics.Summary      `json:"summary"`
	Days       []metrics.DayMetrics `json:"days"`
	CauseLists []CauseListEntry     `json:"cause_lists"`
	Events     []metrics.Event      `json:"events"`
	Backlog    []backlog.Snapshot   `json:"backlog"`
}

// Engine owns the case population and drives the day loop. Single threaded
// and deterministic: same inputs and seed, same outputs.
type Engine struct {
	cfg    Config
	tables *params.Tables
	cal    calendar.Calendar

	classifier *ripeness.Classifier
	algorithm  *scheduler.Algorithm
	outcomes   *sampler.Sampler
	inflow     *inflowSampler
	tracker    *backlog.Tracker
	collector  *metrics.Collector
	events     *metrics.EventLog

	cases      []*models.Case
	courtrooms []*models.Courtroom

	overridesByDay map[int64][]overrides.Override
	observers      []DayObserver

	runID string
}

// New builds an engine from configuration, tables, a calendar and the
// initial case population. Configuration problems are fatal here.
func New(cfg Config, tables *params.Tables, cal calendar.Calendar, initial []*models.Case) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tables == nil {
		return nil, &ConfigError{"tables", "parameter tables are required"}
	}
	if cal == nil {
		cal = calendar.NewCourtCalendar(nil)
	}
	if cfg.RipenessEvalPeriodDays == 0 {
		cfg.RipenessEvalPeriodDays = 7
	}
	if cfg.DurationPercentile == "" {
		cfg.DurationPercentile = params.PercentileMedian
	}

	thresholds := ripeness.DefaultThresholds()
	if cfg.RipenessThresholds != nil {
		thresholds = *cfg.RipenessThresholds
	}
	classifier, err := ripeness.NewClassifier(thresholds, cfg.StrictRipeness)
	if err != nil {
		return nil, &ConfigError{"ripeness_thresholds", err.Error()}
	}

	pol, err := policy.New(cfg.PolicyName, cfg.PolicyParams)
	if err != nil {
		return nil, &ConfigError{"policy_name", err.Error()}
	}

	algorithm, err := scheduler.NewAlgorithm(classifier, pol, scheduler.Options{
		MinGapDays:       cfg.MinGapDays,
		StrictInvariants: cfg.StrictInvariants,
		HardMaxCapacity:  maxCapacity(cfg.Courtrooms) * 2,
	})
	if err != nil {
		return nil, &ConfigError{"scheduler", err.Error()}
	}

	seen := make(map[string]bool, len(initial))
	cases := make([]*models.Case, 0, len(initial))
	for _, c := range initial {
		if errs := c.Validate(); errs.HasErrors() {
			return nil, &ConfigError{"initial_population",
				fmt.Sprintf("case %s: %s", c.ID, errs.Error())}
		}
		if seen[c.ID] {
			return nil, &ConfigError{"initial_population",
				fmt.Sprintf("duplicate case id %s", c.ID)}
		}
		seen[c.ID] = true
		cases = append(cases, c)
	}

	outcomes := sampler.NewSampler(tables, cfg.Seed)
	outcomes.StageGate = func(c *models.Case, date time.Time) bool {
		return c.DaysInCurrentStage(date) >= tables.Duration(c.CurrentStage, cfg.DurationPercentile)
	}

	e := &Engine{
		cfg:            cfg,
		tables:         tables,
		cal:            cal,
		classifier:     classifier,
		algorithm:      algorithm,
		outcomes:       outcomes,
		inflow:         newInflowSampler(cfg.Inflow, cfg.Seed, tables),
		tracker:        backlog.NewTracker(),
		collector:      metrics.NewCollector(len(cases), totalCapacity(cfg.Courtrooms)),
		events:         metrics.NewEventLog(),
		cases:          cases,
		courtrooms:     cfg.buildCourtrooms(),
		overridesByDay: make(map[int64][]overrides.Override),
		runID:          uuid.New().String(),
	}
	return e, nil
}

// RunID returns the run's unique identifier
func (e *Engine) RunID() string {
	return e.runID
}

// AddObserver registers a day-boundary observer
func (e *Engine) AddObserver(obs DayObserver) {
	e.observers = append(e.observers, obs)
}

// StageOverrides registers overrides for a future simulated day
func (e *Engine) StageOverrides(date time.Time, ovs ...overrides.Override) {
	ord := models.DateOrdinal(date)
	e.overridesByDay[ord] = append(e.overridesByDay[ord], ovs...)
}

// Run executes the simulation until the horizon of working days completes
// or the context is cancelled. On cancellation the summary covers the days
// completed and is marked partial.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	log.Printf("Starting simulation run %s: %d cases, %d courtrooms, policy %s, horizon %d working days",
		e.runID, len(e.cases), len(e.courtrooms), e.cfg.PolicyName, e.cfg.HorizonDays)

	var allCauseLists []CauseListEntry
	date := models.Day(e.cfg.StartDate)
	lastEval := time.Time{}
	worked := 0
	idleDays := 0
	cancelled := false

	for worked < e.cfg.HorizonDays {
		select {
		case <-ctx.Done():
			cancelled = true
		default:
		}
		if cancelled {
			log.Printf("Run %s cancelled after %d working days", e.runID, worked)
			break
		}

		if !e.cal.IsWorkingDay(date) {
			idleDays++
			if idleDays > 366 {
				return nil, &ConfigError{"calendar", "no working day found in a full year"}
			}
			date = date.AddDate(0, 0, 1)
			continue
		}
		idleDays = 0

		if lastEval.IsZero() || models.DaysBetween(lastEval, date) >= e.cfg.RipenessEvalPeriodDays {
			e.classifier.EvaluateAll(e.cases, date)
			lastEval = date
		}

		filed := e.inflow.sampleDay(date)
		for _, c := range filed {
			e.cases = append(e.cases, c)
			e.events.Emit(date, metrics.EventFiled, c.ID, 0, string(c.Type))
		}

		dayCauseList, day, err := e.simulateDay(date, len(filed))
		if err != nil {
			return nil, err
		}
		allCauseLists = append(allCauseLists, dayCauseList...)

		worked++
		if worked%50 == 0 {
			log.Printf("Run %s: %d/%d working days, pending %d, disposed so far %d",
				e.runID, worked, e.cfg.HorizonDays, day.PendingPool, e.totalDisposed())
		}

		date = date.AddDate(0, 0, 1)
	}

	summary := e.collector.Finalize(metrics.FinalizeInput{
		ParameterMisses: e.tables.Misses().Total(),
		ClampWarnings:   e.outcomes.ClampWarnings(),
		InvariantSkips:  e.algorithm.InvariantSkips(),
		Partial:         cancelled,
	})

	log.Printf("Run %s finished: %d days, disposal rate %.3f, adjournment rate %.3f, utilization %.3f, gini %.3f, coverage %.3f",
		e.runID, summary.DaysCompleted, summary.DisposalRate, summary.AdjournmentRate,
		summary.Utilization, summary.LoadBalanceGini, summary.CaseCoverage)

	return &RunResult{
		RunID:      e.runID,
		Summary:    summary,
		Days:       e.collector.Days(),
		CauseLists: allCauseLists,
		Events:     e.events.Events(),
		Backlog:    e.tracker.History(),
	}, nil
}

// simulateDay runs scheduling, outcome sampling and bookkeeping for one
// working day
func (e *Engine) simulateDay(date time.Time, filedToday int) ([]CauseListEntry, metrics.DayMetrics, error) {
	result, err := e.algorithm.ScheduleDay(e.cases, e.courtrooms, date,
		e.overridesByDay[models.DateOrdinal(date)])
	if err != nil {
		return nil, metrics.DayMetrics{}, fmt.Errorf("scheduling failed on %s: %w",
			date.Format("2006-01-02"), err)
	}

	causeList := make([]CauseListEntry, 0, result.TotalScheduled)
	day := metrics.DayMetrics{
		Date:              date,
		Scheduled:         result.TotalScheduled,
		Filed:             filedToday,
		UnripeFiltered:    len(result.UnripeFiltered),
		GapBlocked:        len(result.GapBlocked),
		CapacityLimited:   len(result.CapacityLimited),
		DisposedSkipped:   result.DisposedSkipped,
		OverridesApplied:  len(result.OverridesApplied),
		OverridesRejected: len(result.OverridesRejected),
		PerCourtroom:      result.PerCourtroomCounts(),
	}

	for _, f := range result.UnripeFiltered {
		e.events.Emit(date, metrics.EventUnripeFiltered, f.CaseID, 0, f.Reason)
	}
	for _, f := range result.GapBlocked {
		e.events.Emit(date, metrics.EventGapBlocked, f.CaseID, 0, f.Reason)
	}
	for _, f := range result.CapacityLimited {
		e.events.Emit(date, metrics.EventCapacityLimited, f.CaseID, 0, f.Reason)
	}
	for _, ov := range result.OverridesApplied {
		e.events.Emit(date, metrics.EventOverrideApplied, ov.CaseID, ov.CourtroomID,
			fmt.Sprintf("%s by %s: %s", ov.Kind, ov.Actor, ov.Reason))
	}
	for _, rej := range result.OverridesRejected {
		e.events.Emit(date, metrics.EventOverrideRejected, rej.Override.CaseID,
			rej.Override.CourtroomID, rej.Reason)
	}

	for _, roomID := range result.CourtroomIDs() {
		for pos, c := range result.Assignments[roomID] {
			causeList = append(causeList, CauseListEntry{
				Date:        date,
				CourtroomID: roomID,
				Sequence:    pos + 1,
				CaseID:      c.ID,
				CaseType:    c.Type,
				Stage:       c.CurrentStage,
				Explanation: result.Explanations[c.ID],
			})
			e.events.Emit(date, metrics.EventScheduled, c.ID, roomID, "")

			step, err := e.outcomes.Step(c, date, roomID)
			if err != nil {
				if e.cfg.StrictInvariants {
					return nil, metrics.DayMetrics{}, err
				}
				e.events.Emit(date, metrics.EventInvariantSkipped, c.ID, roomID, err.Error())
				continue
			}

			switch step.Record.Outcome {
			case models.HEARD:
				day.Heard++
				e.events.Emit(date, metrics.EventHeard, c.ID, roomID,
					fmt.Sprintf("stage %s to %s", step.Record.StageBefore, step.Record.StageAfter))
			case models.ADJOURNEDCASE:
				day.Adjourned++
				e.events.Emit(date, metrics.EventAdjourned, c.ID, roomID, "")
			case models.DISPOSEDCASE:
				day.Disposed++
				e.events.Emit(date, metrics.EventDisposed, c.ID, roomID,
					fmt.Sprintf("terminal stage %s", step.Record.StageAfter))
			}
		}
	}

	pending := 0
	for _, c := range e.cases {
		if !c.IsDisposed() {
			pending++
		}
	}
	day.PendingPool = pending
	e.tracker.Observe(date, pending, day.Scheduled, day.Disposed, filedToday)

	e.collector.Observe(day, result.ScheduledCaseIDs())
	day.Utilization = lastUtilization(e.collector)

	for _, obs := range e.observers {
		obs.ObserveDay(day, result, causeList)
	}
	return causeList, day, nil
}

// Cases returns snapshot copies of the population, histories included
func (e *Engine) Cases() []models.Case {
	out := make([]models.Case, len(e.cases))
	for i, c := range e.cases {
		snapshot := *c
		snapshot.History = append([]models.HearingRecord(nil), c.History...)
		out[i] = snapshot
	}
	return out
}

// EventLog returns the engine's append-only event log
func (e *Engine) EventLog() *metrics.EventLog {
	return e.events
}

// Backlog returns the engine's backlog tracker
func (e *Engine) Backlog() *backlog.Tracker {
	return e.tracker
}

func (e *Engine) totalDisposed() int {
	n := 0
	for _, c := range e.cases {
		if c.IsDisposed() {
			n++
		}
	}
	return n
}

func lastUtilization(c *metrics.Collector) float64 {
	days := c.Days()
	if len(days) == 0 {
		return 0
	}
	return days[len(days)-1].Utilization
}

func maxCapacity(rooms []CourtroomConfig) int {
	max := 0
	for _, r := range rooms {
		if r.Capacity > max {
			max = r.Capacity
		}
	}
	if max == 0 {
		max = 1
	}
	return max
}

func totalCapacity(rooms []CourtroomConfig) int {
	total := 0
	for _, r := range rooms {
		total += r.Capacity
	}
	return total
}
