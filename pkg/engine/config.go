package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/params"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/ripeness"
)

// ConfigError is a fatal configuration problem surfaced at engine
// construction
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
}

// CourtroomConfig describes one courtroom of the bench
type CourtroomConfig struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity"`
}

// InflowConfig parameterises simulated case filing. When disabled the
// population is closed.
type InflowConfig struct {
	Enabled    bool    `json:"enabled"`
	AnnualRate float64 `json:"annual_rate"`
	// UrgentShare is the fraction of filings flagged urgent
	UrgentShare float64 `json:"urgent_share"`
}

// Config is the full simulation configuration
type Config struct {
	StartDate   time.Time `json:"start_date"`
	HorizonDays int       `json:"horizon_days"`
	Seed        int64     `json:"seed"`

	Courtrooms []CourtroomConfig `json:"courtrooms"`

	PolicyName   string                 `json:"policy_name"`
	PolicyParams map[string]interface{} `json:"policy_params,omitempty"`

	MinGapDays             int  `json:"min_gap_days"`
	RipenessEvalPeriodDays int  `json:"ripeness_eval_period_days"`
	StrictRipeness         bool `json:"strict_ripeness"`
	StrictInvariants       bool `json:"strict_invariants"`

	RipenessThresholds *ripeness.Thresholds `json:"ripeness_thresholds,omitempty"`

	Inflow             InflowConfig      `json:"inflow"`
	DurationPercentile params.Percentile `json:"duration_percentile"`
}

// DefaultConfig returns a runnable configuration over the default bench
func DefaultConfig() Config {
	return Config{
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		HorizonDays: 192,
		Seed:        42,
		Courtrooms: []CourtroomConfig{
			{ID: 1, Name: "Court Hall 1", Capacity: params.DefaultDailyCapacity},
			{ID: 2, Name: "Court Hall 2", Capacity: params.DefaultDailyCapacity},
			{ID: 3, Name: "Court Hall 3", Capacity: params.DefaultDailyCapacity},
		},
		PolicyName:             "readiness",
		MinGapDays:             14,
		RipenessEvalPeriodDays: 7,
		Inflow: InflowConfig{
			Enabled:     true,
			AnnualRate:  params.AnnualFilingRate,
			UrgentShare: 0.05,
		},
		DurationPercentile: params.PercentileMedian,
	}
}

// LoadConfigFromFile reads a configuration from a JSON file, filling
// defaults for omitted fields
func LoadConfigFromFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate surfaces fatal configuration problems
func (c Config) Validate() error {
	if c.StartDate.IsZero() {
		return &ConfigError{"start_date", "start date is required"}
	}
	if c.HorizonDays <= 0 {
		return &ConfigError{"horizon_days", "horizon must be positive"}
	}
	if len(c.Courtrooms) == 0 {
		return &ConfigError{"courtrooms", "courtroom set cannot be empty"}
	}
	seen := make(map[int]bool, len(c.Courtrooms))
	for _, room := range c.Courtrooms {
		if room.Capacity < 0 {
			return &ConfigError{"courtrooms", fmt.Sprintf("courtroom %d has negative capacity", room.ID)}
		}
		if seen[room.ID] {
			return &ConfigError{"courtrooms", fmt.Sprintf("duplicate courtroom id %d", room.ID)}
		}
		seen[room.ID] = true
	}
	if c.PolicyName == "" {
		return &ConfigError{"policy_name", "policy name is required"}
	}
	if c.MinGapDays < 0 {
		return &ConfigError{"min_gap_days", "minimum gap cannot be negative"}
	}
	if c.RipenessEvalPeriodDays < 0 {
		return &ConfigError{"ripeness_eval_period_days", "period cannot be negative"}
	}
	if c.DurationPercentile != "" && !c.DurationPercentile.IsValid() {
		return &ConfigError{"duration_percentile", fmt.Sprintf("unknown percentile %q", c.DurationPercentile)}
	}
	if c.Inflow.Enabled && c.Inflow.AnnualRate < 0 {
		return &ConfigError{"inflow", "annual rate cannot be negative"}
	}
	if c.Inflow.UrgentShare < 0 || c.Inflow.UrgentShare > 1 {
		return &ConfigError{"inflow", "urgent share must be in [0,1]"}
	}
	if c.RipenessThresholds != nil {
		if errs := c.RipenessThresholds.Validate(); errs.HasErrors() {
			return &ConfigError{"ripeness_thresholds", errs.Error()}
		}
	}
	return nil
}

// buildCourtrooms materialises the bench from configuration
func (c Config) buildCourtrooms() []*models.Courtroom {
	rooms := make([]*models.Courtroom, len(c.Courtrooms))
	for i, rc := range c.Courtrooms {
		rooms[i] = models.NewCourtroom(rc.ID, rc.Name, rc.Capacity)
	}
	return rooms
}
