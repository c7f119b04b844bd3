package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/internal/database"
	"github.com/casperlundberg/court-scheduling-algorithm/internal/simulation"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/calendar"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/engine"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/params"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to engine config JSON (defaults used if empty)")
		tablesPath  = flag.String("tables", "", "Path to parameter tables JSON (defaults used if empty)")
		dbPath      = flag.String("db", "analytics.db", "Path to SQLite database file")
		backlogSize = flag.Int("backlog", 2000, "Size of the synthetic pending-case pool")
		policyName  = flag.String("policy", "", "Override scheduling policy (fifo, age, readiness)")
		horizonDays = flag.Int("horizon", 0, "Override horizon in working days")
		seed        = flag.Int64("seed", 0, "Override master seed")
		runName     = flag.String("name", "Court Scheduling Run", "Run name")
		runDesc     = flag.String("description", "Daily cause-list simulation", "Run description")
	)
	flag.Parse()

	log.Printf("Starting court scheduling simulation with database analytics")

	// Load configuration
	cfg := engine.DefaultConfig()
	if *configPath != "" {
		loaded, err := engine.LoadConfigFromFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *policyName != "" {
		cfg.PolicyName = *policyName
	}
	if *horizonDays > 0 {
		cfg.HorizonDays = *horizonDays
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	// Load parameter tables
	var tables *params.Tables
	var err error
	if *tablesPath != "" {
		tables, err = params.LoadTablesFromFile(*tablesPath)
	} else {
		tables, err = params.NewTables(params.DefaultConfig())
	}
	if err != nil {
		log.Fatalf("Failed to load parameter tables: %v", err)
	}

	// Ensure database directory exists
	dbDir := filepath.Dir(*dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database
	log.Printf("Connecting to database at %s", *dbPath)
	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	// Synthesize the initial backlog and build the engine
	backlog := simulation.GenerateBacklog(*backlogSize, cfg.Seed, cfg.StartDate, tables)
	log.Printf("Generated backlog of %d pending cases as of %s",
		len(backlog), cfg.StartDate.Format("2006-01-02"))

	eng, err := engine.New(cfg, tables, calendar.NewCourtCalendar(nil), backlog)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	// Create database collector for this run
	collector, err := simulation.NewDBCollector(repo, eng, cfg, *runName, *runDesc)
	if err != nil {
		log.Fatalf("Failed to create database collector: %v", err)
	}
	eng.AddObserver(collector)

	log.Printf("Created run with ID: %s", collector.GetRunID())
	log.Printf("Starting simulation at %s", time.Now().Format(time.RFC3339))

	// Run simulation
	start := time.Now()
	result, err := eng.Run(context.Background())
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	if err := collector.SaveEvents(result.Events); err != nil {
		log.Printf("Warning: failed to save event log: %v", err)
	}
	if err := collector.Finalize(result.Summary); err != nil {
		log.Printf("Warning: failed to finalize run: %v", err)
	}

	duration := time.Since(start)
	log.Printf("Simulation completed in %v", duration)
	log.Printf("Days: %d, disposed: %d, disposal rate: %.3f, adjournment rate: %.3f",
		result.Summary.DaysCompleted, result.Summary.TotalDisposed,
		result.Summary.DisposalRate, result.Summary.AdjournmentRate)
	log.Printf("Utilization: %.3f, load balance Gini: %.3f, coverage: %.3f",
		result.Summary.Utilization, result.Summary.LoadBalanceGini,
		result.Summary.CaseCoverage)
	log.Printf("Results stored in database. Run ID: %s", collector.GetRunID())
	log.Printf("Start analytics server to view results: ./analytics-server -db %s", *dbPath)
}
