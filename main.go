package main

import (
	"context"
	"fmt"

	"github.com/casperlundberg/court-scheduling-algorithm/internal/simulation"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/calendar"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/engine"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/params"
)

func main() {
	fmt.Println("Court Scheduling Algorithm - Demo")
	fmt.Println("=================================")

	// Parameter tables from the built-in defaults
	tables, err := params.NewTables(params.DefaultConfig())
	if err != nil {
		fmt.Printf("Failed to build parameter tables: %v\n", err)
		return
	}

	// Short in-memory run over the default three-hall bench
	cfg := engine.DefaultConfig()
	cfg.HorizonDays = 10
	cfg.Inflow.AnnualRate = 2000

	backlog := simulation.GenerateBacklog(500, cfg.Seed, cfg.StartDate, tables)

	eng, err := engine.New(cfg, tables, calendar.NewCourtCalendar(nil), backlog)
	if err != nil {
		fmt.Printf("Failed to initialize engine: %v\n", err)
		return
	}

	fmt.Println("✓ Engine initialized successfully")
	fmt.Printf("✓ Policy: %s, backlog: %d cases, horizon: %d working days\n",
		cfg.PolicyName, len(backlog), cfg.HorizonDays)

	result, err := eng.Run(context.Background())
	if err != nil {
		fmt.Printf("Simulation failed: %v\n", err)
		return
	}

	// First day's cause list, a few entries per courtroom
	if len(result.CauseLists) > 0 {
		fmt.Println("\nFirst day's cause list (head):")
		firstDate := result.CauseLists[0].Date
		printed := 0
		for _, entry := range result.CauseLists {
			if !entry.Date.Equal(firstDate) || printed >= 8 {
				break
			}
			fmt.Printf("  Hall %d #%d  %-18s %-22s %s\n",
				entry.CourtroomID, entry.Sequence, entry.CaseID, entry.Stage, entry.Explanation)
			printed++
		}
	}

	fmt.Println("\nRun summary:")
	fmt.Printf("  Days completed:    %d\n", result.Summary.DaysCompleted)
	fmt.Printf("  Scheduled:         %d\n", result.Summary.TotalScheduled)
	fmt.Printf("  Heard:             %d\n", result.Summary.TotalHeard)
	fmt.Printf("  Adjourned:         %d\n", result.Summary.TotalAdjourned)
	fmt.Printf("  Disposed:          %d\n", result.Summary.TotalDisposed)
	fmt.Printf("  Inflow:            %d\n", result.Summary.TotalInflow)
	fmt.Printf("  Disposal rate:     %.3f\n", result.Summary.DisposalRate)
	fmt.Printf("  Adjournment rate:  %.3f\n", result.Summary.AdjournmentRate)
	fmt.Printf("  Utilization:       %.3f\n", result.Summary.Utilization)
	fmt.Printf("  Load balance Gini: %.3f\n", result.Summary.LoadBalanceGini)
	fmt.Printf("  Case coverage:     %.3f\n", result.Summary.CaseCoverage)
}
