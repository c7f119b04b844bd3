package simulation

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/params"
)

// Rough stage mix for a standing backlog. Most pending matters sit in
// the middle of their life cycle rather than at either end.
var backlogStageWeights = map[models.Stage]float64{
	models.StagePreAdmission:   0.05,
	models.StageAdmission:      0.20,
	models.StageFraming:        0.15,
	models.StageEvidence:       0.30,
	models.StageArguments:      0.15,
	models.StageInterlocutory:  0.10,
	models.StageOrdersJudgment: 0.05,
}

// GenerateBacklog synthesizes a pending-case pool as of the start date.
// The same seed always produces the same pool. Case types follow the
// parameter tables' caseload shares, filing dates spread over the three
// years before the start, and cases past admission carry a plausible
// hearing history.
func GenerateBacklog(n int, seed int64, start time.Time, tables *params.Tables) []*models.Case {
	rng := rand.New(rand.NewSource(seed))

	types := models.ValidCaseTypes()
	shares := make([]float64, len(types))
	total := 0.0
	for i, t := range types {
		shares[i] = tables.TypeStatsFor(t).Share
		total += shares[i]
	}

	stages := make([]models.Stage, 0, len(backlogStageWeights))
	for st := range backlogStageWeights {
		stages = append(stages, st)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })

	cases := make([]*models.Case, n)
	for i := 0; i < n; i++ {
		caseType := pickType(rng.Float64()*total, types, shares)
		stage := pickStage(rng.Float64(), stages)

		ageDays := 30 + rng.Intn(3*365)
		filed := start.AddDate(0, 0, -ageDays)
		urgent := rng.Float64() < 0.05

		// Serials above 100000 keep backlog ids clear of in-run filings
		id := fmt.Sprintf("%s-%d-%06d", caseType, filed.Year(), 100000+i+1)
		c := models.NewCase(id, caseType, filed, stage, urgent)

		if stage != models.StagePreAdmission && stage != models.StageAdmission {
			seedHearingHistory(c, rng, tables, start)
		}
		cases[i] = c
	}
	return cases
}

// seedHearingHistory backfills heard and adjourned hearings between the
// filing date and the start date, at the table's median gap for the type
func seedHearingHistory(c *models.Case, rng *rand.Rand, tables *params.Tables, start time.Time) {
	gap := int(tables.TypeStatsFor(c.Type).MedianGapDays)
	if gap <= 0 {
		gap = 45
	}

	date := c.FiledDate.AddDate(0, 0, gap/2+rng.Intn(gap))
	adjournP := tables.Adjournment(c.CurrentStage, c.Type)
	for date.Before(start) && c.HearingCount < 40 {
		outcome := models.HEARD
		if rng.Float64() < adjournP {
			outcome = models.ADJOURNEDCASE
		}
		c.RecordHearing(models.NewHearingRecord(date, outcome, c.CurrentStage, c.CurrentStage, 0))
		date = date.AddDate(0, 0, gap/2+rng.Intn(gap))
	}
	if c.HearingCount > 0 {
		c.StageSince = c.History[len(c.History)-1].Date
	}
}

func pickType(u float64, types []models.CaseType, shares []float64) models.CaseType {
	cum := 0.0
	for i, t := range types {
		cum += shares[i]
		if u < cum {
			return t
		}
	}
	return types[len(types)-1]
}

func pickStage(u float64, stages []models.Stage) models.Stage {
	cum := 0.0
	for _, st := range stages {
		cum += backlogStageWeights[st]
		if u < cum {
			return st
		}
	}
	return stages[len(stages)-1]
}
