package params

import "github.com/casperlundberg/court-scheduling-algorithm/pkg/models"

// Fitted headline constants from the historical filing data
const (
	DefaultDailyCapacity = 151
	AnnualFilingRate     = 6000
)

// DefaultConfig returns the parameter bundle fitted from the historical
// cause-list data. Used by the demo entry points and as a test fixture;
// production runs load their bundle from a file.
func DefaultConfig() TablesConfig {
	ad := string(models.StageAdmission)
	fr := string(models.StageFraming)
	ev := string(models.StageEvidence)
	ar := string(models.StageArguments)
	ia := string(models.StageInterlocutory)
	oj := string(models.StageOrdersJudgment)
	fd := string(models.StageFinalDisposal)
	st := string(models.StageSettlement)

	// Transition rows are shared across types except where the fit showed a
	// clear divergence (contempt and miscellaneous petitions dispose faster).
	standard := map[string]map[string]float64{
		ad: {ad: 0.55, fr: 0.20, ia: 0.10, ev: 0.05, fd: 0.08, st: 0.02},
		fr: {fr: 0.45, ev: 0.35, ia: 0.08, fd: 0.10, st: 0.02},
		ev: {ev: 0.60, ar: 0.28, fd: 0.09, st: 0.03},
		ar: {ar: 0.50, oj: 0.30, fd: 0.17, st: 0.03},
		ia: {ia: 0.40, ad: 0.15, ev: 0.20, fd: 0.22, st: 0.03},
		oj: {oj: 0.30, fd: 0.65, st: 0.05},
	}
	fast := map[string]map[string]float64{
		ad: {ad: 0.40, ar: 0.20, fd: 0.35, st: 0.05},
		ar: {ar: 0.35, oj: 0.25, fd: 0.35, st: 0.05},
		oj: {oj: 0.20, fd: 0.75, st: 0.05},
	}

	transitions := make(map[string]map[string]map[string]float64)
	for stage, row := range standard {
		transitions[stage] = map[string]map[string]float64{}
		for _, ct := range []models.CaseType{models.CRP, models.CA, models.RSA, models.RFA, models.CP} {
			transitions[stage][string(ct)] = row
		}
	}
	for stage, row := range fast {
		if transitions[stage] == nil {
			transitions[stage] = map[string]map[string]float64{}
		}
		for _, ct := range []models.CaseType{models.CCC, models.CMP} {
			transitions[stage][string(ct)] = row
		}
	}

	adjRow := func(p float64) map[string]float64 {
		out := make(map[string]float64, 7)
		for _, ct := range models.ValidCaseTypes() {
			out[string(ct)] = p
		}
		return out
	}

	return TablesConfig{
		Transitions: transitions,
		Durations: map[string]StageDuration{
			ad: {MedianDays: 120, P90Days: 420},
			fr: {MedianDays: 90, P90Days: 300},
			ev: {MedianDays: 180, P90Days: 540},
			ar: {MedianDays: 60, P90Days: 240},
			ia: {MedianDays: 45, P90Days: 180},
			oj: {MedianDays: 30, P90Days: 120},
		},
		Adjournments: map[string]map[string]float64{
			ad: adjRow(0.38),
			fr: adjRow(0.42),
			ev: adjRow(0.45),
			ar: adjRow(0.35),
			ia: adjRow(0.40),
			oj: adjRow(0.25),
		},
		TypeStats: map[string]TypeStats{
			string(models.CRP): {MedianHearings: 8, MedianGapDays: 45, Share: 0.22},
			string(models.CA):  {MedianHearings: 12, MedianGapDays: 60, Share: 0.18},
			string(models.RSA): {MedianHearings: 14, MedianGapDays: 75, Share: 0.15},
			string(models.RFA): {MedianHearings: 15, MedianGapDays: 70, Share: 0.12},
			string(models.CCC): {MedianHearings: 5, MedianGapDays: 30, Share: 0.08},
			string(models.CP):  {MedianHearings: 7, MedianGapDays: 40, Share: 0.15},
			string(models.CMP): {MedianHearings: 4, MedianGapDays: 25, Share: 0.10},
		},
		Capacity: CapacityConfig{NominalDaily: DefaultDailyCapacity, P90Daily: 190},
	}
}
