package engine

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/calendar"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/params"
)

// inflowSampler files new cases day by day. Deterministic: the day's RNG is
// a substream keyed by (seed, "inflow", date ordinal), so inflow does not
// perturb the outcome sampler's streams.
type inflowSampler struct {
	cfg         InflowConfig
	seed        int64
	seasonality *calendar.CourtCalendar

	// Type shares sorted for deterministic cumulative sampling
	types  []models.CaseType
	shares []float64

	filedTotal int
}

func newInflowSampler(cfg InflowConfig, seed int64, tables *params.Tables) *inflowSampler {
	s := &inflowSampler{
		cfg:         cfg,
		seed:        seed,
		seasonality: calendar.NewCourtCalendar(nil),
	}

	types := models.ValidCaseTypes()
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	total := 0.0
	for _, ct := range types {
		share := tables.TypeStatsFor(ct).Share
		if share > 0 {
			s.types = append(s.types, ct)
			s.shares = append(s.shares, share)
			total += share
		}
	}
	// Normalise so the cumulative walk always lands
	if total > 0 {
		for i := range s.shares {
			s.shares[i] /= total
		}
	}
	return s
}

func (s *inflowSampler) stream(date time.Time) *rand.Rand {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(s.seed))
	h.Write(buf[:])
	h.Write([]byte("inflow"))
	binary.BigEndian.PutUint64(buf[:], uint64(models.DateOrdinal(date)))
	h.Write(buf[:])
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// sampleDay files the day's new cases. The expected count is the annual
// rate spread over the calendar year and scaled by the month's seasonality;
// the fractional part rounds probabilistically so long-run volume matches
// the rate.
func (s *inflowSampler) sampleDay(date time.Time) []*models.Case {
	if !s.cfg.Enabled || s.cfg.AnnualRate <= 0 || len(s.types) == 0 {
		return nil
	}

	rng := s.stream(date)
	expected := s.cfg.AnnualRate / 365.0 * s.seasonality.SeasonalityFactor(date)
	count := int(expected)
	if rng.Float64() < expected-float64(count) {
		count++
	}

	cases := make([]*models.Case, 0, count)
	for i := 0; i < count; i++ {
		caseType := s.sampleType(rng.Float64())
		s.filedTotal++
		id := fmt.Sprintf("%s-%d-%06d", caseType, date.Year(), s.filedTotal)
		urgent := rng.Float64() < s.cfg.UrgentShare
		c := models.NewCase(id, caseType, date, models.StageAdmission, urgent)
		cases = append(cases, c)
	}
	return cases
}

func (s *inflowSampler) sampleType(u float64) models.CaseType {
	cumulative := 0.0
	for i, share := range s.shares {
		cumulative += share
		if u < cumulative {
			return s.types[i]
		}
	}
	return s.types[len(s.types)-1]
}
