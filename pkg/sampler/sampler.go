package sampler

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/casperlundberg/court-scheduling-algorithm/pkg/models"
	"github.com/casperlundberg/court-scheduling-algorithm/pkg/params"
)

// Sampler draws hearing outcomes from the parameter tables. Each
// (case, day) pair gets a private RNG substream keyed by the master seed,
// so results are bit-identical however sampling is parallelised.
type Sampler struct {
	tables     *params.Tables
	masterSeed int64

	// StageGate, when set, withholds stage transitions until the case has
	// spent the fitted duration in its stage. A gated heard hearing keeps
	// the stage.
	StageGate func(c *models.Case, date time.Time) bool

	clampWarnings atomic.Int64
}

// StepResult describes what the sampler did to a case on a day
type StepResult struct {
	Record   models.HearingRecord
	Disposed bool
	Clamped  bool
	TableHit bool
}

// NewSampler creates a sampler over the given tables and master seed
func NewSampler(tables *params.Tables, masterSeed int64) *Sampler {
	return &Sampler{tables: tables, masterSeed: masterSeed}
}

// Stream returns the RNG substream for a case on a day. The seed is the
// FNV-1a 64 hash of (master seed, case id, date ordinal).
func (s *Sampler) Stream(caseID string, date time.Time) *rand.Rand {
	h := fnv.New64a()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(s.masterSeed))
	h.Write(buf[:])
	h.Write([]byte(caseID))
	binary.BigEndian.PutUint64(buf[:], uint64(models.DateOrdinal(date)))
	h.Write(buf[:])

	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// Step samples the hearing outcome for a scheduled case: adjournment
// first, then the stage transition when heard. A terminal sampled stage
// disposes the case. The case's hearing fields update on every outcome.
func (s *Sampler) Step(c *models.Case, date time.Time, courtroomID int) (StepResult, error) {
	if c.IsDisposed() {
		return StepResult{}, fmt.Errorf("sampler invoked on disposed case %s", c.ID)
	}
	if c.CurrentStage.IsTerminal() {
		return StepResult{}, fmt.Errorf("case %s has terminal stage %s as a transition source",
			c.ID, c.CurrentStage)
	}

	rng := s.Stream(c.ID, date)
	stageBefore := c.CurrentStage

	u := rng.Float64()
	if u < s.tables.Adjournment(stageBefore, c.Type) {
		record := models.NewHearingRecord(date, models.ADJOURNEDCASE, stageBefore, stageBefore, courtroomID)
		c.RecordHearing(record)
		return StepResult{Record: record}, nil
	}

	if s.StageGate != nil && !s.StageGate(c, date) {
		record := models.NewHearingRecord(date, models.HEARD, stageBefore, stageBefore, courtroomID)
		c.RecordHearing(record)
		return StepResult{Record: record, TableHit: true}, nil
	}

	dist, hit := s.tables.Transition(stageBefore, c.Type)
	next, clamped := dist.Sample(rng.Float64())
	if clamped {
		s.clampWarnings.Add(1)
	}

	result := StepResult{Clamped: clamped, TableHit: hit}
	if next.IsTerminal() {
		record := models.NewHearingRecord(date, models.DISPOSEDCASE, stageBefore, next, courtroomID)
		c.ProgressToStage(next, date)
		c.RecordHearing(record)
		result.Record = record
		result.Disposed = true
		return result, nil
	}

	record := models.NewHearingRecord(date, models.HEARD, stageBefore, next, courtroomID)
	c.RecordHearing(record)
	c.ProgressToStage(next, date)
	result.Record = record
	return result, nil
}

// ClampWarnings returns how many transition draws fell outside the
// accumulated mass and were clamped
func (s *Sampler) ClampWarnings() int64 {
	return s.clampWarnings.Load()
}
