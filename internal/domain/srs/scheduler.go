// Package srs implements the SM-2-derived interval computation used to
// schedule card reviews. It is a deliberate simplification of SM-2: the
// ease factor is fixed at 2.5 rather than adapted per card, and
// graduation uses a fixed lookup table instead of a computed ease
// history.
package srs

import (
	"math"
	"time"

	"github.com/hanzideck/hanzideck-api/internal/domain"
)

// Scheduler computes review intervals and next review states. It is
// pure and safe for concurrent use.
type Scheduler struct {
	params *Params
}

// NewScheduler creates a Scheduler with the given parameters.
// If params is nil, the default parameters are used.
func NewScheduler(params *Params) *Scheduler {
	if params == nil {
		params = NewDefaultParams()
	}
	return &Scheduler{params: params}
}

// NextInterval returns the next interval in days for a card.
//
// An incorrect answer always resets the interval to the minimum (one
// day), regardless of prior state. A correct answer within the
// graduation table returns floor(table[reviewCount] * multiplier);
// beyond the table it returns floor(currentInterval * easeFactor *
// multiplier). Every result is clamped to [MinIntervalDays,
// MaxIntervalDays].
func (s *Scheduler) NextInterval(
	currentInterval int,
	correct bool,
	reviewCount int,
	strength domain.StrengthLevel,
) int {
	if !correct {
		return s.params.MinIntervalDays
	}

	mult := s.params.multiplier(strength)

	var next int
	if reviewCount >= 0 && reviewCount < len(s.params.ProgressiveIntervals) {
		next = int(math.Floor(float64(s.params.ProgressiveIntervals[reviewCount]) * mult))
	} else {
		next = int(math.Floor(float64(currentInterval) * s.params.EaseFactor * mult))
	}

	return s.clamp(next)
}

// Apply computes the next review state for a record given a review
// outcome, following the immutable update pattern: the input record is
// not modified, and the returned ComputedUpdate carries the complete
// next state ready for persistence.
func (s *Scheduler) Apply(
	record domain.ReviewRecord,
	outcome domain.ReviewOutcome,
	now time.Time,
) domain.ComputedUpdate {
	status := domain.StatusKnown
	if !outcome.Correct {
		status = domain.StatusDue
	}

	return domain.ComputedUpdate{
		CardID:         record.CardID,
		Status:         status,
		LastReviewedAt: now,
		IntervalDays:   s.NextInterval(record.IntervalDays, outcome.Correct, record.ReviewCount, outcome.Strength),
		ReviewCount:    record.ReviewCount + 1,
	}
}

func (s *Scheduler) clamp(interval int) int {
	if interval < s.params.MinIntervalDays {
		return s.params.MinIntervalDays
	}
	if interval > s.params.MaxIntervalDays {
		return s.params.MaxIntervalDays
	}
	return interval
}
