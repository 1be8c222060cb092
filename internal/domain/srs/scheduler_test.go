package srs

import (
	"testing"
	"time"

	"github.com/hanzideck/hanzideck-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNextIntervalGraduationTable(t *testing.T) {
	t.Parallel()
	s := NewScheduler(nil)

	// Medium strength walks the table verbatim.
	expected := []int{1, 6, 14, 30, 90, 180}
	for count, want := range expected {
		got := s.NextInterval(1, true, count, domain.StrengthMedium)
		assert.Equal(t, want, got, "review count %d", count)
	}
}

func TestNextIntervalBeyondTable(t *testing.T) {
	t.Parallel()
	s := NewScheduler(nil)

	// Past the table the interval grows by the fixed ease factor, clamped
	// to the maximum.
	got := s.NextInterval(180, true, 6, domain.StrengthMedium)
	assert.Equal(t, 365, got, "180 * 2.5 = 450 clamps to max")

	got = s.NextInterval(100, true, 9, domain.StrengthMedium)
	assert.Equal(t, 250, got)

	// The last table index still uses the table entry; the ease factor
	// only applies once the review count moves past it.
	assert.Equal(t, 180, s.NextInterval(180, true, 5, domain.StrengthMedium))
	assert.Equal(t, 270, s.NextInterval(180, true, 5, domain.StrengthLow), "180 * 1.5, not 180 * 2.5 * 1.5")
}

func TestNextIntervalStrengthScaling(t *testing.T) {
	t.Parallel()
	s := NewScheduler(nil)

	t.Run("low stretches intervals", func(t *testing.T) {
		assert.Equal(t, 9, s.NextInterval(1, true, 1, domain.StrengthLow), "6 * 1.5")
		assert.Equal(t, 21, s.NextInterval(6, true, 2, domain.StrengthLow), "14 * 1.5")
		assert.Equal(t, 365, s.NextInterval(180, true, 6, domain.StrengthLow), "450 * 1.5 clamps to max")
	})

	t.Run("high compresses intervals", func(t *testing.T) {
		assert.Equal(t, 4, s.NextInterval(1, true, 1, domain.StrengthHigh), "floor(6 * 0.7)")
		for count := 0; count < 8; count++ {
			high := s.NextInterval(50, true, count, domain.StrengthHigh)
			medium := s.NextInterval(50, true, count, domain.StrengthMedium)
			assert.LessOrEqual(t, high, medium, "review count %d", count)
			assert.GreaterOrEqual(t, high, 1)
		}
	})

	t.Run("empty strength behaves as medium", func(t *testing.T) {
		assert.Equal(t, 6, s.NextInterval(1, true, 1, ""))
	})

	t.Run("high on first review clamps up to minimum", func(t *testing.T) {
		// floor(1 * 0.7) = 0, which is below the minimum interval.
		assert.Equal(t, 1, s.NextInterval(1, true, 0, domain.StrengthHigh))
	})
}

func TestNextIntervalIncorrectResets(t *testing.T) {
	t.Parallel()
	s := NewScheduler(nil)

	// An incorrect answer is a hard reset regardless of history or
	// strength.
	cases := []struct {
		name     string
		interval int
		count    int
		strength domain.StrengthLevel
	}{
		{"fresh card", 1, 0, domain.StrengthMedium},
		{"mature card", 180, 5, domain.StrengthMedium},
		{"beyond table", 365, 12, domain.StrengthLow},
		{"high strength", 90, 4, domain.StrengthHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, 1, s.NextInterval(tc.interval, false, tc.count, tc.strength))
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()
	s := NewScheduler(nil)
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("correct answer graduates the card", func(t *testing.T) {
		record := domain.NewReviewRecord("card-1")
		outcome := domain.ReviewOutcome{CardID: "card-1", Correct: true, Strength: domain.StrengthMedium}

		upd := s.Apply(record, outcome, now)

		assert.Equal(t, "card-1", upd.CardID)
		assert.Equal(t, domain.StatusKnown, upd.Status)
		assert.Equal(t, 1, upd.IntervalDays)
		assert.Equal(t, 1, upd.ReviewCount)
		assert.Equal(t, now, upd.LastReviewedAt)

		// Input record is untouched.
		assert.Equal(t, domain.StatusNew, record.Status)
		assert.Equal(t, 0, record.ReviewCount)
	})

	t.Run("incorrect answer marks the card due", func(t *testing.T) {
		record := domain.ReviewRecord{
			CardID:       "card-2",
			Status:       domain.StatusKnown,
			IntervalDays: 90,
			ReviewCount:  4,
		}
		outcome := domain.ReviewOutcome{CardID: "card-2", Correct: false, Strength: domain.StrengthMedium}

		upd := s.Apply(record, outcome, now)

		assert.Equal(t, domain.StatusDue, upd.Status)
		assert.Equal(t, 1, upd.IntervalDays)
		assert.Equal(t, 5, upd.ReviewCount, "incorrect answers still advance the review count")
	})

	t.Run("successive applies walk the table", func(t *testing.T) {
		record := domain.NewReviewRecord("card-3")
		outcome := domain.ReviewOutcome{CardID: "card-3", Correct: true, Strength: domain.StrengthMedium}

		intervals := make([]int, 0, 6)
		for i := 0; i < 6; i++ {
			upd := s.Apply(record, outcome, now)
			intervals = append(intervals, upd.IntervalDays)
			record = upd.Record()
		}
		assert.Equal(t, []int{1, 6, 14, 30, 90, 180}, intervals)
	})
}
