package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewRecord(t *testing.T) {
	t.Parallel()

	record := NewReviewRecord("card-1")

	assert.Equal(t, "card-1", record.CardID)
	assert.Equal(t, StatusNew, record.Status)
	assert.Nil(t, record.LastReviewedAt)
	assert.Equal(t, 1, record.IntervalDays)
	assert.Equal(t, 0, record.ReviewCount)
	assert.NoError(t, record.Validate())
}

func TestReviewRecordValidate(t *testing.T) {
	t.Parallel()

	valid := NewReviewRecord("card-1")

	tests := []struct {
		name    string
		mutate  func(r *ReviewRecord)
		wantErr error
	}{
		{"valid record", func(r *ReviewRecord) {}, nil},
		{"empty card ID", func(r *ReviewRecord) { r.CardID = "" }, ErrEmptyRecordCardID},
		{"invalid status", func(r *ReviewRecord) { r.Status = "archived" }, ErrInvalidStatus},
		{"zero interval", func(r *ReviewRecord) { r.IntervalDays = 0 }, ErrInvalidInterval},
		{"negative review count", func(r *ReviewRecord) { r.ReviewCount = -1 }, ErrInvalidReviewCount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := valid
			tc.mutate(&record)
			err := record.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestReviewOutcomeValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid outcome", func(t *testing.T) {
		outcome := ReviewOutcome{CardID: "card-1", Correct: true, Strength: StrengthHigh}
		assert.NoError(t, outcome.Validate())
	})

	t.Run("empty strength is allowed", func(t *testing.T) {
		outcome := ReviewOutcome{CardID: "card-1", Correct: false}
		assert.NoError(t, outcome.Validate())
	})

	t.Run("empty card ID", func(t *testing.T) {
		outcome := ReviewOutcome{Correct: true}
		assert.ErrorIs(t, outcome.Validate(), ErrEmptyRecordCardID)
	})

	t.Run("unknown strength", func(t *testing.T) {
		outcome := ReviewOutcome{CardID: "card-1", Strength: "extreme"}
		assert.ErrorIs(t, outcome.Validate(), ErrInvalidStrengthLevel)
	})
}

func TestComputedUpdateRecord(t *testing.T) {
	t.Parallel()

	t.Run("reviewed update carries the timestamp", func(t *testing.T) {
		now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
		upd := ComputedUpdate{
			CardID:         "card-1",
			Status:         StatusKnown,
			LastReviewedAt: now,
			IntervalDays:   6,
			ReviewCount:    2,
		}

		record := upd.Record()
		require.NotNil(t, record.LastReviewedAt)
		assert.Equal(t, now, *record.LastReviewedAt)
		assert.Equal(t, StatusKnown, record.Status)
		assert.Equal(t, 6, record.IntervalDays)
		assert.Equal(t, 2, record.ReviewCount)
	})

	t.Run("reset update maps zero time to nil", func(t *testing.T) {
		upd := ComputedUpdate{
			CardID:       "card-1",
			Status:       StatusNew,
			IntervalDays: 1,
		}

		record := upd.Record()
		assert.Nil(t, record.LastReviewedAt)
		assert.Equal(t, NewReviewRecord("card-1"), record)
	})
}

func TestStatusIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusNew.IsValid())
	assert.True(t, StatusDue.IsValid())
	assert.True(t, StatusKnown.IsValid())
	assert.False(t, Status("").IsValid())
	assert.False(t, Status("learned").IsValid())
}

func TestStrengthLevelIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, StrengthLow.IsValid())
	assert.True(t, StrengthMedium.IsValid())
	assert.True(t, StrengthHigh.IsValid())
	assert.False(t, StrengthLevel("").IsValid())
	assert.False(t, StrengthLevel("max").IsValid())
}
