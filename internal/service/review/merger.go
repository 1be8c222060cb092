// Package review implements the status engine facade: merging the
// static catalog with per-user review state, resolving the due set, and
// routing review outcomes through the write queue.
package review

import (
	"time"

	"github.com/hanzideck/hanzideck-api/internal/domain"
)

// Merge combines static catalog cards with a user's review records into
// display-ready merged cards. It is pure, total, and deterministic:
// cards with no record get the default new-card record, and there is no
// error path. The same function serves both "cards for lesson X" and
// "all cards across lessons"; only the input slice differs.
func Merge(cards []domain.Card, records map[string]domain.ReviewRecord) []domain.MergedCard {
	merged := make([]domain.MergedCard, 0, len(cards))
	for _, card := range cards {
		record, ok := records[card.ID]
		if !ok {
			record = domain.NewReviewRecord(card.ID)
		}
		merged = append(merged, domain.MergedCard{
			Card:   card,
			Record: record,
		})
	}
	return merged
}

// IsDue reports whether a record is due for review at the given time.
// New and Due cards are always due. Known cards become due once the
// absolute duration since the last review reaches the interval; no
// local-day-boundary rounding is applied.
func IsDue(record domain.ReviewRecord, now time.Time) bool {
	switch record.Status {
	case domain.StatusNew, domain.StatusDue:
		return true
	case domain.StatusKnown:
		if record.LastReviewedAt == nil {
			return true
		}
		next := record.LastReviewedAt.Add(time.Duration(record.IntervalDays) * 24 * time.Hour)
		return !now.Before(next)
	default:
		return false
	}
}

// CountDue returns how many of the merged cards are due at the given
// time. It is cheap enough to recompute on every poll; callers that
// poll aggressively should still sit behind a short-TTL cache.
func CountDue(merged []domain.MergedCard, now time.Time) int {
	count := 0
	for _, m := range merged {
		if IsDue(m.Record, now) {
			count++
		}
	}
	return count
}

// DueCards filters the merged set down to the cards due at the given
// time, preserving order.
func DueCards(merged []domain.MergedCard, now time.Time) []domain.MergedCard {
	due := make([]domain.MergedCard, 0, len(merged))
	for _, m := range merged {
		if IsDue(m.Record, now) {
			due = append(due, m)
		}
	}
	return due
}
