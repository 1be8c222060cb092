package domain

import (
	"errors"
	"time"
)

// Status represents the review state of a card for a particular user.
type Status string

// Possible review status values
const (
	// StatusNew marks a card that has never been reviewed.
	StatusNew Status = "new"

	// StatusDue marks a card that needs review now, either because the
	// last answer was incorrect or its interval has elapsed.
	StatusDue Status = "due"

	// StatusKnown marks a card that was answered correctly and is not
	// yet due again.
	StatusKnown Status = "known"
)

// IsValid reports whether s is one of the defined status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusDue, StatusKnown:
		return true
	default:
		return false
	}
}

// StrengthLevel is a caller-selected modifier that stretches or
// compresses review intervals. Low means a more relaxed pace with
// longer spacing, High means tighter spacing and more frequent
// drilling. The documented default is Medium.
type StrengthLevel string

// Possible strength level values
const (
	StrengthLow    StrengthLevel = "low"
	StrengthMedium StrengthLevel = "medium"
	StrengthHigh   StrengthLevel = "high"
)

// IsValid reports whether l is one of the defined strength levels.
func (l StrengthLevel) IsValid() bool {
	switch l {
	case StrengthLow, StrengthMedium, StrengthHigh:
		return true
	default:
		return false
	}
}

// Common validation errors for review state
var (
	ErrEmptyRecordCardID    = errors.New("review record card ID cannot be empty")
	ErrInvalidStatus        = errors.New("invalid review status")
	ErrInvalidInterval      = errors.New("interval must be greater than or equal to 1")
	ErrInvalidReviewCount   = errors.New("review count must be greater than or equal to 0")
	ErrInvalidStrengthLevel = errors.New("invalid strength level")
)

// ReviewRecord tracks a user's spaced repetition state for a single card.
// Records are created lazily on the first review outcome; a card with no
// record is always treated as the default returned by NewReviewRecord.
// Records are never hard-deleted: a reset is a mutation back to defaults.
type ReviewRecord struct {
	CardID         string     `json:"card_id"`
	Status         Status     `json:"status"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	IntervalDays   int        `json:"interval_days"`
	ReviewCount    int        `json:"review_count"`
}

// NewReviewRecord returns the default record for a card that has never
// been reviewed: status New, interval 1 day, no last-reviewed timestamp.
func NewReviewRecord(cardID string) ReviewRecord {
	return ReviewRecord{
		CardID:       cardID,
		Status:       StatusNew,
		IntervalDays: 1,
		ReviewCount:  0,
	}
}

// Validate checks if the ReviewRecord has valid data.
// Returns an error if any field fails validation.
func (r *ReviewRecord) Validate() error {
	if r.CardID == "" {
		return ErrEmptyRecordCardID
	}

	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}

	if r.IntervalDays < 1 {
		return ErrInvalidInterval
	}

	if r.ReviewCount < 0 {
		return ErrInvalidReviewCount
	}

	return nil
}

// ReviewOutcome is the transient message produced when a user answers a
// card. It is consumed exactly once by the write queue and is never
// persisted as its own record.
type ReviewOutcome struct {
	CardID   string        `json:"card_id"`
	Correct  bool          `json:"correct"`
	Strength StrengthLevel `json:"strength"`
}

// Validate checks if the ReviewOutcome has valid data. An empty strength
// level is allowed and interpreted as Medium by the scheduler.
func (o *ReviewOutcome) Validate() error {
	if o.CardID == "" {
		return ErrEmptyRecordCardID
	}

	if o.Strength != "" && !o.Strength.IsValid() {
		return ErrInvalidStrengthLevel
	}

	return nil
}

// ComputedUpdate is the already-scheduled next state for a card, produced
// by the interval scheduler and transported to the review store as-is.
// The store never computes scheduling; it only persists these values.
type ComputedUpdate struct {
	CardID         string    `json:"card_id"`
	Status         Status    `json:"status"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	IntervalDays   int       `json:"interval_days"`
	ReviewCount    int       `json:"review_count"`
}

// Record converts the update into the equivalent ReviewRecord. A zero
// last-reviewed timestamp (a reset) maps to a nil pointer.
func (u ComputedUpdate) Record() ReviewRecord {
	rec := ReviewRecord{
		CardID:       u.CardID,
		Status:       u.Status,
		IntervalDays: u.IntervalDays,
		ReviewCount:  u.ReviewCount,
	}
	if !u.LastReviewedAt.IsZero() {
		reviewed := u.LastReviewedAt
		rec.LastReviewedAt = &reviewed
	}
	return rec
}

// MergedCard combines static card content with the user's review state
// into a display-ready view. It is recomputed on every merge and holds no
// independent identity. Loading is true while the remote review state has
// not yet been reconciled and the record shown is a local default.
type MergedCard struct {
	Card    Card         `json:"card"`
	Record  ReviewRecord `json:"record"`
	Loading bool         `json:"loading"`
}
