package srs

import (
	"github.com/hanzideck/hanzideck-api/internal/domain"
)

// Params defines all configurable parameters for the interval scheduler.
type Params struct {
	// ProgressiveIntervals is the fixed graduation table, indexed by
	// review count, giving the interval in days for each successful
	// review while the card is still graduating.
	ProgressiveIntervals []int

	// EaseFactor is the fixed growth multiplier applied once the review
	// count moves beyond the graduation table.
	EaseFactor float64

	// StrengthMultipliers maps each strength level to its interval
	// multiplier.
	StrengthMultipliers map[domain.StrengthLevel]float64

	// MinIntervalDays and MaxIntervalDays clamp every computed interval.
	MinIntervalDays int
	MaxIntervalDays int
}

// NewDefaultParams creates a new Params instance with the production
// values. The graduation table and multiplier set must not change:
// existing review data was scheduled against them, and altering either
// shifts the due date of every previously scheduled card.
func NewDefaultParams() *Params {
	return &Params{
		ProgressiveIntervals: []int{1, 6, 14, 30, 90, 180},

		EaseFactor: 2.5,

		StrengthMultipliers: map[domain.StrengthLevel]float64{
			domain.StrengthLow:    1.5,
			domain.StrengthMedium: 1.0,
			domain.StrengthHigh:   0.7,
		},

		MinIntervalDays: 1,
		MaxIntervalDays: 365,
	}
}

// multiplier returns the interval multiplier for the given strength
// level. An empty or unknown level falls back to Medium.
func (p *Params) multiplier(level domain.StrengthLevel) float64 {
	if m, ok := p.StrengthMultipliers[level]; ok {
		return m
	}
	return p.StrengthMultipliers[domain.StrengthMedium]
}
