package domain

import "errors"

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardLessonIDEmpty is returned when a card's lesson ID is empty.
	ErrCardLessonIDEmpty = errors.New("card lesson ID cannot be empty")

	// ErrCardHanziEmpty is returned when a card has no front text.
	ErrCardHanziEmpty = errors.New("card hanzi cannot be empty")

	// ErrCardTranslationEmpty is returned when a card has no back text.
	ErrCardTranslationEmpty = errors.New("card translation cannot be empty")
)

// Card represents a single static flashcard from the vocabulary catalog.
// Cards are loaded once at startup, are immutable for the process lifetime,
// and carry no per-user state.
type Card struct {
	ID          string `json:"id"`
	LessonID    string `json:"lesson_id"`
	Hanzi       string `json:"hanzi"`
	Pinyin      string `json:"pinyin"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == "" {
		return ErrCardIDEmpty
	}

	if c.LessonID == "" {
		return ErrCardLessonIDEmpty
	}

	if c.Hanzi == "" {
		return ErrCardHanziEmpty
	}

	if c.Translation == "" {
		return ErrCardTranslationEmpty
	}

	return nil
}
