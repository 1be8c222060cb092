// Package catalog provides the immutable in-memory card catalog. The
// catalog is loaded once at startup and is safe for unsynchronized
// concurrent reads; it performs no I/O after load.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hanzideck/hanzideck-api/internal/domain"
)

// Catalog-specific errors
var (
	// ErrEmptyCatalog is returned when a catalog is built with no cards.
	ErrEmptyCatalog = errors.New("catalog cannot be empty")

	// ErrDuplicateCardID is returned when two catalog cards share an ID.
	ErrDuplicateCardID = errors.New("duplicate card ID in catalog")
)

// Catalog is an immutable lookup from card identifier to card content,
// with a secondary index by lesson.
type Catalog struct {
	byID     map[string]domain.Card
	byLesson map[string][]domain.Card
	ordered  []domain.Card
}

// New builds a Catalog from the given cards. Every card is validated and
// card IDs must be unique across the whole catalog.
func New(cards []domain.Card) (*Catalog, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		byID:     make(map[string]domain.Card, len(cards)),
		byLesson: make(map[string][]domain.Card),
		ordered:  make([]domain.Card, 0, len(cards)),
	}

	for i := range cards {
		card := cards[i]
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("invalid card at index %d: %w", i, err)
		}
		if _, exists := c.byID[card.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCardID, card.ID)
		}
		c.byID[card.ID] = card
		c.byLesson[card.LessonID] = append(c.byLesson[card.LessonID], card)
		c.ordered = append(c.ordered, card)
	}

	return c, nil
}

// Get returns the card with the given ID, if present.
func (c *Catalog) Get(id string) (domain.Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Has reports whether a card with the given ID exists in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Lesson returns the cards belonging to the given lesson, in catalog
// order. The returned slice is a copy; callers may not mutate catalog
// state through it. An unknown lesson yields an empty slice.
func (c *Catalog) Lesson(lessonID string) []domain.Card {
	cards := c.byLesson[lessonID]
	out := make([]domain.Card, len(cards))
	copy(out, cards)
	return out
}

// All returns every card in the catalog, in load order, as a copy.
func (c *Catalog) All() []domain.Card {
	out := make([]domain.Card, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// IDs returns the identifiers of every card in the catalog, in load
// order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.ordered))
	for _, card := range c.ordered {
		ids = append(ids, card.ID)
	}
	return ids
}

// catalogFile is the on-disk shape of the catalog content file.
type catalogFile struct {
	Cards []domain.Card `json:"cards"`
}

// Load reads a catalog JSON file from disk and builds a Catalog from it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return New(file.Cards)
}
