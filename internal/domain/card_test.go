package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardValidate(t *testing.T) {
	t.Parallel()

	valid := Card{
		ID:          "hsk1-001",
		LessonID:    "hsk1-lesson1",
		Hanzi:       "你好",
		Pinyin:      "nǐ hǎo",
		Translation: "hello",
	}

	tests := []struct {
		name    string
		mutate  func(c *Card)
		wantErr error
	}{
		{"valid card", func(c *Card) {}, nil},
		{"empty ID", func(c *Card) { c.ID = "" }, ErrCardIDEmpty},
		{"empty lesson ID", func(c *Card) { c.LessonID = "" }, ErrCardLessonIDEmpty},
		{"empty hanzi", func(c *Card) { c.Hanzi = "" }, ErrCardHanziEmpty},
		{"empty translation", func(c *Card) { c.Translation = "" }, ErrCardTranslationEmpty},
		{"empty example is allowed", func(c *Card) { c.Example = "" }, nil},
		{"empty pinyin is allowed", func(c *Card) { c.Pinyin = "" }, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			card := valid
			tc.mutate(&card)
			err := card.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
