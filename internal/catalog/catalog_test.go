package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hanzideck/hanzideck-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCards() []domain.Card {
	return []domain.Card{
		{ID: "hsk1-001", LessonID: "lesson-1", Hanzi: "你好", Pinyin: "nǐ hǎo", Translation: "hello"},
		{ID: "hsk1-002", LessonID: "lesson-1", Hanzi: "谢谢", Pinyin: "xièxie", Translation: "thanks"},
		{ID: "hsk1-003", LessonID: "lesson-2", Hanzi: "再见", Pinyin: "zàijiàn", Translation: "goodbye"},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	cat, err := New(testCards())
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	assert.True(t, cat.Has("hsk1-001"))
	assert.False(t, cat.Has("hsk9-999"))

	card, ok := cat.Get("hsk1-002")
	require.True(t, ok)
	assert.Equal(t, "谢谢", card.Hanzi)

	assert.Equal(t, []string{"hsk1-001", "hsk1-002", "hsk1-003"}, cat.IDs())
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	cards := testCards()
	cards[2].ID = cards[0].ID

	_, err := New(cards)
	assert.ErrorIs(t, err, ErrDuplicateCardID)
}

func TestNewRejectsInvalidCard(t *testing.T) {
	t.Parallel()

	cards := testCards()
	cards[1].Translation = ""

	_, err := New(cards)
	assert.ErrorIs(t, err, domain.ErrCardTranslationEmpty)
}

func TestLesson(t *testing.T) {
	t.Parallel()

	cat, err := New(testCards())
	require.NoError(t, err)

	lesson1 := cat.Lesson("lesson-1")
	require.Len(t, lesson1, 2)
	assert.Equal(t, "hsk1-001", lesson1[0].ID)
	assert.Equal(t, "hsk1-002", lesson1[1].ID)

	assert.Empty(t, cat.Lesson("lesson-99"))

	// The returned slice is a copy; mutating it must not leak into the
	// catalog.
	lesson1[0].Hanzi = "mutated"
	fresh := cat.Lesson("lesson-1")
	assert.Equal(t, "你好", fresh[0].Hanzi)
}

func TestAll(t *testing.T) {
	t.Parallel()

	cat, err := New(testCards())
	require.NoError(t, err)

	all := cat.All()
	require.Len(t, all, 3)

	all[0].Translation = "mutated"
	assert.Equal(t, "hello", cat.All()[0].Translation)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	content := `{
		"cards": [
			{"id": "hsk1-001", "lesson_id": "lesson-1", "hanzi": "你好", "pinyin": "nǐ hǎo", "translation": "hello"},
			{"id": "hsk1-002", "lesson_id": "lesson-1", "hanzi": "谢谢", "pinyin": "xièxie", "translation": "thanks", "example": "谢谢你"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	card, ok := cat.Get("hsk1-002")
	require.True(t, ok)
	assert.Equal(t, "谢谢你", card.Example)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadMalformedJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
