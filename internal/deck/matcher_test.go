package deck

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemchat/backend/internal/lemma"
	"github.com/tandemchat/backend/internal/models"
)

func newTestEngine() *Engine {
	return NewEngine(lemma.New())
}

func notesOf(fronts ...string) []models.Note {
	notes := make([]models.Note, len(fronts))
	for i, f := range fronts {
		notes[i] = models.Note{ID: fmt.Sprintf("%d", i+1), Front: f}
	}
	return notes
}

func TestBasicExactMatch(t *testing.T) {
	e := newTestEngine()
	matches, _, _ := e.FindMatches("I would like an apple please.", notesOf("apple"), "en")
	require.Len(t, matches, 1)
	assert.Equal(t, "apple", matches[0].Front)
}

func TestEnglishLemmatization(t *testing.T) {
	e := newTestEngine()
	matches, _, _ := e.FindMatches("He is eating lunch.", notesOf("eat"), "en")
	require.Len(t, matches, 1)
	assert.Equal(t, "eat", matches[0].Front)
}

func TestGermanBasics(t *testing.T) {
	e := newTestEngine()
	matches, _, _ := e.FindMatches("Ich esse einen Apfel.", notesOf("Apfel"), "de")
	assert.Len(t, matches, 1)
}

func TestGermanLemmatization(t *testing.T) {
	e := newTestEngine()
	matches, _, _ := e.FindMatches("Er ging nach Hause.", notesOf("gehen"), "de")
	require.Len(t, matches, 1)
	assert.Equal(t, "gehen", matches[0].Front)
}

func TestGermanAccentNormalization(t *testing.T) {
	// Card "Über" matches a user too lazy for umlauts.
	e := newTestEngine()
	matches, _, _ := e.FindMatches("Das ist uber alles.", notesOf("Über"), "de")
	assert.Len(t, matches, 1)
}

func TestMultiWordExact(t *testing.T) {
	e := newTestEngine()
	matches, _, _ := e.FindMatches("I ate a hot dog today.", notesOf("hot dog"), "en")
	assert.Len(t, matches, 1)
}

func TestPhraseRequiresAdjacency(t *testing.T) {
	e := newTestEngine()
	matches, _, _ := e.FindMatches("It is hot outside and the dog barked.", notesOf("hot dog"), "en")
	assert.Empty(t, matches)

	matches, _, _ = e.FindMatches("the hot outside dog", notesOf("hot dog"), "en")
	assert.Empty(t, matches)
}

func TestNoSubstringFalsePositive(t *testing.T) {
	// "cat" must not match inside "dedication".
	e := newTestEngine()
	matches, _, _ := e.FindMatches("I have a lot of dedication.", notesOf("cat"), "en")
	assert.Empty(t, matches)
}

func TestPunctuationHandling(t *testing.T) {
	e := newTestEngine()
	matches, _, _ := e.FindMatches("Hello, world!", notesOf("hello"), "en")
	assert.Len(t, matches, 1)
}

func TestCardCasingNormalization(t *testing.T) {
	e := newTestEngine()
	matches, _, _ := e.FindMatches("I want an apple.", notesOf("Apple"), "en")
	assert.Len(t, matches, 1)
}

func TestStopWordCardMatchesTrivially(t *testing.T) {
	// A card for "a" triggers on any sentence containing it. Accepted
	// behavior with the filter off.
	e := newTestEngine()
	matches, _, _ := e.FindMatches("I have a cat.", notesOf("a"), "en")
	assert.Len(t, matches, 1)
}

func TestMinFrontLenFiltersShortCards(t *testing.T) {
	e := newTestEngine()
	e.MinFrontLen = 3
	matches, _, _ := e.FindMatches("I have a cat.", notesOf("a", "cat"), "en")
	require.Len(t, matches, 1)
	assert.Equal(t, "cat", matches[0].Front)
}

func TestMatcherMonotonicity(t *testing.T) {
	// Adding unrelated notes never changes whether an existing note
	// matches.
	e := newTestEngine()
	content := "He is eating lunch."

	small := notesOf("eat")
	large := notesOf("eat", "zebra", "quantum", "hot dog", "banana")

	smallMatches, _, _ := e.FindMatches(content, small, "en")
	largeMatches, _, _ := e.FindMatches(content, large, "en")

	require.Len(t, smallMatches, 1)
	require.Len(t, largeMatches, 1)
	assert.Equal(t, smallMatches[0].Front, largeMatches[0].Front)
}

func TestEmptyContentAndEmptyDeck(t *testing.T) {
	e := newTestEngine()
	matches, _, changed := e.FindMatches("", notesOf("apple"), "en")
	assert.Empty(t, matches)
	assert.False(t, changed)

	matches, _, _ = e.FindMatches("hello", nil, "en")
	assert.Empty(t, matches)
}

func TestPrecomputeTriggeredLazily(t *testing.T) {
	e := newTestEngine()
	notes := notesOf("run")
	require.False(t, notes[0].HasFeatures())

	matches, updated, changed := e.FindMatches("run", notes, "en")
	assert.Len(t, matches, 1)
	assert.True(t, changed)
	require.Len(t, updated, 1)
	assert.Equal(t, []string{"run"}, updated[0].FrontLemmas)

	// Input notes stay untouched.
	assert.False(t, notes[0].HasFeatures())

	// A second pass over the refreshed collection reports no change.
	_, _, changed = e.FindMatches("run", updated, "en")
	assert.False(t, changed)
}

func TestSubstringFallbackForLongPhrases(t *testing.T) {
	// Phrases longer than the n-gram ceiling cannot match via branch (c);
	// the normalized substring fallback still catches the literal phrase.
	e := newTestEngine()
	front := "the quick brown fox jumps over the lazy dog"
	matches, _, _ := e.FindMatches("She said: the quick brown fox jumps over the lazy dog!", notesOf(front), "en")
	require.Len(t, matches, 1)
	assert.Equal(t, front, matches[0].Front)
}

func TestJapaneseDegradation(t *testing.T) {
	// Unsegmented Japanese tokenizes to a whole-phrase token, so a
	// single-word card cannot match inside a sentence. Documented
	// limitation.
	e := newTestEngine()
	matches, _, _ := e.FindMatches("私はすしを食べます", notesOf("すし"), "ja")
	assert.Empty(t, matches)

	// A mark-free card still matches the exact phrase alone.
	matches, _, _ = e.FindMatches("すし", notesOf("すし"), "ja")
	assert.Len(t, matches, 1)

	// Cards carrying voicing marks degrade further: normalization strips
	// the dakuten from the note front while message tokens stay raw, so
	// even the exact phrase misses.
	matches, _, _ = e.FindMatches("りんご", notesOf("りんご"), "ja")
	assert.Empty(t, matches)
}

func TestLargeDeckPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}
	e := newTestEngine()

	var fronts []string
	for i := 0; i < 5000; i++ {
		fronts = append(fronts, fmt.Sprintf("word%d", i))
	}
	fronts = append(fronts, "extraordinary", "persistence")
	notes := notesOf(fronts...)

	// Warm the feature cache the way a deck activation would.
	_, notes, _ = e.FindMatches("warmup", notes, "en")

	content := ""
	for i := 0; i < 250; i++ {
		content += "bla "
	}
	content += "extraordinary "
	for i := 0; i < 250; i++ {
		content += "foo "
	}
	content += "persistence."

	matches, _, _ := e.FindMatches(content, notes, "en")
	assert.GreaterOrEqual(t, len(matches), 2)
}

func BenchmarkFindMatchesLargeDeck(b *testing.B) {
	e := newTestEngine()
	var fronts []string
	for i := 0; i < 2000; i++ {
		fronts = append(fronts, fmt.Sprintf("word%d", i))
	}
	notes := notesOf(fronts...)
	_, notes, _ = e.FindMatches("warmup", notes, "en")
	content := "He is eating lunch with extraordinary persistence today."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.FindMatches(content, notes, "en")
	}
}
