package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemchat/backend/internal/lemma"
	"github.com/tandemchat/backend/internal/models"
)

func TestPrecomputeFillsFeatures(t *testing.T) {
	lem := lemma.New()
	notes := []models.Note{{ID: "1", Front: "Über"}}

	out, changed := Precompute(lem, notes, "de")
	require.True(t, changed)
	require.Len(t, out, 1)

	n := out[0]
	assert.Equal(t, "uber", n.NormalizedFront)
	assert.Equal(t, "de", n.Lang)
	assert.Equal(t, []string{"uber"}, n.FrontTokens)
	assert.Len(t, n.FrontLemmas, len(n.FrontTokens))
	assert.Equal(t, n.FrontLemmas[0], n.SingleWordLemma)
}

func TestPrecomputeDoesNotMutateInput(t *testing.T) {
	lem := lemma.New()
	notes := []models.Note{{ID: "1", Front: "gehen"}}

	_, changed := Precompute(lem, notes, "de")
	assert.True(t, changed)
	assert.Empty(t, notes[0].NormalizedFront)
	assert.Nil(t, notes[0].FrontLemmas)
}

func TestPrecomputeDeterministic(t *testing.T) {
	lem := lemma.New()
	notes := []models.Note{{ID: "1", Front: "eating apples"}, {ID: "2", Front: "run"}}

	first, changed := Precompute(lem, notes, "en")
	require.True(t, changed)

	second, changed := Precompute(lem, first, "en")
	require.False(t, changed, "identical inputs must not report a spurious change")
	assert.Equal(t, first, second)
}

func TestPrecomputeRecomputesOnLanguageChange(t *testing.T) {
	lem := lemma.New()
	notes := []models.Note{{ID: "1", Front: "ging"}}

	out, _ := Precompute(lem, notes, "en")
	enLemma := out[0].FrontLemmas[0]

	out, changed := Precompute(lem, out, "de")
	require.True(t, changed)
	assert.Equal(t, "de", out[0].Lang)
	assert.Equal(t, "gehen", out[0].FrontLemmas[0])
	assert.NotEqual(t, enLemma, out[0].FrontLemmas[0])
}

func TestPrecomputeNoteLanguageOverride(t *testing.T) {
	lem := lemma.New()
	notes := []models.Note{
		{ID: "1", Front: "ging", Language: "de"},
		{ID: "2", Front: "eating"},
	}

	out, _ := Precompute(lem, notes, "en")
	assert.Equal(t, "de", out[0].Lang)
	assert.Equal(t, "gehen", out[0].FrontLemmas[0])
	assert.Equal(t, "en", out[1].Lang)
	assert.Equal(t, "eat", out[1].FrontLemmas[0])
}

func TestPrecomputeTruncatesLanguageTag(t *testing.T) {
	lem := lemma.New()
	notes := []models.Note{{ID: "1", Front: "hallo"}}

	out, _ := Precompute(lem, notes, "de-DE")
	assert.Equal(t, "de", out[0].Lang)
}

func TestPrecomputeSingleWordFlag(t *testing.T) {
	lem := lemma.New()
	notes := []models.Note{
		{ID: "1", Front: "apple"},
		{ID: "2", Front: "hot dog"},
		{ID: "3", Front: ""},
	}

	out, _ := Precompute(lem, notes, "en")
	assert.NotEmpty(t, out[0].SingleWordLemma)
	assert.Empty(t, out[1].SingleWordLemma, "multi-word notes carry no single-word lemma")
	assert.Empty(t, out[2].SingleWordLemma)
	assert.Len(t, out[1].FrontTokens, 2)
	assert.Len(t, out[1].FrontLemmas, 2)
}

func TestNGramSet(t *testing.T) {
	set := ngramSet([]string{"a", "b", "c"}, 2)
	assert.Contains(t, set, "a")
	assert.Contains(t, set, "b c")
	assert.NotContains(t, set, "a b c")
	assert.Contains(t, ngramSet([]string{"a", "b", "c"}, 6), "a b c")
	assert.Empty(t, ngramSet(nil, 6))
}
