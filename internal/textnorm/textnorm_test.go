package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsAccents(t *testing.T) {
	assert.Equal(t, "uber", Normalize("Über"))
	assert.Equal(t, "cafe", Normalize("Café"))
	assert.Equal(t, "francais", Normalize("Français"))
}

func TestNormalizeTrimsAndLowercases(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("  Hello World  "))
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Über alles", "Càfé au LAIT!", "hello", "", "北京", "  mixed Ünïcøde  "}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestTokenizeDropsPunctuation(t *testing.T) {
	assert.Equal(t, []string{"Hello", "world"}, Tokenize("Hello, world!"))
	assert.Equal(t, []string{"don", "t", "stop"}, Tokenize("don't stop"))
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Nil(t, Tokenize("...!?"))
}

func TestTokenizeUnsegmentedCJKIsSingleToken(t *testing.T) {
	// No inter-word spacing means the whole phrase stays one token.
	assert.Equal(t, []string{"私はりんごを食べます"}, Tokenize("私はりんごを食べます"))
}

func TestTokenizeDigitsAndUnderscore(t *testing.T) {
	assert.Equal(t, []string{"word_1", "word2"}, Tokenize("word_1 word2."))
}
