package deck

import (
	"strings"

	"github.com/tandemchat/backend/internal/models"
	"github.com/tandemchat/backend/internal/textnorm"
)

// detectSample is how many note fronts feed language detection. Short decks
// give the detector less context; detection then just falls back to "en".
const detectSample = 20

// langProfiles hold high-frequency function words per detectable language.
// Accents are pre-stripped to match normalized tokens.
var langProfiles = map[string][]string{
	"en": {"the", "a", "an", "and", "of", "to", "in", "is", "it", "you", "that", "for", "with", "not"},
	"de": {"der", "die", "das", "und", "ist", "ich", "nicht", "ein", "eine", "zu", "den", "mit", "sich", "auf"},
	"fr": {"le", "la", "les", "et", "est", "je", "un", "une", "de", "pas", "que", "pour", "dans", "avec"},
	"es": {"el", "la", "los", "las", "y", "es", "un", "una", "de", "no", "que", "por", "con", "para"},
	"it": {"il", "la", "gli", "e", "che", "un", "una", "di", "non", "per", "sono", "con"},
	"pt": {"o", "a", "os", "as", "e", "um", "uma", "de", "nao", "que", "para", "com"},
	"nl": {"de", "het", "een", "en", "is", "ik", "niet", "van", "dat", "op", "te", "met"},
}

// DetectLanguage guesses the deck's language from the fronts of its first
// notes by counting function-word hits against per-language profiles. Ties
// and empty decks resolve to "en". Callers treat the result as a one-shot
// default; it becomes sticky on the session afterwards.
func DetectLanguage(notes []models.Note) string {
	if len(notes) == 0 {
		return "en"
	}
	sample := notes
	if len(sample) > detectSample {
		sample = sample[:detectSample]
	}

	var fronts []string
	for _, n := range sample {
		fronts = append(fronts, n.Front)
	}
	tokens := textnorm.Tokenize(textnorm.Normalize(strings.Join(fronts, " ")))
	if len(tokens) == 0 {
		return "en"
	}

	tokenSet := toSet(tokens)
	best, bestHits := "en", 0
	for lang, profile := range langProfiles {
		hits := 0
		for _, w := range profile {
			if _, ok := tokenSet[w]; ok {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = lang, hits
		}
	}
	return best
}
