package deck

import (
	"strings"

	"github.com/tandemchat/backend/internal/models"
	"github.com/tandemchat/backend/internal/textnorm"
)

// Engine matches chat messages against a deck's notes. Single-word notes
// resolve with O(1) set lookups; multi-word notes share one n-gram index
// built per message, so total cost stays linear in message length plus deck
// size. This runs on every chat message, against decks that may hold
// thousands of cards.
type Engine struct {
	lem Lemmatizer

	// MinFrontLen optionally skips notes whose normalized front is shorter
	// than this many runes, to keep single stop-word cards from matching
	// trivially. Zero disables the filter, which is the historical
	// behavior.
	MinFrontLen int
}

// NewEngine creates a matcher over the given lemmatizer.
func NewEngine(lem Lemmatizer) *Engine {
	return &Engine{lem: lem}
}

// FindMatches returns the subset of notes whose front appears in content.
// When any note lacks derived features the whole collection is precomputed
// first with targetLang as the default language; the refreshed collection
// and a changed flag are returned so the caller can persist it.
//
// Matching is evaluated independent of review status; review-state
// application is the pipeline's concern.
func (e *Engine) FindMatches(content string, notes []models.Note, targetLang string) (matches []models.Note, updated []models.Note, changed bool) {
	updated = notes
	if content == "" || len(notes) == 0 {
		return nil, updated, false
	}

	for i := range notes {
		if !notes[i].HasFeatures() {
			updated, changed = Precompute(e.lem, notes, targetLang)
			break
		}
	}

	contentTokens := make([]string, 0)
	for _, t := range textnorm.Tokenize(content) {
		contentTokens = append(contentTokens, strings.ToLower(t))
	}
	contentLemmas := e.lem.LemmatizeAll(contentTokens, targetLang)

	tokenSet := toSet(contentTokens)
	lemmaSet := toSet(contentLemmas)
	ngrams := ngramSet(contentLemmas, maxNGram)

	normalizedContent := ""

	for _, note := range updated {
		front := note.NormalizedFront
		if e.MinFrontLen > 0 && len([]rune(front)) < e.MinFrontLen {
			continue
		}

		// a) Single-word fast path: lemma hit, or the literal front token
		// when lemmatization collapsed to a mismatch.
		if note.SingleWordLemma != "" {
			if _, ok := lemmaSet[note.SingleWordLemma]; ok {
				matches = append(matches, note)
				continue
			}
			if _, ok := tokenSet[front]; ok {
				matches = append(matches, note)
				continue
			}
		}

		// b) Single raw token not caught above.
		if len(note.FrontTokens) == 1 {
			token := note.FrontTokens[0]
			if _, ok := tokenSet[token]; ok {
				matches = append(matches, note)
				continue
			}
			if _, ok := lemmaSet[token]; ok {
				matches = append(matches, note)
				continue
			}
		}

		// c) Multi-word phrase: the note's lemma sequence must appear as a
		// contiguous run in the message. Scattered occurrences of the same
		// words do not match.
		if len(note.FrontLemmas) > 1 {
			if _, ok := ngrams[strings.Join(note.FrontLemmas, " ")]; ok {
				matches = append(matches, note)
				continue
			}
		}

		// d) Substring fallback for phrases, catching punctuation and
		// formatting the tokenizer splits differently.
		if strings.Contains(front, " ") {
			if normalizedContent == "" {
				normalizedContent = textnorm.Normalize(content)
			}
			if strings.Contains(normalizedContent, front) {
				matches = append(matches, note)
				continue
			}
		}
	}

	return matches, updated, changed
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
