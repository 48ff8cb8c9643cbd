package deck

import (
	"strings"

	"github.com/tandemchat/backend/internal/models"
	"github.com/tandemchat/backend/internal/textnorm"
)

// Precompute fills the derived matching features of every note: normalized
// front, token and lemma sequences, and the single-word fast-path lemma. A
// note is recomputed only when its normalized front changed, its effective
// language changed, or its lemma cache is absent. The returned flag reports
// whether any note was recomputed, so the caller can decide whether the
// collection needs persisting.
//
// Precompute is copy-producing: the input slice and its notes are never
// mutated, since the same note values may be shared across concurrent
// requests.
func Precompute(lem Lemmatizer, notes []models.Note, defaultLang string) ([]models.Note, bool) {
	changed := false
	out := make([]models.Note, len(notes))
	for i, note := range notes {
		front := textnorm.Normalize(note.Front)
		lang := effectiveLanguage(note.Language, defaultLang)

		stale := note.NormalizedFront != front ||
			note.Lang != lang ||
			note.FrontLemmas == nil

		if stale {
			changed = true
			note.NormalizedFront = front
			note.Lang = lang
			tokens := lowerTokens(textnorm.Tokenize(front))
			note.FrontTokens = tokens
			note.FrontLemmas = lem.LemmatizeAll(tokens, lang)
			if len(note.FrontLemmas) == 1 {
				note.SingleWordLemma = note.FrontLemmas[0]
			} else {
				note.SingleWordLemma = ""
			}
		}
		out[i] = note
	}
	return out, changed
}

// effectiveLanguage resolves a note's language: note-level override, then
// the session default, then "en", truncated to its 2-letter code.
func effectiveLanguage(noteLang, defaultLang string) string {
	lang := noteLang
	if lang == "" {
		lang = defaultLang
	}
	if lang == "" {
		lang = "en"
	}
	lang = strings.ToLower(lang)
	if len(lang) > 2 {
		lang = lang[:2]
	}
	return lang
}

func lowerTokens(tokens []string) []string {
	if tokens == nil {
		// Distinguish "computed, empty front" from "never computed".
		return []string{}
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
