// Package models provides data model definitions for the Tandem chat backend.
package models

// Note represents a single flashcard from the learner's active deck.
//
// The underscore-prefixed fields are derived matching features computed by
// the deck precompute step. They are persisted alongside the note in the
// session cache so that repeat messages against the same deck skip
// re-tokenization. They are considered stale whenever NormalizedFront no
// longer matches a fresh normalization of Front, or Lang differs from the
// session's current target language.
type Note struct {
	ID         string `json:"id"`
	Front      string `json:"front"`
	Back       string `json:"back"`
	Mod        int64  `json:"mod"`
	IsReviewed bool   `json:"is_reviewed"`
	// Language optionally overrides the session target language for this
	// note (2-letter code).
	Language string `json:"language,omitempty"`

	// Derived matching features, maintained by deck.Precompute. The slice
	// fields never use omitempty: a computed-but-empty slice must survive
	// the session cache round trip, or an empty-front note would look
	// unprecomputed on every reload.
	NormalizedFront string   `json:"_normalized_front,omitempty"`
	Lang            string   `json:"_lang,omitempty"`
	FrontTokens     []string `json:"_front_tokens"`
	FrontLemmas     []string `json:"_front_lemmas"`
	SingleWordLemma string   `json:"_single_word_lemma,omitempty"`
}

// HasFeatures reports whether the derived matching features have been
// computed at least once for this note.
func (n *Note) HasFeatures() bool {
	return n.NormalizedFront != "" || n.FrontLemmas != nil
}

// TickedNote is the minimal note reference carried by a learning update
// broadcast: the note identity plus its surface text.
type TickedNote struct {
	ID   string `json:"id"`
	Word string `json:"word"`
}
