// Package deck implements the incremental note-matching engine: per-note
// feature precomputation, token/lemma/n-gram matching of chat messages
// against a flashcard deck, and the TTL-cached per-user deck session that
// tracks review progress.
package deck

// Lemmatizer is the lemmatization capability the matcher depends on. It is
// total by contract: implementations return the input token on failure
// rather than erroring.
type Lemmatizer interface {
	Lemmatize(token, lang string) string
	LemmatizeAll(tokens []string, lang string) []string
}
