package models

// DeckSession is the cached per-user-per-deck learning state. It lives in
// the TTL cache keyed by (user, deck name) and tracks which notes have been
// used correctly in conversation since the deck was activated.
type DeckSession struct {
	DeckName string `json:"deck_name"`
	Notes    []Note `json:"notes"`
	// TargetLanguage is a 2-letter code. It defaults to "en", may be
	// auto-detected once from the deck contents, and is sticky afterwards.
	TargetLanguage string `json:"target_language,omitempty"`
}

// EffectiveLanguage returns the session target language, defaulting to "en".
func (s *DeckSession) EffectiveLanguage() string {
	if s.TargetLanguage == "" {
		return "en"
	}
	return s.TargetLanguage
}
