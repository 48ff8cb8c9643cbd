// Package lemma reduces inflected tokens to their dictionary form.
//
// Lemmatization here is strictly best-effort: the matcher degrades to exact
// token comparison whenever a lemma cannot be produced, so Lemmatize never
// returns an error. A fixed allowlist of languages is served by an embedded
// dictionary-and-suffix lemmatizer; additional languages can be plugged in
// as providers (Japanese uses a kagome-backed one). Everything else falls
// back to English rules.
package lemma

import "strings"

// Supported is the set of language codes handled by the embedded
// lemmatizer. Unsupported languages fall back to English as a best-effort
// default.
var Supported = map[string]bool{
	"en": true, "de": true, "fr": true, "es": true, "it": true,
	"pt": true, "nl": true, "ru": true, "uk": true, "ro": true,
}

// Provider is an external lemmatization capability for a single language.
// It may fail; failures are absorbed by the Adapter.
type Provider interface {
	Lemmatize(token string) (string, error)
}

// Adapter routes tokens to the right lemmatization backend and guarantees
// a usable result: on any internal failure the lowercased input token is
// returned unchanged.
type Adapter struct {
	providers map[string]Provider
}

// New returns an Adapter backed by the embedded dictionary lemmatizer.
func New() *Adapter {
	return &Adapter{providers: make(map[string]Provider)}
}

// Register installs a provider for a language code, taking priority over
// the embedded lemmatizer for that language.
func (a *Adapter) Register(lang string, p Provider) {
	a.providers[strings.ToLower(lang)] = p
}

// Lemmatize returns the dictionary form of token for the given 2-letter
// language code. It is total: empty input yields empty output and every
// failure path yields the lowercased token itself.
func (a *Adapter) Lemmatize(token, lang string) string {
	token = strings.ToLower(token)
	if token == "" {
		return token
	}
	lang = strings.ToLower(lang)

	if p, ok := a.providers[lang]; ok {
		if out, err := p.Lemmatize(token); err == nil && out != "" {
			return strings.ToLower(out)
		}
		// Provider failed; degrade to the embedded path below.
	}

	if !Supported[lang] {
		lang = "en"
	}
	return applyTables(token, lang)
}

// LemmatizeAll maps Lemmatize over a token slice, preserving order and
// length.
func (a *Adapter) LemmatizeAll(tokens []string, lang string) []string {
	if tokens == nil {
		return nil
	}
	lemmas := make([]string, len(tokens))
	for i, t := range tokens {
		lemmas[i] = a.Lemmatize(t, lang)
	}
	return lemmas
}
