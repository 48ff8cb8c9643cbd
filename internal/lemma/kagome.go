package lemma

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome lemmatizes Japanese tokens through morphological analysis with the
// IPA dictionary. It only rewrites tokens that analyze to a single morpheme;
// multi-morpheme tokens (whole unsegmented phrases) are returned unchanged
// so the adapter's exact-match degradation still applies to them.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome builds the analyzer. The IPA dictionary is embedded in the
// kagome-dict module, so this only fails on allocation problems.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Kagome{t: t}, nil
}

// Lemmatize implements Provider.
func (k *Kagome) Lemmatize(token string) (string, error) {
	var morphs []tokenizer.Token
	for _, m := range k.t.Tokenize(token) {
		if m.Class == tokenizer.DUMMY || strings.TrimSpace(m.Surface) == "" {
			continue
		}
		morphs = append(morphs, m)
	}
	if len(morphs) != 1 {
		return token, nil
	}

	// IPA feature index 6 holds the base form; "*" means none recorded.
	features := morphs[0].Features()
	if len(features) > 6 && features[6] != "*" && features[6] != "" {
		return features[6], nil
	}
	return token, nil
}
