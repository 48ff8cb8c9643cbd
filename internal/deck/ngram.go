package deck

import "strings"

// maxNGram caps the length of contiguous lemma runs indexed for phrase
// matching. Phrase notes longer than this cannot match via n-grams (the
// substring fallback still applies); the cap bounds cost on long messages.
const maxNGram = 6

// ngramSet returns every space-joined contiguous run of 1..maxN lemmas.
func ngramSet(lemmas []string, maxN int) map[string]struct{} {
	set := make(map[string]struct{})
	total := len(lemmas)
	if maxN > total {
		maxN = total
	}
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= total; i++ {
			set[strings.Join(lemmas[i:i+n], " ")] = struct{}{}
		}
	}
	return set
}
