package lemma

import "strings"

// The embedded lemmatizer is a lookup table of common irregular forms per
// language plus a handful of conservative suffix rules. It trades recall
// for safety: a wrong lemma is worse than no lemma, because the matcher
// compares note lemmas and message lemmas produced by the same code path.

type suffixRule struct {
	suffix  string
	replace string
	minStem int
}

// exceptions maps inflected form -> lemma for irregular words that suffix
// rules cannot recover.
var exceptions = map[string]map[string]string{
	"en": {
		"am": "be", "is": "be", "are": "be", "was": "be", "were": "be", "been": "be", "being": "be",
		"has": "have", "had": "have", "having": "have",
		"went": "go", "gone": "go", "goes": "go",
		"did": "do", "does": "do", "done": "do",
		"ate": "eat", "eaten": "eat",
		"ran": "run", "running": "run",
		"saw": "see", "seen": "see",
		"took": "take", "taken": "take",
		"came": "come", "coming": "come",
		"gave": "give", "given": "give",
		"spoke": "speak", "spoken": "speak",
		"wrote": "write", "written": "write",
		"made": "make", "making": "make",
		"said": "say", "told": "tell", "thought": "think",
		"bought": "buy", "brought": "bring",
		"children": "child", "men": "man", "women": "woman",
		"feet": "foot", "teeth": "tooth", "mice": "mouse", "people": "person",
	},
	"de": {
		"bin": "sein", "bist": "sein", "ist": "sein", "sind": "sein", "seid": "sein",
		"war": "sein", "waren": "sein", "warst": "sein", "gewesen": "sein",
		"habe": "haben", "hast": "haben", "hat": "haben", "habt": "haben",
		"hatte": "haben", "hatten": "haben", "gehabt": "haben",
		"ging": "gehen", "gingst": "gehen", "gingen": "gehen", "gegangen": "gehen", "geht": "gehen", "gehe": "gehen", "gehst": "gehen",
		"aß": "essen", "isst": "essen", "esse": "essen", "aßen": "essen", "gegessen": "essen",
		"kam": "kommen", "kamen": "kommen", "gekommen": "kommen", "kommt": "kommen", "komme": "kommen",
		"sah": "sehen", "sahen": "sehen", "gesehen": "sehen", "sieht": "sehen", "sehe": "sehen",
		"fuhr": "fahren", "fuhren": "fahren", "gefahren": "fahren", "fährt": "fahren",
		"gab": "geben", "gaben": "geben", "gegeben": "geben", "gibt": "geben", "gebe": "geben",
		"nahm": "nehmen", "nahmen": "nehmen", "genommen": "nehmen", "nimmt": "nehmen",
		"sprach": "sprechen", "sprachen": "sprechen", "gesprochen": "sprechen", "spricht": "sprechen",
		"stand": "stehen", "standen": "stehen", "gestanden": "stehen", "steht": "stehen",
		"wurde": "werden", "wurden": "werden", "geworden": "werden", "wird": "werden", "werde": "werden",
		"lief": "laufen", "liefen": "laufen", "gelaufen": "laufen", "läuft": "laufen",
		"wusste": "wissen", "weiß": "wissen", "gewusst": "wissen",
		"machte": "machen", "machten": "machen", "gemacht": "machen", "macht": "machen", "mache": "machen",
		"sagte": "sagen", "sagten": "sagen", "gesagt": "sagen", "sagt": "sagen", "sage": "sagen",
	},
	"fr": {
		"suis": "être", "es": "être", "est": "être", "sommes": "être", "sont": "être", "était": "être", "été": "être",
		"ai": "avoir", "as": "avoir", "a": "avoir", "avons": "avoir", "ont": "avoir", "avait": "avoir", "eu": "avoir",
		"vais": "aller", "va": "aller", "vas": "aller", "allons": "aller", "vont": "aller", "allé": "aller", "allait": "aller",
		"fait": "faire", "fais": "faire", "faisons": "faire", "font": "faire", "faisait": "faire",
		"mange": "manger", "manges": "manger", "mangé": "manger", "mangeait": "manger",
		"vu": "voir", "vois": "voir", "voit": "voir", "voyait": "voir",
		"pris": "prendre", "prend": "prendre", "prends": "prendre",
		"veux": "vouloir", "veut": "vouloir", "voulait": "vouloir", "voulu": "vouloir",
	},
	"es": {
		"soy": "ser", "eres": "ser", "es": "ser", "somos": "ser", "son": "ser", "era": "ser", "fue": "ser", "sido": "ser",
		"estoy": "estar", "está": "estar", "estás": "estar", "estamos": "estar", "están": "estar", "estaba": "estar",
		"voy": "ir", "vas": "ir", "va": "ir", "vamos": "ir", "van": "ir", "fui": "ir", "iba": "ir", "ido": "ir",
		"tengo": "tener", "tiene": "tener", "tienes": "tener", "tenemos": "tener", "tienen": "tener", "tenía": "tener",
		"come": "comer", "como": "comer", "comí": "comer", "comió": "comer", "comido": "comer",
		"hago": "hacer", "hace": "hacer", "hizo": "hacer", "hecho": "hacer",
		"dijo": "decir", "dice": "decir", "digo": "decir", "dicho": "decir",
	},
	"it": {
		"sono": "essere", "sei": "essere", "è": "essere", "siamo": "essere", "era": "essere", "stato": "essere",
		"ho": "avere", "hai": "avere", "ha": "avere", "abbiamo": "avere", "hanno": "avere", "aveva": "avere", "avuto": "avere",
		"vado": "andare", "vai": "andare", "va": "andare", "andiamo": "andare", "vanno": "andare", "andato": "andare",
		"mangio": "mangiare", "mangia": "mangiare", "mangiato": "mangiare",
		"faccio": "fare", "fa": "fare", "fatto": "fare",
	},
	"pt": {
		"sou": "ser", "és": "ser", "é": "ser", "somos": "ser", "são": "ser", "era": "ser", "foi": "ser", "sido": "ser",
		"estou": "estar", "está": "estar", "estamos": "estar", "estão": "estar", "estava": "estar",
		"vou": "ir", "vai": "ir", "vamos": "ir", "vão": "ir", "fui": "ir", "ido": "ir",
		"tenho": "ter", "tem": "ter", "temos": "ter", "têm": "ter", "tinha": "ter", "tido": "ter",
		"come": "comer", "como": "comer", "comi": "comer", "comeu": "comer", "comido": "comer",
	},
	"nl": {
		"ben": "zijn", "bent": "zijn", "is": "zijn", "zijn": "zijn", "was": "zijn", "waren": "zijn", "geweest": "zijn",
		"heb": "hebben", "hebt": "hebben", "heeft": "hebben", "had": "hebben", "hadden": "hebben", "gehad": "hebben",
		"ga": "gaan", "gaat": "gaan", "ging": "gaan", "gingen": "gaan", "gegaan": "gaan",
		"eet": "eten", "at": "eten", "aten": "eten", "gegeten": "eten",
	},
	"ru": {
		"был": "быть", "была": "быть", "были": "быть", "есть": "быть",
		"иду": "идти", "идёт": "идти", "шёл": "идти", "шла": "идти", "шли": "идти",
		"ем": "есть", "ест": "есть", "ел": "есть", "ела": "есть",
		"вижу": "видеть", "видит": "видеть", "видел": "видеть",
		"говорю": "говорить", "говорит": "говорить", "говорил": "говорить",
	},
	"uk": {
		"був": "бути", "була": "бути", "були": "бути", "є": "бути",
		"іду": "іти", "іде": "іти", "ішов": "іти", "ішла": "іти",
		"їм": "їсти", "їсть": "їсти", "їв": "їсти", "їла": "їсти",
	},
	"ro": {
		"sunt": "fi", "ești": "fi", "este": "fi", "suntem": "fi", "era": "fi", "fost": "fi",
		"am": "avea", "ai": "avea", "are": "avea", "avem": "avea", "au": "avea", "avut": "avea",
		"merg": "merge", "mergi": "merge", "mergea": "merge", "mers": "merge",
		"mănânc": "mânca", "mănâncă": "mânca", "mâncat": "mânca",
	},
}

// rules are applied only when the exceptions table has no entry; first rule
// whose suffix matches and leaves a long-enough stem wins.
var rules = map[string][]suffixRule{
	"en": {
		{"ies", "y", 2},
		{"ying", "y", 2},
		{"ing", "", 3},
		{"ied", "y", 2},
		{"ed", "", 3},
		{"es", "", 3},
		{"s", "", 3},
	},
	"fr": {
		{"aux", "al", 3},
		{"s", "", 3},
	},
	"es": {
		{"ciones", "ción", 3},
		{"es", "", 3},
		{"s", "", 3},
	},
	"it": {
		{"i", "o", 3},
		{"e", "a", 3},
	},
	"pt": {
		{"ções", "ção", 3},
		{"es", "", 3},
		{"s", "", 3},
	},
	"nl": {
		{"en", "", 3},
		{"s", "", 3},
	},
	"ro": {
		{"uri", "", 3},
		{"i", "", 3},
	},
	// German nouns capitalize and verbs end in -en like their infinitive;
	// blind suffix stripping would split "gehen" from its own table lemma,
	// so only the exception table is used.
	"de": nil,
	"ru": nil,
	"uk": nil,
}

func applyTables(token, lang string) string {
	if lemma, ok := exceptions[lang][token]; ok {
		return lemma
	}
	for _, r := range rules[lang] {
		stem, ok := strings.CutSuffix(token, r.suffix)
		if !ok || len([]rune(stem)) < r.minStem {
			continue
		}
		stem += r.replace
		if r.replace == "" {
			stem = undouble(stem)
		}
		return stem
	}
	return token
}

// undouble collapses a doubled trailing consonant left behind by -ing/-ed
// stripping ("running" -> "runn" -> "run").
func undouble(stem string) string {
	rs := []rune(stem)
	n := len(rs)
	if n >= 3 && rs[n-1] == rs[n-2] && !isVowel(rs[n-1]) {
		return string(rs[:n-1])
	}
	return stem
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
