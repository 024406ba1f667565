package schema

import "strings"

// verbLexicon is the small set of known verbs §4.1 step 4 names,
// mapping base form to {act, activity}. Unknown verbs fall back to
// the conjugation rules in conjugateRules.
var verbLexicon = map[string][2]string{
	"create":  {"creates", "creating"},
	"update":  {"updates", "updating"},
	"delete":  {"deletes", "deleting"},
	"publish": {"publishes", "publishing"},
	"archive": {"archives", "archiving"},
	"cancel":  {"cancels", "cancelling"},
	"retry":   {"retries", "retrying"},
	"move":    {"moves", "moving"},
	"connect": {"connects", "connecting"},
	"search":  {"searches", "searching"},
}

var vowels = map[byte]bool{'a': true, 'e': true, 'i': true, 'o': true, 'u': true}

// Conjugate returns the (base, third-person-singular, gerund) verb
// triple for a given base-form verb, consulting the lexicon first and
// falling back to rule-based conjugation for unknown verbs.
func Conjugate(base string) (action, act, activity string) {
	if forms, ok := verbLexicon[base]; ok {
		return base, forms[0], forms[1]
	}
	return base, conjugateAct(base), conjugateActivity(base)
}

// conjugateAct derives the third-person-singular form: y -> ies after
// a consonant, sibilant suffixes get "es", otherwise "s".
func conjugateAct(base string) string {
	if base == "" {
		return base
	}
	lower := strings.ToLower(base)

	if strings.HasSuffix(lower, "y") && len(lower) > 1 && !vowels[lower[len(lower)-2]] {
		return base[:len(base)-1] + "ies"
	}

	for _, suf := range sibilantSuffixes {
		if strings.HasSuffix(lower, suf) {
			return base + "es"
		}
	}
	if strings.HasSuffix(lower, "o") {
		return base + "es"
	}

	return base + "s"
}

// conjugateActivity derives the gerund: drop a trailing silent "e"
// before "-ing" (but not "-ee"), double the final consonant of a short
// CVC one-syllable word, keep "y" as-is before "-ing", else append
// "-ing".
func conjugateActivity(base string) string {
	if base == "" {
		return base
	}
	lower := strings.ToLower(base)

	if strings.HasSuffix(lower, "ee") {
		return base + "ing"
	}
	if strings.HasSuffix(lower, "e") && len(lower) > 1 {
		return base[:len(base)-1] + "ing"
	}
	if isShortCVC(lower) {
		last := base[len(base)-1]
		return base + string(last) + "ing"
	}
	return base + "ing"
}

// isShortCVC reports whether word is a short consonant-vowel-consonant
// word (e.g. "stop", "plan") whose final consonant doubles before
// "-ing"/"-ed". Excludes endings in w, x, y, which never double.
func isShortCVC(word string) bool {
	if len(word) < 3 {
		return false
	}
	n := len(word)
	c1, v, c2 := word[n-3], word[n-2], word[n-1]
	if vowels[c2] || c2 == 'w' || c2 == 'x' || c2 == 'y' {
		return false
	}
	if !vowels[v] {
		return false
	}
	if vowels[c1] {
		return false
	}
	for i := 0; i < n-3; i++ {
		if vowels[word[i]] {
			return false
		}
	}
	return true
}
