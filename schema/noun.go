package schema

import (
	"strings"
	"unicode"
)

// irregularPlurals is the small irregular list named by §4.1 step 3.
var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"mouse":  "mice",
	"goose":  "geese",
	"tooth":  "teeth",
	"foot":   "feet",
	"datum":  "data",
}

var sibilantSuffixes = []string{"s", "x", "z", "ch", "sh"}

// camelToSpaced inserts a space between camel-case boundaries and
// lower-cases the result, e.g. "BlogPost" -> "blog post".
func camelToSpaced(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextIsLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Singular derives the singular noun form from a type name.
func Singular(typeName string) string {
	return camelToSpaced(typeName)
}

// Plural derives the plural noun form from a singular phrase, per
// §4.1 step 3: irregular list, then -y, sibilant, and -f/-fe rules.
func Plural(singular string) string {
	if singular == "" {
		return singular
	}

	words := strings.Split(singular, " ")
	lastIdx := len(words) - 1
	last := words[lastIdx]

	if irregular, ok := irregularPlurals[last]; ok {
		words[lastIdx] = irregular
		return strings.Join(words, " ")
	}

	words[lastIdx] = pluralizeWord(last)
	return strings.Join(words, " ")
}

func pluralizeWord(word string) string {
	if word == "" {
		return word
	}

	lower := strings.ToLower(word)

	if strings.HasSuffix(lower, "y") && len(lower) > 1 && !isVowel(rune(lower[len(lower)-2])) {
		return word[:len(word)-1] + "ies"
	}

	for _, suf := range sibilantSuffixes {
		if strings.HasSuffix(lower, suf) {
			return word + "es"
		}
	}

	if strings.HasSuffix(lower, "fe") {
		return word[:len(word)-2] + "ves"
	}
	if strings.HasSuffix(lower, "f") {
		return word[:len(word)-1] + "ves"
	}

	return word + "s"
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// Slug replaces a phrase's spaces with hyphens, e.g. "blog post" ->
// "blog-post".
func Slug(phrase string) string {
	return strings.ReplaceAll(phrase, " ", "-")
}

// defaultVerbs is the default action/event list §4.1's Noun record
// carries absent an override.
var defaultVerbs = []string{"create", "update", "delete"}

// NounRecord derives Noun metadata for typeName: singular/plural/slug
// forms and default actions/events lists. A non-nil override is
// returned as-is; the schema parameter is accepted but not read. Both
// parameters match the spec's nounRecord(typeName, schema?, override?)
// signature.
func NounRecord(typeName string, _ ParsedSchema, override *Noun) Noun {
	if override != nil {
		return *override
	}

	singular := Singular(typeName)
	plural := Plural(singular)

	actions := make([]string, len(defaultVerbs))
	copy(actions, defaultVerbs)

	return Noun{
		Type:       typeName,
		Singular:   singular,
		Plural:     plural,
		Slug:       Slug(singular),
		SlugPlural: Slug(plural),
		Actions:    actions,
		Events:     []string{typeName + ".created", typeName + ".updated", typeName + ".deleted"},
	}
}
