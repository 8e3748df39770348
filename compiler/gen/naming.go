package gen

import (
	"sort"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// rules carries the inflection ruleset used for table and back-reference
// naming. Acronyms are registered so that e.g. "APIKey" becomes "api_key".
var rules = ruleset()

var titleCaser = cases.Title(language.English, cases.NoLower)

func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	for _, acronym := range []string{"ID", "UUID", "URL", "URI", "API", "SQL", "JSON", "HTTP"} {
		r.AddAcronym(acronym)
	}
	return r
}

// snake converts the given name into a snake_case identifier.
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put a underscore if the current letter is an uppercase letter
		// preceded by a lowercase letter or followed by one.
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(rune(s[i-1])) ||
			(i+1 < len(s) && unicode.IsLower(rune(s[i+1])) && j < i-1)) {
			j = i
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// pascal converts the given name into PascalCase.
func pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	var b strings.Builder
	for _, w := range words {
		b.WriteString(titleCaser.String(w))
	}
	return b.String()
}

// plural returns the pluralized snake_case form of the name.
func plural(s string) string {
	return rules.Pluralize(snake(s))
}

// singular returns the singularized snake_case form of the name.
func singular(s string) string {
	return rules.Singularize(snake(s))
}

// canonicalPair joins two table names in a fixed lexicographic order. It
// gives every table pair exactly one association table name no matter which
// side is compiled first.
func canonicalPair(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

func sortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
