package strutil

import (
	"regexp"
	"strings"
)

// Trim strips leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// HasToken reports whether tok appears as a whitespace-delimited token in
// list. Matching is exact: "foo" does not match inside "foobar".
func HasToken(list, tok string) bool {
	if tok == "" {
		return false
	}
	for _, t := range strings.Fields(list) {
		if t == tok {
			return true
		}
	}
	return false
}

// AddToken appends tok to list if it is not already present. The result is
// re-trimmed. Adding a token that is already present returns list
// unchanged, so AddToken is idempotent.
func AddToken(list, tok string) string {
	if tok == "" || HasToken(list, tok) {
		return list
	}
	return Trim(list + " " + tok)
}

// RemoveToken removes every whitespace-delimited occurrence of tok from
// list, collapsing the surrounding whitespace, and re-trims the result.
// Adjacent duplicates are all removed ("a foo foo b" becomes "a b").
// An empty or absent token leaves list unchanged.
func RemoveToken(list, tok string) string {
	if tok == "" || !HasToken(list, tok) {
		return list
	}
	kept := make([]string, 0, 4)
	for _, t := range strings.Fields(list) {
		if t != tok {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// ToggleToken removes tok from list when present and adds it otherwise.
func ToggleToken(list, tok string) string {
	if HasToken(list, tok) {
		return RemoveToken(list, tok)
	}
	return AddToken(list, tok)
}

// SetToken is the forced form of ToggleToken: it adds tok when on is true
// and removes it when on is false, regardless of current presence.
func SetToken(list, tok string, on bool) string {
	if on {
		return AddToken(list, tok)
	}
	return RemoveToken(list, tok)
}

var templateRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template replaces each {{key}} placeholder in s with vars[key]. A key
// missing from vars substitutes the empty string. Placeholders use word
// characters only; anything else is left untouched.
func Template(s string, vars map[string]string) string {
	return templateRe.ReplaceAllStringFunc(s, func(m string) string {
		key := m[2 : len(m)-2]
		return vars[key]
	})
}
