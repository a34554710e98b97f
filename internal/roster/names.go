package roster

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var tokenSeparator = regexp.MustCompile(`[\s-]+`)

// nameTokens splits a name on whitespace and hyphen runs, lowercased
// with trailing dots stripped, so "John-Paul" and "John Paul" compare
// equal and "Jr." matches "Jr".
func nameTokens(name string) []string {
	var tokens []string
	for _, tok := range tokenSeparator.Split(name, -1) {
		tok = strings.TrimRight(strings.ToLower(tok), ".")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// samePerson reports whether two (family, given) name pairs plausibly
// identify the same person. Tokens are compared position by position
// up to the shorter list; a list that is a strict prefix of the other
// still matches, which deliberately tolerates dropped middle names and
// shortened double-barrelled surnames.
func samePerson(familyA, givenA, familyB, givenB string) bool {
	famA, famB := nameTokens(familyA), nameTokens(familyB)
	for i := 0; i < len(famA) && i < len(famB); i++ {
		if famA[i] != famB[i] {
			return false
		}
	}

	if givenA == "" && givenB == "" {
		return true
	}
	if givenA == "" || givenB == "" {
		return false
	}

	givA, givB := nameTokens(givenA), nameTokens(givenB)
	for i := 0; i < len(givA) && i < len(givB); i++ {
		if !givenTokensMatch(givA[i], givB[i]) {
			return false
		}
	}
	return true
}

// givenTokensMatch compares two given-name tokens. An initial matches
// the full name it abbreviates.
func givenTokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	if utf8.RuneCountInString(a) == 1 && strings.HasPrefix(b, a) {
		return true
	}
	if utf8.RuneCountInString(b) == 1 && strings.HasPrefix(a, b) {
		return true
	}
	return false
}
