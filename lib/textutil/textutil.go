package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// strips combining marks after canonical decomposition, turning
// "é" into "e" and "Ä" into "A"
var diacriticFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeName produces the lookup form of a member name: lowercase,
// diacritics folded, ß expanded to ss, dashes treated as spaces, runs of
// whitespace collapsed. Deterministic, so the same function maintains the
// normalized columns and builds resolver keys.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "ß", "ss")
	folded, _, err := transform.String(diacriticFolder, name)
	if err == nil {
		name = folded
	}
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.TrimSpace(name)
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return name
}

// ParseFullName splits a europarl-style display name ("Jane in 't DOE")
// into first and last name. The last name is the trailing run of tokens
// written entirely in capitals; lowercase particles ("van", "de", "in 't")
// directly before it belong to the last name as well.
func ParseFullName(full string) (first, last string) {
	tokens := strings.Fields(strings.TrimSpace(full))
	if len(tokens) == 0 {
		return "", ""
	}

	split := len(tokens)
	for split > 0 && isUpperToken(tokens[split-1]) {
		split--
	}
	if split == len(tokens) {
		// no capitalized surname, fall back to the last token
		split = len(tokens) - 1
	}
	// pull leading surname particles into the last name
	for split > 1 && isLowerToken(tokens[split-1]) {
		split--
	}

	return strings.Join(tokens[:split], " "), strings.Join(tokens[split:], " ")
}

func isUpperToken(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isLowerToken(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
