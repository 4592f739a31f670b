// Package normalize provides the string normalization used for result
// deduplication, ranking and partial matching: case- and
// diacritics-insensitive comparison keys.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// String lowercases s and strips diacritics, so "São Paulo" and "sao paulo"
// compare equal.
func String(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
