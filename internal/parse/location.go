package parse

import (
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeLocation canonicalizes a reported location string so that
// allow-list matching and capacity grouping are insensitive to casing and
// stray whitespace ("  Nurse  Office " -> "nurse office").
func NormalizeLocation(raw string) string {
	s := strings.TrimSpace(raw)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(s)
}

// Fold upper-cases and trims an enum-ish request value ("restroom " ->
// "RESTROOM").
func Fold(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
