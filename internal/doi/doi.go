// Package doi locates and normalizes Digital Object Identifiers.
package doi

import (
	"regexp"
	"strings"
)

// Identifier patterns, applied in order. Every pattern captures the bare
// identifier (10.registrant/suffix) in group 1; the suffix alphabet is
// restricted to characters that appear in real DOIs so that surrounding
// prose does not bleed into the match.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)doi\.org/+(10\.[0-9]{4,9}(?:\.[0-9]+)*/[a-zA-Z0-9._()+/-]+)`),
	regexp.MustCompile(`(?i)doi:\s*(10\.[0-9]{4,9}(?:\.[0-9]+)*/[a-zA-Z0-9._()+/-]+)`),
	regexp.MustCompile(`(?:^|[^a-zA-Z0-9])(10\.[0-9]{4,9}(?:\.[0-9]+)*/[a-zA-Z0-9._()+/-]+)`),
	regexp.MustCompile(`(?i)https?://(?:dx\.)?doi\.org/+(10\.[0-9]{4,9}(?:\.[0-9]+)*/[a-zA-Z0-9._()+/-]+)`),
}

// shapePattern is the full-string DOI shape: 10. + numeric registrant +
// slash + non-empty suffix.
var shapePattern = regexp.MustCompile(`^10\.[0-9]{4,9}(?:\.[0-9]+)*/[a-zA-Z0-9._()+/-]+$`)

// Find returns the first DOI found in text, normalized, or "" when none of
// the patterns match. Trailing punctuation that commonly follows a DOI in
// running text is trimmed before validation.
func Find(text string) string {
	for _, pat := range patterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimRight(m[1], ".,;:)")
			if Valid(candidate) {
				return Normalize(candidate)
			}
		}
	}
	return ""
}

// Normalize strips URL and label prefixes from a DOI and lowercases it.
func Normalize(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}

// Valid reports whether doi matches the DOI shape after prefix stripping.
func Valid(doi string) bool {
	doi = Normalize(doi)
	if len(doi) < 8 {
		return false
	}
	return shapePattern.MatchString(doi)
}
