// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ids canonicalizes DOI strings and work titles into comparable
// forms. Both sources hand back DOIs in several spellings (bare,
// doi.org-prefixed, mixed case) and titles with punctuation noise; the
// dedup engine compares only the normalized forms.
package ids

import (
	"regexp"
	"strings"
)

// doiPrefixPattern matches the resolver prefixes that appear in front of
// DOIs in external documents: http://doi.org/, https://doi.org/,
// https://dx.doi.org/, in any case.
var doiPrefixPattern = regexp.MustCompile(`(?i)^https?://(dx\.)?doi\.org/`)

// NormalizeDOI returns the canonical form of a DOI: resolver prefix
// stripped, whitespace trimmed, lower-cased. It is idempotent, and an
// empty input yields an empty string.
func NormalizeDOI(s string) string {
	s = strings.TrimSpace(s)
	s = doiPrefixPattern.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// NormalizeTitle returns a comparable form of a work title: everything
// outside [a-zA-Z0-9 ] removed, whitespace runs collapsed to a single
// space, trimmed, lower-cased. An empty input yields an empty string.
func NormalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
