package fileparse

import (
	"fmt"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader lower-cases h, replaces runs of non-alphanumeric characters
// with a single underscore, and trims leading/trailing underscores. This is
// the canonical spelling used for every downstream lookup; the original
// spelling survives only in proposals and templates. Exported because the
// template matcher and row mapper apply the same rule to template keys.
func NormalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = nonAlphanumeric.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func normalizeHeader(h string) string { return NormalizeHeader(h) }

// normalizeHeaders normalizes every header in source order and disambiguates
// collisions by appending _1, _2, ... in the order they're encountered.
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int)

	for i, h := range raw {
		norm := normalizeHeader(h)
		if norm == "" {
			norm = fmt.Sprintf("column_%d", i+1)
		}
		count := seen[norm]
		seen[norm] = count + 1
		if count == 0 {
			out[i] = norm
		} else {
			out[i] = fmt.Sprintf("%s_%d", norm, count)
		}
	}
	return out
}
