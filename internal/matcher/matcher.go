// Package matcher implements the template matcher (C5): picking the best
// active template for a set of normalized file headers, generalized from
// the upload pipeline's ancestor matchTemplateHeaders scoring function into
// the exact/lenient decision rule this system needs.
package matcher

import (
	"github.com/borderops/ingestor/internal/fileparse"
	"github.com/borderops/ingestor/internal/templatestore"
)

// lenientCoverage and lenientSizeTolerance implement the lenient match rule:
// at least 99% of the template's keys present, and header-count drift within
// 10% of the template's key count.
const (
	lenientCoverage      = 0.99
	lenientSizeTolerance = 0.10
)

// Match selects the best active template for headers, trying candidates in
// the order supplied (callers pass templates in creation order so the
// scan-order tie-break is automatic). Returns ok=false if nothing qualifies.
func Match(headers []string, candidates []templatestore.Template) (templatestore.Template, bool) {
	headerSet := make(map[string]bool, len(headers))
	for _, h := range headers {
		headerSet[h] = true
	}

	var lenientMatch templatestore.Template
	haveLenient := false

	for _, t := range candidates {
		keys := normalizeKeys(t.ColumnMappings)
		if len(keys) == 0 {
			continue
		}

		m := intersectionCount(keys, headerSet)

		if m == len(keys) && len(headers) == len(keys) {
			return t, true
		}

		if !haveLenient && isLenientMatch(m, len(keys), len(headers)) {
			lenientMatch = t
			haveLenient = true
		}
	}

	if haveLenient {
		return lenientMatch, true
	}
	return templatestore.Template{}, false
}

func isLenientMatch(m, keyCount, headerCount int) bool {
	if keyCount == 0 {
		return false
	}
	coverage := float64(m) / float64(keyCount)
	if coverage < lenientCoverage {
		return false
	}
	drift := float64(headerCount-keyCount) / float64(keyCount)
	if drift < 0 {
		drift = -drift
	}
	return drift <= lenientSizeTolerance
}

// normalizeKeys applies the same normalization rule C2 uses to headers to a
// template's column_mappings keys, so template authors' original spelling
// ("Policy No.") lines up with a file's normalized headers ("policy_no").
func normalizeKeys(columnMappings templatestore.ColumnMappings) []string {
	keys := make([]string, 0, len(columnMappings))
	for _, e := range columnMappings {
		keys = append(keys, fileparse.NormalizeHeader(e.SourceColumn))
	}
	return keys
}

func intersectionCount(keys []string, headerSet map[string]bool) int {
	n := 0
	for _, k := range keys {
		if headerSet[k] {
			n++
		}
	}
	return n
}
