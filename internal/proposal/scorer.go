package proposal

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

var alnumOnly = regexp.MustCompile(`[^a-z0-9]+`)

// foldAlnum lowercases s and strips everything but letters and digits, the
// normalization the fuzzy/keyword scorers compare on.
func foldAlnum(s string) string {
	return alnumOnly.ReplaceAllString(strings.ToLower(s), "")
}

// fuzzyRatio scores the similarity of a and b in [0,1]: an exact
// (normalized) match scores 1.0, containment in either direction scores
// 0.9, otherwise a Levenshtein-distance ratio.
func fuzzyRatio(a, b string) float64 {
	fa, fb := foldAlnum(a), foldAlnum(b)
	if fa == "" || fb == "" {
		return 0
	}
	if fa == fb {
		return 1.0
	}
	if strings.Contains(fa, fb) || strings.Contains(fb, fa) {
		return 0.9
	}

	dist := levenshtein.ComputeDistance(fa, fb)
	maxLen := len(fa)
	if len(fb) > maxLen {
		maxLen = len(fb)
	}
	ratio := 1 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

// keywordScore scores header against kws, the keyword list for one
// canonical field, per spec §4.8: exact normalized match wins outright;
// containment either direction is capped; otherwise a damped fuzzy score.
func keywordScore(header string, kws []string) float64 {
	fh := foldAlnum(header)
	best := 0.0

	for _, kw := range kws {
		fk := foldAlnum(kw)
		if fk == "" || fh == "" {
			continue
		}

		var score float64
		switch {
		case fk == fh:
			score = 1.0
		case strings.Contains(fh, fk):
			score = capAt(float64(len(fk))/float64(len(fh)), 0.9)
		case strings.Contains(fk, fh):
			score = capAt(float64(len(fh))/float64(len(fk)), 0.8)
		default:
			score = 0.7 * fuzzyRatio(kw, header)
		}

		if score > best {
			best = score
		}
	}
	return best
}

func capAt(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	return v
}

// fieldScore combines the fuzzy and keyword scores per spec §4.8's
// 0.3·fuzzy + 0.7·keyword weighting. fuzzy compares header directly
// against the canonical field name; keyword compares against the field's
// keyword list.
func fieldScore(header, field string) float64 {
	fz := fuzzyRatio(header, field)
	kw := keywordScore(header, keywords[field])
	return 0.3*fz + 0.7*kw
}
