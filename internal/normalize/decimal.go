package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// currencySymbols are stripped before numeric parsing.
var currencySymbols = []string{"$", "€", "£", "¥", "₹"} // $ € £ ¥ ₹

// currencyCodes are also stripped when glued to the number ("USD 1,234.56").
var currencyCodePattern = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|JPY|INR|ZAR|AUD|CAD|CHF|CNY|NZD)\b`)

var numericPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// ParseDecimal parses a messy numeric cell into a float64. It strips currency
// symbols/codes, detects the decimal separator by comparing the last
// occurrence of ',' and '.' (the later one wins), and rejects degenerate
// input such as a lone "-" or ".".
func ParseDecimal(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = currencyCodePattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if s == "" || s == "-" || s == "." {
		return 0, false
	}

	s = normalizeSeparators(s)

	if !numericPattern.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	if negative && f > 0 {
		f = -f
	}

	return f, true
}

// normalizeSeparators decides which of ',' and '.' is the decimal separator
// by comparing their last occurrence in s (the later one wins, per spec),
// then strips the thousands separator and normalizes the decimal separator
// to '.'.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma == -1 && lastDot == -1:
		return s
	case lastComma == -1:
		// Only dots: treat as thousands separators unless there's exactly one
		// and it looks like a decimal point (<=2 trailing digits... but spec
		// doesn't special-case this, so a single dot is always the decimal).
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	case lastDot == -1:
		// Only commas: always a thousands separator, never a decimal point,
		// whether there's one or several.
		return strings.ReplaceAll(s, ",", "")
	case lastComma > lastDot:
		// European: '.' is thousands, ',' is decimal
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	default:
		// US: ',' is thousands, '.' is decimal
		return strings.ReplaceAll(s, ",", "")
	}
}
