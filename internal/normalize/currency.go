package normalize

import "strings"

// isoCurrencies is the closed set of ISO 4217 codes this system recognizes.
// Kept deliberately small: the set a bordereaux is realistically denominated
// in, not the full ISO list.
var isoCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CHF": true,
	"AUD": true, "CAD": true, "ZAR": true, "INR": true, "CNY": true,
	"NZD": true, "SGD": true, "HKD": true, "AED": true, "BRL": true,
	"MXN": true, "SEK": true, "NOK": true, "DKK": true, "PLN": true,
}

// currencyAliases maps common spellings/names to their ISO code. Checked
// only when no direct ISO match is found.
var currencyAliases = map[string]string{
	"DOLLAR": "USD", "DOLLARS": "USD", "US DOLLAR": "USD", "USDOLLAR": "USD",
	"EURO": "EUR", "EUROS": "EUR",
	"POUND": "GBP", "POUNDS": "GBP", "STERLING": "GBP", "POUNDSTERLING": "GBP",
	"YEN": "JPY",
	"RAND": "ZAR",
	"RUPEE": "INR", "RUPEES": "INR",
	"FRANC": "CHF", "FRANCS": "CHF", "SWISSFRANC": "CHF",
	"YUAN": "CNY", "RENMINBI": "CNY",
	"KRONA": "SEK", "KRONE": "NOK",
}

// NormalizeCurrency upper-cases and strips whitespace from v, then attempts a
// direct ISO-code match, falling back to the alias map. Containment ("USD
// (United States Dollar)" contains "USD") is only accepted when no ISO match
// was found directly. Returns ok=false when nothing matches.
func NormalizeCurrency(v string) (string, bool) {
	s := strings.ToUpper(strings.Join(strings.Fields(v), ""))
	if s == "" {
		return "", false
	}

	if isoCurrencies[s] {
		return s, true
	}

	if code, ok := currencyAliases[s]; ok {
		return code, true
	}

	// Alias lookup again on the trimmed, upper-cased original input, which
	// keeps the input's own inner spacing.
	spaced := strings.ToUpper(strings.TrimSpace(v))
	if code, ok := currencyAliases[spaced]; ok {
		return code, true
	}

	// Containment: only once direct matches have failed.
	for code := range isoCurrencies {
		if strings.Contains(s, code) {
			return code, true
		}
	}
	for alias, code := range currencyAliases {
		if strings.Contains(s, alias) {
			return code, true
		}
	}

	return "", false
}
