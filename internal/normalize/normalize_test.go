package normalize

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // ISO result, "" if not ok
	}{
		{"iso", "2024-03-05", "2024-03-05"},
		{"slash ambiguous prefers DD/MM", "01/02/2024", "2024-02-01"},
		{"dd-mm-yyyy", "05-03-2024", "2024-03-05"},
		{"yyyy/mm/dd", "2024/03/05", "2024-03-05"},
		{"dotted dd.mm.yyyy", "05.03.2024", "2024-03-05"},
		{"dotted iso", "2024.03.05", "2024-03-05"},
		{"dd month yyyy", "05 March 2024", "2024-03-05"},
		{"dd mon yyyy", "05 Mar 2024", "2024-03-05"},
		{"month dd, yyyy", "March 05, 2024", "2024-03-05"},
		{"mon dd, yyyy", "Mar 05, 2024", "2024-03-05"},
		{"compact", "20240305", "2024-03-05"},
		{"blank", "", ""},
		{"nan", "NaN", ""},
		{"garbage", "not a date", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDate(tc.input)
			if tc.want == "" {
				if ok {
					t.Fatalf("ParseDate(%q) = %v, want not-ok", tc.input, got)
				}
				return
			}
			if !ok {
				t.Fatalf("ParseDate(%q): want ok, got not-ok", tc.input)
			}
			if got := FormatISODate(got); got != tc.want {
				t.Fatalf("ParseDate(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseDateRoundTrip(t *testing.T) {
	iso := "2023-11-30"
	d, ok := ParseDate(iso)
	if !ok {
		t.Fatalf("ParseDate(%q) failed", iso)
	}
	if got := FormatISODate(d); got != iso {
		t.Fatalf("round trip mismatch: got %s, want %s", got, iso)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain int", "123", 123, true},
		{"us decimal", "1,234.56", 1234.56, true},
		{"eu decimal", "1.234,56", 1234.56, true},
		{"dollar sign", "$1,234.56", 1234.56, true},
		{"euro sign", "€1.234,56", 1234.56, true},
		{"accounting negative", "(45.00)", -45, true},
		{"lone comma thousands sep", "50,000", 50000, true},
		{"repeated comma thousands sep", "1,234,567", 1234567, true},
		{"currency code suffix", "100.00 USD", 100, true},
		{"lone dash", "-", 0, false},
		{"lone dot", ".", 0, false},
		{"blank", "", 0, false},
		{"garbage", "abc", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDecimal(tc.input)
			if ok != tc.ok {
				t.Fatalf("ParseDecimal(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("ParseDecimal(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"direct iso", "usd", "USD", true},
		{"alias euro", "Euro", "EUR", true},
		{"alias rand", "Rand", "ZAR", true},
		{"containment fallback", "USD (United States Dollar)", "USD", true},
		{"blank", "", "", false},
		{"unknown", "dogecoin", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeCurrency(tc.input)
			if ok != tc.ok {
				t.Fatalf("NormalizeCurrency(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("NormalizeCurrency(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeCurrencyRoundTrip(t *testing.T) {
	for code := range isoCurrencies {
		got, ok := NormalizeCurrency(code)
		if !ok || got != code {
			t.Fatalf("NormalizeCurrency(%q) = %q, %v; want %q, true", code, got, ok, code)
		}
	}
}
