package fileparse

import (
	"reflect"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normal", "policy_number", "policy_number"},
		{"mixed case", "Policy Number", "policy_number"},
		{"punctuation", "Premium Amount ($)", "premium_amount"},
		{"collapsed underscores", "inception--date", "inception_date"},
		{"leading trailing junk", "__claim id__", "claim_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeHeader(tc.input); got != tc.want {
				t.Fatalf("normalizeHeader(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeHeadersCollisions(t *testing.T) {
	raw := []string{"Premium", "premium", "Premium!", "Claim"}
	want := []string{"premium", "premium_1", "premium_2", "claim"}

	got := normalizeHeaders(raw)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalizeHeaders(%v) = %v, want %v", raw, got, want)
	}
}
