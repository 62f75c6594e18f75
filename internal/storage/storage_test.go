package storage

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "bordereaux.csv", "bordereaux.csv"},
		{"spaces and parens", "Q1 Claims (final).xlsx", "Q1_Claims__final_.xlsx"},
		{"path traversal attempt", "../../etc/passwd", ".._.._etc_passwd"},
		{"empty", "", "file"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeFilename(tc.input); got != tc.want {
				t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDetectMimeTypeFallsBackToExtension(t *testing.T) {
	mime := detectMimeType([]byte("policy,premium\nABC,100\n"), "bordereaux.csv")
	if mime != "text/csv" {
		t.Fatalf("detectMimeType csv = %q, want text/csv", mime)
	}
}
