package fileparse

import "testing"

func TestParseCSVBasic(t *testing.T) {
	raw := []byte("Policy Number,Premium Amount\nABC-1,1234.56\nABC-2,789.00\n")

	table, err := Parse(raw, "bordereaux.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantHeaders := []string{"policy_number", "premium_amount"}
	if len(table.Headers) != len(wantHeaders) {
		t.Fatalf("headers = %v, want %v", table.Headers, wantHeaders)
	}
	for i, h := range wantHeaders {
		if table.Headers[i] != h {
			t.Fatalf("headers[%d] = %q, want %q", i, table.Headers[i], h)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0]["policy_number"].Text != "ABC-1" {
		t.Fatalf("row0 policy_number = %q", table.Rows[0]["policy_number"].Text)
	}
}

func TestParseCSVWithBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Policy,Premium\nABC-1,100\n")...)

	table, err := Parse(raw, "bordereaux.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Headers[0] != "policy" {
		t.Fatalf("headers[0] = %q, want %q (BOM not stripped)", table.Headers[0], "policy")
	}
}

func TestParseCSVEmptyCellIsNull(t *testing.T) {
	raw := []byte("Policy,Premium\nABC-1,\n")

	table, err := Parse(raw, "bordereaux.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cell := table.Rows[0]["premium"]
	if !cell.IsNull() {
		t.Fatalf("premium cell = %+v, want null", cell)
	}
}

func TestParseCSVSkipsMalformedLines(t *testing.T) {
	// The third line opens a quote that is never closed; the lazy-quote
	// reader folds it and the line after it into one field, and the parse
	// keeps going instead of aborting.
	raw := []byte("Policy,Premium\nABC-1,100\n\"ABC-2,200\nABC-3,300\n")

	table, err := Parse(raw, "bordereaux.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table.Rows) == 0 {
		t.Fatalf("expected at least the well-formed rows to survive")
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse([]byte("data"), "report.pdf")
	if err == nil {
		t.Fatalf("expected ParseError for unsupported extension")
	}
}
