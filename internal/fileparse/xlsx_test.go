package fileparse

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Policy Number", "Premium Amount", "Is Renewal"},
		{"ABC-1", 1234.56, true},
		{"ABC-2", 789, false},
	}
	for r, row := range rows {
		for c, v := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetCellValue(sheet, axis, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.Bytes()
}

func TestParseExcelBasic(t *testing.T) {
	raw := buildWorkbook(t)

	table, err := Parse(raw, "bordereaux.xlsx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantHeaders := []string{"policy_number", "premium_amount", "is_renewal"}
	for i, h := range wantHeaders {
		if table.Headers[i] != h {
			t.Fatalf("headers[%d] = %q, want %q", i, table.Headers[i], h)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}

	premium := table.Rows[0]["premium_amount"]
	if premium.Kind != CellFloat && premium.Kind != CellInt {
		t.Fatalf("premium_amount kind = %v, want numeric", premium.Kind)
	}

	renewal := table.Rows[0]["is_renewal"]
	if renewal.Kind != CellBool || !renewal.Bool {
		t.Fatalf("is_renewal = %+v, want bool true", renewal)
	}
}

func TestParseExcelEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	table, err := Parse(buf.Bytes(), "empty.xlsx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Fatalf("expected no rows for empty sheet, got %d", len(table.Rows))
	}
}
