package rowmap

import (
	"testing"
	"time"

	"github.com/borderops/ingestor/internal/fileparse"
	"github.com/borderops/ingestor/internal/templatestore"
)

func cellText(s string) fileparse.Cell {
	return fileparse.Cell{Kind: fileparse.CellText, Text: s}
}

func TestCanonicalFieldsOrderIsStable(t *testing.T) {
	first := CanonicalFields()
	second := CanonicalFields()
	if len(first) != 13 {
		t.Fatalf("expected 13 canonical fields, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("CanonicalFields order changed between calls: %v vs %v", first, second)
		}
	}
}

func TestMapAppliesTemplateMappings(t *testing.T) {
	table := &fileparse.Table{
		Headers: []string{"policy_no", "premium", "inception"},
		Rows: []map[string]fileparse.Cell{
			{
				"policy_no":  cellText("POL-100"),
				"premium":    cellText("1234.56"),
				"inception":  cellText("2026-01-15"),
			},
		},
	}
	tmpl := templatestore.Template{
		ColumnMappings: templatestore.ColumnMappings{
			{SourceColumn: "Policy No", Field: "policy_number"},
			{SourceColumn: "Premium", Field: "premium_amount"},
			{SourceColumn: "Inception", Field: "inception_date"},
		},
	}

	rows := Map(table, tmpl)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.PolicyNumber == nil || *row.PolicyNumber != "POL-100" {
		t.Fatalf("PolicyNumber = %v, want POL-100", row.PolicyNumber)
	}
	if row.PremiumAmount == nil || *row.PremiumAmount != 1234.56 {
		t.Fatalf("PremiumAmount = %v, want 1234.56", row.PremiumAmount)
	}
	if row.InceptionDate == nil || !row.InceptionDate.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("InceptionDate = %v, want 2026-01-15", row.InceptionDate)
	}
	if row.RowNumber != 1 {
		t.Fatalf("RowNumber = %d, want 1", row.RowNumber)
	}
}

func TestMapUnknownTemplateFieldIsIgnored(t *testing.T) {
	table := &fileparse.Table{
		Headers: []string{"policy_no"},
		Rows: []map[string]fileparse.Cell{
			{"policy_no": cellText("POL-1")},
		},
	}
	tmpl := templatestore.Template{
		ColumnMappings: templatestore.ColumnMappings{
			{SourceColumn: "Policy No", Field: "not_a_real_field"},
		},
	}

	rows := Map(table, tmpl)
	if rows[0].PolicyNumber != nil {
		t.Fatalf("expected no field assigned for unknown canonical field, got %v", rows[0].PolicyNumber)
	}
}

func TestMapFirstNonNullWinsOnConflictingColumns(t *testing.T) {
	table := &fileparse.Table{
		Headers: []string{"policy_a", "policy_b"},
		Rows: []map[string]fileparse.Cell{
			{
				"policy_a": fileparse.Cell{Kind: fileparse.CellNull},
				"policy_b": cellText("POL-FALLBACK"),
			},
		},
	}
	tmpl := templatestore.Template{
		ColumnMappings: templatestore.ColumnMappings{
			{SourceColumn: "policy_a", Field: "policy_number"},
			{SourceColumn: "policy_b", Field: "policy_number"},
		},
	}

	rows := Map(table, tmpl)
	if rows[0].PolicyNumber == nil || *rows[0].PolicyNumber != "POL-FALLBACK" {
		t.Fatalf("PolicyNumber = %v, want POL-FALLBACK (first non-null, in mapping order)", rows[0].PolicyNumber)
	}
}

func TestMapFirstNonNullFollowsMappingOrderNotAlphabetical(t *testing.T) {
	// "policy_b" sorts before "policy_a" alphabetically but is listed second
	// in column_mappings; the winning value must follow mapping order.
	table := &fileparse.Table{
		Headers: []string{"policy_a", "policy_b"},
		Rows: []map[string]fileparse.Cell{
			{
				"policy_a": cellText("POL-FIRST"),
				"policy_b": cellText("POL-SECOND"),
			},
		},
	}
	tmpl := templatestore.Template{
		ColumnMappings: templatestore.ColumnMappings{
			{SourceColumn: "policy_a", Field: "policy_number"},
			{SourceColumn: "policy_b", Field: "policy_number"},
		},
	}

	rows := Map(table, tmpl)
	if rows[0].PolicyNumber == nil || *rows[0].PolicyNumber != "POL-FIRST" {
		t.Fatalf("PolicyNumber = %v, want POL-FIRST (mapping-order precedence)", rows[0].PolicyNumber)
	}
}

func TestMapBlankStringFieldNotAssigned(t *testing.T) {
	table := &fileparse.Table{
		Headers: []string{"insured"},
		Rows: []map[string]fileparse.Cell{
			{"insured": cellText("   ")},
		},
	}
	tmpl := templatestore.Template{
		ColumnMappings: templatestore.ColumnMappings{{SourceColumn: "insured", Field: "insured_name"}},
	}

	rows := Map(table, tmpl)
	if rows[0].InsuredName != nil {
		t.Fatalf("expected whitespace-only cell to leave InsuredName nil, got %v", rows[0].InsuredName)
	}
}

func TestMapRawDataSnapshotsEveryHeader(t *testing.T) {
	table := &fileparse.Table{
		Headers: []string{"a", "b"},
		Rows: []map[string]fileparse.Cell{
			{"a": cellText("1"), "b": cellText("2")},
		},
	}
	tmpl := templatestore.Template{ColumnMappings: templatestore.ColumnMappings{}}

	rows := Map(table, tmpl)
	raw := string(rows[0].RawData)
	if raw != `{"a":"1","b":"2"}` {
		t.Fatalf("RawData = %s, want {\"a\":\"1\",\"b\":\"2\"}", raw)
	}
}
