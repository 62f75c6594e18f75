package matcher

import (
	"testing"

	"github.com/borderops/ingestor/internal/templatestore"
)

func tmpl(id string, mappings map[string]string) templatestore.Template {
	return templatestore.Template{TemplateID: id, ColumnMappings: templatestore.NewColumnMappings(mappings), ActiveFlag: true}
}

func TestMatchExact(t *testing.T) {
	headers := []string{"policy_number", "premium_amount"}
	candidates := []templatestore.Template{
		tmpl("t1", map[string]string{"Policy Number": "policy_number", "Premium Amount": "premium_amount"}),
	}

	got, ok := Match(headers, candidates)
	if !ok || got.TemplateID != "t1" {
		t.Fatalf("Match() = %+v, %v; want t1, true", got, ok)
	}
}

func TestMatchExactRequiresEqualSize(t *testing.T) {
	headers := []string{"policy_number", "premium_amount", "extra_column"}
	candidates := []templatestore.Template{
		tmpl("t1", map[string]string{"Policy Number": "policy_number", "Premium Amount": "premium_amount"}),
	}

	_, ok := Match(headers, candidates)
	if ok {
		t.Fatalf("expected no exact match when header count exceeds key count, got a match")
	}
}

func TestMatchLenientFallback(t *testing.T) {
	// 100 keys, 99 present (99% coverage), header count within 10% of key count.
	keys := make(map[string]string, 100)
	for i := 0; i < 100; i++ {
		keys[colName(i)] = colName(i)
	}
	headers := make([]string, 0, 99)
	for i := 0; i < 99; i++ {
		headers = append(headers, colName(i))
	}

	candidates := []templatestore.Template{tmpl("t1", keys)}

	got, ok := Match(headers, candidates)
	if !ok || got.TemplateID != "t1" {
		t.Fatalf("Match() = %+v, %v; want lenient match on t1", got, ok)
	}
}

func TestMatchNoneQualifies(t *testing.T) {
	headers := []string{"totally_unrelated"}
	candidates := []templatestore.Template{
		tmpl("t1", map[string]string{"Policy Number": "policy_number"}),
	}

	_, ok := Match(headers, candidates)
	if ok {
		t.Fatalf("expected no match, got one")
	}
}

func TestMatchTieBreakFirstInScanOrder(t *testing.T) {
	headers := []string{"policy_number"}
	candidates := []templatestore.Template{
		tmpl("first", map[string]string{"Policy Number": "policy_number"}),
		tmpl("second", map[string]string{"Policy Number": "policy_number"}),
	}

	got, ok := Match(headers, candidates)
	if !ok || got.TemplateID != "first" {
		t.Fatalf("Match() = %+v, %v; want first (scan-order tie-break)", got, ok)
	}
}

func colName(i int) string {
	return "col_" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}
