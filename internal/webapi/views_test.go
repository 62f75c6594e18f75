package webapi

import (
	"testing"
	"time"

	"github.com/borderops/ingestor/internal/store"
	"github.com/borderops/ingestor/internal/templatestore"
)

func TestToFileViewUnwrapsNullableFields(t *testing.T) {
	f := store.BordereauxFile{
		ID:          store.NewUUID(),
		Filename:    "claims.csv",
		FileSize:    1024,
		ContentHash: "abc123",
		Status:      store.StatusProcessedOK,
	}

	v := toFileView(f)
	if v.Filename != "claims.csv" || v.FileSize != 1024 {
		t.Fatalf("unexpected base fields: %+v", v)
	}
	if v.MimeType != "" || v.ErrorMessage != "" || v.Sender != "" || v.Subject != "" || v.ProposalPath != "" {
		t.Fatalf("expected unset nullable fields to project as empty strings, got %+v", v)
	}
	if v.ProcessedAt != nil {
		t.Fatalf("expected ProcessedAt nil when unset, got %v", v.ProcessedAt)
	}
}

func TestToFileViewPopulatesSetNullableFields(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	f := store.BordereauxFile{
		ID:           store.NewUUID(),
		Filename:     "premium.xlsx",
		ContentHash:  "def456",
		Status:       store.StatusFailed,
		ErrorMessage: store.NewText("bad header row"),
		Sender:       store.NewText("broker@example.com"),
		ProposalPath: store.NewText("/data/proposals/def456.json"),
		ProcessedAt:  store.NewTimestamptz(now),
	}

	v := toFileView(f)
	if v.ErrorMessage != "bad header row" {
		t.Fatalf("ErrorMessage = %q, want %q", v.ErrorMessage, "bad header row")
	}
	if v.Sender != "broker@example.com" {
		t.Fatalf("Sender = %q, want %q", v.Sender, "broker@example.com")
	}
	if v.ProposalPath != "/data/proposals/def456.json" {
		t.Fatalf("ProposalPath = %q", v.ProposalPath)
	}
	if v.ProcessedAt == nil || !v.ProcessedAt.Equal(now) {
		t.Fatalf("ProcessedAt = %v, want %v", v.ProcessedAt, now)
	}
}

func TestToValidationErrorViewUnwrapsFieldNameAndValue(t *testing.T) {
	e := store.ValidationError{
		RowIndex:     7,
		ErrorCode:    "REQUIRED_FIELD_MISSING",
		ErrorMessage: "policy_number is required",
		RuleName:     "policy_number_required",
	}

	v := toValidationErrorView(e)
	if v.FieldName != "" || v.FieldValue != "" {
		t.Fatalf("expected empty field name/value when unset, got %+v", v)
	}

	e.FieldName = store.NewText("policy_number")
	e.FieldValue = store.NewText("")
	v = toValidationErrorView(e)
	if v.FieldName != "policy_number" {
		t.Fatalf("FieldName = %q, want policy_number", v.FieldName)
	}
}

func TestToTemplateViewCopiesAllFields(t *testing.T) {
	tmpl := templatestore.Template{
		TemplateID:     "carrier-a-claims-v1",
		Name:           "Carrier A Claims",
		Carrier:        "Carrier A",
		FileType:       store.FileTypeClaims,
		ColumnMappings: templatestore.ColumnMappings{{SourceColumn: "Policy No", Field: "policy_number"}},
		Version:        "1",
		ActiveFlag:     true,
	}

	v := toTemplateView(tmpl)
	if v.TemplateID != tmpl.TemplateID || v.Name != tmpl.Name || v.Carrier != tmpl.Carrier {
		t.Fatalf("toTemplateView mismatch: %+v", v)
	}
	if v.ColumnMappings.Map()["Policy No"] != "policy_number" {
		t.Fatalf("ColumnMappings not copied: %+v", v.ColumnMappings)
	}
	if !v.ActiveFlag {
		t.Fatalf("ActiveFlag = false, want true")
	}
}
