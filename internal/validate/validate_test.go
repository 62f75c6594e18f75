package validate

import (
	"testing"
	"time"

	"github.com/borderops/ingestor/internal/rowmap"
	"github.com/borderops/ingestor/internal/store"
)

func strptr(s string) *string  { return &s }
func fptr(f float64) *float64  { return &f }

func TestValidateDefaultRulesAcceptsCleanRow(t *testing.T) {
	inception := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	row := rowmap.CanonicalRow{
		RowNumber:     1,
		PolicyNumber:  strptr("POL-1"),
		InceptionDate: &inception,
		ExpiryDate:    &expiry,
		PremiumAmount: fptr(100),
	}

	valid, errs := Validate([]rowmap.CanonicalRow{row}, store.NewUUID(), Default())
	if len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %+v", errs)
	}
	if len(valid) != 1 {
		t.Fatalf("expected 1 valid row, got %d", len(valid))
	}
}

func TestValidateRequiredFieldMissing(t *testing.T) {
	row := rowmap.CanonicalRow{RowNumber: 1}

	valid, errs := Validate([]rowmap.CanonicalRow{row}, store.NewUUID(), Default())
	if len(valid) != 0 {
		t.Fatalf("expected the row excluded entirely, got %d valid", len(valid))
	}
	if len(errs) != 1 || errs[0].ErrorCode != CodeRequiredFieldMissing {
		t.Fatalf("expected one REQUIRED_FIELD_MISSING error, got %+v", errs)
	}
}

func TestValidateDateRuleInceptionAfterExpiry(t *testing.T) {
	inception := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	row := rowmap.CanonicalRow{
		RowNumber:     1,
		PolicyNumber:  strptr("POL-1"),
		InceptionDate: &inception,
		ExpiryDate:    &expiry,
	}

	_, errs := Validate([]rowmap.CanonicalRow{row}, store.NewUUID(), Default())
	if len(errs) != 1 || errs[0].ErrorCode != CodeDateValidationFailed {
		t.Fatalf("expected one DATE_VALIDATION_FAILED error, got %+v", errs)
	}
}

func TestValidateDateRuleSkippedWhenEitherSideMissing(t *testing.T) {
	inception := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	row := rowmap.CanonicalRow{
		RowNumber:     1,
		PolicyNumber:  strptr("POL-1"),
		InceptionDate: &inception,
		// ExpiryDate left nil: spec only checks the rule when both sides are present.
	}

	_, errs := Validate([]rowmap.CanonicalRow{row}, store.NewUUID(), Default())
	if len(errs) != 0 {
		t.Fatalf("expected no errors when expiry_date is absent, got %+v", errs)
	}
}

func TestValidateNumericRuleBelowMinimum(t *testing.T) {
	row := rowmap.CanonicalRow{
		RowNumber:     1,
		PolicyNumber:  strptr("POL-1"),
		PremiumAmount: fptr(-50),
	}

	_, errs := Validate([]rowmap.CanonicalRow{row}, store.NewUUID(), Default())
	if len(errs) != 1 || errs[0].ErrorCode != CodeNumericValidation || errs[0].RuleName != "premium_non_negative" {
		t.Fatalf("expected one premium_non_negative error, got %+v", errs)
	}
}

func TestValidateAllOrNothingPerRow(t *testing.T) {
	inception := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	row := rowmap.CanonicalRow{
		RowNumber:     1,
		PolicyNumber:  strptr("POL-1"),
		InceptionDate: &inception,
		ExpiryDate:    &expiry,
		PremiumAmount: fptr(-1),
	}

	valid, errs := Validate([]rowmap.CanonicalRow{row}, store.NewUUID(), Default())
	if len(valid) != 0 {
		t.Fatalf("a row with any error must be excluded entirely, got %d valid", len(valid))
	}
	if len(errs) != 2 {
		t.Fatalf("expected both the date and numeric errors reported, got %+v", errs)
	}
}

func TestValidateNilRulesFallsBackToDefault(t *testing.T) {
	row := rowmap.CanonicalRow{RowNumber: 1}

	_, errs := Validate([]rowmap.CanonicalRow{row}, store.NewUUID(), nil)
	if len(errs) != 1 || errs[0].ErrorCode != CodeRequiredFieldMissing {
		t.Fatalf("expected Default() rules applied when rules is nil, got %+v", errs)
	}
}
