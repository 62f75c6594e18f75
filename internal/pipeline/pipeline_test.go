package pipeline

import (
	"testing"

	"github.com/borderops/ingestor/internal/rowmap"
	"github.com/borderops/ingestor/internal/store"
)

func TestInferFileTypeChecksClaimPremiumExposureInOrder(t *testing.T) {
	cases := []struct {
		subject string
		want    string
	}{
		{"Q1 Claims Bordereaux", store.FileTypeClaims},
		{"Premium Bordereaux March", store.FileTypePremium},
		{"Exposure Schedule", store.FileTypeExposure},
		{"Claims and Premium combined", store.FileTypeClaims}, // claim checked first
		{"", ""},
		{"Random Attachment", ""},
	}
	for _, tc := range cases {
		if got := inferFileType(tc.subject); got != tc.want {
			t.Errorf("inferFileType(%q) = %q, want %q", tc.subject, got, tc.want)
		}
	}
}

func fptr(f float64) *float64 { return &f }
func sptr(s string) *string   { return &s }

func TestToInsertRowParamsMapsAllPresentFields(t *testing.T) {
	fileID := store.NewUUID()
	row := rowmap.CanonicalRow{
		RowNumber:     3,
		PolicyNumber:  sptr("POL-1"),
		PremiumAmount: fptr(100.5),
		RawData:       []byte(`{"a":"1"}`),
	}

	p := toInsertRowParams(fileID, row)
	if p.RowNumber != 3 {
		t.Fatalf("RowNumber = %d, want 3", p.RowNumber)
	}
	if !p.PolicyNumber.Valid || p.PolicyNumber.String != "POL-1" {
		t.Fatalf("PolicyNumber = %+v, want valid POL-1", p.PolicyNumber)
	}
	if !p.PremiumAmount.Valid {
		t.Fatalf("PremiumAmount not set: %+v", p.PremiumAmount)
	}
	if p.InsuredName.Valid {
		t.Fatalf("InsuredName should be invalid/unset when nil on the source row, got %+v", p.InsuredName)
	}
}

func TestTextOfUnwrapsPgtypeText(t *testing.T) {
	if got := textOf(store.NewText("hello")); got != "hello" {
		t.Fatalf("textOf(NewText) = %q, want hello", got)
	}
	if got := textOf(store.NewText("")); got != "" {
		t.Fatalf("textOf(NewText empty) = %q, want empty", got)
	}
}
