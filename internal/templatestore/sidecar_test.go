package templatestore

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSidecarTemplateRoundTrip(t *testing.T) {
	sc := sidecarTemplate{
		TemplateID: "acme-claims-v1",
		Name:       "Acme Claims",
		FileType:   "claims",
		ColumnMappings: ColumnMappings{
			{SourceColumn: "Policy No", Field: "policy_number"},
			{SourceColumn: "Claim Amount$", Field: "claim_amount"},
		},
		ActiveFlag: true,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(sc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sidecarTemplate
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.TemplateID != sc.TemplateID || decoded.Name != sc.Name {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, sc)
	}
	if decoded.ColumnMappings.Map()["Policy No"] != "policy_number" {
		t.Fatalf("column mapping lost in round trip: %+v", decoded.ColumnMappings)
	}
	if len(decoded.ColumnMappings) != 2 || decoded.ColumnMappings[0].SourceColumn != "Policy No" {
		t.Fatalf("column mapping order lost in round trip: %+v", decoded.ColumnMappings)
	}
}
