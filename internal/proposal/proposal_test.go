package proposal

import "testing"

func TestHeuristicMapsObviousHeaders(t *testing.T) {
	headers := []string{"Policy Number", "Premium Amount", "Insured Name"}
	p := heuristic(headers, Metadata{Filename: "test.csv"}, DefaultMinConfidence)

	want := map[string]string{
		"Policy Number":  "policy_number",
		"Premium Amount": "premium_amount",
		"Insured Name":   "insured_name",
	}
	for h, field := range want {
		if p.ColumnMappings[h] != field {
			t.Fatalf("ColumnMappings[%q] = %q, want %q", h, p.ColumnMappings[h], field)
		}
		if p.ConfidenceScores[h] < DefaultMinConfidence {
			t.Fatalf("ConfidenceScores[%q] = %v, below minimum %v", h, p.ConfidenceScores[h], DefaultMinConfidence)
		}
	}
}

func TestHeuristicFieldClaimedOnceGreedy(t *testing.T) {
	// Both headers are strong matches for policy_number; the first one
	// encountered should claim it, leaving the second unmapped rather than
	// double-assigned.
	headers := []string{"Policy No", "Policy Number"}
	p := heuristic(headers, Metadata{}, DefaultMinConfidence)

	claimedCount := 0
	for _, field := range p.ColumnMappings {
		if field == "policy_number" {
			claimedCount++
		}
	}
	if claimedCount != 1 {
		t.Fatalf("expected policy_number claimed exactly once, got %d", claimedCount)
	}
}

func TestHeuristicSkipsHeaderBelowConfidenceFloor(t *testing.T) {
	headers := []string{"Unrelated Gibberish Column"}
	p := heuristic(headers, Metadata{}, DefaultMinConfidence)

	if len(p.ColumnMappings) != 0 {
		t.Fatalf("expected no mapping for an unrelated header, got %+v", p.ColumnMappings)
	}
}

func TestFuzzyRatioExactAndContainment(t *testing.T) {
	if got := fuzzyRatio("Policy Number", "policy_number"); got != 1.0 {
		t.Fatalf("fuzzyRatio exact normalized match = %v, want 1.0", got)
	}
	if got := fuzzyRatio("Policy", "Policy Number"); got != 0.9 {
		t.Fatalf("fuzzyRatio containment = %v, want 0.9", got)
	}
	if got := fuzzyRatio("", "policy"); got != 0 {
		t.Fatalf("fuzzyRatio with empty input = %v, want 0", got)
	}
}

func TestKeywordScoreExactMatchWins(t *testing.T) {
	if got := keywordScore("premium", keywords["premium_amount"]); got != 1.0 {
		t.Fatalf("keywordScore exact match = %v, want 1.0", got)
	}
}

func TestFoldAlnumStripsPunctuationAndCase(t *testing.T) {
	if got := foldAlnum("Policy_No. #1"); got != "policyno1" {
		t.Fatalf("foldAlnum = %q, want %q", got, "policyno1")
	}
}
