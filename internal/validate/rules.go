// Package validate implements the validator (C7): applying a configurable
// rule set to canonical rows to produce (valid_rows, error_records).
package validate

import (
	"encoding/json"
	"fmt"
	"os"
)

// RequiredFieldRule names a canonical field that must be non-null.
type RequiredFieldRule = string

// DateRule asserts inception <= expiry when both fields are non-null.
type DateRule struct {
	Name           string `json:"name"`
	InceptionField string `json:"inception_field"`
	ExpiryField    string `json:"expiry_field"`
	Message        string `json:"message"`
}

// NumericRule asserts a field, when non-null, falls within [MinValue, MaxValue].
type NumericRule struct {
	Name      string   `json:"name"`
	Field     string   `json:"field"`
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
	Message   string   `json:"message"`
}

// Rules is the rule document loaded once at startup from rules.json.
type Rules struct {
	RequiredFields []RequiredFieldRule `json:"required_fields"`
	DateRules      []DateRule          `json:"date_rules"`
	NumericRules   []NumericRule       `json:"numeric_rules"`
}

func ptr(f float64) *float64 { return &f }

// Default returns the built-in rule set used when rules.json is absent:
// policy_number required; inception <= expiry; the four monetary fields
// must be >= 0.
func Default() *Rules {
	return &Rules{
		RequiredFields: []RequiredFieldRule{"policy_number"},
		DateRules: []DateRule{
			{
				Name:           "inception_before_expiry",
				InceptionField: "inception_date",
				ExpiryField:    "expiry_date",
				Message:        "inception date must be on or before expiry date",
			},
		},
		NumericRules: []NumericRule{
			{Name: "premium_non_negative", Field: "premium_amount", MinValue: ptr(0), Message: "premium amount must be non-negative"},
			{Name: "claim_non_negative", Field: "claim_amount", MinValue: ptr(0), Message: "claim amount must be non-negative"},
			{Name: "commission_non_negative", Field: "commission_amount", MinValue: ptr(0), Message: "commission amount must be non-negative"},
			{Name: "net_premium_non_negative", Field: "net_premium", MinValue: ptr(0), Message: "net premium must be non-negative"},
		},
	}
}

// Load reads a rule document from path, returning Default() if the file
// does not exist.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("validate: read rules: %w", err)
	}

	var r Rules
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("validate: decode rules: %w", err)
	}
	return &r, nil
}
