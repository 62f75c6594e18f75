// Package rowmap implements the row mapper (C6): applying a matched
// template to a parsed table to produce canonical rows, running every
// scalar through the C1 normalization kernel.
package rowmap

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/borderops/ingestor/internal/fileparse"
	"github.com/borderops/ingestor/internal/normalize"
	"github.com/borderops/ingestor/internal/templatestore"
)

type fieldKind int

const (
	fieldString fieldKind = iota
	fieldDate
	fieldDecimal
	fieldCurrency
)

// canonicalFields is the closed set of target fields a template entry may
// map to, matching BordereauxRow's columns.
var canonicalFields = map[string]fieldKind{
	"policy_number":     fieldString,
	"insured_name":      fieldString,
	"inception_date":    fieldDate,
	"expiry_date":       fieldDate,
	"premium_amount":    fieldDecimal,
	"currency":          fieldCurrency,
	"claim_amount":      fieldDecimal,
	"commission_amount": fieldDecimal,
	"net_premium":       fieldDecimal,
	"broker_name":       fieldString,
	"product_type":      fieldString,
	"coverage_type":     fieldString,
	"risk_location":     fieldString,
}

// CanonicalRow is one mapped, normalized row, ready for validation and
// persistence.
type CanonicalRow struct {
	RowNumber        int
	PolicyNumber     *string
	InsuredName      *string
	InceptionDate    *time.Time
	ExpiryDate       *time.Time
	PremiumAmount    *float64
	Currency         *string
	ClaimAmount      *float64
	CommissionAmount *float64
	NetPremium       *float64
	BrokerName       *string
	ProductType      *string
	CoverageType     *string
	RiskLocation     *string
	RawData          []byte
}

// CanonicalFields returns the closed set of canonical field names a
// template entry or a generated proposal may target, in a stable order.
func CanonicalFields() []string {
	return []string{
		"policy_number", "insured_name", "inception_date", "expiry_date",
		"premium_amount", "currency", "claim_amount", "commission_amount",
		"net_premium", "broker_name", "product_type", "coverage_type",
		"risk_location",
	}
}

// Map applies t's column mappings to table, producing one CanonicalRow per
// source row in order.
//
// Template column_mappings preserve their original authoring order (see
// templatestore.ColumnMappings), so the "first non-null value wins" conflict
// rule resolves source columns in that same order when several map to the
// same canonical field.
func Map(table *fileparse.Table, t templatestore.Template) []CanonicalRow {
	candidatesByField := resolveFieldMappings(t.ColumnMappings, table.Headers)

	rows := make([]CanonicalRow, 0, len(table.Rows))
	for i, sourceRow := range table.Rows {
		row := CanonicalRow{RowNumber: i + 1}

		for field, headers := range candidatesByField {
			cell, ok := firstNonNull(sourceRow, headers)
			if !ok {
				continue
			}
			assign(&row, field, cell)
		}

		row.RawData = marshalRawData(sourceRow, table.Headers)
		rows = append(rows, row)
	}
	return rows
}

// resolveFieldMappings groups template entries by target canonical field,
// each carrying the list of matching table headers in resolution order —
// the order columnMappings itself was authored in.
func resolveFieldMappings(columnMappings templatestore.ColumnMappings, headers []string) map[string][]string {
	out := make(map[string][]string)
	for _, e := range columnMappings {
		if _, known := canonicalFields[e.Field]; !known {
			continue
		}
		header, ok := findHeader(fileparse.NormalizeHeader(e.SourceColumn), headers)
		if !ok {
			continue
		}
		out[e.Field] = append(out[e.Field], header)
	}
	return out
}

// findHeader locates normalizedSourceCol among headers: exact match first
// (case-insensitivity is already subsumed by normalization), then
// containment in either direction.
func findHeader(normalizedSourceCol string, headers []string) (string, bool) {
	for _, h := range headers {
		if h == normalizedSourceCol {
			return h, true
		}
	}
	for _, h := range headers {
		if strings.Contains(h, normalizedSourceCol) || strings.Contains(normalizedSourceCol, h) {
			return h, true
		}
	}
	return "", false
}

func firstNonNull(row map[string]fileparse.Cell, headers []string) (fileparse.Cell, bool) {
	for _, h := range headers {
		if cell, ok := row[h]; ok && !cell.IsNull() {
			return cell, true
		}
	}
	return fileparse.Cell{}, false
}

func assign(row *CanonicalRow, field string, cell fileparse.Cell) {
	switch canonicalFields[field] {
	case fieldDate:
		t, ok := cellDate(cell)
		if !ok {
			return
		}
		setDateField(row, field, t)

	case fieldDecimal:
		f, ok := cellDecimal(cell)
		if !ok {
			return
		}
		setDecimalField(row, field, f)

	case fieldCurrency:
		code, ok := normalize.NormalizeCurrency(cell.Text)
		if !ok {
			return
		}
		row.Currency = &code

	default: // fieldString
		s := strings.TrimSpace(cell.Text)
		if s == "" {
			return
		}
		setStringField(row, field, s)
	}
}

func cellDate(cell fileparse.Cell) (time.Time, bool) {
	if cell.Kind == fileparse.CellDateTime {
		return cell.Time, true
	}
	return normalize.ParseDate(cell.Text)
}

func cellDecimal(cell fileparse.Cell) (float64, bool) {
	switch cell.Kind {
	case fileparse.CellInt:
		return float64(cell.Int), true
	case fileparse.CellFloat:
		return cell.Float, true
	default:
		return normalize.ParseDecimal(cell.Text)
	}
}

func setDateField(row *CanonicalRow, field string, t time.Time) {
	switch field {
	case "inception_date":
		row.InceptionDate = &t
	case "expiry_date":
		row.ExpiryDate = &t
	}
}

func setDecimalField(row *CanonicalRow, field string, f float64) {
	switch field {
	case "premium_amount":
		row.PremiumAmount = &f
	case "claim_amount":
		row.ClaimAmount = &f
	case "commission_amount":
		row.CommissionAmount = &f
	case "net_premium":
		row.NetPremium = &f
	}
}

func setStringField(row *CanonicalRow, field, s string) {
	switch field {
	case "policy_number":
		row.PolicyNumber = &s
	case "insured_name":
		row.InsuredName = &s
	case "broker_name":
		row.BrokerName = &s
	case "product_type":
		row.ProductType = &s
	case "coverage_type":
		row.CoverageType = &s
	case "risk_location":
		row.RiskLocation = &s
	}
}

// marshalRawData renders the source row as a JSON object with one key per
// header, coercing non-JSON-native scalars (timestamps, typed numerics) to
// ISO strings or floats per spec. The object is built from a map, so
// encoding/json writes the keys in sorted order, not header order.
func marshalRawData(row map[string]fileparse.Cell, headers []string) []byte {
	out := make(map[string]any, len(headers))
	for _, h := range headers {
		cell, ok := row[h]
		if !ok || cell.IsNull() {
			out[h] = nil
			continue
		}
		switch cell.Kind {
		case fileparse.CellBool:
			out[h] = cell.Bool
		case fileparse.CellInt:
			out[h] = cell.Int
		case fileparse.CellFloat:
			out[h] = cell.Float
		case fileparse.CellDateTime:
			out[h] = normalize.FormatISODate(cell.Time)
		default:
			out[h] = cell.Text
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		// Every value above is a JSON-native type; Marshal cannot fail here
		// short of an unsupported key type, which map[string]any rules out.
		return []byte("{}")
	}
	return data
}
