package validate

import (
	"strconv"
	"time"

	"github.com/borderops/ingestor/internal/rowmap"
)

// fieldValue returns the field's value (rendered as text for error
// reporting) and whether it is present (non-null), dispatching across the
// mixed string/date/decimal pointer types CanonicalRow carries.
func fieldValue(row rowmap.CanonicalRow, field string) (string, bool) {
	switch field {
	case "policy_number":
		return derefString(row.PolicyNumber)
	case "insured_name":
		return derefString(row.InsuredName)
	case "broker_name":
		return derefString(row.BrokerName)
	case "product_type":
		return derefString(row.ProductType)
	case "coverage_type":
		return derefString(row.CoverageType)
	case "risk_location":
		return derefString(row.RiskLocation)
	case "currency":
		return derefString(row.Currency)
	case "inception_date":
		return derefDate(row.InceptionDate)
	case "expiry_date":
		return derefDate(row.ExpiryDate)
	case "premium_amount":
		return derefFloat(row.PremiumAmount)
	case "claim_amount":
		return derefFloat(row.ClaimAmount)
	case "commission_amount":
		return derefFloat(row.CommissionAmount)
	case "net_premium":
		return derefFloat(row.NetPremium)
	default:
		return "", false
	}
}

func fieldDate(row rowmap.CanonicalRow, field string) (time.Time, bool) {
	switch field {
	case "inception_date":
		if row.InceptionDate != nil {
			return *row.InceptionDate, true
		}
	case "expiry_date":
		if row.ExpiryDate != nil {
			return *row.ExpiryDate, true
		}
	}
	return time.Time{}, false
}

// floatPtr returns the numeric field's value directly, without a text
// round-trip; numeric_rules bounds checks operate on this.
func floatPtr(row rowmap.CanonicalRow, field string) *float64 {
	switch field {
	case "premium_amount":
		return row.PremiumAmount
	case "claim_amount":
		return row.ClaimAmount
	case "commission_amount":
		return row.CommissionAmount
	case "net_premium":
		return row.NetPremium
	default:
		return nil
	}
}

func derefString(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func derefDate(p *time.Time) (string, bool) {
	if p == nil {
		return "", false
	}
	return p.Format("2006-01-02"), true
}

func derefFloat(p *float64) (string, bool) {
	if p == nil {
		return "", false
	}
	return strconv.FormatFloat(*p, 'f', -1, 64), true
}
