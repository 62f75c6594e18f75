package proposal

// keywords lists, per canonical field, the header vocabulary the heuristic
// scorer matches against. Order doesn't matter; every keyword is scored and
// the max wins.
var keywords = map[string][]string{
	"policy_number":     {"policy", "policy_number", "policy_no", "policyno", "polno", "pol_no", "policy_num"},
	"insured_name":       {"insured", "insured_name", "name", "client", "policyholder", "assured"},
	"inception_date":     {"inception", "inception_date", "incept", "start_date", "effective_date", "from_date"},
	"expiry_date":        {"expiry", "expiry_date", "exp", "end_date", "expiration", "to_date"},
	"premium_amount":     {"premium", "premium_amount", "prem", "gross_premium", "total_premium"},
	"currency":           {"currency", "curr", "ccy"},
	"claim_amount":       {"claim", "claim_amount", "claimed", "loss_amount", "paid"},
	"commission_amount":  {"commission", "commission_amount", "comm", "brokerage"},
	"net_premium":        {"net_premium", "net", "net_prem"},
	"broker_name":        {"broker", "broker_name", "intermediary", "agent"},
	"product_type":       {"product", "product_type", "line_of_business", "lob"},
	"coverage_type":      {"coverage", "coverage_type", "cover", "peril"},
	"risk_location":      {"location", "risk_location", "territory", "country", "region", "address"},
}
