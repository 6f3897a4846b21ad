package feeprofile

import "time"

// RuleType defines supported fee rule kinds
type RuleType string

const (
	RuleTypeFixedFee      RuleType = "FIXED_FEE"
	RuleTypePercentageFee RuleType = "PERCENTAGE_FEE"
)

// IncentiveType defines supported incentive kinds
type IncentiveType string

const (
	IncentiveTypeFirstNTransactions IncentiveType = "FIRST_N_TRANSACTIONS"
)

// RuleConfig carries rule-specific configuration. AmountInCents is required
// for FIXED_FEE, Rate for PERCENTAGE_FEE.
type RuleConfig struct {
	AmountInCents *int64   `json:"amount_in_cents,omitempty" bson:"amount_in_cents,omitempty"`
	Rate          *float64 `json:"rate,omitempty" bson:"rate,omitempty"`
	Description   string   `json:"description,omitempty" bson:"description,omitempty"`
}

// Rule is one entry of a profile's ordered rule list
type Rule struct {
	Type   RuleType   `json:"type" bson:"type"`
	Config RuleConfig `json:"config" bson:"config"`
}

// IncentiveConfig carries incentive-specific configuration
type IncentiveConfig struct {
	N                  int     `json:"n,omitempty" bson:"n,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty" bson:"discount_percentage,omitempty"`
}

// Incentive waives fees for qualifying customers
type Incentive struct {
	Type   IncentiveType   `json:"type" bson:"type"`
	Config IncentiveConfig `json:"config" bson:"config"`
}

// Profile is a named, ordered fee configuration. Rule order is significant:
// it determines the breakdown's display order. Read-only at charge time.
type Profile struct {
	ProfileID  string      `json:"profile_id" bson:"profile_id"`
	Rules      []Rule      `json:"rules" bson:"rules"`
	Incentives []Incentive `json:"incentives" bson:"incentives"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" bson:"updated_at"`
}

// DefaultProfileID names the profile used when no profile is requested or a
// requested profile is absent.
const DefaultProfileID = "DEFAULT_USD_MXN"

// FirstNIncentive returns the FIRST_N_TRANSACTIONS incentive if the profile
// declares one.
func (p *Profile) FirstNIncentive() (Incentive, bool) {
	for _, inc := range p.Incentives {
		if inc.Type == IncentiveTypeFirstNTransactions {
			return inc, true
		}
	}
	return Incentive{}, false
}

// EligibleForIncentive reports whether a customer with the given PAID
// transaction count qualifies for the profile's FIRST_N_TRANSACTIONS
// incentive.
func (p *Profile) EligibleForIncentive(txCount int64) bool {
	inc, ok := p.FirstNIncentive()
	if !ok {
		return false
	}
	return txCount < int64(inc.Config.N)
}
