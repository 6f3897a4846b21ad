package fees

import "github.com/linkpay/linkpay/internal/domain/feeprofile"

// FixedFeeRule charges a flat amount in minor units
type FixedFeeRule struct {
	config feeprofile.RuleConfig
}

func (r *FixedFeeRule) Apply(rc RuleContext) (RuleResult, error) {
	if r.config.AmountInCents == nil {
		return RuleResult{}, ErrInvalidRuleConfig{RuleType: feeprofile.RuleTypeFixedFee, Field: "amount_in_cents"}
	}

	amount := *r.config.AmountInCents
	if rc.IncentiveEligible {
		// Entry still emitted so the breakdown shows the waived line.
		amount = 0
	}

	description := r.config.Description
	if description == "" {
		description = "Fixed Fee"
	}

	return RuleResult{
		Type:        feeprofile.RuleTypeFixedFee,
		Amount:      amount,
		Description: description,
	}, nil
}
