package fees

import (
	"fmt"
	"math"

	"github.com/linkpay/linkpay/internal/domain/feeprofile"
)

// PercentageFeeRule charges a fraction of the base amount, rounded half-up
// on minor units.
type PercentageFeeRule struct {
	config feeprofile.RuleConfig
}

func (r *PercentageFeeRule) Apply(rc RuleContext) (RuleResult, error) {
	if r.config.Rate == nil {
		return RuleResult{}, ErrInvalidRuleConfig{RuleType: feeprofile.RuleTypePercentageFee, Field: "rate"}
	}

	rate := *r.config.Rate
	amount := int64(math.Round(float64(rc.BaseAmountInCents) * rate))
	if rc.IncentiveEligible {
		amount = 0
	}

	description := r.config.Description
	if description == "" {
		description = fmt.Sprintf("Percentage Fee (%.2f%%)", rate*100)
	}

	return RuleResult{
		Type:        feeprofile.RuleTypePercentageFee,
		Amount:      amount,
		Description: description,
	}, nil
}
