package fees

import (
	"fmt"

	"github.com/linkpay/linkpay/internal/domain/feeprofile"
)

// RuleContext carries the per-quote inputs a fee rule reads. Rules never
// mutate it.
type RuleContext struct {
	BaseAmountInCents int64
	FxRate            float64
	TxCount           int64
	IncentiveEligible bool
}

// RuleResult is a single breakdown line produced by one rule application
type RuleResult struct {
	Type        feeprofile.RuleType
	Amount      int64
	Description string
}

// Rule computes one fee line from the quote context. Implementations are
// pure functions of their configuration and the context.
type Rule interface {
	Apply(rc RuleContext) (RuleResult, error)
}

// ErrInvalidRuleConfig indicates a profile rule is missing required
// configuration. This is a data error, not a user error, and aborts the
// whole calculation.
type ErrInvalidRuleConfig struct {
	RuleType feeprofile.RuleType
	Field    string
}

func (e ErrInvalidRuleConfig) Error() string {
	return fmt.Sprintf("fee rule %s is missing required config field %q", e.RuleType, e.Field)
}

// buildRule maps a profile rule entry to its implementation. Unknown kinds
// return false so the calculator can skip them with a warning.
func buildRule(rule feeprofile.Rule) (Rule, bool) {
	switch rule.Type {
	case feeprofile.RuleTypeFixedFee:
		return &FixedFeeRule{config: rule.Config}, true
	case feeprofile.RuleTypePercentageFee:
		return &PercentageFeeRule{config: rule.Config}, true
	default:
		return nil, false
	}
}
