package fees

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/linkpay/linkpay/internal/domain/feeprofile"
	"github.com/linkpay/linkpay/internal/domain/transaction"
)

// RateProvider resolves the current USD->MXN conversion rate
type RateProvider interface {
	GetRate(ctx context.Context) (float64, error)
}

// Result is the quote produced for one base amount. Fees are itemized in
// declared-rule order; DestinationAmountMXN converts the base amount only.
type Result struct {
	BaseAmountInCents    int64                    `json:"base_amount_in_cents"`
	TotalAmountInCents   int64                    `json:"total_amount_in_cents"`
	DestinationAmountMXN int64                    `json:"destination_amount_mxn"`
	FxRate               float64                  `json:"fx_rate"`
	Fees                 transaction.FeeBreakdown `json:"fees"`
}

// Calculator produces fee quotes by combining a fee profile, the customer's
// payment history, and the current FX rate.
type Calculator struct {
	logger       *slog.Logger
	profiles     feeprofile.Repository
	transactions transaction.Repository
	rates        RateProvider
}

// NewCalculator creates a fee calculator
func NewCalculator(
	logger *slog.Logger,
	profiles feeprofile.Repository,
	transactions transaction.Repository,
	rates RateProvider,
) *Calculator {
	return &Calculator{
		logger:       logger,
		profiles:     profiles,
		transactions: transactions,
		rates:        rates,
	}
}

// Calculate quotes the fees for a charge of baseAmountInCents. Profile
// resolution, FX lookup, and customer history are independent and run
// concurrently; the rule pipeline runs strictly in the profile's declared
// order because the breakdown order must match it.
func (c *Calculator) Calculate(ctx context.Context, baseAmountInCents int64, customerEmail, profileID string) (*Result, error) {
	var (
		profile *feeprofile.Profile
		fxRate  float64
		txCount int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		profile, err = c.resolveProfile(gctx, profileID)
		return err
	})

	g.Go(func() error {
		var err error
		fxRate, err = c.rates.GetRate(gctx)
		if err != nil {
			return fmt.Errorf("failed to resolve fx rate: %w", err)
		}
		return err
	})

	g.Go(func() error {
		if customerEmail == "" {
			return nil
		}
		var err error
		txCount, err = c.transactions.CountPaidByEmail(gctx, customerEmail)
		if err != nil {
			return fmt.Errorf("failed to count customer transactions: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	eligible := profile.EligibleForIncentive(txCount)
	if eligible {
		c.logger.Info("Customer eligible for fee incentive",
			"profile_id", profile.ProfileID,
			"paid_transactions", txCount)
	}

	rc := RuleContext{
		BaseAmountInCents: baseAmountInCents,
		FxRate:            fxRate,
		TxCount:           txCount,
		IncentiveEligible: eligible,
	}

	breakdown, totalFees, err := c.runRules(profile, rc)
	if err != nil {
		return nil, err
	}

	return &Result{
		BaseAmountInCents:    baseAmountInCents,
		TotalAmountInCents:   baseAmountInCents + totalFees,
		DestinationAmountMXN: int64(math.Round(float64(baseAmountInCents) * fxRate)),
		FxRate:               fxRate,
		Fees: transaction.FeeBreakdown{
			TotalFees: totalFees,
			Breakdown: breakdown,
		},
	}, nil
}

// resolveProfile loads the named profile, falling back to the default when
// the name is empty or unknown. Fallback is a degradation, not a failure.
func (c *Calculator) resolveProfile(ctx context.Context, profileID string) (*feeprofile.Profile, error) {
	if profileID == "" {
		profileID = feeprofile.DefaultProfileID
	}

	profile, err := c.profiles.GetByProfileID(ctx, profileID)
	if err == nil {
		return profile, nil
	}

	if profileID == feeprofile.DefaultProfileID {
		return nil, fmt.Errorf("failed to resolve default fee profile: %w", err)
	}

	c.logger.Warn("Fee profile not found, falling back to default",
		"profile_id", profileID,
		"error", err)

	profile, err = c.profiles.GetByProfileID(ctx, feeprofile.DefaultProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default fee profile: %w", err)
	}
	return profile, nil
}

// runRules applies the profile's rules in declared order, threading the
// accumulated breakdown and running total between applications.
func (c *Calculator) runRules(profile *feeprofile.Profile, rc RuleContext) ([]transaction.FeeBreakdownItem, int64, error) {
	breakdown := make([]transaction.FeeBreakdownItem, 0, len(profile.Rules))
	var totalFees int64

	for _, entry := range profile.Rules {
		rule, ok := buildRule(entry)
		if !ok {
			c.logger.Warn("Skipping unknown fee rule type",
				"profile_id", profile.ProfileID,
				"rule_type", entry.Type)
			continue
		}

		result, err := rule.Apply(rc)
		if err != nil {
			return nil, 0, err
		}

		breakdown = append(breakdown, transaction.FeeBreakdownItem{
			Type:        string(result.Type),
			Amount:      result.Amount,
			Description: result.Description,
		})
		totalFees += result.Amount
	}

	return breakdown, totalFees, nil
}
