package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/linkpay/linkpay/internal/config"
	"github.com/linkpay/linkpay/internal/domain/transaction"
)

// StripeGateway simulates Stripe's charge API: 100-500ms latency and a
// configurable outage probability.
type StripeGateway struct {
	logger *slog.Logger
	sim    simulator
}

// NewStripeGateway creates the simulated Stripe adapter
func NewStripeGateway(logger *slog.Logger, cfg *config.GatewaysConfig) *StripeGateway {
	return &StripeGateway{
		logger: logger,
		sim:    newSimulator(transaction.ProviderStripe, 100*time.Millisecond, 500*time.Millisecond, cfg.StripeFailureRate),
	}
}

func (g *StripeGateway) Name() transaction.Provider {
	return transaction.ProviderStripe
}

// Charge executes a simulated Stripe charge. Test tokens force their
// outcome; any other token succeeds unless the simulated outage fires.
func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if err := g.sim.simulateLatency(ctx); err != nil {
		return nil, err
	}

	switch req.Token {
	case TokenNetworkError:
		return nil, GatewayUnavailableError{Provider: transaction.ProviderStripe, Reason: "simulated network error"}
	case TokenCardDeclined:
		return g.decline(req), nil
	}

	if req.Token != TokenVisaSuccess && g.sim.outage() {
		g.logger.Warn("Stripe simulated outage", "payment_link_id", req.PaymentLinkID)
		return nil, GatewayUnavailableError{Provider: transaction.ProviderStripe, Reason: "simulated provider outage"}
	}

	ref := g.sim.reference("ch_", 24)
	return &ChargeResponse{
		Success:   true,
		Reference: ref,
		Status:    "succeeded",
		RawResponse: map[string]any{
			"id":       ref,
			"object":   "charge",
			"status":   "succeeded",
			"amount":   req.AmountInCents,
			"currency": req.Currency,
		},
	}, nil
}

func (g *StripeGateway) decline(req ChargeRequest) *ChargeResponse {
	ref := g.sim.reference("ch_", 24)
	return &ChargeResponse{
		Success:      false,
		Reference:    ref,
		Status:       "failed",
		ErrorMessage: "Your card was declined.",
		RawResponse: map[string]any{
			"id":              ref,
			"object":          "charge",
			"status":          "failed",
			"failure_code":    "card_declined",
			"failure_message": "Your card was declined.",
			"amount":          req.AmountInCents,
			"currency":        req.Currency,
		},
	}
}
