package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/linkpay/linkpay/internal/config"
	"github.com/linkpay/linkpay/internal/domain/transaction"
)

// AdyenGateway simulates Adyen's payments API: 150-500ms latency and a much
// lower outage probability than Stripe, which makes it the natural failover
// target.
type AdyenGateway struct {
	logger *slog.Logger
	sim    simulator
}

// NewAdyenGateway creates the simulated Adyen adapter
func NewAdyenGateway(logger *slog.Logger, cfg *config.GatewaysConfig) *AdyenGateway {
	return &AdyenGateway{
		logger: logger,
		sim:    newSimulator(transaction.ProviderAdyen, 150*time.Millisecond, 500*time.Millisecond, cfg.AdyenFailureRate),
	}
}

func (g *AdyenGateway) Name() transaction.Provider {
	return transaction.ProviderAdyen
}

// Charge executes a simulated Adyen payment
func (g *AdyenGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if err := g.sim.simulateLatency(ctx); err != nil {
		return nil, err
	}

	switch req.Token {
	case TokenNetworkError:
		return nil, GatewayUnavailableError{Provider: transaction.ProviderAdyen, Reason: "simulated network error"}
	case TokenCardDeclined:
		return g.refusal(req), nil
	}

	if req.Token != TokenVisaSuccess && g.sim.outage() {
		g.logger.Warn("Adyen simulated outage", "payment_link_id", req.PaymentLinkID)
		return nil, GatewayUnavailableError{Provider: transaction.ProviderAdyen, Reason: "simulated provider outage"}
	}

	ref := strings.ToUpper(g.sim.reference("", 16))
	return &ChargeResponse{
		Success:   true,
		Reference: ref,
		Status:    "Authorised",
		RawResponse: map[string]any{
			"pspReference": ref,
			"resultCode":   "Authorised",
			"amount": map[string]any{
				"value":    req.AmountInCents,
				"currency": req.Currency,
			},
		},
	}, nil
}

func (g *AdyenGateway) refusal(req ChargeRequest) *ChargeResponse {
	ref := strings.ToUpper(g.sim.reference("", 16))
	return &ChargeResponse{
		Success:      false,
		Reference:    ref,
		Status:       "Refused",
		ErrorMessage: "CVC Declined",
		RawResponse: map[string]any{
			"pspReference":  ref,
			"resultCode":    "Refused",
			"refusalReason": "CVC Declined",
			"amount": map[string]any{
				"value":    req.AmountInCents,
				"currency": req.Currency,
			},
		},
	}
}
