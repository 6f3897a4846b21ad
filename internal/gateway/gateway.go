// Package gateway defines the payment service provider contract and the
// simulated Stripe and Adyen adapters used for charge execution. The
// simulators reproduce real PSP behavior: variable latency, probabilistic
// outages, and deterministic test tokens for forcing specific outcomes.
package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/linkpay/linkpay/internal/domain/transaction"
)

// Test tokens force deterministic gateway outcomes regardless of the
// simulator's failure probability.
const (
	TokenVisaSuccess  = "tok_visa_success"
	TokenCardDeclined = "tok_card_declined"
	TokenNetworkError = "tok_network_error"
)

// ChargeRequest is one charge attempt handed to a gateway. The transaction
// row does not exist yet at charge time, so attempts are addressed by link.
type ChargeRequest struct {
	PaymentLinkID  uuid.UUID
	AmountInCents  int64
	Currency       string
	Token          string
	CustomerEmail  string
	IdempotencyKey string
}

// ChargeResponse is a gateway's definitive answer to a charge attempt.
// Success=false means the provider processed the request and declined it;
// transport-level faults are returned as errors instead.
type ChargeResponse struct {
	Success      bool
	Reference    string
	Status       string
	RawResponse  map[string]any
	ErrorMessage string
}

// PaymentGateway is the provider contract the orchestrator drives
type PaymentGateway interface {
	Name() transaction.Provider
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
}

// GatewayUnavailableError indicates a network-level fault: the provider
// never gave a definitive answer, so no transaction should be recorded.
type GatewayUnavailableError struct {
	Provider transaction.Provider
	Reason   string
}

func (e GatewayUnavailableError) Error() string {
	return fmt.Sprintf("gateway %s unavailable: %s", e.Provider, e.Reason)
}
