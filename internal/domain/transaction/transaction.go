package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Status defines canonical transaction processing states
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusPaid       Status = "PAID"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

// Provider identifies a payment service provider
type Provider string

const (
	ProviderStripe Provider = "STRIPE"
	ProviderAdyen  Provider = "ADYEN"
)

// FeeBreakdownItem is one line of an itemized fee breakdown
type FeeBreakdownItem struct {
	Type        string `json:"type" bson:"type"`
	Amount      int64  `json:"amount" bson:"amount"`
	Description string `json:"description" bson:"description"`
}

// FeeBreakdown captures the itemized fees quoted at charge time
type FeeBreakdown struct {
	TotalFees int64              `json:"total_fees" bson:"total_fees"`
	Breakdown []FeeBreakdownItem `json:"breakdown" bson:"breakdown"`
}

// PSPMetadata records which provider handled the charge and how it referenced it
type PSPMetadata struct {
	Provider    Provider       `json:"provider,omitempty" bson:"provider,omitempty"`
	Reference   string         `json:"reference,omitempty" bson:"reference,omitempty"`
	Token       string         `json:"token,omitempty" bson:"token,omitempty"`
	RawResponse map[string]any `json:"raw_response,omitempty" bson:"raw_response,omitempty"`
}

// Transaction is one charge attempt against a payment link. FeeBreakdown,
// FxRate, and DestinationAmountMXN snapshot the quote at charge time and are
// immutable after creation; only Status, PSPMetadata, and FailureReason
// change later, and only through the ledger.
type Transaction struct {
	ID                   uuid.UUID    `json:"id" bson:"_id"`
	PaymentLinkID        uuid.UUID    `json:"payment_link_id" bson:"payment_link_id"`
	AmountInCents        int64        `json:"amount_in_cents" bson:"amount_in_cents"`
	Status               Status       `json:"status" bson:"status"`
	CustomerEmail        string       `json:"customer_email,omitempty" bson:"customer_email,omitempty"`
	FeeBreakdown         FeeBreakdown `json:"fee_breakdown" bson:"fee_breakdown"`
	FxRate               float64      `json:"fx_rate" bson:"fx_rate"`
	DestinationAmountMXN int64        `json:"destination_amount_mxn" bson:"destination_amount_mxn"`
	PSPMetadata          PSPMetadata  `json:"psp_metadata" bson:"psp_metadata"`
	IdempotencyKey       string       `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	FailureReason        string       `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CreatedAt            time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at" bson:"updated_at"`
}

// IsTerminal reports whether the status should no longer change under
// normal reconciliation.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusCancelled
}
