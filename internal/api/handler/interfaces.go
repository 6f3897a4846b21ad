package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/linkpay/linkpay/internal/domain/paymentlink"
	"github.com/linkpay/linkpay/internal/domain/transaction"
	"github.com/linkpay/linkpay/internal/fees"
	"github.com/linkpay/linkpay/internal/links"
	"github.com/linkpay/linkpay/internal/orchestrator"
	"github.com/linkpay/linkpay/internal/webhook"
)

// LinkService manages payment links
type LinkService interface {
	Create(ctx context.Context, params links.CreateParams) (*paymentlink.Link, error)
	GetByID(ctx context.Context, id uuid.UUID) (*paymentlink.Link, error)
	ListByMerchant(ctx context.Context, merchantID string, limit, offset int) ([]*paymentlink.Link, error)
	CheckoutURL(link *paymentlink.Link) string
}

// TransactionLister exposes the charge attempts recorded against a link
type TransactionLister interface {
	GetByPaymentLinkID(ctx context.Context, linkID uuid.UUID) ([]*transaction.Transaction, error)
}

// QuoteService produces authoritative fee quotes
type QuoteService interface {
	Calculate(ctx context.Context, baseAmountInCents int64, customerEmail, profileID string) (*fees.Result, error)
}

// ChargeExecutor runs the gateway failover sequence for a charge
type ChargeExecutor interface {
	ExecuteCharge(ctx context.Context, cmd orchestrator.ChargeCommand) (*transaction.Transaction, error)
}

// WebhookProcessor reconciles provider notifications
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, provider string, payload []byte) (*webhook.Result, error)
}
