// Package webhook reconciles asynchronous provider notifications with the
// ledger: it parses provider payloads, maps their status vocabularies onto
// canonical transaction states, and drives the resulting ledger update.
package webhook

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/linkpay/linkpay/internal/domain/transaction"
	"github.com/linkpay/linkpay/internal/ledger"
)

// Result describes what one webhook delivery did
type Result struct {
	TransactionID  uuid.UUID            `json:"transaction_id"`
	PreviousStatus transaction.Status   `json:"previous_status"`
	NewStatus      transaction.Status   `json:"new_status"`
	Provider       transaction.Provider `json:"provider"`
	Processed      bool                 `json:"processed"`
}

// LedgerUpdater is the ledger surface the reconciler needs
type LedgerUpdater interface {
	UpdateTransaction(ctx context.Context, data ledger.UpdateData) (*transaction.Transaction, error)
}

// TransactionReader loads current transaction state for before/after reporting
type TransactionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
}

// Processor handles one webhook delivery end to end
type Processor interface {
	ProcessWebhook(ctx context.Context, provider string, payload []byte) (*Result, error)
}

// Reconciler is the synchronous webhook processor
type Reconciler struct {
	logger       *slog.Logger
	ledger       LedgerUpdater
	transactions TransactionReader
}

// NewReconciler creates a webhook reconciler
func NewReconciler(logger *slog.Logger, l LedgerUpdater, transactions TransactionReader) *Reconciler {
	return &Reconciler{
		logger:       logger,
		ledger:       l,
		transactions: transactions,
	}
}

// ProcessWebhook parses the delivery, maps its status, and applies the
// ledger update. Re-delivery of a webhook for a transaction already in the
// same terminal state is acknowledged without touching the ledger.
func (r *Reconciler) ProcessWebhook(ctx context.Context, provider string, payload []byte) (*Result, error) {
	providerName, err := normalizeProvider(provider)
	if err != nil {
		return nil, err
	}

	notification, err := r.parse(providerName, payload)
	if err != nil {
		return nil, err
	}

	previous, err := r.transactions.GetByID(ctx, notification.TransactionID)
	if err != nil {
		return nil, err
	}

	newStatus, known := canonicalStatus(notification.RawStatus)
	if !known {
		r.logger.Warn("Unknown webhook status, defaulting to PROCESSING",
			"provider", providerName,
			"raw_status", notification.RawStatus,
			"transaction_id", notification.TransactionID)
	}

	// A redelivery re-asserting a terminal state has nothing to change.
	if previous.Status.IsTerminal() && previous.Status == newStatus {
		r.logger.Info("Webhook redelivery for terminal transaction, skipping ledger write",
			"provider", providerName,
			"transaction_id", notification.TransactionID,
			"status", previous.Status)
		return &Result{
			TransactionID:  notification.TransactionID,
			PreviousStatus: previous.Status,
			NewStatus:      newStatus,
			Provider:       providerName,
			Processed:      true,
		}, nil
	}

	update := ledger.UpdateData{
		TransactionID: notification.TransactionID,
		Status:        newStatus,
		Provider:      providerName,
		PSPReference:  notification.PSPReference,
		RawPayload:    notification.Raw,
	}
	if newStatus == transaction.StatusFailed {
		update.FailureReason = notification.FailureReason
	}

	if _, err := r.ledger.UpdateTransaction(ctx, update); err != nil {
		return nil, err
	}

	r.logger.Info("Webhook reconciled",
		"provider", providerName,
		"transaction_id", notification.TransactionID,
		"previous_status", previous.Status,
		"new_status", newStatus)

	return &Result{
		TransactionID:  notification.TransactionID,
		PreviousStatus: previous.Status,
		NewStatus:      newStatus,
		Provider:       providerName,
		Processed:      true,
	}, nil
}

func (r *Reconciler) parse(provider transaction.Provider, payload []byte) (*Notification, error) {
	switch provider {
	case transaction.ProviderStripe:
		return parseStripe(payload)
	case transaction.ProviderAdyen:
		return parseAdyen(payload)
	default:
		return nil, ErrUnknownProvider{Provider: string(provider)}
	}
}

func normalizeProvider(provider string) (transaction.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "stripe":
		return transaction.ProviderStripe, nil
	case "adyen":
		return transaction.ProviderAdyen, nil
	default:
		return "", ErrUnknownProvider{Provider: provider}
	}
}
