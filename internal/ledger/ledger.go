// Package ledger is the transactional boundary of the payment engine. It is
// the only writer of transaction rows and payment-link status transitions,
// and it pairs every write with an outbox event in the same unit of work.
package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linkpay/linkpay/internal/domain/outbox"
	"github.com/linkpay/linkpay/internal/domain/paymentlink"
	"github.com/linkpay/linkpay/internal/domain/transaction"
	"github.com/linkpay/linkpay/internal/gateway"
)

// TransactionalStore exposes the document store's atomic-unit primitive and
// its runtime availability probe.
type TransactionalStore interface {
	SupportsTransactions(ctx context.Context) bool
	WithTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error
}

// RecordData carries the quote snapshot and charge inputs for a new
// transaction row. The snapshot fields become immutable once recorded.
type RecordData struct {
	PaymentLinkID        uuid.UUID
	AmountInCents        int64
	CustomerEmail        string
	Token                string
	IdempotencyKey       string
	FeeBreakdown         transaction.FeeBreakdown
	FxRate               float64
	DestinationAmountMXN int64
}

// UpdateData carries a reconciliation outcome for an existing transaction
type UpdateData struct {
	TransactionID uuid.UUID
	Status        transaction.Status
	Provider      transaction.Provider
	PSPReference  string
	RawPayload    map[string]any
	FailureReason string
}

// Ledger atomically persists charge outcomes and the corresponding
// payment-link transition. Each operation probes transaction support at call
// time: replicated deployments get ACID units, standalone deployments get the
// same logical steps sequentially with an explicit degradation log.
type Ledger struct {
	logger       *slog.Logger
	store        TransactionalStore
	transactions transaction.Repository
	links        paymentlink.Repository
	outbox       outbox.Repository
}

// NewLedger creates the ledger
func NewLedger(
	logger *slog.Logger,
	store TransactionalStore,
	transactions transaction.Repository,
	links paymentlink.Repository,
	outboxRepo outbox.Repository,
) *Ledger {
	return &Ledger{
		logger:       logger,
		store:        store,
		transactions: transactions,
		links:        links,
		outbox:       outboxRepo,
	}
}

// RecordTransaction persists one gateway attempt. A successful PSP response
// maps to PROCESSING and moves the link ACTIVE->PROCESSING; a PENDING
// response records PENDING and leaves the link untouched; a decline records
// FAILED and likewise leaves the link payable.
func (l *Ledger) RecordTransaction(ctx context.Context, data RecordData, pspResp *gateway.ChargeResponse, provider transaction.Provider) (*transaction.Transaction, error) {
	now := time.Now().UTC()
	txn := &transaction.Transaction{
		ID:                   uuid.New(),
		PaymentLinkID:        data.PaymentLinkID,
		AmountInCents:        data.AmountInCents,
		Status:               statusFromPSPResponse(pspResp),
		CustomerEmail:        data.CustomerEmail,
		FeeBreakdown:         data.FeeBreakdown,
		FxRate:               data.FxRate,
		DestinationAmountMXN: data.DestinationAmountMXN,
		PSPMetadata: transaction.PSPMetadata{
			Provider:    provider,
			Reference:   pspResp.Reference,
			Token:       data.Token,
			RawResponse: pspResp.RawResponse,
		},
		IdempotencyKey: data.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !pspResp.Success {
		txn.FailureReason = pspResp.ErrorMessage
	}

	unit := func(c context.Context) error {
		if err := l.transactions.Create(c, txn); err != nil {
			return err
		}
		if txn.Status == transaction.StatusProcessing {
			if err := l.links.UpdateStatus(c, data.PaymentLinkID, paymentlink.StatusProcessing); err != nil {
				return err
			}
		}
		return l.appendEvent(c, outbox.EventTypeTransactionRecorded, txn)
	}

	if err := l.runUnit(ctx, "record_transaction", unit); err != nil {
		return nil, err
	}

	l.logger.Info("Transaction recorded",
		"transaction_id", txn.ID,
		"payment_link_id", txn.PaymentLinkID,
		"provider", provider,
		"status", txn.Status)
	return txn, nil
}

// UpdateTransaction applies a reconciliation outcome. PAID moves the link to
// PAID with a paid timestamp; FAILED moves the link back to ACTIVE so it
// remains payable; any other status leaves the link untouched. Unknown
// transaction ids fail with ErrTransactionNotFound and abort the unit.
func (l *Ledger) UpdateTransaction(ctx context.Context, data UpdateData) (*transaction.Transaction, error) {
	txn, err := l.transactions.GetByID(ctx, data.TransactionID)
	if err != nil {
		return nil, err
	}

	update := transaction.Update{
		Status:        data.Status,
		Provider:      data.Provider,
		PSPReference:  data.PSPReference,
		PSPRaw:        data.RawPayload,
		FailureReason: data.FailureReason,
	}
	if update.Provider == "" {
		update.Provider = txn.PSPMetadata.Provider
	}
	if update.PSPReference == "" {
		update.PSPReference = txn.PSPMetadata.Reference
	}

	// Snapshot the post-update state for the caller and the outbox payload.
	txn.Status = update.Status
	txn.PSPMetadata.Provider = update.Provider
	txn.PSPMetadata.Reference = update.PSPReference
	if update.PSPRaw != nil {
		txn.PSPMetadata.RawResponse = update.PSPRaw
	}
	txn.FailureReason = update.FailureReason
	txn.UpdatedAt = time.Now().UTC()

	unit := func(c context.Context) error {
		if err := l.transactions.ApplyUpdate(c, data.TransactionID, update); err != nil {
			return err
		}
		switch data.Status {
		case transaction.StatusPaid:
			if err := l.links.UpdateStatus(c, txn.PaymentLinkID, paymentlink.StatusPaid); err != nil {
				return err
			}
		case transaction.StatusFailed:
			if err := l.links.UpdateStatus(c, txn.PaymentLinkID, paymentlink.StatusActive); err != nil {
				return err
			}
		}
		return l.appendEvent(c, outbox.EventTypeTransactionUpdated, txn)
	}

	if err := l.runUnit(ctx, "update_transaction", unit); err != nil {
		return nil, err
	}

	l.logger.Info("Transaction updated",
		"transaction_id", txn.ID,
		"payment_link_id", txn.PaymentLinkID,
		"status", txn.Status)
	return txn, nil
}

// runUnit executes the unit atomically when the deployment supports it, and
// sequentially with a degradation warning when it does not. Errors surface
// unmodified so callers see the underlying cause.
func (l *Ledger) runUnit(ctx context.Context, operation string, unit func(c context.Context) error) error {
	if l.store.SupportsTransactions(ctx) {
		return l.store.WithTransaction(ctx, func(sc mongo.SessionContext) error {
			return unit(sc)
		})
	}

	l.logger.Warn("MongoDB transactions unavailable, executing ledger writes non-atomically",
		"operation", operation)
	return unit(ctx)
}

func (l *Ledger) appendEvent(ctx context.Context, eventType outbox.EventType, txn *transaction.Transaction) error {
	event, err := outbox.NewEvent(eventType, txn)
	if err != nil {
		return err
	}
	return l.outbox.Create(ctx, event)
}

// statusFromPSPResponse maps a gateway response to the canonical transaction
// status recorded at creation time.
func statusFromPSPResponse(resp *gateway.ChargeResponse) transaction.Status {
	if !resp.Success {
		return transaction.StatusFailed
	}
	if strings.EqualFold(resp.Status, "pending") {
		return transaction.StatusPending
	}
	return transaction.StatusProcessing
}
