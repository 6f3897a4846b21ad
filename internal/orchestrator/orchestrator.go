// Package orchestrator drives charge execution across an ordered set of
// payment gateways with sequential failover.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkpay/linkpay/internal/domain/transaction"
	"github.com/linkpay/linkpay/internal/gateway"
	"github.com/linkpay/linkpay/internal/ledger"
)

// TransactionRecorder is the ledger surface the orchestrator needs
type TransactionRecorder interface {
	RecordTransaction(ctx context.Context, data ledger.RecordData, pspResp *gateway.ChargeResponse, provider transaction.Provider) (*transaction.Transaction, error)
}

// ChargeCommand is one payment execution request with its quote snapshot
type ChargeCommand struct {
	PaymentLinkID        uuid.UUID
	AmountInCents        int64
	Currency             string
	Token                string
	CustomerEmail        string
	IdempotencyKey       string
	FeeBreakdown         transaction.FeeBreakdown
	FxRate               float64
	DestinationAmountMXN int64
}

// AllGatewaysFailedError is raised when every configured gateway has failed.
// It carries each underlying failure so callers can report both.
type AllGatewaysFailedError struct {
	Failures []string
}

func (e AllGatewaysFailedError) Error() string {
	return "all payment gateways failed: " + strings.Join(e.Failures, "; ")
}

// Orchestrator attempts a charge against each gateway in its configured
// order, failing over only after the previous gateway definitively failed.
// Every gateway response, success or decline, is recorded through the ledger
// before the success flag is inspected so each attempt stays auditable.
type Orchestrator struct {
	logger        *slog.Logger
	gateways      []gateway.PaymentGateway
	recorder      TransactionRecorder
	chargeTimeout time.Duration
}

// NewOrchestrator creates an orchestrator over an ordered gateway list
func NewOrchestrator(
	logger *slog.Logger,
	gateways []gateway.PaymentGateway,
	recorder TransactionRecorder,
	chargeTimeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		logger:        logger,
		gateways:      gateways,
		recorder:      recorder,
		chargeTimeout: chargeTimeout,
	}
}

// ExecuteCharge runs the failover sequence. The returned transaction belongs
// to the first gateway that accepted the charge; when every gateway fails,
// the compound error names each underlying failure. Ledger errors are
// infrastructure failures and propagate unchanged.
func (o *Orchestrator) ExecuteCharge(ctx context.Context, cmd ChargeCommand) (*transaction.Transaction, error) {
	data := ledger.RecordData{
		PaymentLinkID:        cmd.PaymentLinkID,
		AmountInCents:        cmd.AmountInCents,
		CustomerEmail:        cmd.CustomerEmail,
		Token:                cmd.Token,
		IdempotencyKey:       cmd.IdempotencyKey,
		FeeBreakdown:         cmd.FeeBreakdown,
		FxRate:               cmd.FxRate,
		DestinationAmountMXN: cmd.DestinationAmountMXN,
	}

	req := gateway.ChargeRequest{
		PaymentLinkID:  cmd.PaymentLinkID,
		AmountInCents:  cmd.AmountInCents,
		Currency:       cmd.Currency,
		Token:          cmd.Token,
		CustomerEmail:  cmd.CustomerEmail,
		IdempotencyKey: cmd.IdempotencyKey,
	}

	failures := make([]string, 0, len(o.gateways))
	for _, gw := range o.gateways {
		resp, err := o.attempt(ctx, gw, req)
		if err != nil {
			// Network fault: no definitive answer, nothing to record.
			o.logger.Warn("Gateway attempt failed, failing over",
				"provider", gw.Name(),
				"payment_link_id", cmd.PaymentLinkID,
				"error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", gw.Name(), err))
			continue
		}

		txn, err := o.recorder.RecordTransaction(ctx, data, resp, gw.Name())
		if err != nil {
			return nil, err
		}

		if resp.Success {
			o.logger.Info("Charge accepted",
				"provider", gw.Name(),
				"payment_link_id", cmd.PaymentLinkID,
				"transaction_id", txn.ID)
			return txn, nil
		}

		o.logger.Warn("Gateway declined charge, failing over",
			"provider", gw.Name(),
			"payment_link_id", cmd.PaymentLinkID,
			"reason", resp.ErrorMessage)
		failures = append(failures, fmt.Sprintf("%s: %s", gw.Name(), resp.ErrorMessage))
	}

	return nil, AllGatewaysFailedError{Failures: failures}
}

// attempt runs one gateway call under the per-attempt timeout budget
func (o *Orchestrator) attempt(ctx context.Context, gw gateway.PaymentGateway, req gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	if o.chargeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.chargeTimeout)
		defer cancel()
	}
	return gw.Charge(ctx, req)
}
