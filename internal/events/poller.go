// Package events drains the transactional outbox: pending payment events
// written by the ledger are published to Kafka and marked processed, with
// bounded retries for broker failures.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linkpay/linkpay/internal/config"
	"github.com/linkpay/linkpay/internal/domain/outbox"
	"github.com/linkpay/linkpay/internal/platform/messaging/producers"
)

// Poller periodically publishes pending outbox events
type Poller struct {
	logger           *slog.Logger
	outboxRepo       outbox.Repository
	publisher        producers.MessagePublisher
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

// NewPoller creates an outbox poller
func NewPoller(
	logger *slog.Logger,
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
) *Poller {
	return &Poller{
		logger:           logger,
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until the context is cancelled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.ProcessPending(ctx); err != nil {
				p.logger.Error("Outbox batch processing failed", "error", err)
			}
		}
	}
}

// ProcessPending publishes one batch of pending events. Events are keyed by
// transaction id so consumers see per-transaction ordering.
func (p *Poller) ProcessPending(ctx context.Context) error {
	events, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	p.logger.Debug("Fetched pending outbox events", "count", len(events))

	for _, event := range events {
		if err := p.publishEvent(ctx, event); err != nil {
			p.handlePublishFailure(ctx, event, err)
			continue
		}

		if err := p.outboxRepo.UpdateStatus(ctx, event.ID, outbox.StatusProcessed); err != nil {
			p.logger.Error("Failed to mark outbox event processed",
				"outbox_id", event.ID,
				"error", err)
		}
	}
	return nil
}

func (p *Poller) publishEvent(ctx context.Context, event *outbox.Event) error {
	txn, err := event.Transaction()
	if err != nil {
		return fmt.Errorf("failed to decode outbox payload: %w", err)
	}

	envelope := map[string]any{
		"event_id":    event.ID,
		"event_type":  event.Type,
		"occurred_at": event.CreatedAt,
		"transaction": txn,
	}
	return p.publisher.Publish(ctx, event.TransactionID.String(), envelope)
}

func (p *Poller) handlePublishFailure(ctx context.Context, event *outbox.Event, publishErr error) {
	p.logger.Error("Failed to publish outbox event",
		"outbox_id", event.ID,
		"transaction_id", event.TransactionID,
		"attempts", event.Attempts,
		"error", publishErr)

	if err := p.outboxRepo.IncrementAttempts(ctx, event.ID); err != nil {
		p.logger.Error("Failed to increment outbox attempts",
			"outbox_id", event.ID,
			"error", err)
		return
	}

	if event.Attempts+1 >= p.maxRetryAttempts {
		p.logger.Warn("Max retry attempts reached, marking outbox event FAILED_TO_PUBLISH",
			"outbox_id", event.ID,
			"transaction_id", event.TransactionID,
			"attempts_made", event.Attempts+1)
		if err := p.outboxRepo.UpdateStatus(ctx, event.ID, outbox.StatusFailedToPublish); err != nil {
			p.logger.Error("Failed to mark outbox event FAILED_TO_PUBLISH",
				"outbox_id", event.ID,
				"error", err)
		}
	}
}
