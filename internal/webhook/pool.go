package webhook

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
)

// PooledProcessor bounds concurrent webhook reconciliations with a fixed
// worker pool. Submission blocks until a worker picks the delivery up and
// the caller waits for its result, so HTTP handlers still answer
// per-delivery.
type PooledProcessor struct {
	base   Processor
	pool   *ants.Pool
	logger *slog.Logger
}

type outcome struct {
	result *Result
	err    error
}

// NewPooledProcessor wraps a processor with an ants worker pool of the
// given size.
func NewPooledProcessor(base Processor, size int, logger *slog.Logger) (*PooledProcessor, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	return &PooledProcessor{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

// ProcessWebhook submits the delivery to the pool and waits for its result
func (p *PooledProcessor) ProcessWebhook(ctx context.Context, provider string, payload []byte) (*Result, error) {
	resultChan := make(chan outcome, 1)

	err := p.pool.Submit(func() {
		result, err := p.base.ProcessWebhook(ctx, provider, payload)
		resultChan <- outcome{result: result, err: err}
	})
	if err != nil {
		p.logger.Error("Failed to submit webhook to worker pool",
			"provider", provider,
			"error", err)
		return nil, err
	}

	select {
	case out := <-resultChan:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown releases the worker pool
func (p *PooledProcessor) Shutdown() {
	p.logger.Info("Shutting down webhook worker pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

// Running returns the number of in-flight reconciliations
func (p *PooledProcessor) Running() int {
	return p.pool.Running()
}
