package gateway

import (
	"context"
	"math/rand"
	"time"

	"github.com/linkpay/linkpay/internal/domain/transaction"
)

// simulator holds the shared fault-injection mechanics of the mock
// gateways: a random latency window and a per-charge outage probability.
type simulator struct {
	provider    transaction.Provider
	minLatency  time.Duration
	maxLatency  time.Duration
	failureRate float64

	// Replaceable in tests to make outcomes deterministic and instant.
	sleep     func(ctx context.Context, d time.Duration) error
	randFloat func() float64
}

func newSimulator(provider transaction.Provider, minLatency, maxLatency time.Duration, failureRate float64) simulator {
	return simulator{
		provider:    provider,
		minLatency:  minLatency,
		maxLatency:  maxLatency,
		failureRate: failureRate,
		sleep:       sleepContext,
		randFloat:   rand.Float64,
	}
}

// simulateLatency blocks for a random duration inside the latency window.
// A context cancelled or timed out mid-call is indistinguishable from the
// provider dropping the connection.
func (s *simulator) simulateLatency(ctx context.Context) error {
	window := s.maxLatency - s.minLatency
	latency := s.minLatency
	if window > 0 {
		latency += time.Duration(s.randFloat() * float64(window))
	}
	if err := s.sleep(ctx, latency); err != nil {
		return GatewayUnavailableError{Provider: s.provider, Reason: "request timed out: " + err.Error()}
	}
	return nil
}

// outage rolls the provider's failure probability
func (s *simulator) outage() bool {
	return s.randFloat() < s.failureRate
}

// reference generates a provider-style external reference
func (s *simulator) reference(prefix string, length int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return prefix + string(b)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
