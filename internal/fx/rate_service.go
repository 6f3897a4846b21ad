// Package fx resolves the USD->MXN conversion rate used for destination
// amount quoting. Rates come from a simulated market-data provider and are
// cached with a short TTL so concurrent quotes share one lookup.
package fx

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/linkpay/linkpay/internal/config"
	"github.com/linkpay/linkpay/internal/platform/cache"
)

// RateCacheKey is the cache entry holding the current USD->MXN rate
const RateCacheKey = "fx:usd:mxn"

// RateService resolves conversion rates, caching provider responses
type RateService struct {
	logger *slog.Logger
	cache  cache.Cache
	cfg    *config.FxRateConfig

	// sleep is replaceable in tests to skip the simulated provider latency.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateService creates a rate service backed by the given cache
func NewRateService(logger *slog.Logger, c cache.Cache, cfg *config.FxRateConfig) *RateService {
	return &RateService{
		logger: logger,
		cache:  c,
		cfg:    cfg,
		sleep:  sleepContext,
	}
}

// GetRate returns the current USD->MXN rate. Cache hits are served directly;
// misses hit the simulated provider and populate the cache. Cache failures
// degrade to provider lookups.
func (s *RateService) GetRate(ctx context.Context) (float64, error) {
	if cached, ok := s.cache.Get(ctx, RateCacheKey); ok {
		rate, err := strconv.ParseFloat(cached, 64)
		if err == nil {
			s.logger.Debug("FX rate served from cache", "rate", rate)
			return rate, nil
		}
		s.logger.Warn("Discarding unparseable cached FX rate", "value", cached, "error", err)
	}

	rate, err := s.fetchRate(ctx)
	if err != nil {
		return 0, err
	}

	s.cache.Set(ctx, RateCacheKey, strconv.FormatFloat(rate, 'f', 4, 64), s.cfg.CacheTTL)
	s.logger.Debug("FX rate fetched from provider", "rate", rate, "ttl", s.cfg.CacheTTL)
	return rate, nil
}

// ClearCache drops the cached rate so the next lookup hits the provider
func (s *RateService) ClearCache(ctx context.Context) {
	s.cache.Delete(ctx, RateCacheKey)
}

// fetchRate simulates a market-data provider call: 50-150ms of latency and
// a rate jittered around the configured midpoint, rounded to 4 decimals.
func (s *RateService) fetchRate(ctx context.Context) (float64, error) {
	latency := time.Duration(50+rand.Intn(101)) * time.Millisecond
	if err := s.sleep(ctx, latency); err != nil {
		return 0, fmt.Errorf("fx rate lookup cancelled: %w", err)
	}

	jitter := (rand.Float64()*2 - 1) * s.cfg.VariationPercent
	rate := s.cfg.BaseRate * (1 + jitter)
	return math.Round(rate*10000) / 10000, nil
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
