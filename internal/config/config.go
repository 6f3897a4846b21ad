// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// server settings, database connections, caching, messaging, and the simulated
// PSP gateways.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., HTTP server, MongoDB,
// Redis, Kafka) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Outbox      OutboxConfig
	WebhookPool WebhookPoolConfig
	Checkout    CheckoutConfig
	FxRate      FxRateConfig
	Gateways    GatewaysConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains Redis cache configuration
type RedisConfig struct {
	URL         string        // Connection string, e.g. redis://localhost:6379/0
	DialTimeout time.Duration // Timeout for establishing a connection
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	PaymentEventTopic string
	NumPartitions     int // Number of partitions for topics
	ReplicationFactor int // Replication factor for topics
	MaxWait           time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WebhookPoolConfig contains webhook worker pool configuration
type WebhookPoolConfig struct {
	Size int
}

// CheckoutConfig contains payer-facing checkout configuration
type CheckoutConfig struct {
	BaseURL           string        // Base URL for shareable payment-link checkout pages
	DefaultLinkExpiry time.Duration // Expiry applied when a link is created without one
}

// FxRateConfig contains foreign-exchange rate provider configuration
type FxRateConfig struct {
	BaseRate         float64       // Midpoint USD->MXN rate for the simulated provider
	VariationPercent float64       // Jitter applied around the base rate (0.02 == +/-2%)
	CacheTTL         time.Duration // How long a fetched rate stays cached
}

// GatewaysConfig contains the simulated PSP gateway tuning knobs
type GatewaysConfig struct {
	StripeFailureRate float64       // Probability of a simulated outage per charge
	AdyenFailureRate  float64
	ChargeTimeout     time.Duration // Budget for a single gateway call
}

// validate checks the configuration for required values and consistency
func (c *Config) validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "server port must be between 1 and 65535")
	}
	if c.MongoDB.URI == "" {
		errs = append(errs, "mongodb URI is required")
	}
	if c.MongoDB.Database == "" {
		errs = append(errs, "mongodb database name is required")
	}
	if c.Redis.URL == "" {
		errs = append(errs, "redis URL is required")
	}
	if c.Kafka.Brokers == "" {
		errs = append(errs, "kafka brokers are required")
	}
	if c.Kafka.PaymentEventTopic == "" {
		errs = append(errs, "kafka payment event topic is required")
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, "outbox batch size must be positive")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		errs = append(errs, "outbox max retry attempts must be positive")
	}
	if c.WebhookPool.Size <= 0 {
		errs = append(errs, "webhook pool size must be positive")
	}
	if c.Checkout.BaseURL == "" {
		errs = append(errs, "checkout base URL is required")
	}
	if c.FxRate.BaseRate <= 0 {
		errs = append(errs, "fx base rate must be positive")
	}
	if c.FxRate.VariationPercent < 0 || c.FxRate.VariationPercent >= 1 {
		errs = append(errs, "fx variation percent must be in [0, 1)")
	}
	if c.Gateways.StripeFailureRate < 0 || c.Gateways.StripeFailureRate > 1 {
		errs = append(errs, "stripe failure rate must be in [0, 1]")
	}
	if c.Gateways.AdyenFailureRate < 0 || c.Gateways.AdyenFailureRate > 1 {
		errs = append(errs, "adyen failure rate must be in [0, 1]")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
