package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/linkpay/linkpay/internal/api"
	"github.com/linkpay/linkpay/internal/config"
	datamongo "github.com/linkpay/linkpay/internal/data/mongo"
	"github.com/linkpay/linkpay/internal/events"
	"github.com/linkpay/linkpay/internal/fees"
	"github.com/linkpay/linkpay/internal/fx"
	"github.com/linkpay/linkpay/internal/gateway"
	"github.com/linkpay/linkpay/internal/ledger"
	"github.com/linkpay/linkpay/internal/links"
	"github.com/linkpay/linkpay/internal/logger"
	"github.com/linkpay/linkpay/internal/orchestrator"
	"github.com/linkpay/linkpay/internal/platform/cache"
	"github.com/linkpay/linkpay/internal/platform/messaging/producers"
	"github.com/linkpay/linkpay/internal/platform/persistence"
	"github.com/linkpay/linkpay/internal/webhook"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("linkpay")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize MongoDB with app context
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	if err = datamongo.EnsureIndexes(appCtx, log, mongoDB.Database()); err != nil {
		log.Error("Failed to ensure MongoDB indexes", "error", err)
		os.Exit(1)
	}

	// Initialize Redis for FX rate caching
	redisCache, err := cache.NewRedisCache(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for outbox event publishing
	eventProducer, err := producers.NewPaymentEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	linkRepo := datamongo.NewPaymentLinkRepository(log, mongoDB.Database())
	transactionRepo := datamongo.NewTransactionRepository(log, mongoDB.Database())
	feeProfileRepo := datamongo.NewFeeProfileRepository(log, mongoDB.Database())
	outboxRepo := datamongo.NewOutboxRepository(log, mongoDB.Database())

	if err = datamongo.SeedDefaultFeeProfile(appCtx, log, feeProfileRepo); err != nil {
		log.Error("Failed to seed default fee profile", "error", err)
		os.Exit(1)
	}

	// Initialize services
	rateService := fx.NewRateService(log, redisCache, &cfg.FxRate)
	feeCalculator := fees.NewCalculator(log, feeProfileRepo, transactionRepo, rateService)
	paymentLedger := ledger.NewLedger(log, mongoDB, transactionRepo, linkRepo, outboxRepo)
	linkService := links.NewService(log, linkRepo, &cfg.Checkout)

	gateways := []gateway.PaymentGateway{
		gateway.NewStripeGateway(log, &cfg.Gateways),
		gateway.NewAdyenGateway(log, &cfg.Gateways),
	}
	chargeOrchestrator := orchestrator.NewOrchestrator(log, gateways, paymentLedger, cfg.Gateways.ChargeTimeout)

	reconciler := webhook.NewReconciler(log, paymentLedger, transactionRepo)
	webhookProcessor, err := webhook.NewPooledProcessor(reconciler, cfg.WebhookPool.Size, log)
	if err != nil {
		log.Error("Failed to initialize webhook worker pool", "error", err)
		os.Exit(1)
	}

	// Start the outbox poller
	outboxPoller := events.NewPoller(log, &cfg.Outbox, outboxRepo, eventProducer)
	go outboxPoller.Start(appCtx)

	// Initialize REST server
	server := api.NewServer(log, cfg, linkService, transactionRepo, feeCalculator, chargeOrchestrator, webhookProcessor)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context; this also stops the outbox poller
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	webhookProcessor.Shutdown()

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = redisCache.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
