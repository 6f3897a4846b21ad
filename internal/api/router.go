package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkpay/linkpay/internal/api/handler"
	"github.com/linkpay/linkpay/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	linkHandler *handler.LinkHandler,
	checkoutHandler *handler.CheckoutHandler,
	webhookHandler *handler.WebhookHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Merchant-facing link management
		merchant := v1.Group("/merchant")
		{
			merchant.POST("/links", linkHandler.Create)
			merchant.GET("/links", linkHandler.ListByMerchant)
			merchant.GET("/links/:id", linkHandler.GetByID)
			merchant.GET("/links/:id/transactions", linkHandler.ListTransactions)
		}

		// Payer-facing checkout
		checkout := v1.Group("/checkout")
		{
			checkout.POST("/:linkId/quote", checkoutHandler.Quote)
			checkout.POST("/:linkId/pay", checkoutHandler.Pay)
		}

		// Asynchronous provider notifications
		v1.POST("/webhooks/:provider", webhookHandler.Receive)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
