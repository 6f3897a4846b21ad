package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkpay/linkpay/internal/domain/transaction"
	"github.com/linkpay/linkpay/internal/webhook"
)

// WebhookHandler receives asynchronous provider notifications
type WebhookHandler struct {
	processor WebhookProcessor
	logger    *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *slog.Logger, processor WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger,
	}
}

// Receive reconciles one provider notification. Providers expect a 2xx
// acknowledgement; reconciliation outcomes ride along for observability.
func (h *WebhookHandler) Receive(c *gin.Context) {
	provider := c.Param("provider")

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondBadRequest(c, "Failed to read webhook payload")
		return
	}

	result, err := h.processor.ProcessWebhook(c.Request.Context(), provider, payload)
	if err != nil {
		var unknownProvider webhook.ErrUnknownProvider
		if errors.As(err, &unknownProvider) {
			RespondWithError(c, http.StatusBadRequest, "UNKNOWN_WEBHOOK_PROVIDER", unknownProvider.Error())
			return
		}
		var malformed webhook.ErrMalformedPayload
		if errors.As(err, &malformed) {
			RespondBadRequest(c, malformed.Error())
			return
		}
		var notFound transaction.ErrTransactionNotFound
		if errors.As(err, &notFound) {
			RespondWithError(c, http.StatusNotFound, "TRANSACTION_NOT_FOUND", notFound.Error())
			return
		}
		h.logger.Error("Webhook processing failed", "provider", provider, "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, WebhookResponse{
		TransactionID:  result.TransactionID.String(),
		PreviousStatus: string(result.PreviousStatus),
		NewStatus:      string(result.NewStatus),
		Provider:       string(result.Provider),
		Processed:      result.Processed,
	})
}
