package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linkpay/linkpay/internal/domain/paymentlink"
	"github.com/linkpay/linkpay/internal/fees"
	"github.com/linkpay/linkpay/internal/orchestrator"
)

// IdempotencyKeyHeader must accompany every charge request
const IdempotencyKeyHeader = "Idempotency-Key"

// CheckoutHandler handles payer-facing quote and payment requests
type CheckoutHandler struct {
	linkService  LinkService
	quoteService QuoteService
	executor     ChargeExecutor
	logger       *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger *slog.Logger, linkService LinkService, quoteService QuoteService, executor ChargeExecutor) *CheckoutHandler {
	return &CheckoutHandler{
		linkService:  linkService,
		quoteService: quoteService,
		executor:     executor,
		logger:       logger,
	}
}

// Quote produces an itemized fee quote for an ACTIVE payment link
func (h *CheckoutHandler) Quote(c *gin.Context) {
	link, ok := h.activeLink(c)
	if !ok {
		return
	}

	// An anonymous quote needs no body at all.
	var req QuoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	quote, err := h.quoteService.Calculate(c.Request.Context(), link.AmountInCents, req.CustomerEmail, req.ProfileID)
	if err != nil {
		h.respondQuoteError(c, err)
		return
	}

	RespondOK(c, mapQuoteToResponse(quote, link))
}

// Pay executes a charge against an ACTIVE payment link. The fee total is
// recomputed server-side; client-supplied amounts are never trusted. The
// Idempotency-Key header is required before any core work happens.
func (h *CheckoutHandler) Pay(c *gin.Context) {
	idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
	if idempotencyKey == "" {
		RespondWithError(c, http.StatusBadRequest, "IDEMPOTENCY_KEY_MISSING", "Idempotency-Key header is required")
		return
	}

	link, ok := h.activeLink(c)
	if !ok {
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quote, err := h.quoteService.Calculate(c.Request.Context(), link.AmountInCents, req.CustomerEmail, req.ProfileID)
	if err != nil {
		h.respondQuoteError(c, err)
		return
	}

	txn, err := h.executor.ExecuteCharge(c.Request.Context(), orchestrator.ChargeCommand{
		PaymentLinkID:        link.ID,
		AmountInCents:        quote.TotalAmountInCents,
		Currency:             link.Currency,
		Token:                req.Token,
		CustomerEmail:        req.CustomerEmail,
		IdempotencyKey:       idempotencyKey,
		FeeBreakdown:         quote.Fees,
		FxRate:               quote.FxRate,
		DestinationAmountMXN: quote.DestinationAmountMXN,
	})
	if err != nil {
		var allFailed orchestrator.AllGatewaysFailedError
		if errors.As(err, &allFailed) {
			RespondWithErrorDetails(c, http.StatusBadRequest, "PAYMENT_PROCESSING_FAILED",
				"Payment could not be processed by any provider", allFailed.Failures)
			return
		}
		h.logger.Error("Charge execution failed", "link_id", link.ID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn, link.Currency))
}

// activeLink resolves the :linkId parameter to an ACTIVE link, writing the
// error response itself when it cannot.
func (h *CheckoutHandler) activeLink(c *gin.Context) (*paymentlink.Link, bool) {
	idParam := c.Param("linkId")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid payment link ID")
		return nil, false
	}

	link, err := h.linkService.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound paymentlink.ErrLinkNotFound
		if errors.As(err, &notFound) {
			RespondWithError(c, http.StatusNotFound, "PAYMENT_LINK_NOT_FOUND", "Payment link not found")
			return nil, false
		}
		h.logger.Error("Failed to load payment link", "link_id", idParam, "error", err)
		RespondInternalError(c)
		return nil, false
	}

	if link.Status != paymentlink.StatusActive {
		RespondWithError(c, http.StatusBadRequest, "PAYMENT_LINK_NOT_ACTIVE",
			"Payment link is "+string(link.Status)+" and cannot be paid")
		return nil, false
	}

	return link, true
}

func (h *CheckoutHandler) respondQuoteError(c *gin.Context, err error) {
	var badRule fees.ErrInvalidRuleConfig
	if errors.As(err, &badRule) {
		// Corrupt profile data is an operator problem, not a payer problem.
		h.logger.Error("Fee profile misconfigured", "error", err)
		RespondWithError(c, http.StatusInternalServerError, "FEE_CONFIGURATION_ERROR", "Fee configuration error")
		return
	}
	h.logger.Error("Quote calculation failed", "error", err)
	RespondInternalError(c)
}
