package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linkpay/linkpay/internal/domain/paymentlink"
	"github.com/linkpay/linkpay/internal/links"
)

// LinkHandler handles HTTP requests for merchant payment-link operations
type LinkHandler struct {
	linkService  LinkService
	transactions TransactionLister
	logger       *slog.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(logger *slog.Logger, linkService LinkService, transactions TransactionLister) *LinkHandler {
	return &LinkHandler{
		linkService:  linkService,
		transactions: transactions,
		logger:       logger,
	}
}

// Create handles creation of a new payment link
func (h *LinkHandler) Create(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	link, err := h.linkService.Create(c.Request.Context(), links.CreateParams{
		MerchantID:    req.MerchantID,
		AmountInCents: req.AmountInCents,
		Currency:      req.Currency,
		Description:   req.Description,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		var invalid links.ErrInvalidLink
		if errors.As(err, &invalid) {
			RespondBadRequest(c, invalid.Error())
			return
		}
		h.logger.Error("Failed to create payment link", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapLinkToResponse(link, h.linkService.CheckoutURL(link)))
}

// GetByID retrieves a payment link, returning 404 if not found
func (h *LinkHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid payment link ID")
		return
	}

	link, err := h.linkService.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound paymentlink.ErrLinkNotFound
		if errors.As(err, &notFound) {
			RespondWithError(c, http.StatusNotFound, "PAYMENT_LINK_NOT_FOUND", "Payment link not found")
			return
		}
		h.logger.Error("Failed to get payment link", "link_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLinkToResponse(link, h.linkService.CheckoutURL(link)))
}

// ListTransactions retrieves every charge attempt recorded against a link,
// newest first
func (h *LinkHandler) ListTransactions(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid payment link ID")
		return
	}

	link, err := h.linkService.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound paymentlink.ErrLinkNotFound
		if errors.As(err, &notFound) {
			RespondWithError(c, http.StatusNotFound, "PAYMENT_LINK_NOT_FOUND", "Payment link not found")
			return
		}
		h.logger.Error("Failed to get payment link", "link_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	attempts, err := h.transactions.GetByPaymentLinkID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list link transactions", "link_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	response := TransactionListResponse{Transactions: make([]TransactionResponse, 0, len(attempts))}
	for _, txn := range attempts {
		response.Transactions = append(response.Transactions, mapTransactionToResponse(txn, link.Currency))
	}
	RespondOK(c, response)
}

// ListByMerchant retrieves a merchant's payment links, newest first
func (h *LinkHandler) ListByMerchant(c *gin.Context) {
	merchantID := c.Query("merchant_id")
	if merchantID == "" {
		RespondBadRequest(c, "merchant_id query parameter is required")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	offset := (pagination.Page - 1) * pagination.PerPage
	linkList, err := h.linkService.ListByMerchant(c.Request.Context(), merchantID, pagination.PerPage, offset)
	if err != nil {
		h.logger.Error("Failed to list payment links", "merchant_id", merchantID, "error", err)
		RespondInternalError(c)
		return
	}

	response := LinkListResponse{Links: make([]LinkResponse, 0, len(linkList))}
	for _, link := range linkList {
		response.Links = append(response.Links, mapLinkToResponse(link, h.linkService.CheckoutURL(link)))
	}
	RespondOK(c, response)
}
