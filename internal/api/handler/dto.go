package handler

import (
	"time"

	"github.com/linkpay/linkpay/internal/domain/paymentlink"
	"github.com/linkpay/linkpay/internal/domain/transaction"
	"github.com/linkpay/linkpay/internal/fees"
)

// CreateLinkRequest represents a merchant request to create a payment link
type CreateLinkRequest struct {
	MerchantID    string     `json:"merchant_id" binding:"required"`
	AmountInCents int64      `json:"amount_in_cents" binding:"required,gt=0"`
	Currency      string     `json:"currency" binding:"required,len=3"`
	Description   string     `json:"description,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// LinkResponse represents a payment link in API responses
type LinkResponse struct {
	ID            string     `json:"id"`
	MerchantID    string     `json:"merchant_id"`
	AmountInCents int64      `json:"amount_in_cents"`
	Currency      string     `json:"currency"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	CheckoutURL   string     `json:"checkout_url"`
	ExpiresAt     time.Time  `json:"expires_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LinkListResponse represents a merchant's links in API responses
type LinkListResponse struct {
	Links []LinkResponse `json:"links"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

// QuoteRequest represents a payer request for a fee quote
type QuoteRequest struct {
	CustomerEmail string `json:"customer_email,omitempty" binding:"omitempty,email"`
	ProfileID     string `json:"profile_id,omitempty"`
}

// FeeItemResponse is one line of an itemized quote
type FeeItemResponse struct {
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// QuoteResponse represents a fee quote in API responses. LinkID and
// Currency identify what the quote priced.
type QuoteResponse struct {
	LinkID               string            `json:"link_id"`
	Currency             string            `json:"currency"`
	BaseAmountInCents    int64             `json:"base_amount_in_cents"`
	TotalFees            int64             `json:"total_fees"`
	Breakdown            []FeeItemResponse `json:"breakdown"`
	TotalAmountInCents   int64             `json:"total_amount_in_cents"`
	FxRate               float64           `json:"fx_rate"`
	DestinationAmountMXN int64             `json:"destination_amount_mxn"`
}

// PayRequest represents a payer request to execute a charge
type PayRequest struct {
	Token         string `json:"token" binding:"required"`
	CustomerEmail string `json:"customer_email,omitempty" binding:"omitempty,email"`
	ProfileID     string `json:"profile_id,omitempty"`
}

// TransactionResponse represents a charge outcome in API responses
type TransactionResponse struct {
	ID                   string            `json:"id"`
	PaymentLinkID        string            `json:"payment_link_id"`
	AmountInCents        int64             `json:"amount_in_cents"`
	Currency             string            `json:"currency"`
	Status               string            `json:"status"`
	Provider             string            `json:"provider,omitempty"`
	PSPReference         string            `json:"psp_reference,omitempty"`
	TotalFees            int64             `json:"total_fees"`
	Breakdown            []FeeItemResponse `json:"breakdown"`
	FxRate               float64           `json:"fx_rate"`
	DestinationAmountMXN int64             `json:"destination_amount_mxn"`
	FailureReason        string            `json:"failure_reason,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// TransactionListResponse represents a link's charge attempts in API responses
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// WebhookResponse acknowledges an accepted provider notification
type WebhookResponse struct {
	TransactionID  string `json:"transaction_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Provider       string `json:"provider"`
	Processed      bool   `json:"processed"`
}

func mapLinkToResponse(link *paymentlink.Link, checkoutURL string) LinkResponse {
	return LinkResponse{
		ID:            link.ID.String(),
		MerchantID:    link.MerchantID,
		AmountInCents: link.AmountInCents,
		Currency:      link.Currency,
		Description:   link.Description,
		Status:        string(link.Status),
		CheckoutURL:   checkoutURL,
		ExpiresAt:     link.ExpiresAt,
		PaidAt:        link.PaidAt,
		CreatedAt:     link.CreatedAt,
		UpdatedAt:     link.UpdatedAt,
	}
}

func mapQuoteToResponse(quote *fees.Result, link *paymentlink.Link) QuoteResponse {
	return QuoteResponse{
		LinkID:               link.ID.String(),
		Currency:             link.Currency,
		BaseAmountInCents:    quote.BaseAmountInCents,
		TotalFees:            quote.Fees.TotalFees,
		Breakdown:            mapBreakdown(quote.Fees.Breakdown),
		TotalAmountInCents:   quote.TotalAmountInCents,
		FxRate:               quote.FxRate,
		DestinationAmountMXN: quote.DestinationAmountMXN,
	}
}

func mapTransactionToResponse(txn *transaction.Transaction, currency string) TransactionResponse {
	return TransactionResponse{
		ID:                   txn.ID.String(),
		PaymentLinkID:        txn.PaymentLinkID.String(),
		AmountInCents:        txn.AmountInCents,
		Currency:             currency,
		Status:               string(txn.Status),
		Provider:             string(txn.PSPMetadata.Provider),
		PSPReference:         txn.PSPMetadata.Reference,
		TotalFees:            txn.FeeBreakdown.TotalFees,
		Breakdown:            mapBreakdown(txn.FeeBreakdown.Breakdown),
		FxRate:               txn.FxRate,
		DestinationAmountMXN: txn.DestinationAmountMXN,
		FailureReason:        txn.FailureReason,
		CreatedAt:            txn.CreatedAt,
	}
}

func mapBreakdown(items []transaction.FeeBreakdownItem) []FeeItemResponse {
	out := make([]FeeItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FeeItemResponse{
			Type:        item.Type,
			Amount:      item.Amount,
			Description: item.Description,
		})
	}
	return out
}
