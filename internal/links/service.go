// Package links manages merchant payment links: creation, retrieval with
// lazy expiry, and shareable checkout URLs.
package links

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkpay/linkpay/internal/config"
	"github.com/linkpay/linkpay/internal/domain/paymentlink"
)

// CreateParams are the merchant-supplied inputs for a new link
type CreateParams struct {
	MerchantID    string
	AmountInCents int64
	Currency      string
	Description   string
	ExpiresAt     *time.Time
}

// ErrInvalidLink indicates merchant input that cannot form a valid link
type ErrInvalidLink struct {
	Reason string
}

func (e ErrInvalidLink) Error() string {
	return "invalid payment link: " + e.Reason
}

// Service manages the payment-link lifecycle up to the point a charge is
// attempted; from there mutation belongs to the ledger.
type Service struct {
	logger *slog.Logger
	repo   paymentlink.Repository
	cfg    *config.CheckoutConfig

	// now is replaceable in tests for deterministic expiry checks.
	now func() time.Time
}

// NewService creates a payment-link service
func NewService(logger *slog.Logger, repo paymentlink.Repository, cfg *config.CheckoutConfig) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and persists a new ACTIVE link. Links without an explicit
// expiry get the configured default.
func (s *Service) Create(ctx context.Context, params CreateParams) (*paymentlink.Link, error) {
	if params.MerchantID == "" {
		return nil, ErrInvalidLink{Reason: "merchant id is required"}
	}
	if params.AmountInCents <= 0 {
		return nil, ErrInvalidLink{Reason: "amount must be positive"}
	}
	if params.Currency == "" {
		return nil, ErrInvalidLink{Reason: "currency is required"}
	}

	expiresAt := s.now().Add(s.cfg.DefaultLinkExpiry)
	if params.ExpiresAt != nil {
		if params.ExpiresAt.Before(s.now()) {
			return nil, ErrInvalidLink{Reason: "expiry must be in the future"}
		}
		expiresAt = params.ExpiresAt.UTC()
	}

	link := paymentlink.NewLink(params.MerchantID, params.AmountInCents, strings.ToUpper(params.Currency), params.Description, expiresAt)
	if err := s.repo.Create(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("Payment link created",
		"link_id", link.ID,
		"merchant_id", link.MerchantID,
		"amount_in_cents", link.AmountInCents,
		"expires_at", link.ExpiresAt)
	return link, nil
}

// GetByID loads a link, persisting the ACTIVE->EXPIRED transition lazily
// when the expiry has passed.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*paymentlink.Link, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if link.IsExpired(s.now()) {
		if err := s.repo.UpdateStatus(ctx, id, paymentlink.StatusExpired); err != nil {
			return nil, err
		}
		link.Status = paymentlink.StatusExpired
		s.logger.Info("Payment link expired at read time", "link_id", id)
	}

	return link, nil
}

// ListByMerchant returns a merchant's links, newest first
func (s *Service) ListByMerchant(ctx context.Context, merchantID string, limit, offset int) ([]*paymentlink.Link, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetByMerchantID(ctx, merchantID, limit, offset)
}

// CheckoutURL builds the shareable payer-facing URL for a link
func (s *Service) CheckoutURL(link *paymentlink.Link) string {
	return fmt.Sprintf("%s/checkout/%s", strings.TrimRight(s.cfg.BaseURL, "/"), link.ID)
}
