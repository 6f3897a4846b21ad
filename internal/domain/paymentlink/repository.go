package paymentlink

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for payment links
type Repository interface {
	Create(ctx context.Context, link *Link) error

	// GetByID retrieves a payment link by its ID.
	// Returns ErrLinkNotFound if no link exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Link, error)

	// GetByMerchantID retrieves paginated links for a merchant, newest first.
	GetByMerchantID(ctx context.Context, merchantID string, limit, offset int) ([]*Link, error)

	// UpdateStatus sets the link status. A PAID transition also records paidAt.
	// Returns ErrLinkNotFound if the link doesn't exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// ErrLinkNotFound indicates a missing payment link
type ErrLinkNotFound struct {
	ID uuid.UUID
}

func (e ErrLinkNotFound) Error() string {
	return "payment link not found: " + e.ID.String()
}
