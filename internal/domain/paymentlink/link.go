package paymentlink

import (
	"time"

	"github.com/google/uuid"
)

// Status defines payment link lifecycle states
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusProcessing Status = "PROCESSING"
	StatusPaid       Status = "PAID"
	StatusExpired    Status = "EXPIRED"
	StatusCancelled  Status = "CANCELLED"
)

// Link represents a merchant-created, time-bounded request for a specific
// charge amount, shareable with a payer. Status transitions beyond read-time
// expiry are owned by the ledger.
type Link struct {
	ID            uuid.UUID  `json:"id" bson:"_id"`
	MerchantID    string     `json:"merchant_id" bson:"merchant_id"`
	AmountInCents int64      `json:"amount_in_cents" bson:"amount_in_cents"` // Stored in cents/minor units
	Currency      string     `json:"currency" bson:"currency"`
	Description   string     `json:"description" bson:"description"`
	Status        Status     `json:"status" bson:"status"`
	ExpiresAt     time.Time  `json:"expires_at" bson:"expires_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// NewLink creates an ACTIVE payment link expiring at the given time.
func NewLink(merchantID string, amountInCents int64, currency, description string, expiresAt time.Time) *Link {
	now := time.Now().UTC()
	return &Link{
		ID:            uuid.New(),
		MerchantID:    merchantID,
		AmountInCents: amountInCents,
		Currency:      currency,
		Description:   description,
		Status:        StatusActive,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsExpired reports whether an ACTIVE link has passed its expiry time.
// The persisted ACTIVE->EXPIRED transition happens lazily at read time.
func (l *Link) IsExpired(now time.Time) bool {
	return l.Status == StatusActive && !l.ExpiresAt.IsZero() && l.ExpiresAt.Before(now)
}
