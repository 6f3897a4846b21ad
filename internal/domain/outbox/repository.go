package outbox

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages transactional outbox event persistence
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetPending(ctx context.Context, limit int) ([]*Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
}

// ErrEventNotFound indicates a missing outbox event
type ErrEventNotFound struct {
	ID uuid.UUID
}

func (e ErrEventNotFound) Error() string {
	return "outbox event not found: " + e.ID.String()
}
