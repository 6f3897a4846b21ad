package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Update carries the mutable fields of a transaction for reconciliation
// writes. Quote snapshot fields are deliberately absent.
type Update struct {
	Status        Status
	Provider      Provider
	PSPReference  string
	PSPRaw        map[string]any
	FailureReason string
}

// Repository defines persistence operations for transactions
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error

	// GetByID retrieves a transaction by its ID.
	// Returns ErrTransactionNotFound if no transaction exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// ApplyUpdate overwrites the mutable fields of a transaction.
	// Returns ErrTransactionNotFound if the transaction doesn't exist.
	ApplyUpdate(ctx context.Context, id uuid.UUID, update Update) error

	// CountPaidByEmail counts a customer's historically PAID transactions.
	CountPaidByEmail(ctx context.Context, email string) (int64, error)

	// GetByPaymentLinkID retrieves all charge attempts for a link, newest first.
	GetByPaymentLinkID(ctx context.Context, linkID uuid.UUID) ([]*Transaction, error)
}

// ErrTransactionNotFound indicates a missing transaction
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}
