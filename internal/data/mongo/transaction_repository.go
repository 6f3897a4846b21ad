package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linkpay/linkpay/internal/domain/transaction"
)

const (
	// TransactionCollectionName is the name of the transactions collection in MongoDB
	TransactionCollectionName = "transactions"
)

// TransactionRepository implements the transaction.Repository interface for MongoDB
type TransactionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewTransactionRepository creates a new MongoDB transaction repository
func NewTransactionRepository(logger *slog.Logger, db *mongo.Database) transaction.Repository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new transaction
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	collection := r.db.Collection(TransactionCollectionName)

	if _, err := collection.InsertOne(ctx, txn); err != nil {
		r.logger.Error("Failed to create transaction",
			"transaction_id", txn.ID.String(),
			"payment_link_id", txn.PaymentLinkID.String(),
			"error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID.
// Returns ErrTransactionNotFound if no transaction exists.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"_id": id}
	var txn transaction.Transaction
	err := collection.FindOne(ctx, filter).Decode(&txn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transaction.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction",
			"transaction_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &txn, nil
}

// ApplyUpdate overwrites the mutable fields of a transaction: status, PSP
// metadata, and failure reason. The quote snapshot fields are never touched.
// Returns ErrTransactionNotFound if the transaction doesn't exist.
func (r *TransactionRepository) ApplyUpdate(ctx context.Context, id uuid.UUID, update transaction.Update) error {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"_id": id}
	result, err := collection.UpdateOne(ctx, filter, bson.M{"$set": applyUpdateDocument(update)})
	if err != nil {
		r.logger.Error("Failed to update transaction",
			"transaction_id", id.String(),
			"status", string(update.Status),
			"error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.MatchedCount == 0 {
		return transaction.ErrTransactionNotFound{ID: id}
	}

	return nil
}

// applyUpdateDocument builds the $set document for an update. The charge-time
// raw response survives updates that carry no payload of their own; the
// failure reason always tracks the latest outcome.
func applyUpdateDocument(update transaction.Update) bson.M {
	set := bson.M{
		"status":                 update.Status,
		"psp_metadata.provider":  update.Provider,
		"psp_metadata.reference": update.PSPReference,
		"failure_reason":         update.FailureReason,
		"updated_at":             time.Now().UTC(),
	}
	if update.PSPRaw != nil {
		set["psp_metadata.raw_response"] = update.PSPRaw
	}
	return set
}

// CountPaidByEmail counts the customer's historically PAID transactions
func (r *TransactionRepository) CountPaidByEmail(ctx context.Context, email string) (int64, error) {
	if email == "" {
		return 0, nil
	}

	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{
		"customer_email": email,
		"status":         transaction.StatusPaid,
	}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count paid transactions",
			"customer_email", email,
			"error", err)
		return 0, fmt.Errorf("failed to count paid transactions: %w", err)
	}

	return count, nil
}

// GetByPaymentLinkID retrieves all charge attempts for a link, newest first
func (r *TransactionRepository) GetByPaymentLinkID(ctx context.Context, linkID uuid.UUID) ([]*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"payment_link_id": linkID}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get transactions for payment link",
			"payment_link_id", linkID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transactions for payment link: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*transaction.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		r.logger.Error("Failed to decode transactions",
			"payment_link_id", linkID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txns, nil
}
