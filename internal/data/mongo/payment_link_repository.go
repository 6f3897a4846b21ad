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

	"github.com/linkpay/linkpay/internal/domain/paymentlink"
)

const (
	// PaymentLinkCollectionName is the name of the payment links collection in MongoDB
	PaymentLinkCollectionName = "payment_links"
)

// PaymentLinkRepository implements the paymentlink.Repository interface for MongoDB
type PaymentLinkRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPaymentLinkRepository creates a new MongoDB payment link repository
func NewPaymentLinkRepository(logger *slog.Logger, db *mongo.Database) paymentlink.Repository {
	return &PaymentLinkRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new payment link
func (r *PaymentLinkRepository) Create(ctx context.Context, link *paymentlink.Link) error {
	collection := r.db.Collection(PaymentLinkCollectionName)

	if _, err := collection.InsertOne(ctx, link); err != nil {
		r.logger.Error("Failed to create payment link",
			"link_id", link.ID.String(),
			"merchant_id", link.MerchantID,
			"error", err)
		return fmt.Errorf("failed to create payment link: %w", err)
	}

	return nil
}

// GetByID retrieves a payment link by its ID.
// Returns ErrLinkNotFound if no link exists for the given ID.
func (r *PaymentLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*paymentlink.Link, error) {
	collection := r.db.Collection(PaymentLinkCollectionName)

	filter := bson.M{"_id": id}
	var link paymentlink.Link
	err := collection.FindOne(ctx, filter).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentlink.ErrLinkNotFound{ID: id}
		}
		r.logger.Error("Failed to get payment link",
			"link_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get payment link: %w", err)
	}

	return &link, nil
}

// GetByMerchantID retrieves paginated payment links for a merchant.
// Results are sorted by creation time in descending order (newest first).
func (r *PaymentLinkRepository) GetByMerchantID(ctx context.Context, merchantID string, limit, offset int) ([]*paymentlink.Link, error) {
	collection := r.db.Collection(PaymentLinkCollectionName)

	filter := bson.M{"merchant_id": merchantID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get payment links",
			"merchant_id", merchantID,
			"error", err)
		return nil, fmt.Errorf("failed to get payment links: %w", err)
	}
	defer cursor.Close(ctx)

	var links []*paymentlink.Link
	if err := cursor.All(ctx, &links); err != nil {
		r.logger.Error("Failed to decode payment links",
			"merchant_id", merchantID,
			"error", err)
		return nil, fmt.Errorf("failed to decode payment links: %w", err)
	}

	return links, nil
}

// UpdateStatus sets the link status and updated timestamp. A PAID transition
// also records the paid timestamp. Returns ErrLinkNotFound if the link
// doesn't exist.
func (r *PaymentLinkRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status paymentlink.Status) error {
	collection := r.db.Collection(PaymentLinkCollectionName)

	now := time.Now().UTC()
	set := bson.M{
		"status":     status,
		"updated_at": now,
	}
	if status == paymentlink.StatusPaid {
		set["paid_at"] = now
	}

	filter := bson.M{"_id": id}
	result, err := collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		r.logger.Error("Failed to update payment link status",
			"link_id", id.String(),
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to update payment link status: %w", err)
	}

	if result.MatchedCount == 0 {
		return paymentlink.ErrLinkNotFound{ID: id}
	}

	return nil
}
