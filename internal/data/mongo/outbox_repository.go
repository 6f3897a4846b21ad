package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linkpay/linkpay/internal/domain/outbox"
)

const (
	// OutboxCollectionName is the name of the outbox events collection in MongoDB
	OutboxCollectionName = "outbox_events"
)

// OutboxRepository implements the outbox.Repository interface for MongoDB.
// Events are appended inside the ledger's unit of work, so Create must be
// callable with a session context.
type OutboxRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewOutboxRepository creates a new MongoDB outbox repository
func NewOutboxRepository(logger *slog.Logger, db *mongo.Database) outbox.Repository {
	return &OutboxRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new pending outbox event
func (r *OutboxRepository) Create(ctx context.Context, event *outbox.Event) error {
	collection := r.db.Collection(OutboxCollectionName)

	if _, err := collection.InsertOne(ctx, event); err != nil {
		r.logger.Error("Failed to create outbox event",
			"event_id", event.ID.String(),
			"transaction_id", event.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	return nil
}

// GetPending retrieves pending events oldest-first, up to limit
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	collection := r.db.Collection(OutboxCollectionName)

	filter := bson.M{"status": outbox.StatusPending}
	opts := options.Find().
		SetSort(bson.M{"created_at": 1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get pending outbox events", "error", err)
		return nil, fmt.Errorf("failed to get pending outbox events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*outbox.Event
	if err := cursor.All(ctx, &events); err != nil {
		r.logger.Error("Failed to decode outbox events", "error", err)
		return nil, fmt.Errorf("failed to decode outbox events: %w", err)
	}

	return events, nil
}

// UpdateStatus sets an event's publishing status.
// Returns ErrEventNotFound if the event doesn't exist.
func (r *OutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status outbox.Status) error {
	collection := r.db.Collection(OutboxCollectionName)

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":          status,
			"last_attempt_at": time.Now().UTC(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update outbox event status",
			"event_id", id.String(),
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to update outbox event status: %w", err)
	}

	if result.MatchedCount == 0 {
		return outbox.ErrEventNotFound{ID: id}
	}

	return nil
}

// IncrementAttempts bumps an event's attempt counter after a publish failure.
// Returns ErrEventNotFound if the event doesn't exist.
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	collection := r.db.Collection(OutboxCollectionName)

	filter := bson.M{"_id": id}
	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"last_attempt_at": time.Now().UTC()},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to increment outbox event attempts",
			"event_id", id.String(),
			"error", err)
		return fmt.Errorf("failed to increment outbox event attempts: %w", err)
	}

	if result.MatchedCount == 0 {
		return outbox.ErrEventNotFound{ID: id}
	}

	return nil
}
