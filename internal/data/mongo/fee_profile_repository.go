package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linkpay/linkpay/internal/domain/feeprofile"
)

const (
	// FeeProfileCollectionName is the name of the fee profiles collection in MongoDB
	FeeProfileCollectionName = "fee_profiles"
)

// FeeProfileRepository implements the feeprofile.Repository interface for MongoDB
type FeeProfileRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewFeeProfileRepository creates a new MongoDB fee profile repository
func NewFeeProfileRepository(logger *slog.Logger, db *mongo.Database) feeprofile.Repository {
	return &FeeProfileRepository{
		db:     db,
		logger: logger,
	}
}

// GetByProfileID retrieves a fee profile by its identifier.
// Returns ErrProfileNotFound if no profile exists.
func (r *FeeProfileRepository) GetByProfileID(ctx context.Context, profileID string) (*feeprofile.Profile, error) {
	collection := r.db.Collection(FeeProfileCollectionName)

	filter := bson.M{"profile_id": profileID}
	var profile feeprofile.Profile
	err := collection.FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, feeprofile.ErrProfileNotFound{ProfileID: profileID}
		}
		r.logger.Error("Failed to get fee profile",
			"profile_id", profileID,
			"error", err)
		return nil, fmt.Errorf("failed to get fee profile: %w", err)
	}

	return &profile, nil
}

// Upsert creates or replaces a profile keyed by profile_id
func (r *FeeProfileRepository) Upsert(ctx context.Context, profile *feeprofile.Profile) error {
	collection := r.db.Collection(FeeProfileCollectionName)

	profile.UpdatedAt = time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = profile.UpdatedAt
	}

	filter := bson.M{"profile_id": profile.ProfileID}
	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, filter, profile, opts); err != nil {
		r.logger.Error("Failed to upsert fee profile",
			"profile_id", profile.ProfileID,
			"error", err)
		return fmt.Errorf("failed to upsert fee profile: %w", err)
	}

	return nil
}
