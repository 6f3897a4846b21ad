package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linkpay/linkpay/internal/domain/feeprofile"
)

// EnsureIndexes creates the compound indexes the query paths rely on.
// Index creation is idempotent, so this runs at every startup.
func EnsureIndexes(ctx context.Context, logger *slog.Logger, db *mongo.Database) error {
	type collectionIndexes struct {
		collection string
		models     []mongo.IndexModel
	}

	specs := []collectionIndexes{
		{
			collection: PaymentLinkCollectionName,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "merchant_id", Value: 1}, {Key: "created_at", Value: -1}}},
				{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
				{Keys: bson.D{{Key: "merchant_id", Value: 1}, {Key: "status", Value: 1}}},
			},
		},
		{
			collection: TransactionCollectionName,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "payment_link_id", Value: 1}, {Key: "status", Value: 1}}},
				{Keys: bson.D{{Key: "customer_email", Value: 1}, {Key: "status", Value: 1}}},
				{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
				{Keys: bson.D{{Key: "psp_metadata.provider", Value: 1}, {Key: "psp_metadata.reference", Value: 1}}},
			},
		},
		{
			collection: FeeProfileCollectionName,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "profile_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
		{
			collection: OutboxCollectionName,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
			},
		},
	}

	for _, spec := range specs {
		if _, err := db.Collection(spec.collection).Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", spec.collection, err)
		}
		logger.Debug("Ensured indexes", "collection", spec.collection, "count", len(spec.models))
	}

	logger.Info("MongoDB indexes ensured")
	return nil
}

// SeedDefaultFeeProfile inserts the default USD->MXN fee profile when none
// exists: a fixed processing fee plus card-network and FX-conversion
// percentage fees, with the first three transactions free for new customers.
func SeedDefaultFeeProfile(ctx context.Context, logger *slog.Logger, repo feeprofile.Repository) error {
	_, err := repo.GetByProfileID(ctx, feeprofile.DefaultProfileID)
	if err == nil {
		logger.Debug("Default fee profile already present", "profile_id", feeprofile.DefaultProfileID)
		return nil
	}

	var notFound feeprofile.ErrProfileNotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check default fee profile: %w", err)
	}

	fixedAmount := int64(30)
	cardRate := 0.029
	fxRate := 0.015

	profile := &feeprofile.Profile{
		ProfileID: feeprofile.DefaultProfileID,
		Rules: []feeprofile.Rule{
			{
				Type: feeprofile.RuleTypeFixedFee,
				Config: feeprofile.RuleConfig{
					AmountInCents: &fixedAmount,
					Description:   "Processing Fee",
				},
			},
			{
				Type: feeprofile.RuleTypePercentageFee,
				Config: feeprofile.RuleConfig{
					Rate:        &cardRate,
					Description: "Card Network Fee",
				},
			},
			{
				Type: feeprofile.RuleTypePercentageFee,
				Config: feeprofile.RuleConfig{
					Rate:        &fxRate,
					Description: "FX Conversion Fee",
				},
			},
		},
		Incentives: []feeprofile.Incentive{
			{
				Type: feeprofile.IncentiveTypeFirstNTransactions,
				Config: feeprofile.IncentiveConfig{
					N:                  3,
					DiscountPercentage: 1.0,
				},
			},
		},
	}

	if err := repo.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("failed to seed default fee profile: %w", err)
	}

	logger.Info("Seeded default fee profile", "profile_id", feeprofile.DefaultProfileID)
	return nil
}
