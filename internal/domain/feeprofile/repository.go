package feeprofile

import "context"

// Repository defines persistence operations for fee profiles
type Repository interface {
	// GetByProfileID retrieves a profile by its identifier.
	// Returns ErrProfileNotFound if no profile exists.
	GetByProfileID(ctx context.Context, profileID string) (*Profile, error)

	// Upsert creates or replaces a profile, used for seeding defaults.
	Upsert(ctx context.Context, profile *Profile) error
}

// ErrProfileNotFound indicates a missing fee profile
type ErrProfileNotFound struct {
	ProfileID string
}

func (e ErrProfileNotFound) Error() string {
	return "fee profile not found: " + e.ProfileID
}
