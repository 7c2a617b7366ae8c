package ports

import "context"

// AccountPort defines the interface for updating account profiles.
type AccountPort interface {
	// UpdateProfile sets the username and display name of the given user.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}

// RatingPort seeds a new player's rating.
type RatingPort interface {
	// SeedRatingOnce writes the initial score unless the user was seeded before.
	// Returns seeded=false when a previous seed exists.
	SeedRatingOnce(ctx context.Context, userID string, score int) (bool, error)
}
