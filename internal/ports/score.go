package ports

import "context"

// ScoreStore persists player ratings.
type ScoreStore interface {
	// Scores returns the recorded score of each user that has one.
	// Users without a record are absent from the result.
	Scores(ctx context.Context, userIDs []string) (map[string]int, error)

	// ApplyDelta adds delta to the user's score and returns the new total.
	ApplyDelta(ctx context.Context, userID string, delta int, metadata map[string]interface{}) (int, error)
}
