package nakama

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/ports"
)

// NakamaRatingAdapter seeds a new player's rating once, guarded by a storage marker.
type NakamaRatingAdapter struct {
	storage StorageAPI
	scores  ports.ScoreStore
	now     func() time.Time
}

// NewNakamaRatingAdapter creates a rating adapter writing through scores.
func NewNakamaRatingAdapter(storage StorageAPI, scores ports.ScoreStore) *NakamaRatingAdapter {
	return &NakamaRatingAdapter{storage: storage, scores: scores, now: time.Now}
}

// SeedRatingOnce records the seed marker and then writes the initial rating.
// A marker written before is reported as seeded=false with no error.
func (a *NakamaRatingAdapter) SeedRatingOnce(ctx context.Context, userID string, score int) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if score <= 0 {
		return false, fmt.Errorf("score must be positive")
	}

	value, err := encodeFields(map[string]interface{}{
		"score":     score,
		"seeded_at": a.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode rating marker: %w", err)
	}

	_, err = a.storage.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      ratingCollection,
			Key:             ratingSeedKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to write rating marker: %w", err)
	}

	if _, err := a.scores.ApplyDelta(ctx, userID, score, map[string]interface{}{"reason": "initial_rating"}); err != nil {
		return false, err
	}
	return true, nil
}

var _ ports.RatingPort = (*NakamaRatingAdapter)(nil)
