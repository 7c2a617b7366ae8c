package nakama

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"

	"omok/internal/ports"
)

// LeaderboardAPI is the subset of runtime.NakamaModule used for ratings.
type LeaderboardAPI interface {
	LeaderboardRecordsList(ctx context.Context, id string, ownerIDs []string, limit int, cursor string, expiry int64) (records []*api.LeaderboardRecord, ownerRecords []*api.LeaderboardRecord, nextCursor string, prevCursor string, err error)
	LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error)
}

// LeaderboardScoreStore keeps ratings on an "incr" leaderboard so each write adds a
// delta to the owner's total.
type LeaderboardScoreStore struct {
	nk            LeaderboardAPI
	leaderboardID string
}

// NewLeaderboardScoreStore creates a score store backed by leaderboardID.
func NewLeaderboardScoreStore(nk LeaderboardAPI, leaderboardID string) *LeaderboardScoreStore {
	return &LeaderboardScoreStore{nk: nk, leaderboardID: leaderboardID}
}

// Scores returns the recorded rating of every user that has one.
func (s *LeaderboardScoreStore) Scores(ctx context.Context, userIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	_, owners, _, _, err := s.nk.LeaderboardRecordsList(ctx, s.leaderboardID, userIDs, 0, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	for _, r := range owners {
		out[r.GetOwnerId()] = int(r.GetScore())
	}
	return out, nil
}

// ApplyDelta adds delta to the user's rating and returns the new total.
func (s *LeaderboardScoreStore) ApplyDelta(ctx context.Context, userID string, delta int, metadata map[string]interface{}) (int, error) {
	record, err := s.nk.LeaderboardRecordWrite(ctx, s.leaderboardID, userID, "", int64(delta), 0, metadata, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to write rating for %s: %w", userID, err)
	}
	return int(record.GetScore()), nil
}

var _ ports.ScoreStore = (*LeaderboardScoreStore)(nil)
