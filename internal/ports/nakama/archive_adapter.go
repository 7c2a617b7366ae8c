package nakama

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/ports"
)

// StorageAPI is the subset of runtime.NakamaModule used for storage writes.
type StorageAPI interface {
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// StorageArchive writes completed session summaries into each participant's storage.
type StorageArchive struct {
	nk StorageAPI
}

// NewStorageArchive creates an archive adapter.
func NewStorageArchive(nk StorageAPI) *StorageArchive {
	return &StorageArchive{nk: nk}
}

// Archive stores record under every participant, keyed by session id.
func (a *StorageArchive) Archive(ctx context.Context, record ports.SessionRecord) error {
	value, err := encodeFields(recordFields(record))
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}
	writes := make([]*runtime.StorageWrite, 0, len(record.Participants))
	for _, userID := range record.Participants {
		writes = append(writes, &runtime.StorageWrite{
			Collection:      historyCollection,
			Key:             record.SessionID,
			UserID:          userID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})
	}
	if len(writes) == 0 {
		return nil
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to archive session %s: %w", record.SessionID, err)
	}
	return nil
}

func recordFields(r ports.SessionRecord) map[string]interface{} {
	participants := make([]interface{}, len(r.Participants))
	for i, id := range r.Participants {
		participants[i] = id
	}
	rules := make([]interface{}, len(r.Rules))
	for i, id := range r.Rules {
		rules[i] = id
	}
	outcomes := make(map[string]interface{}, len(r.Outcomes))
	for id, o := range r.Outcomes {
		outcomes[id] = o
	}
	deltas := make(map[string]interface{}, len(r.ScoreDeltas))
	for id, d := range r.ScoreDeltas {
		deltas[id] = d
	}
	return map[string]interface{}{
		"session_id":   r.SessionID,
		"participants": participants,
		"outcomes":     outcomes,
		"score_deltas": deltas,
		"rules":        rules,
		"actions":      r.Actions,
		"rounds":       r.Rounds,
		"board":        r.Board,
		"created_at":   r.CreatedAt.UnixMilli(),
		"completed_at": r.CompletedAt.UnixMilli(),
	}
}

var _ ports.SessionArchive = (*StorageArchive)(nil)
