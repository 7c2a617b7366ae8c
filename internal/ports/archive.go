package ports

import (
	"context"
	"time"
)

// SessionRecord is the summary kept after a session completes.
type SessionRecord struct {
	SessionID    string
	Participants []string
	Outcomes     map[string]string
	ScoreDeltas  map[string]int
	Rules        []string
	Actions      int
	Rounds       int
	Board        []byte
	CreatedAt    time.Time
	CompletedAt  time.Time
}

// SessionArchive stores completed session records.
type SessionArchive interface {
	// Archive writes one record per participant so players can list their history.
	Archive(ctx context.Context, record SessionRecord) error
}
