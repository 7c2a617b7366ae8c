package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is returned to clients asking for a session of their own.
type QuickMatchResponse struct {
	SessionID string `json:"session_id"`
	MatchID   string `json:"match_id"`
	IsNew     bool   `json:"is_new"`
}

// RpcQuickMatch returns the caller's live session, or opens a single-player session
// when they have none.
func (m *Module) RpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return m.quickMatch(ctx, logger, nk)
}

func (m *Module) quickMatch(ctx context.Context, logger runtime.Logger, nk MatchCreator) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", codeUnauthenticated)
	}

	existing, err := m.sessionFor(userID)
	if err == nil && existing.MatchID != "" {
		return marshalResponse(logger, QuickMatchResponse{SessionID: existing.SessionID, MatchID: existing.MatchID})
	}
	if err != nil && !isNotFound(err) {
		return "", err
	}

	matchID, err := m.startGroup(ctx, logger, nk, []string{userID})
	if err != nil {
		return "", runtime.NewError("failed to open session", codeInternal)
	}
	resp, err := m.sessionFor(userID)
	if err != nil {
		return "", err
	}
	return marshalResponse(logger, QuickMatchResponse{SessionID: resp.SessionID, MatchID: matchID, IsNew: true})
}
