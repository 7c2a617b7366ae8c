package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/app"
)

const (
	codeNotFound           = 5
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)

// SessionResponse describes a live session and the match carrying it.
type SessionResponse struct {
	SessionID    string   `json:"session_id"`
	MatchID      string   `json:"match_id"`
	State        string   `json:"state"`
	Participants []string `json:"participants"`
	Rules        []string `json:"rules"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func (m *Module) RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, m.RpcQuickMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcFindSession, m.RpcFindSession); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcSessionTicket, m.RpcSessionTicket)
}

// RpcFindSession returns the caller's live session.
//
// Payload: unused.
// Returns: SessionResponse as JSON.
func (m *Module) RpcFindSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", codeUnauthenticated)
	}
	resp, err := m.sessionFor(userID)
	if err != nil {
		return "", err
	}
	return marshalResponse(logger, resp)
}

func (m *Module) sessionFor(userID string) (SessionResponse, error) {
	view, ok := m.service.FindSession(userID)
	if !ok || view.State == app.StateCompleted {
		return SessionResponse{}, runtime.NewError("no live session", codeNotFound)
	}
	matchID, _ := m.outbox.MatchID(view.ID)
	return SessionResponse{
		SessionID:    view.ID,
		MatchID:      matchID,
		State:        string(view.State),
		Participants: view.Participants,
		Rules:        view.Rules,
	}, nil
}

func marshalResponse(logger runtime.Logger, v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal RPC response: %v", err)
		return "", runtime.NewError("internal error", codeInternal)
	}
	return string(b), nil
}

func isNotFound(err error) bool {
	var rtErr *runtime.Error
	return errors.As(err, &rtErr) && rtErr.Code == codeNotFound
}
