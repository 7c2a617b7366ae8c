package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// TicketResponse carries a signed session ticket.
type TicketResponse struct {
	Ticket    string `json:"ticket"`
	SessionID string `json:"session_id"`
	MatchID   string `json:"match_id"`
}

// RpcSessionTicket issues a ticket binding the caller to their live session. Clients
// pass it as the "ticket" join metadata.
func (m *Module) RpcSessionTicket(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", codeUnauthenticated)
	}
	if m.env.TicketSecret == "" {
		return "", runtime.NewError("session tickets are not configured", codeFailedPrecondition)
	}
	session, err := m.sessionFor(userID)
	if err != nil {
		return "", err
	}
	ticket, err := m.tickets.Issue(userID, session.SessionID)
	if err != nil {
		logger.Error("RpcSessionTicket: Failed to issue ticket for %s: %v", userID, err)
		return "", runtime.NewError("internal error", codeInternal)
	}
	return marshalResponse(logger, TicketResponse{Ticket: ticket, SessionID: session.SessionID, MatchID: session.MatchID})
}
