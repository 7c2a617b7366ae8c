package nakama

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/app"
	"omok/internal/domain"
	"omok/internal/ports"
)

// idleSeconds is how long a match may run with nobody attached before its session is
// abandoned.
const idleSeconds = 120

// MatchState holds the Nakama side of one session: who is attached and what the
// label last said.
type MatchState struct {
	SessionID    string                      `json:"session_id"`
	Tick         int64                       `json:"tick"`
	IdleTicks    int64                       `json:"idle_ticks"`
	ClosingTicks int64                       `json:"closing_ticks"`
	Label        string                      `json:"label"`
	Presences    map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
}

type matchHandler struct {
	mod *Module
}

// MatchInit is called when the match is created for a session.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	sessionID, _ := params[MatchParamSessionID].(string)
	session, ok := mh.mod.service.Repository().FindByID(sessionID)
	if !ok {
		logger.Error("MatchInit: Session %q not found.", sessionID)
		return nil, 0, ""
	}
	if matchID, ok := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string); ok && matchID != "" {
		mh.mod.outbox.Bind(sessionID, matchID)
	}

	state := &MatchState{
		SessionID: sessionID,
		Presences: make(map[string]runtime.Presence),
	}
	state.Label = buildLabel(logger, session.Snapshot())
	logger.Debug("MatchInit: Match opened for session %s.", sessionID)
	return state, mh.mod.env.TickRate, state.Label
}

// MatchJoinAttempt admits only participants of the session, with a valid ticket when
// tickets are required.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()
	if !mh.owns(matchState, userID) {
		return state, false, "not a participant"
	}
	if mh.mod.env.RequireTicket {
		ticket, err := mh.mod.tickets.Verify(metadata[JoinMetadataTicket])
		if err != nil || ticket.UserID != userID || ticket.SessionID != matchState.SessionID {
			logger.Warn("MatchJoinAttempt: Rejected ticket from %s: %v", userID, err)
			return state, false, "invalid ticket"
		}
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if _, err := mh.mod.service.Join(ctx, matchState.SessionID, p.GetUserId()); err != nil {
			logger.Warn("MatchJoin: User %s could not join session %s: %v", p.GetUserId(), matchState.SessionID, err)
		}
	}
	matchState.IdleTicks = 0

	mh.flush(ctx, matchState, nk, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match. Leaving the match
// counts as a disconnect; the session decides what it means for the game.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		if !mh.owns(matchState, userID) {
			continue
		}
		if _, err := mh.mod.service.HandleClientDisconnected(ctx, userID); err != nil {
			logger.Warn("MatchLeave: Disconnect of %s failed: %v", userID, err)
		}
	}

	return mh.finish(ctx, matchState, nk, dispatcher, logger)
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick
	for _, msg := range messages {
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg)
	}

	if len(matchState.Presences) == 0 {
		matchState.IdleTicks++
		if matchState.IdleTicks >= int64(idleSeconds*mh.mod.env.TickRate) {
			mh.abandon(ctx, matchState, logger)
		}
	} else {
		matchState.IdleTicks = 0
	}

	return mh.finish(ctx, matchState, nk, dispatcher, logger)
}

func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !mh.owns(state, senderID) {
		logger.Warn("MatchLoop: Ignoring op %d from %s outside session %s", msg.GetOpCode(), senderID, state.SessionID)
		return
	}
	req, err := decodeRequest(msg.GetData())
	if err != nil {
		logger.Warn("MatchLoop: Bad payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	svc := mh.mod.service
	requestID := req.String("request_id")

	switch msg.GetOpCode() {
	case OpReady:
		_, err = svc.SubmitReady(ctx, senderID, requestID)
	case OpMove:
		x, okX := req.Int("x")
		y, okY := req.Int("y")
		if !okX || !okY {
			mh.sendError(state, dispatcher, logger, senderID, 400, "x and y are required")
			return
		}
		var res app.MoveResult
		res, err = svc.SubmitMove(ctx, senderID, requestID, x, y)
		if err == nil && !res.Accepted() {
			logger.Debug("MatchLoop: Move by %s rejected: %s", senderID, res.Status)
		}
	case OpPostGameDecision:
		decision := domain.Decision(strings.ToUpper(req.String("decision")))
		_, err = svc.SubmitPostGameDecision(ctx, senderID, requestID, decision)
	case OpLeave:
		_, err = svc.LeaveByUser(ctx, senderID)
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return
	}
	if errors.Is(err, app.ErrSessionNotFound) {
		mh.sendError(state, dispatcher, logger, senderID, 404, err.Error())
	}
}

// abandon disconnects every participant still owned by the session.
func (mh *matchHandler) abandon(ctx context.Context, state *MatchState, logger runtime.Logger) {
	session, ok := mh.mod.service.Repository().FindByID(state.SessionID)
	if !ok {
		return
	}
	logger.Info("MatchLoop: Session %s idle for %ds, abandoning.", state.SessionID, idleSeconds)
	for _, userID := range session.Participants() {
		if mh.owns(state, userID) {
			mh.mod.service.HandleClientDisconnected(ctx, userID)
		}
	}
}

// finish flushes pending messages and returns nil to end the match. A removed session
// keeps its match for one more flush so announcements published while it was being
// removed still go out.
func (mh *matchHandler) finish(ctx context.Context, state *MatchState, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, logger runtime.Logger) interface{} {
	mh.flush(ctx, state, nk, dispatcher, logger)
	session, ok := mh.mod.service.Repository().FindByID(state.SessionID)
	if !ok {
		if state.ClosingTicks == 0 {
			state.ClosingTicks++
			return state
		}
		logger.Info("MatchLoop: Session %s closed, terminating match.", state.SessionID)
		mh.mod.outbox.Unbind(state.SessionID)
		return nil
	}
	mh.updateLabel(state, session.Snapshot(), dispatcher, logger)
	return state
}

// owns reports whether userID's live session is the one this match carries.
func (mh *matchHandler) owns(state *MatchState, userID string) bool {
	view, ok := mh.mod.service.FindSession(userID)
	return ok && view.ID == state.SessionID
}

// flush broadcasts everything the session queued since the last flush.
func (mh *matchHandler) flush(ctx context.Context, state *MatchState, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for _, msg := range mh.mod.outbox.Drain(state.SessionID) {
		if msg.Kind == string(app.NoticeRematchStarted) {
			msg = mh.openRematch(ctx, nk, logger, msg)
		}
		mh.broadcast(state, dispatcher, logger, msg)
	}
}

// openRematch creates the match for a rematch session, adds its id to the
// announcement and notifies the participants.
func (mh *matchHandler) openRematch(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger, msg ports.Message) ports.Message {
	sessionID, _ := msg.Fields["session_id"].(string)
	matchID, err := mh.mod.openMatch(ctx, nk, sessionID)
	if err != nil {
		logger.Error("Rematch: %v", err)
		return msg
	}
	fields := make(map[string]interface{}, len(msg.Fields)+1)
	for k, v := range msg.Fields {
		fields[k] = v
	}
	fields["match_id"] = matchID
	msg.Fields = fields

	participants, _ := msg.Fields["participants"].([]interface{})
	notifications := make([]*runtime.NotificationSend, 0, len(participants))
	for _, p := range participants {
		userID, _ := p.(string)
		notifications = append(notifications, &runtime.NotificationSend{
			UserID:  userID,
			Subject: "rematch",
			Content: map[string]interface{}{"session_id": sessionID, "match_id": matchID},
			Code:    NotificationCodeRematch,
		})
	}
	if len(notifications) > 0 {
		if err := nk.NotificationsSend(ctx, notifications); err != nil {
			logger.Warn("Rematch: Failed to notify players of %s: %v", sessionID, err)
		}
	}
	return msg
}

func (mh *matchHandler) broadcast(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg ports.Message) {
	opCode, data, err := encodeMessage(msg)
	if err != nil {
		logger.Error("Failed to encode %s: %v", msg.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(msg.Recipients) > 0 {
		for _, uid := range msg.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted messages are never widened to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Warn("Failed to broadcast %s: %v", msg.Kind, err)
	}
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	data, err := encodeFields(map[string]interface{}{"code": code, "message": message})
	if err != nil {
		logger.Error("Failed to encode error event: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpError, data, []runtime.Presence{presence}, nil, true)
}

func buildLabel(logger runtime.Logger, view app.View) string {
	label, err := encodeFields(map[string]interface{}{
		"game":       "omok",
		"session_id": view.ID,
		"state":      string(view.State),
		"started":    view.Started,
		"players":    len(view.Participants),
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return ""
	}
	return string(label)
}

func (mh *matchHandler) updateLabel(state *MatchState, view app.View, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := buildLabel(logger, view)
	if label == "" || label == state.Label {
		return
	}
	state.Label = label
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	if matchState, ok := state.(*MatchState); ok {
		mh.abandon(ctx, matchState, logger)
		mh.flush(ctx, matchState, nk, dispatcher, logger)
		mh.mod.outbox.Unbind(matchState.SessionID)
	}
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
