package app

import (
	"time"

	"omok/internal/domain"
	"omok/internal/ports"
)

// NoticeKind identifies an outbound session message for delivery by the Messenger.
type NoticeKind string

const (
	NoticeSessionJoined      NoticeKind = "session_joined"
	NoticePlayerReady        NoticeKind = "player_ready"
	NoticeReadyRejected      NoticeKind = "ready_rejected"
	NoticeGameStarted        NoticeKind = "game_started"
	NoticeTurnStarted        NoticeKind = "turn_started"
	NoticeTurnEnded          NoticeKind = "turn_ended"
	NoticeMoveRejected       NoticeKind = "move_rejected"
	NoticeBoardSnapshot      NoticeKind = "board_snapshot"
	NoticeGameCompleted      NoticeKind = "game_completed"
	NoticePostGamePrompt     NoticeKind = "post_game_prompt"
	NoticePostGameUpdate     NoticeKind = "post_game_update"
	NoticeDecisionRejected   NoticeKind = "decision_rejected"
	NoticeSessionTerminated  NoticeKind = "session_terminated"
	NoticeRematchStarted     NoticeKind = "rematch_started"
	NoticePlayerDisconnected NoticeKind = "player_disconnected"
	NoticePlayerReconnected  NoticeKind = "player_reconnected"
	NoticeTurnTimeout        NoticeKind = "turn_timeout"
)

// Payload is the body of a notice.
type Payload interface {
	Fields() map[string]interface{}
}

// Notice is a pending outbound message; empty Recipients means every participant.
type Notice struct {
	Kind       NoticeKind
	Payload    Payload
	Recipients []string
}

// Message converts the notice into the Messenger's transport-neutral form.
func (n Notice) Message() ports.Message {
	var fields map[string]interface{}
	if n.Payload != nil {
		fields = n.Payload.Fields()
	}
	return ports.Message{
		Kind:       string(n.Kind),
		Fields:     fields,
		Recipients: append([]string(nil), n.Recipients...),
	}
}

// TurnInfo describes whose turn it is.
type TurnInfo struct {
	UserID          string
	Order           []string
	ActionNumber    int
	RoundNumber     int
	PositionInRound int
	StartAt         time.Time
	EndAt           time.Time
}

func turnInfo(s domain.TurnSnapshot) TurnInfo {
	return TurnInfo{
		UserID:          s.CurrentUserID,
		Order:           s.Order,
		ActionNumber:    s.ActionNumber,
		RoundNumber:     s.RoundNumber,
		PositionInRound: s.PositionInRound,
		StartAt:         s.StartAt,
		EndAt:           s.EndAt,
	}
}

func (t TurnInfo) Fields() map[string]interface{} {
	return map[string]interface{}{
		"user_id":           t.UserID,
		"order":             stringList(t.Order),
		"action_number":     t.ActionNumber,
		"round_number":      t.RoundNumber,
		"position_in_round": t.PositionInRound,
		"start_at":          t.StartAt.UnixMilli(),
		"end_at":            t.EndAt.UnixMilli(),
	}
}

type SessionJoinedPayload struct {
	SessionID    string
	Participants []string
	Rules        []string
	BoardWidth   int
	BoardHeight  int
}

func (p SessionJoinedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"session_id":   p.SessionID,
		"participants": stringList(p.Participants),
		"rules":        stringList(p.Rules),
		"board_width":  p.BoardWidth,
		"board_height": p.BoardHeight,
	}
}

type PlayerReadyPayload struct {
	UserID   string
	ReadyIDs []string
	AllReady bool
}

func (p PlayerReadyPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   p.UserID,
		"ready_ids": stringList(p.ReadyIDs),
		"all_ready": p.AllReady,
	}
}

type ReadyRejectedPayload struct {
	RequestID string
	Reason    string
}

func (p ReadyRejectedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{"request_id": p.RequestID, "reason": p.Reason}
}

type GameStartedPayload struct {
	Turn  TurnInfo
	Board []byte
	Rules []string
}

func (p GameStartedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"turn":  p.Turn.Fields(),
		"board": p.Board,
		"rules": stringList(p.Rules),
	}
}

type TurnStartedPayload struct {
	Turn TurnInfo
}

func (p TurnStartedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{"turn": p.Turn.Fields()}
}

type TurnEndedPayload struct {
	UserID string
	X      int
	Y      int
	Stone  domain.Stone
	Next   TurnInfo
}

func (p TurnEndedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"user_id": p.UserID,
		"x":       p.X,
		"y":       p.Y,
		"stone":   int(p.Stone),
		"next":    p.Next.Fields(),
	}
}

type MoveRejectedPayload struct {
	RequestID string
	Status    MoveStatus
	X         int
	Y         int
}

func (p MoveRejectedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"request_id": p.RequestID,
		"status":     string(p.Status),
		"x":          p.X,
		"y":          p.Y,
	}
}

type BoardSnapshotPayload struct {
	Board     []byte
	UpdatedAt time.Time
}

func (p BoardSnapshotPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"board":      p.Board,
		"updated_at": p.UpdatedAt.UnixMilli(),
	}
}

type GameCompletedPayload struct {
	Outcomes map[string]domain.Outcome
	Board    []byte
}

func (p GameCompletedPayload) Fields() map[string]interface{} {
	outcomes := make(map[string]interface{}, len(p.Outcomes))
	for id, o := range p.Outcomes {
		outcomes[id] = string(o)
	}
	return map[string]interface{}{"outcomes": outcomes, "board": p.Board}
}

type PostGamePromptPayload struct {
	Deadline     time.Time
	Participants []string
}

func (p PostGamePromptPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"deadline_at":  p.Deadline.UnixMilli(),
		"participants": stringList(p.Participants),
	}
}

type PostGameUpdatePayload struct {
	UserID    string
	Decision  domain.Decision
	Decisions map[string]domain.Decision
	Undecided []string
}

func (p PostGameUpdatePayload) Fields() map[string]interface{} {
	decisions := make(map[string]interface{}, len(p.Decisions))
	for id, d := range p.Decisions {
		decisions[id] = string(d)
	}
	return map[string]interface{}{
		"user_id":   p.UserID,
		"decision":  string(p.Decision),
		"decisions": decisions,
		"undecided": stringList(p.Undecided),
	}
}

type DecisionRejectedPayload struct {
	RequestID string
	Status    DecisionStatus
}

func (p DecisionRejectedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{"request_id": p.RequestID, "status": string(p.Status)}
}

type SessionTerminatedPayload struct {
	Reason    string
	Remaining []string
}

func (p SessionTerminatedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{"reason": p.Reason, "remaining": stringList(p.Remaining)}
}

type RematchStartedPayload struct {
	SessionID         string
	PreviousSessionID string
	Participants      []string
}

func (p RematchStartedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"session_id":          p.SessionID,
		"previous_session_id": p.PreviousSessionID,
		"participants":        stringList(p.Participants),
	}
}

type PlayerDisconnectedPayload struct {
	UserID string
	Reason string
}

func (p PlayerDisconnectedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{"user_id": p.UserID, "reason": p.Reason}
}

type PlayerReconnectedPayload struct {
	UserID string
	Turn   TurnInfo
	Board  []byte
}

func (p PlayerReconnectedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{"user_id": p.UserID, "turn": p.Turn.Fields(), "board": p.Board}
}

type TurnTimeoutPayload struct {
	UserID string
	Next   TurnInfo
}

func (p TurnTimeoutPayload) Fields() map[string]interface{} {
	return map[string]interface{}{"user_id": p.UserID, "next": p.Next.Fields()}
}

func stringList(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
