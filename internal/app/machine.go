package app

import (
	"context"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/domain"
	"omok/internal/rules"
)

// StateType is a state of the session state machine.
type StateType string

const (
	StateLobby                   StateType = "LOBBY"
	StateTurnWaiting             StateType = "TURN_WAITING"
	StateMoveValidating          StateType = "MOVE_VALIDATING"
	StateMoveApplying            StateType = "MOVE_APPLYING"
	StateOutcomeEvaluating       StateType = "OUTCOME_EVALUATING"
	StateTurnFinalizing          StateType = "TURN_FINALIZING"
	StatePostGameDecisionWaiting StateType = "POST_GAME_DECISION_WAITING"
	StatePostGameResolving       StateType = "POST_GAME_DECISION_RESOLVING"
	StateRematchPreparing        StateType = "SESSION_REMATCH_PREPARING"
	StateTerminating             StateType = "SESSION_TERMINATING"
	StateCompleted               StateType = "COMPLETED"
)

// InGame reports whether the state belongs to the turn loop.
func (s StateType) InGame() bool {
	switch s {
	case StateTurnWaiting, StateMoveValidating, StateMoveApplying, StateOutcomeEvaluating, StateTurnFinalizing:
		return true
	}
	return false
}

// stay is returned by handlers that leave the state unchanged.
const stay StateType = ""

// stateHandler is one row of the transition table. onEnter runs when the state is
// entered and may return the next state for automatic transitions; handle routes an
// event received while in the state.
type stateHandler struct {
	onEnter func(c *cycle) StateType
	handle  func(c *cycle, ev Event) StateType
}

var handlers map[StateType]stateHandler

func init() {
	handlers = map[StateType]stateHandler{
		StateLobby:                   {handle: handleLobby},
		StateTurnWaiting:             {handle: handleTurnWaiting},
		StateMoveValidating:          {onEnter: enterMoveValidating},
		StateMoveApplying:            {onEnter: enterMoveApplying},
		StateOutcomeEvaluating:       {onEnter: enterOutcomeEvaluating},
		StateTurnFinalizing:          {onEnter: enterTurnFinalizing},
		StatePostGameDecisionWaiting: {onEnter: enterPostGameWaiting, handle: handlePostGameWaiting},
		StatePostGameResolving:       {onEnter: enterPostGameResolving},
		StateRematchPreparing:        {onEnter: enterRematchPreparing},
		StateTerminating:             {onEnter: enterTerminating},
		StateCompleted:               {onEnter: enterCompleted, handle: handleCompleted},
	}
}

// turnCycle tracks one move from submission to resolution.
type turnCycle struct {
	userID      string
	requestID   string
	playerIndex int
	requestedX  int
	requestedY  int
	move        *rules.Move
	before      domain.TurnSnapshot
}

// cycle is the context of one locked critical section on a session.
type cycle struct {
	ctx    context.Context
	svc    *Service
	s      *Session
	now    time.Time
	logger runtime.Logger

	turn *turnCycle

	moveResult      *MoveResult
	readyResult     *ReadyResult
	decisionResult  *DecisionResult
	timeoutResult   *TimeoutResult
	decisionTimeout *DecisionTimeoutResult
}

// dispatch routes ev through the current state's handler and follows every
// automatic transition that results.
func (c *cycle) dispatch(ev Event) {
	h := handlers[c.s.state]
	if h.handle == nil {
		c.logger.Warn("Session: state %s cannot handle %T", c.s.state, ev)
		c.rejectUnhandled(ev)
		return
	}
	c.run(h.handle(c, ev))
}

// run enters next and keeps entering the states returned by onEnter until one settles.
func (c *cycle) run(next StateType) {
	for next != stay {
		c.logger.Debug("Session: %s -> %s", c.s.state, next)
		c.s.state = next
		h := handlers[next]
		if h.onEnter == nil {
			return
		}
		next = h.onEnter(c)
	}
}

// rejectUnhandled produces the default rejection for an event the state does not route.
func (c *cycle) rejectUnhandled(ev Event) {
	switch e := ev.(type) {
	case ReadyEvent:
		c.rejectReady(e, "NOT_IN_LOBBY")
	case MoveEvent:
		c.rejectMove(e, MoveGameFinished)
	case TurnTimeoutEvent:
		c.timeoutResult = &TimeoutResult{ExpectedTurn: e.ExpectedTurn}
	case DecisionEvent:
		c.rejectDecision(e, DecisionSessionClosed)
	case DecisionTimeoutEvent:
		c.decisionTimeout = &DecisionTimeoutResult{}
	}
}

func (c *cycle) rejectReady(e ReadyEvent, reason string) {
	c.readyResult = &ReadyResult{
		UserID:    e.UserID,
		RequestID: e.RequestID,
		AllReady:  c.s.participants.AllReady(),
	}
	c.s.notify(NoticeReadyRejected, ReadyRejectedPayload{RequestID: e.RequestID, Reason: reason}, e.UserID)
}

func (c *cycle) rejectMove(e MoveEvent, status MoveStatus) {
	c.moveResult = &MoveResult{UserID: e.UserID, RequestID: e.RequestID, Status: status, X: e.X, Y: e.Y, Stone: domain.StoneEmpty}
	c.s.notify(NoticeMoveRejected, MoveRejectedPayload{RequestID: e.RequestID, Status: status, X: e.X, Y: e.Y}, e.UserID)
}

func (c *cycle) rejectDecision(e DecisionEvent, status DecisionStatus) {
	c.decisionResult = &DecisionResult{UserID: e.UserID, RequestID: e.RequestID, Status: status, Decision: e.Decision}
	c.s.notify(NoticeDecisionRejected, DecisionRejectedPayload{RequestID: e.RequestID, Status: status}, e.UserID)
}

// moveOutsideGame answers a move received while no turn can accept it.
func (c *cycle) moveOutsideGame(e MoveEvent, status MoveStatus) {
	if !c.s.participants.Contains(e.UserID) {
		status = MoveInvalidPlayer
	}
	c.rejectMove(e, status)
}

func (c *cycle) decisionOutsideWindow(e DecisionEvent, status DecisionStatus) {
	if !c.s.participants.Contains(e.UserID) {
		status = DecisionInvalidPlayer
	}
	c.rejectDecision(e, status)
}
