package app

import (
	"omok/internal/domain"
	"omok/internal/rules"
)

func handleTurnWaiting(c *cycle, ev Event) StateType {
	switch e := ev.(type) {
	case MoveEvent:
		c.turn = &turnCycle{
			userID:      e.UserID,
			requestID:   e.RequestID,
			playerIndex: c.s.participants.IndexOf(e.UserID),
			requestedX:  e.X,
			requestedY:  e.Y,
			before:      c.s.turns.Snapshot(),
		}
		return StateMoveValidating
	case TurnTimeoutEvent:
		return c.turnTimeout(e)
	case ReadyEvent:
		c.readyResult = &ReadyResult{
			UserID:    e.UserID,
			RequestID: e.RequestID,
			ValidUser: c.s.participants.Contains(e.UserID),
			AllReady:  c.s.participants.AllReady(),
		}
	case DecisionEvent:
		c.decisionOutsideWindow(e, DecisionTimeWindowClosed)
	case DecisionTimeoutEvent:
		c.decisionTimeout = &DecisionTimeoutResult{}
	}
	return stay
}

// validateMove runs the legality checks in order; the first failure wins.
func (c *cycle) validateMove(tc *turnCycle) MoveStatus {
	s := c.s
	switch {
	case !s.participants.Contains(tc.userID):
		return MoveInvalidPlayer
	case !s.started:
		return MoveGameNotStarted
	case s.outcomes.IsResolved():
		return MoveGameFinished
	case !s.board.InBounds(tc.requestedX, tc.requestedY):
		return MoveOutOfBounds
	case tc.before.CurrentUserID != tc.userID:
		return MoveOutOfTurn
	case !s.board.IsEmpty(tc.requestedX, tc.requestedY):
		return MoveCellOccupied
	}
	tc.move = &rules.Move{
		UserID:      tc.userID,
		PlayerIndex: tc.playerIndex,
		X:           tc.requestedX,
		Y:           tc.requestedY,
		Stone:       domain.StoneForPlayer(tc.playerIndex),
	}
	rt := c.runtime(tc.before, tc.move)
	if status := c.svc.engine.ValidateMove(s.rules, rt); status != rules.StatusOK {
		return MoveStatus(status)
	}
	return MoveSuccess
}

func enterMoveValidating(c *cycle) StateType {
	tc := c.turn
	status := c.validateMove(tc)
	if status == MoveSuccess {
		return StateMoveApplying
	}
	c.logger.Debug("Session: move by %s at (%d,%d) rejected: %s", tc.userID, tc.requestedX, tc.requestedY, status)
	c.rejectMove(MoveEvent{UserID: tc.userID, RequestID: tc.requestID, X: tc.requestedX, Y: tc.requestedY}, status)
	c.turn = nil
	return StateTurnWaiting
}

func enterMoveApplying(c *cycle) StateType {
	s := c.s
	tc := c.turn
	mv := tc.move

	eff := c.fire(rules.TriggerPrePlacement, tc.before, mv)
	if !s.board.IsEmpty(mv.X, mv.Y) {
		c.logger.Debug("Session: relocation to (%d,%d) unusable, keeping (%d,%d)", mv.X, mv.Y, tc.requestedX, tc.requestedY)
		mv.X, mv.Y = tc.requestedX, tc.requestedY
	}
	if mv.Stone == domain.StoneEmpty {
		mv.Stone = domain.StoneForPlayer(tc.playerIndex)
	}
	s.board.SetStone(mv.X, mv.Y, mv.Stone, domain.Placement{
		Source:       domain.PlacementPlayer,
		ActionNumber: tc.before.ActionNumber,
		PlayerIndex:  tc.playerIndex,
		UserID:       tc.userID,
	})
	c.moveResult = &MoveResult{
		UserID:    tc.userID,
		RequestID: tc.requestID,
		Status:    MoveSuccess,
		X:         mv.X,
		Y:         mv.Y,
		Stone:     mv.Stone,
	}

	post := c.fire(rules.TriggerPostPlacement, tc.before, mv)
	post.BoardChanged = post.BoardChanged || eff.BoardChanged
	c.publish(post)
	return StateOutcomeEvaluating
}

func enterTurnFinalizing(c *cycle) StateType {
	tc := c.turn
	c.turn = nil
	c.advanceTurn(tc.before.CurrentUserID, tc.move, false)
	if c.drawIfFull() {
		if c.moveResult != nil {
			c.moveResult.GameOver = true
		}
		return StatePostGameDecisionWaiting
	}
	return StateTurnWaiting
}

// turnTimeout applies a timer firing. The stamp must still match the current action
// number and the window must have expired; anything else is a stale timer.
func (c *cycle) turnTimeout(e TurnTimeoutEvent) StateType {
	s := c.s
	c.timeoutResult = &TimeoutResult{ExpectedTurn: e.ExpectedTurn}
	current := s.turns.Snapshot()
	if !s.started || s.outcomes.IsResolved() || current.ActionNumber != e.ExpectedTurn || !s.turns.IsExpired(c.now) {
		c.logger.Debug("Session: stale turn timer %d (current %d)", e.ExpectedTurn, current.ActionNumber)
		return stay
	}
	c.svc.deps.TurnScheduler.ClearIfMatches(s.id, e.ExpectedTurn)
	next := c.advanceTurn(current.CurrentUserID, nil, true)
	c.timeoutResult.Applied = true
	c.timeoutResult.TimedOutID = current.CurrentUserID
	c.timeoutResult.Next = next
	if c.drawIfFull() {
		return StatePostGameDecisionWaiting
	}
	return stay
}

// advanceTurn hands the turn to the next connected player, fires TURN_ADVANCE and, when
// the lap completed, TURN_ROUND_COMPLETED, then opens the new turn.
func (c *cycle) advanceTurn(endedBy string, mv *rules.Move, timedOut bool) domain.TurnSnapshot {
	s := c.s
	next, err := s.turns.AdvanceSkippingDisconnected(s.participants.Disconnected(), c.now)
	if err != nil {
		c.logger.Error("Session: failed to advance turn: %v", err)
		return s.turns.Snapshot()
	}
	if timedOut {
		s.notify(NoticeTurnTimeout, TurnTimeoutPayload{UserID: endedBy, Next: turnInfo(next)})
	} else {
		ended := TurnEndedPayload{UserID: endedBy, X: -1, Y: -1, Stone: domain.StoneEmpty, Next: turnInfo(next)}
		if mv != nil {
			ended.X, ended.Y, ended.Stone = mv.X, mv.Y, mv.Stone
		}
		s.notify(NoticeTurnEnded, ended)
	}

	c.publish(c.fire(rules.TriggerTurnAdvance, next, mv))
	if next.Wrapped {
		c.publish(c.fire(rules.TriggerTurnRoundCompleted, s.turns.Snapshot(), mv))
	}
	return c.startTurn(s.turns.Snapshot())
}

// startTurn fires TURN_START, announces the turn and arms its timer.
func (c *cycle) startTurn(snap domain.TurnSnapshot) domain.TurnSnapshot {
	s := c.s
	c.publish(c.fire(rules.TriggerTurnStart, snap, nil))
	snap = s.turns.Snapshot()
	s.notify(NoticeTurnStarted, TurnStartedPayload{Turn: turnInfo(snap)})
	c.scheduleTurnTimer(snap)
	return snap
}
