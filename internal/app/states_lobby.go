package app

import (
	"omok/internal/rules"
)

func handleLobby(c *cycle, ev Event) StateType {
	switch e := ev.(type) {
	case ReadyEvent:
		return c.markReady(e)
	case MoveEvent:
		c.moveOutsideGame(e, MoveGameNotStarted)
	case TurnTimeoutEvent:
		c.timeoutResult = &TimeoutResult{ExpectedTurn: e.ExpectedTurn}
	case DecisionEvent:
		c.decisionOutsideWindow(e, DecisionTimeWindowClosed)
	case DecisionTimeoutEvent:
		c.decisionTimeout = &DecisionTimeoutResult{}
	}
	return stay
}

func (c *cycle) markReady(e ReadyEvent) StateType {
	s := c.s
	if !s.participants.Contains(e.UserID) {
		c.rejectReady(e, "INVALID_PLAYER")
		return stay
	}
	changed := s.participants.MarkReady(e.UserID)
	allReady := s.participants.AllReady()
	c.readyResult = &ReadyResult{
		UserID:    e.UserID,
		RequestID: e.RequestID,
		ValidUser: true,
		Changed:   changed,
		AllReady:  allReady,
	}
	if !changed {
		return stay
	}
	s.notify(NoticePlayerReady, PlayerReadyPayload{
		UserID:   e.UserID,
		ReadyIDs: s.participants.ReadyUserIDs(),
		AllReady: allReady,
	})
	if !allReady || s.started {
		return stay
	}
	if !c.startGame() {
		return stay
	}
	c.readyResult.GameStarted = true
	return StateTurnWaiting
}

// startGame resets the stores, installs the fixed participant order as the turn order and
// fires GAME_START. It runs once per session.
func (c *cycle) startGame() bool {
	s := c.s
	s.board.Reset()
	s.outcomes.Reset()
	s.rules.Data().Reset()
	rules.Put(s.rules.Data(), rules.WinLengthKey, s.winLength)
	rules.Put(s.rules.Data(), rules.StartedAtKey, c.now)

	snap, err := s.turns.Start(s.participants.UserIDs(), c.now)
	if err != nil {
		c.logger.Error("Session: failed to start turns: %v", err)
		return false
	}
	s.started = true
	c.fire(rules.TriggerGameStart, snap, nil)
	snap = s.turns.Snapshot()
	c.logger.Info("Session: game started with order %v and rules %v", snap.Order, s.ruleIDs())

	s.notify(NoticeGameStarted, GameStartedPayload{
		Turn:  turnInfo(snap),
		Board: c.boardSnapshot(),
		Rules: s.ruleIDs(),
	})
	c.startTurn(snap)
	return true
}
