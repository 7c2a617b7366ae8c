package app

import (
	"context"

	"omok/internal/domain"
	"omok/internal/ports"
)

func enterPostGameWaiting(c *cycle) StateType {
	s := c.s
	c.svc.deps.TurnScheduler.Cancel(s.id)
	c.settle()
	deadline := c.now.Add(s.decisionWindow)
	s.postGame.Open(deadline)

	s.notify(NoticeGameCompleted, GameCompletedPayload{
		Outcomes: s.outcomes.Snapshot(),
		Board:    c.boardSnapshot(),
	})
	s.notify(NoticePostGamePrompt, PostGamePromptPayload{
		Deadline:     deadline,
		Participants: s.participants.UserIDs(),
	})
	c.logger.Info("Session: game completed %v", s.outcomes.Snapshot())

	// Participants who are already gone cannot choose a rematch.
	for _, id := range s.participants.DisconnectedUserIDs() {
		s.postGame.Record(id, domain.DecisionLeave)
	}
	if s.postGame.AllDecided() {
		return StatePostGameResolving
	}
	svc, id := c.svc, s.id
	svc.deps.DecisionScheduler.Schedule(id, deadline, func() {
		svc.HandleDecisionTimeout(context.Background(), id)
	})
	return stay
}

func handlePostGameWaiting(c *cycle, ev Event) StateType {
	s := c.s
	switch e := ev.(type) {
	case DecisionEvent:
		return c.recordDecision(e)
	case DecisionTimeoutEvent:
		auto := s.postGame.Undecided()
		for _, id := range auto {
			s.postGame.Record(id, domain.DecisionLeave)
		}
		c.decisionTimeout = &DecisionTimeoutResult{Applied: true, AutoLeaveIDs: auto}
		if len(auto) > 0 {
			s.notify(NoticePostGameUpdate, PostGameUpdatePayload{
				Decision:  domain.DecisionLeave,
				Decisions: s.postGame.Snapshot(),
			})
		}
		return StatePostGameResolving
	case MoveEvent:
		c.moveOutsideGame(e, MoveGameFinished)
	case ReadyEvent:
		c.rejectReady(e, "GAME_FINISHED")
	case TurnTimeoutEvent:
		c.timeoutResult = &TimeoutResult{ExpectedTurn: e.ExpectedTurn}
	}
	return stay
}

func (c *cycle) recordDecision(e DecisionEvent) StateType {
	s := c.s
	switch {
	case !s.participants.Contains(e.UserID):
		c.rejectDecision(e, DecisionInvalidPlayer)
		return stay
	case s.postGame.WindowClosed(c.now):
		c.rejectDecision(e, DecisionTimeWindowClosed)
		return stay
	case s.postGame.Has(e.UserID):
		c.rejectDecision(e, DecisionAlreadyDecided)
		return stay
	case !e.Decision.Valid():
		c.rejectDecision(e, DecisionInvalidChoice)
		return stay
	}
	s.postGame.Record(e.UserID, e.Decision)
	c.decisionResult = &DecisionResult{UserID: e.UserID, RequestID: e.RequestID, Status: DecisionAccepted, Decision: e.Decision}
	s.notify(NoticePostGameUpdate, PostGameUpdatePayload{
		UserID:    e.UserID,
		Decision:  e.Decision,
		Decisions: s.postGame.Snapshot(),
		Undecided: s.postGame.Undecided(),
	})
	if s.postGame.AllDecided() {
		return StatePostGameResolving
	}
	return stay
}

func enterPostGameResolving(c *cycle) StateType {
	s := c.s
	c.svc.deps.DecisionScheduler.Cancel(s.id)
	var rematch []string
	for _, id := range s.postGame.RematchUserIDs() {
		if !s.participants.IsDisconnected(id) {
			rematch = append(rematch, id)
		}
	}
	if len(rematch) >= MinRematchParticipants {
		s.rematch = &RematchRequest{PreviousSessionID: s.id, UserIDs: rematch}
		return StateRematchPreparing
	}
	s.reason = ReasonNoRematch
	return StateTerminating
}

func enterRematchPreparing(c *cycle) StateType {
	c.s.reason = ReasonRematchStarted
	c.logger.Info("Session: rematch requested by %v", c.s.rematch.UserIDs)
	return StateCompleted
}

func enterTerminating(c *cycle) StateType {
	s := c.s
	if s.reason == "" {
		s.reason = ReasonAbandoned
	}
	s.notify(NoticeSessionTerminated, SessionTerminatedPayload{
		Reason:    s.reason,
		Remaining: s.participants.ConnectedUserIDs(),
	})
	return StateCompleted
}

func enterCompleted(c *cycle) StateType {
	s := c.s
	c.svc.deps.TurnScheduler.Cancel(s.id)
	c.svc.deps.DecisionScheduler.Cancel(s.id)
	if !s.archived && s.started {
		s.archived = true
		s.record = c.archiveRecord()
	}
	c.logger.Info("Session: completed (%s)", s.reason)
	return stay
}

func handleCompleted(c *cycle, ev Event) StateType {
	switch e := ev.(type) {
	case MoveEvent:
		c.moveOutsideGame(e, MoveGameFinished)
	case DecisionEvent:
		c.decisionOutsideWindow(e, DecisionSessionClosed)
	case ReadyEvent:
		c.rejectReady(e, "SESSION_CLOSED")
	case TurnTimeoutEvent:
		c.timeoutResult = &TimeoutResult{ExpectedTurn: e.ExpectedTurn}
	case DecisionTimeoutEvent:
		c.decisionTimeout = &DecisionTimeoutResult{}
	}
	return stay
}

func (c *cycle) archiveRecord() *ports.SessionRecord {
	s := c.s
	outcomes := make(map[string]string, s.participants.Count())
	for id, o := range s.outcomes.Snapshot() {
		outcomes[id] = string(o)
	}
	deltas := make(map[string]int, len(s.deltas))
	for id, d := range s.deltas {
		deltas[id] = d
	}
	counters := s.turns.Counters()
	return &ports.SessionRecord{
		SessionID:    s.id,
		Participants: s.participants.UserIDs(),
		Outcomes:     outcomes,
		ScoreDeltas:  deltas,
		Rules:        s.ruleIDs(),
		Actions:      counters.ActionNumber,
		Rounds:       counters.RoundNumber,
		Board:        s.board.Snapshot(),
		CreatedAt:    s.createdAt,
		CompletedAt:  c.now,
	}
}
