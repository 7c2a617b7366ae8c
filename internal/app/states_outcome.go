package app

import (
	"omok/internal/domain"
	"omok/internal/rules"
)

func enterOutcomeEvaluating(c *cycle) StateType {
	tc := c.turn
	over, abandoned := c.evaluateMove(tc.move)
	if !over {
		return StateTurnFinalizing
	}
	c.turn = nil
	if c.moveResult != nil {
		c.moveResult.GameOver = true
	}
	return c.gameOver(abandoned)
}

// evaluateMove decides whether the move just written ended the game. The built-in check
// looks for a winning run through the placed cell, then every ResolveOutcome hook may
// amend the candidate before it is committed.
func (c *cycle) evaluateMove(mv *rules.Move) (over, abandoned bool) {
	s := c.s
	var candidate *rules.OutcomeResolution
	length := rules.WinLength(s.rules.Data())
	mover := domain.StoneForPlayer(mv.PlayerIndex)
	switch {
	case s.board.HasRun(mv.X, mv.Y, mover, length):
		candidate = rules.NewResolution(true)
		for _, id := range s.participants.UserIDs() {
			candidate.Assign(id, domain.OutcomeLoss)
		}
		candidate.Assign(mv.UserID, domain.OutcomeWin)
	case s.board.IsFull():
		candidate = rules.NewResolution(true)
		for _, id := range s.participants.UserIDs() {
			candidate.Assign(id, domain.OutcomeDraw)
		}
	}

	c.resolveByRules(mv, candidate)
	return c.finalizeCheck()
}

// resolveByRules threads candidate through the ResolveOutcome hooks and commits the
// result. mv is nil when no move triggered the evaluation.
func (c *cycle) resolveByRules(mv *rules.Move, candidate *rules.OutcomeResolution) {
	s := c.s
	rt := c.runtime(s.turns.Snapshot(), mv)
	candidate = c.svc.engine.ResolveOutcome(s.rules, rt, candidate)
	c.publish(rt.Effects())
	c.commit(candidate)
}

// commit records a candidate. Decided outcomes are never overwritten.
func (c *cycle) commit(candidate *rules.OutcomeResolution) {
	if candidate.Empty() {
		return
	}
	s := c.s
	for _, id := range s.participants.UserIDs() {
		if o, ok := candidate.Assignments[id]; ok {
			s.outcomes.Set(id, o)
		}
	}
	if candidate.FinalizeNow {
		c.resolvePending(s.participants.UserIDs(), domain.OutcomeLoss)
	}
}

// finalizeCheck applies the finalize-now policy. The game is over when every outcome is
// decided, when at most one participant is still connected, or when the decided and
// disconnected participants together cover the whole table. abandoned is set when
// nobody is connected any more.
func (c *cycle) finalizeCheck() (over, abandoned bool) {
	s := c.s
	if s.outcomes.IsResolved() {
		return true, s.participants.ConnectedCount() == 0
	}
	total := s.participants.Count()
	connected := s.participants.ConnectedUserIDs()
	disconnected := s.participants.DisconnectedUserIDs()
	switch {
	case len(connected) <= 1:
		if len(connected) == 1 {
			s.outcomes.Set(connected[0], domain.OutcomeWin)
			c.logger.Info("Session: %s wins by forfeit", connected[0])
		}
		c.resolvePending(s.participants.UserIDs(), domain.OutcomeLoss)
		return true, len(connected) == 0
	case s.outcomes.DecidedCount()+len(disconnected) >= total:
		c.resolvePending(disconnected, domain.OutcomeLoss)
		c.resolvePending(connected, domain.OutcomeLoss)
		return true, false
	}
	return false, false
}

func (c *cycle) resolvePending(userIDs []string, outcome domain.Outcome) {
	for _, id := range userIDs {
		if c.s.outcomes.For(id) == domain.OutcomePending {
			c.s.outcomes.Set(id, outcome)
		}
	}
}

// drawIfFull ends the game as a draw when rule effects left no empty cell.
func (c *cycle) drawIfFull() bool {
	s := c.s
	if !s.board.IsFull() || s.outcomes.IsResolved() {
		return false
	}
	c.resolvePending(s.participants.UserIDs(), domain.OutcomeDraw)
	c.settle()
	return true
}

// gameOver settles scores and picks the state that follows a finished game.
func (c *cycle) gameOver(abandoned bool) StateType {
	c.settle()
	if abandoned {
		c.s.reason = ReasonAbandoned
		return StateTerminating
	}
	return StatePostGameDecisionWaiting
}

// settle computes every participant's score change once per session.
func (c *cycle) settle() {
	s := c.s
	if s.scored || c.svc.deps.Scores == nil {
		return
	}
	s.scored = true
	if s.participants.Count() < MinRatedParticipants {
		c.logger.Debug("Session: solo game, ratings unchanged")
		return
	}
	view := s.view()
	s.deltas = make(map[string]int, len(view.Participants))
	for _, id := range view.Participants {
		delta := c.svc.deps.Scores.CalculateScoreDelta(view, id)
		s.deltas[id] = delta
		s.settlements = append(s.settlements, Settlement{UserID: id, Outcome: view.Outcomes[id], Delta: delta})
	}
}
