package app

import (
	"context"

	"omok/internal/domain"
	"omok/internal/rules"
)

func (c *cycle) runtime(turn domain.TurnSnapshot, mv *rules.Move) *rules.Runtime {
	s := c.s
	return &rules.Runtime{
		SessionID:    s.id,
		Board:        s.board,
		Turns:        s.turns,
		Participants: s.participants,
		Outcomes:     s.outcomes,
		Data:         s.rules.Data(),
		Turn:         turn,
		Move:         mv,
		Rand:         s.rng,
		Now:          c.now,
		Logger:       c.logger,
	}
}

// fire runs one trigger against the session's rules and returns the requested effects.
func (c *cycle) fire(kind rules.TriggerKind, turn domain.TurnSnapshot, mv *rules.Move) rules.Effects {
	rt := c.runtime(turn, mv)
	c.svc.engine.Fire(c.s.rules, kind, rt)
	return rt.Effects()
}

// publish queues the broadcasts rules asked for.
func (c *cycle) publish(eff rules.Effects) {
	if eff.BoardChanged {
		c.s.notify(NoticeBoardSnapshot, BoardSnapshotPayload{Board: c.boardSnapshot(), UpdatedAt: c.now})
	}
}

// boardSnapshot is the outbound board encoding after every snapshot transform.
func (c *cycle) boardSnapshot() []byte {
	return c.svc.engine.TransformSnapshot(c.s.rules, c.s.board.Snapshot())
}

func (c *cycle) scheduleTurnTimer(snap domain.TurnSnapshot) {
	svc, id, turn := c.svc, c.s.id, snap.ActionNumber
	if !snap.HasActivePlayer() {
		svc.deps.TurnScheduler.Cancel(id)
		return
	}
	svc.deps.TurnScheduler.Schedule(id, turn, snap.EndAt, func() {
		svc.HandleTurnTimeout(context.Background(), id, turn)
	})
}

// depart marks userID as gone and re-evaluates the session: an emptied lobby terminates,
// a game in progress runs the finalize-now policy and a post-game window records LEAVE.
func (c *cycle) depart(userID, reason string) DisconnectResult {
	s := c.s
	res := DisconnectResult{UserID: userID}
	if !s.participants.Contains(userID) || s.state == StateCompleted {
		return res
	}
	res.Changed = s.participants.SetDisconnected(userID, true)
	if !res.Changed {
		return res
	}
	c.logger.Info("Session: %s left (%s)", userID, reason)
	s.notify(NoticePlayerDisconnected, PlayerDisconnectedPayload{UserID: userID, Reason: reason})

	switch {
	case s.state == StateLobby:
		if s.participants.ConnectedCount() == 0 {
			s.reason = ReasonAbandoned
			c.run(StateTerminating)
		}
	case s.state.InGame():
		c.resolveByRules(nil, nil)
		if over, abandoned := c.finalizeCheck(); over {
			res.GameOver = true
			c.run(c.gameOver(abandoned))
			break
		}
		if s.turns.CurrentUserID() == userID {
			c.advanceTurn(userID, nil, false)
			if c.drawIfFull() {
				res.GameOver = true
				c.run(StatePostGameDecisionWaiting)
			}
		}
	case s.state == StatePostGameDecisionWaiting:
		if s.postGame.Record(userID, domain.DecisionLeave) {
			s.notify(NoticePostGameUpdate, PostGameUpdatePayload{
				UserID:    userID,
				Decision:  domain.DecisionLeave,
				Decisions: s.postGame.Snapshot(),
				Undecided: s.postGame.Undecided(),
			})
		}
		if s.postGame.AllDecided() {
			c.run(StatePostGameResolving)
		}
	}
	res.Terminated = s.state == StateCompleted
	return res
}

// reconnect clears userID's disconnected flag and replays the turn and board.
func (c *cycle) reconnect(userID string) bool {
	s := c.s
	if s.state == StateCompleted || !s.participants.SetDisconnected(userID, false) {
		return false
	}
	c.logger.Info("Session: %s reconnected", userID)
	s.notify(NoticePlayerReconnected, PlayerReconnectedPayload{
		UserID: userID,
		Turn:   turnInfo(s.turns.Snapshot()),
		Board:  c.boardSnapshot(),
	})
	return true
}

// join greets a client attaching to the session, reconnecting it first when needed.
func (c *cycle) join(userID string) bool {
	s := c.s
	if !s.participants.Contains(userID) {
		return false
	}
	c.reconnect(userID)
	s.notify(NoticeSessionJoined, SessionJoinedPayload{
		SessionID:    s.id,
		Participants: s.participants.UserIDs(),
		Rules:        s.ruleIDs(),
		BoardWidth:   s.board.Width(),
		BoardHeight:  s.board.Height(),
	}, userID)
	return true
}
