package app

import (
	"context"
)

// apply performs the I/O produced by one critical section: deliveries, score
// settlements, the archive write, repository cleanup and rematch creation.
// Failures are logged and never touch session state.
func (s *Service) apply(ctx context.Context, sessionID string, out effects) {
	logger := s.deps.Logger.WithField("session_id", sessionID)
	for _, n := range out.notices {
		s.deliver(ctx, sessionID, n)
	}
	if s.deps.ScoreStore != nil {
		for _, st := range out.settlements {
			if st.Delta == 0 {
				continue
			}
			metadata := map[string]interface{}{
				"session_id": sessionID,
				"outcome":    string(st.Outcome),
			}
			total, err := s.deps.ScoreStore.ApplyDelta(ctx, st.UserID, st.Delta, metadata)
			if err != nil {
				logger.Error("Service: failed to apply score delta %d for %s: %v", st.Delta, st.UserID, err)
				continue
			}
			logger.Debug("Service: %s score %+d -> %d", st.UserID, st.Delta, total)
		}
	}
	if out.record != nil && s.deps.Archive != nil {
		if err := s.deps.Archive.Archive(ctx, *out.record); err != nil {
			logger.Error("Service: failed to archive session: %v", err)
		}
	}
	if out.remove {
		s.deps.Repository.RemoveByID(sessionID)
	}
	if out.rematch != nil {
		s.startRematch(ctx, *out.rematch)
	}
}

func (s *Service) deliver(ctx context.Context, sessionID string, n Notice) {
	if s.deps.Messenger == nil {
		return
	}
	if err := s.deps.Messenger.Deliver(ctx, sessionID, n.Message()); err != nil {
		s.deps.Logger.Warn("Service: failed to deliver %s for %s: %v", n.Kind, sessionID, err)
	}
}

// startRematch opens a new lobby for the REMATCH participants and tells the old
// session's clients where to go.
func (s *Service) startRematch(ctx context.Context, req RematchRequest) {
	next, err := s.createSession(ctx, req.UserIDs, req.PreviousSessionID)
	if err != nil {
		s.deps.Logger.Error("Service: failed to start rematch of %s: %v", req.PreviousSessionID, err)
		s.deliver(ctx, req.PreviousSessionID, Notice{
			Kind:    NoticeSessionTerminated,
			Payload: SessionTerminatedPayload{Reason: ReasonNoRematch, Remaining: req.UserIDs},
		})
		return
	}
	s.deliver(ctx, req.PreviousSessionID, Notice{
		Kind: NoticeRematchStarted,
		Payload: RematchStartedPayload{
			SessionID:         next.ID(),
			PreviousSessionID: req.PreviousSessionID,
			Participants:      req.UserIDs,
		},
	})
}
