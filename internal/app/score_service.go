package app

import (
	"slices"

	"omok/internal/config"
	"omok/internal/domain"
)

// ScoreService turns final outcomes into rating changes.
type ScoreService struct {
	deltas config.ScoreDeltas
}

// NewScoreService creates a ScoreService with the configured deltas.
func NewScoreService(deltas config.ScoreDeltas) *ScoreService {
	return &ScoreService{deltas: deltas}
}

// CalculateScoreDelta returns the change for userID. A winner always gets the win delta;
// any other participant who left the game gets the disconnect penalty instead of the
// outcome delta.
func (s *ScoreService) CalculateScoreDelta(view View, userID string) int {
	outcome := view.Outcomes[userID]
	if outcome == domain.OutcomeWin {
		return s.deltas.Win
	}
	if slices.Contains(view.Disconnected, userID) {
		return s.deltas.Disconnected
	}
	switch outcome {
	case domain.OutcomeLoss:
		return s.deltas.Loss
	case domain.OutcomeDraw:
		return s.deltas.Draw
	default:
		return 0
	}
}

// DefaultScore is the rating assumed for a player without one.
func (s *ScoreService) DefaultScore() int {
	return s.deltas.Default
}
