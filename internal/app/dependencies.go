package app

import (
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/config"
	"omok/internal/ports"
	"omok/internal/rules"
)

// Repository stores live sessions.
type Repository interface {
	FindByUserID(userID string) (*Session, bool)
	FindByID(sessionID string) (*Session, bool)
	// FindClosedByUserID returns the completed session userID left behind, if any.
	FindClosedByUserID(userID string) (*Session, bool)
	Save(session *Session)
	RemoveByID(sessionID string)
}

// TurnTimeoutScheduler arms one turn timer per session.
type TurnTimeoutScheduler interface {
	// Schedule replaces any armed timer; onTimeout runs on its own goroutine.
	Schedule(sessionID string, turnNumber int, deadline time.Time, onTimeout func())
	Cancel(sessionID string)
	// Validate reports whether the armed timer is still the one for expected.
	Validate(sessionID string, expected int) bool
	// ClearIfMatches forgets the timer if it is still armed for turnNumber.
	ClearIfMatches(sessionID string, turnNumber int)
}

// DecisionTimeoutScheduler arms one post-game decision timer per session.
type DecisionTimeoutScheduler interface {
	Schedule(sessionID string, deadline time.Time, task func())
	Cancel(sessionID string)
}

// RuleSelector builds a session's rules context from its participants' scores.
type RuleSelector interface {
	Prepare(scores map[string]int) *rules.Set
}

// Dependencies are the collaborators a Service and its sessions call into.
type Dependencies struct {
	Repository        Repository
	Messenger         ports.Messenger
	TurnScheduler     TurnTimeoutScheduler
	DecisionScheduler DecisionTimeoutScheduler
	RuleManager       RuleSelector
	RuleEngine        *rules.Engine
	Scores            *ScoreService
	ScoreStore        ports.ScoreStore
	Archive           ports.SessionArchive
	Logger            runtime.Logger
	Config            config.GameConfig
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Rng seeds per-session generators; nil selects a time-seeded default.
	Rng *rand.Rand
}

func (d *Dependencies) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}
