package app

import "omok/internal/domain"

// Event is an input to a session's state machine. The set of implementations is
// closed: only the types in this file satisfy it.
type Event interface {
	isEvent()
}

// ReadyEvent marks a lobby participant ready.
type ReadyEvent struct {
	UserID    string
	RequestID string
}

// MoveEvent places the sender's stone at (X, Y).
type MoveEvent struct {
	UserID    string
	RequestID string
	X         int
	Y         int
}

// TurnTimeoutEvent is delivered by the turn timer armed for ExpectedTurn.
type TurnTimeoutEvent struct {
	ExpectedTurn int
}

// DecisionEvent records a post-game REMATCH or LEAVE.
type DecisionEvent struct {
	UserID    string
	RequestID string
	Decision  domain.Decision
}

// DecisionTimeoutEvent closes the post-game window.
type DecisionTimeoutEvent struct{}

func (ReadyEvent) isEvent()           {}
func (MoveEvent) isEvent()            {}
func (TurnTimeoutEvent) isEvent()     {}
func (DecisionEvent) isEvent()        {}
func (DecisionTimeoutEvent) isEvent() {}
