package app

import (
	"omok/internal/domain"
)

// MoveStatus is the verdict on a submitted move.
type MoveStatus string

const (
	MoveSuccess        MoveStatus = "SUCCESS"
	MoveInvalidPlayer  MoveStatus = "INVALID_PLAYER"
	MoveGameNotStarted MoveStatus = "GAME_NOT_STARTED"
	MoveGameFinished   MoveStatus = "GAME_FINISHED"
	MoveOutOfBounds    MoveStatus = "OUT_OF_BOUNDS"
	MoveOutOfTurn      MoveStatus = "OUT_OF_TURN"
	MoveCellOccupied   MoveStatus = "CELL_OCCUPIED"
	MoveRestrictedZone MoveStatus = "RESTRICTED_ZONE"
)

// MoveResult reports what happened to a move. X, Y and Stone describe the
// placement actually written, which rules may have changed.
type MoveResult struct {
	UserID    string
	RequestID string
	Status    MoveStatus
	X         int
	Y         int
	Stone     domain.Stone
	// GameOver is set when the move ended the game.
	GameOver bool
}

// Accepted reports whether the move was placed.
func (r MoveResult) Accepted() bool { return r.Status == MoveSuccess }

// ReadyResult reports the effect of a ready request.
type ReadyResult struct {
	UserID    string
	RequestID string
	// ValidUser is false when the sender cannot ready up in this session.
	ValidUser bool
	// Changed is false when the user was already ready.
	Changed  bool
	AllReady bool
	// GameStarted is set on the request that started the game.
	GameStarted bool
}

// DecisionStatus is the verdict on a post-game decision.
type DecisionStatus string

const (
	DecisionAccepted         DecisionStatus = "ACCEPTED"
	DecisionInvalidPlayer    DecisionStatus = "INVALID_PLAYER"
	DecisionInvalidChoice    DecisionStatus = "INVALID_DECISION"
	DecisionAlreadyDecided   DecisionStatus = "ALREADY_DECIDED"
	DecisionTimeWindowClosed DecisionStatus = "TIME_WINDOW_CLOSED"
	DecisionSessionClosed    DecisionStatus = "SESSION_CLOSED"
)

// DecisionResult reports the effect of a post-game decision.
type DecisionResult struct {
	UserID    string
	RequestID string
	Status    DecisionStatus
	Decision  domain.Decision
}

// TimeoutResult reports whether a turn timer firing changed anything.
type TimeoutResult struct {
	Applied      bool
	TimedOutID   string
	Next         domain.TurnSnapshot
	ExpectedTurn int
}

// DecisionTimeoutResult reports the effect of closing the post-game window.
type DecisionTimeoutResult struct {
	Applied      bool
	AutoLeaveIDs []string
}

// DisconnectResult reports the effect of a disconnect or voluntary leave.
type DisconnectResult struct {
	UserID   string
	Changed  bool
	GameOver bool
	// Terminated is set when nobody connected is left in the session.
	Terminated bool
}
