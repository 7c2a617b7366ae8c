package app

import "omok/internal/domain"

const (
	// MinParticipants is the smallest group a session can be created for.
	MinParticipants = 1
	// MaxParticipants matches the number of distinct player stones.
	MaxParticipants = domain.MaxPlayerStones
	// MinRematchParticipants is how many REMATCH decisions relaunch a game.
	MinRematchParticipants = 2
	// MinRatedParticipants is the smallest game whose result changes ratings.
	MinRatedParticipants = 2
)

// Reasons attached to disconnect and termination broadcasts.
const (
	ReasonLeft           = "LEFT"
	ReasonDisconnected   = "DISCONNECTED"
	ReasonNoRematch      = "NO_REMATCH"
	ReasonAbandoned      = "ABANDONED"
	ReasonRematchStarted = "REMATCH_STARTED"
)
