package domain

// Stone is the content of a single board cell, encoded as a signed byte on the wire.
type Stone int8

const (
	// StoneEmpty marks an unoccupied cell.
	StoneEmpty Stone = -1
	// StonePlayer1 through StonePlayer4 belong to the participant at the same play order index.
	StonePlayer1 Stone = 0
	StonePlayer2 Stone = 1
	StonePlayer3 Stone = 2
	StonePlayer4 Stone = 3
	// StoneJoker counts as every player's stone for sequence detection.
	StoneJoker Stone = 4
	// StoneBlocker never counts for anyone and breaks sequences.
	StoneBlocker Stone = 5
)

// MaxPlayerStones is the number of distinct player stone colours.
const MaxPlayerStones = 4

// StoneForPlayer maps a play order index to its stone, or StoneEmpty when out of range.
func StoneForPlayer(index int) Stone {
	if index < 0 || index >= MaxPlayerStones {
		return StoneEmpty
	}
	return Stone(index)
}

// StoneFromByte decodes a wire byte back into a Stone.
func StoneFromByte(b byte) Stone {
	s := Stone(int8(b))
	switch {
	case s == StoneEmpty, s == StoneJoker, s == StoneBlocker:
		return s
	case s >= StonePlayer1 && s <= StonePlayer4:
		return s
	default:
		return StoneEmpty
	}
}

// Byte returns the wire encoding of the stone.
func (s Stone) Byte() byte {
	return byte(int8(s))
}

// IsPlayer reports whether the stone belongs to one of the four player colours.
func (s Stone) IsPlayer() bool {
	return s >= StonePlayer1 && s <= StonePlayer4
}

// PlayerIndex returns the play order index owning the stone, or -1.
func (s Stone) PlayerIndex() int {
	if !s.IsPlayer() {
		return -1
	}
	return int(s)
}

// CountsFor reports whether the cell contributes to a run for the given player stone.
func (s Stone) CountsFor(player Stone) bool {
	switch s {
	case StoneJoker:
		return true
	case StoneBlocker, StoneEmpty:
		return false
	default:
		return s == player
	}
}

func (s Stone) String() string {
	switch s {
	case StoneEmpty:
		return "EMPTY"
	case StonePlayer1:
		return "PLAYER1"
	case StonePlayer2:
		return "PLAYER2"
	case StonePlayer3:
		return "PLAYER3"
	case StonePlayer4:
		return "PLAYER4"
	case StoneJoker:
		return "JOKER"
	case StoneBlocker:
		return "BLOCKER"
	default:
		return "UNKNOWN"
	}
}

// PlacementSource records who put a stone on the board.
type PlacementSource string

const (
	PlacementPlayer PlacementSource = "player"
	PlacementRule   PlacementSource = "rule"
	PlacementSystem PlacementSource = "system"
)

// Placement is the metadata attached to a stone write.
type Placement struct {
	Source       PlacementSource
	ActionNumber int
	PlayerIndex  int
	UserID       string
}

// SystemPlacement tags a write made by the engine without a specific turn context.
func SystemPlacement() Placement {
	return Placement{Source: PlacementSystem, PlayerIndex: -1}
}

// RulePlacement tags a write made by a rule during the given action.
func RulePlacement(actionNumber, playerIndex int, userID string) Placement {
	return Placement{Source: PlacementRule, ActionNumber: actionNumber, PlayerIndex: playerIndex, UserID: userID}
}
