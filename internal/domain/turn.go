package domain

import (
	"errors"
	"time"
)

// DefaultTurnDuration is the per-turn time budget unless configuration or a rule changes it.
const DefaultTurnDuration = 15 * time.Second

var (
	ErrEmptyTurnOrder = errors.New("turn order must not be empty")
	ErrTurnNotStarted = errors.New("turn state has not been started")
	ErrOrderMismatch  = errors.New("new turn order must be a permutation of the current one")
)

// TurnCounters tracks progress through the game.
type TurnCounters struct {
	// ActionNumber increases by one on every advance and is the stamp used by turn timers.
	ActionNumber int
	// RoundNumber increases when the cursor wraps past the end of the order.
	RoundNumber int
	// PositionInRound is 1-based; 0 means no player is active.
	PositionInRound int
}

// FirstCounters are the counters of the opening turn.
func FirstCounters() TurnCounters {
	return TurnCounters{ActionNumber: 1, RoundNumber: 1, PositionInRound: 1}
}

func (c TurnCounters) advance(wrapped bool, size int) TurnCounters {
	next := TurnCounters{
		ActionNumber: max(1, c.ActionNumber+1),
		RoundNumber:  max(c.RoundNumber, 1),
	}
	if wrapped {
		next.RoundNumber = max(1, c.RoundNumber+1)
	}
	switch {
	case size <= 0:
		next.PositionInRound = 0
	case c.PositionInRound <= 0:
		next.PositionInRound = 1
	case wrapped:
		next.PositionInRound = 1
	default:
		next.PositionInRound = min(c.PositionInRound+1, size)
	}
	return next
}

func (c TurnCounters) advanceWithoutActive() TurnCounters {
	return TurnCounters{
		ActionNumber:    max(1, c.ActionNumber+1),
		RoundNumber:     max(c.RoundNumber, 1),
		PositionInRound: 0,
	}
}

// TurnSnapshot is an immutable view of the turn state at one instant.
type TurnSnapshot struct {
	Order           []string
	CurrentIndex    int
	CurrentUserID   string
	ActionNumber    int
	RoundNumber     int
	PositionInRound int
	StartAt         time.Time
	EndAt           time.Time
	// Wrapped is set on snapshots returned by an advance that completed a lap.
	Wrapped bool
}

// HasActivePlayer reports whether some participant currently holds the turn.
func (s TurnSnapshot) HasActivePlayer() bool {
	return s.CurrentIndex >= 0
}

// TurnState is the mutable turn engine of one session.
type TurnState struct {
	order    []string
	current  int
	counters TurnCounters
	startAt  time.Time
	endAt    time.Time
	duration time.Duration
}

// NewTurnState returns an unstarted turn state; a non-positive duration selects the default.
func NewTurnState(duration time.Duration) *TurnState {
	if duration <= 0 {
		duration = DefaultTurnDuration
	}
	return &TurnState{current: -1, duration: duration}
}

// Start installs the play order and opens the first turn window.
func (t *TurnState) Start(order []string, now time.Time) (TurnSnapshot, error) {
	if len(order) == 0 {
		return TurnSnapshot{}, ErrEmptyTurnOrder
	}
	t.order = append([]string(nil), order...)
	t.current = 0
	t.counters = FirstCounters()
	t.openWindow(now)
	return t.Snapshot(), nil
}

// Started reports whether Start has installed an order.
func (t *TurnState) Started() bool {
	return len(t.order) > 0
}

// AdvanceSkippingDisconnected moves the turn to the next player not in disconnected.
// When everyone is disconnected the index becomes -1 and only the action counter moves.
func (t *TurnState) AdvanceSkippingDisconnected(disconnected map[string]bool, now time.Time) (TurnSnapshot, error) {
	if !t.Started() {
		return TurnSnapshot{}, ErrTurnNotStarted
	}
	prev := t.current
	total := len(t.order)
	cursor := max(-1, prev)
	next, wrapped := -1, false
	for checked := 0; checked < total; checked++ {
		cursor = (cursor + 1) % total
		if !disconnected[t.order[cursor]] {
			next = cursor
			wrapped = prev >= 0 && cursor <= prev
			break
		}
	}
	if next < 0 {
		t.current = -1
		t.counters = t.counters.advanceWithoutActive()
	} else {
		t.current = next
		t.counters = t.counters.advance(wrapped, total)
	}
	t.openWindow(now)
	snap := t.Snapshot()
	snap.Wrapped = wrapped
	return snap, nil
}

// IsExpired reports whether the current window has elapsed at now.
func (t *TurnState) IsExpired(now time.Time) bool {
	if t.endAt.IsZero() {
		return false
	}
	return !now.Before(t.endAt)
}

// Snapshot captures the current state.
func (t *TurnState) Snapshot() TurnSnapshot {
	s := TurnSnapshot{
		Order:           append([]string(nil), t.order...),
		CurrentIndex:    t.current,
		ActionNumber:    t.counters.ActionNumber,
		RoundNumber:     t.counters.RoundNumber,
		PositionInRound: t.counters.PositionInRound,
		StartAt:         t.startAt,
		EndAt:           t.endAt,
	}
	if t.current >= 0 && t.current < len(t.order) {
		s.CurrentUserID = t.order[t.current]
	}
	return s
}

// Counters returns the current counters.
func (t *TurnState) Counters() TurnCounters { return t.counters }

// CurrentUserID returns the active player's id or "".
func (t *TurnState) CurrentUserID() string {
	if t.current < 0 || t.current >= len(t.order) {
		return ""
	}
	return t.order[t.current]
}

// Order returns a copy of the play order.
func (t *TurnState) Order() []string {
	return append([]string(nil), t.order...)
}

// Duration returns the per-turn budget.
func (t *TurnState) Duration() time.Duration { return t.duration }

// SetDuration changes the budget used by windows opened from now on.
func (t *TurnState) SetDuration(d time.Duration) {
	if d > 0 {
		t.duration = d
	}
}

// RestartWindow reopens the current window at now with the current duration.
func (t *TurnState) RestartWindow(now time.Time) {
	if t.Started() {
		t.openWindow(now)
	}
}

// Reseed installs a new permutation and hands the turn to its first player not in skip.
// Action and round counters are preserved; the round position restarts at 1.
func (t *TurnState) Reseed(order []string, skip map[string]bool, now time.Time) (TurnSnapshot, error) {
	if len(order) == 0 {
		return TurnSnapshot{}, ErrEmptyTurnOrder
	}
	if t.Started() && !samePlayers(t.order, order) {
		return TurnSnapshot{}, ErrOrderMismatch
	}
	t.order = append([]string(nil), order...)
	t.current = -1
	for i, id := range t.order {
		if !skip[id] {
			t.current = i
			break
		}
	}
	t.counters.PositionInRound = 1
	if t.current < 0 {
		t.counters.PositionInRound = 0
	}
	t.openWindow(now)
	return t.Snapshot(), nil
}

func (t *TurnState) openWindow(now time.Time) {
	t.startAt = now
	t.endAt = now.Add(t.duration)
}

func samePlayers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
