package rules

import (
	"time"

	"omok/internal/domain"
)

// Key is a typed blackboard slot. The type parameter fixes what the slot may hold,
// so two rules cannot disagree about the shape of a value.
type Key[T any] string

// Cells maps board coordinates to a per-cell counter.
type Cells map[domain.Point]int

// Ages tracks how many turns a stone has stayed on its cell.
type Ages map[domain.Point]int

// Zones records cells blocked for placement and the user whose move created them.
type Zones struct {
	ByOwner map[string][]domain.Point
	Owner   map[domain.Point]string
}

// NewZones returns an empty zone set.
func NewZones() *Zones {
	return &Zones{
		ByOwner: make(map[string][]domain.Point),
		Owner:   make(map[domain.Point]string),
	}
}

// Replace drops the owner's previous zone and installs cells in its place.
func (z *Zones) Replace(owner string, cells []domain.Point) {
	for _, p := range z.ByOwner[owner] {
		if z.Owner[p] == owner {
			delete(z.Owner, p)
		}
	}
	z.ByOwner[owner] = append([]domain.Point(nil), cells...)
	for _, p := range cells {
		z.Owner[p] = owner
	}
}

// Restricted reports whether p lies inside any zone.
func (z *Zones) Restricted(p domain.Point) bool {
	_, ok := z.Owner[p]
	return ok
}

// Blackboard is the session-scoped store rules use to remember state between triggers.
// It is only touched while the owning session is locked.
type Blackboard struct {
	values map[string]any
}

// NewBlackboard returns an empty blackboard.
func NewBlackboard() *Blackboard {
	return &Blackboard{values: make(map[string]any)}
}

// Get reads a slot. The second result is false when the slot was never written.
func Get[T any](b *Blackboard, key Key[T]) (T, bool) {
	var zero T
	if b == nil {
		return zero, false
	}
	v, ok := b.values[string(key)]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Put writes a slot.
func Put[T any](b *Blackboard, key Key[T], value T) {
	b.values[string(key)] = value
}

// Delete clears a slot.
func Delete[T any](b *Blackboard, key Key[T]) {
	delete(b.values, string(key))
}

// Reset clears every slot; used when a board is set up again for a new game.
func (b *Blackboard) Reset() {
	clear(b.values)
}

// Len returns the number of populated slots.
func (b *Blackboard) Len() int { return len(b.values) }

// Engine-owned slots read by the session core.
var (
	WinLengthKey = Key[int]("engine:winLength")
	StartedAtKey = Key[time.Time]("engine:startedAt")
)

// WinLength returns the run length that wins the current game.
func WinLength(b *Blackboard) int {
	if n, ok := Get(b, WinLengthKey); ok && n > 0 {
		return n
	}
	return domain.DefaultWinLength
}
