package rules

import "sort"

// Capabilities are optional hooks a rule exposes beyond Invoke. A nil hook means the
// rule does not have the capability.
type Capabilities struct {
	// ReorderTurns may reseed the turn order; it reports whether it did.
	ReorderTurns func(*Runtime) bool
	// AdjustTiming may change the turn duration; it reports whether it did.
	AdjustTiming func(*Runtime) bool
	// TransformSnapshot rewrites an outbound board snapshot.
	TransformSnapshot func(*Blackboard, []byte) []byte
	// ValidateMove may reject a move before it is placed.
	ValidateMove func(*Runtime) Status
	// ResolveOutcome receives the candidate so far and returns the candidate to pass on.
	ResolveOutcome func(*Runtime, *OutcomeResolution) *OutcomeResolution
	// SetupBoard prepares the board when a game starts; it reports whether it wrote anything.
	SetupBoard func(*Runtime) bool
}

// Descriptor is one rule of the catalogue.
type Descriptor struct {
	ID ID
	// LimitScore is the lowest participant score at which the rule may be selected.
	LimitScore int
	// Priority orders dispatch; lower runs first.
	Priority int
	Invoke   func(*Runtime)
	Capabilities
}

// Set is the rules context of one session: the selected descriptors in dispatch
// order plus the session's blackboard.
type Set struct {
	descriptors []Descriptor
	data        *Blackboard
}

// NewSet sorts descriptors into dispatch order and attaches a fresh blackboard.
func NewSet(descriptors []Descriptor) *Set {
	sorted := append([]Descriptor(nil), descriptors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &Set{descriptors: sorted, data: NewBlackboard()}
}

// Descriptors returns the selected rules in dispatch order.
func (s *Set) Descriptors() []Descriptor {
	if s == nil {
		return nil
	}
	return append([]Descriptor(nil), s.descriptors...)
}

// IDs returns the selected rule ids in dispatch order.
func (s *Set) IDs() []ID {
	if s == nil {
		return nil
	}
	out := make([]ID, len(s.descriptors))
	for i, d := range s.descriptors {
		out[i] = d.ID
	}
	return out
}

// Data returns the session blackboard.
func (s *Set) Data() *Blackboard {
	if s == nil {
		return nil
	}
	return s.data
}

// Has reports whether the rule with the given id is selected.
func (s *Set) Has(id ID) bool {
	if s == nil {
		return false
	}
	for _, d := range s.descriptors {
		if d.ID == id {
			return true
		}
	}
	return false
}
