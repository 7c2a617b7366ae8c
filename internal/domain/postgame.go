package domain

import "time"

// DefaultDecisionWindow is how long participants have to choose after a game.
const DefaultDecisionWindow = 30 * time.Second

// Decision is a participant's post-game choice.
type Decision string

const (
	DecisionRematch Decision = "REMATCH"
	DecisionLeave   Decision = "LEAVE"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionRematch || d == DecisionLeave
}

// PostGame records each participant's decision exactly once.
type PostGame struct {
	userIDs   []string
	decisions map[string]Decision
	deadline  time.Time
}

// NewPostGame creates an empty decision store.
func NewPostGame(userIDs []string) *PostGame {
	return &PostGame{
		userIDs:   append([]string(nil), userIDs...),
		decisions: make(map[string]Decision),
	}
}

// Open clears previous decisions and sets the deadline.
func (p *PostGame) Open(deadline time.Time) {
	p.decisions = make(map[string]Decision)
	p.deadline = deadline
}

// Deadline returns the decision deadline.
func (p *PostGame) Deadline() time.Time { return p.deadline }

// WindowClosed reports whether now is past the deadline.
func (p *PostGame) WindowClosed(now time.Time) bool {
	return !p.deadline.IsZero() && now.After(p.deadline)
}

// Record stores a participant's decision if none exists yet and reports whether it was stored.
func (p *PostGame) Record(userID string, d Decision) bool {
	if !p.contains(userID) || !d.Valid() {
		return false
	}
	if _, done := p.decisions[userID]; done {
		return false
	}
	p.decisions[userID] = d
	return true
}

// Has reports whether userID already decided.
func (p *PostGame) Has(userID string) bool {
	_, ok := p.decisions[userID]
	return ok
}

// For returns userID's decision and whether one exists.
func (p *PostGame) For(userID string) (Decision, bool) {
	d, ok := p.decisions[userID]
	return d, ok
}

// AllDecided reports whether every participant has decided.
func (p *PostGame) AllDecided() bool {
	for _, id := range p.userIDs {
		if _, ok := p.decisions[id]; !ok {
			return false
		}
	}
	return true
}

// Undecided lists participants without a decision in play order.
func (p *PostGame) Undecided() []string {
	var out []string
	for _, id := range p.userIDs {
		if _, ok := p.decisions[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// RematchUserIDs lists participants who chose REMATCH in play order.
func (p *PostGame) RematchUserIDs() []string {
	var out []string
	for _, id := range p.userIDs {
		if p.decisions[id] == DecisionRematch {
			out = append(out, id)
		}
	}
	return out
}

// Snapshot copies the decision map.
func (p *PostGame) Snapshot() map[string]Decision {
	out := make(map[string]Decision, len(p.decisions))
	for id, d := range p.decisions {
		out[id] = d
	}
	return out
}

func (p *PostGame) contains(userID string) bool {
	for _, id := range p.userIDs {
		if id == userID {
			return true
		}
	}
	return false
}
