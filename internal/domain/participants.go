package domain

// Participants holds readiness and connectivity for a fixed list of users.
type Participants struct {
	userIDs      []string
	index        map[string]int
	ready        map[string]bool
	disconnected map[string]bool
}

// NewParticipants copies userIDs; the list is fixed for the lifetime of the value.
func NewParticipants(userIDs []string) *Participants {
	p := &Participants{
		userIDs:      append([]string(nil), userIDs...),
		index:        make(map[string]int, len(userIDs)),
		ready:        make(map[string]bool, len(userIDs)),
		disconnected: make(map[string]bool),
	}
	for i, id := range p.userIDs {
		p.index[id] = i
	}
	return p
}

// UserIDs returns the participants in play order.
func (p *Participants) UserIDs() []string {
	return append([]string(nil), p.userIDs...)
}

// Count returns the number of participants.
func (p *Participants) Count() int { return len(p.userIDs) }

// Contains reports whether userID is a participant.
func (p *Participants) Contains(userID string) bool {
	_, ok := p.index[userID]
	return ok
}

// IndexOf returns the play order index of userID, or -1.
func (p *Participants) IndexOf(userID string) int {
	if i, ok := p.index[userID]; ok {
		return i
	}
	return -1
}

// MarkReady flags userID as ready and reports whether the flag changed.
func (p *Participants) MarkReady(userID string) bool {
	if !p.Contains(userID) || p.ready[userID] {
		return false
	}
	p.ready[userID] = true
	return true
}

// IsReady reports userID's ready flag.
func (p *Participants) IsReady(userID string) bool { return p.ready[userID] }

// AllReady reports whether every participant is ready.
func (p *Participants) AllReady() bool {
	for _, id := range p.userIDs {
		if !p.ready[id] {
			return false
		}
	}
	return len(p.userIDs) > 0
}

// ReadyUserIDs lists ready participants in play order.
func (p *Participants) ReadyUserIDs() []string {
	var out []string
	for _, id := range p.userIDs {
		if p.ready[id] {
			out = append(out, id)
		}
	}
	return out
}

// SetDisconnected updates the connectivity flag of a participant.
// Unknown users are ignored so the set stays a subset of the participants.
func (p *Participants) SetDisconnected(userID string, disconnected bool) bool {
	if !p.Contains(userID) || p.disconnected[userID] == disconnected {
		return false
	}
	if disconnected {
		p.disconnected[userID] = true
	} else {
		delete(p.disconnected, userID)
	}
	return true
}

// IsDisconnected reports userID's connectivity flag.
func (p *Participants) IsDisconnected(userID string) bool { return p.disconnected[userID] }

// Disconnected returns a copy of the disconnected set.
func (p *Participants) Disconnected() map[string]bool {
	out := make(map[string]bool, len(p.disconnected))
	for id := range p.disconnected {
		out[id] = true
	}
	return out
}

// DisconnectedUserIDs lists disconnected participants in play order.
func (p *Participants) DisconnectedUserIDs() []string {
	var out []string
	for _, id := range p.userIDs {
		if p.disconnected[id] {
			out = append(out, id)
		}
	}
	return out
}

// ConnectedUserIDs lists connected participants in play order.
func (p *Participants) ConnectedUserIDs() []string {
	var out []string
	for _, id := range p.userIDs {
		if !p.disconnected[id] {
			out = append(out, id)
		}
	}
	return out
}

// ConnectedCount returns the number of connected participants.
func (p *Participants) ConnectedCount() int {
	return len(p.userIDs) - len(p.disconnected)
}
