package nakama

import (
	"context"
	"fmt"
	"sync"

	"omok/internal/ports"
)

// Outbox implements ports.Messenger for authoritative matches. Sessions publish from
// RPCs and timer goroutines, so messages are queued per session and flushed by the
// owning match on its next tick.
type Outbox struct {
	mu      sync.Mutex
	matches map[string]string
	queues  map[string][]ports.Message
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{
		matches: make(map[string]string),
		queues:  make(map[string][]ports.Message),
	}
}

// Bind routes sessionID's messages to matchID.
func (o *Outbox) Bind(sessionID, matchID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.matches[sessionID] = matchID
}

// Unbind drops the session's route and any undelivered messages.
func (o *Outbox) Unbind(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.matches, sessionID)
	delete(o.queues, sessionID)
}

// MatchID returns the match bound to sessionID.
func (o *Outbox) MatchID(sessionID string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id, ok := o.matches[sessionID]
	return id, ok
}

// Deliver queues msg for the match bound to sessionID.
func (o *Outbox) Deliver(ctx context.Context, sessionID string, msg ports.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.matches[sessionID]; !ok {
		return fmt.Errorf("no match bound to session %s", sessionID)
	}
	o.queues[sessionID] = append(o.queues[sessionID], msg)
	return nil
}

// Drain removes and returns the session's queued messages in delivery order.
func (o *Outbox) Drain(sessionID string) []ports.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.queues[sessionID]
	delete(o.queues, sessionID)
	return out
}

var _ ports.Messenger = (*Outbox)(nil)
