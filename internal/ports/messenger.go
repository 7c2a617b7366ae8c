package ports

import "context"

// Message is a session notice in transport-neutral form.
type Message struct {
	Kind string
	// Fields holds protobuf Struct compatible values only.
	Fields map[string]interface{}
	// Recipients are user IDs; empty means every participant of the session.
	Recipients []string
}

// Messenger delivers session notices to connected clients.
type Messenger interface {
	// Deliver queues msg for the clients of sessionID.
	// Returns an error if the session has no transport bound or delivery fails.
	Deliver(ctx context.Context, sessionID string, msg Message) error
}
