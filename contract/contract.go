package contract

import "chat-relay/domain/event"

// EventSink is one client's outbound channel. Consume must never block:
// implementations report a full or closed sink through the error and let
// the caller decide to drop the connection.
type EventSink interface {
	Consume(e event.Outbound) error
	Close()
}

// Registry is the liveness source of truth for fan-out. A user holds at
// most one live sink; registering again supersedes the previous one.
type Registry interface {
	Register(userID string, sink EventSink)
	Unregister(userID string, sink EventSink)
	Lookup(userID string) (EventSink, bool)
	Send(userID string, e event.Outbound)
	SendAll(userIDs []string, e event.Outbound)
}
