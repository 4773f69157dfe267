package runtime

import (
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain/event"
)

// Registry maps a user identity to its single live sink. It is the
// liveness source of truth for fan-out; room membership is durable data
// and never lives here.
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu       sync.RWMutex
	log      *slog.Logger
	sessions map[string]contract.EventSink
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:      log,
		sessions: make(map[string]contract.EventSink),
	}
}

// Register installs the sink for a user, superseding and closing any
// previous one. Last registered wins: there is no multi-device fan-out.
func (r *Registry) Register(userID string, sink contract.EventSink) {
	r.mu.Lock()
	prev := r.sessions[userID]
	r.sessions[userID] = sink
	r.mu.Unlock()

	if prev != nil && prev != sink {
		r.log.Debug("superseding existing connection", "user_id", userID)
		prev.Close()
	}
}

// Unregister removes the user's entry only if it still identifies the
// same sink instance, so a stale disconnect cannot evict a newer
// connection.
func (r *Registry) Unregister(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[userID]; ok && current == sink {
		delete(r.sessions, userID)
	}
}

func (r *Registry) Lookup(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, ok := r.sessions[userID]
	return sink, ok
}

// Send delivers best-effort: an absent user is a no-op, and a sink that
// refuses the event is treated as an offline recipient, deregistered and
// closed. It never blocks on a slow peer.
func (r *Registry) Send(userID string, e event.Outbound) {
	sink, ok := r.Lookup(userID)
	if !ok {
		return
	}
	if err := sink.Consume(e); err != nil {
		r.log.Debug("dropping unresponsive connection",
			"user_id", userID,
			"error", err)
		r.Unregister(userID, sink)
		sink.Close()
	}
}

func (r *Registry) SendAll(userIDs []string, e event.Outbound) {
	for _, userID := range userIDs {
		r.Send(userID, e)
	}
}
