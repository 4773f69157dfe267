package ws

import (
	"sync"

	"chat-relay/domain/event"
	apperrors "chat-relay/errors"
)

// Sink buffers outbound events for one connection. Consume never blocks:
// a full buffer means the peer is too slow and the registry will treat it
// as offline.
type Sink struct {
	mu     sync.Mutex
	closed bool
	out    chan event.Outbound
}

func NewSink(buffer int) *Sink {
	return &Sink{out: make(chan event.Outbound, buffer)}
}

func (s *Sink) Consume(e event.Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.ErrSinkClosed
	}
	select {
	case s.out <- e:
		return nil
	default:
		return apperrors.ErrSinkFull
	}
}

// Close is idempotent and safe to race with Consume.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.out)
	}
}

// Events exposes the buffered stream to the connection's write pump. The
// channel closes when the sink does.
func (s *Sink) Events() <-chan event.Outbound {
	return s.out
}
