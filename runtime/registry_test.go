package runtime

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
	apperrors "chat-relay/errors"
)

// captureSink records delivered events in memory for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []event.Outbound
	closed bool
	fail   bool
}

func (s *captureSink) Consume(e event.Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return apperrors.ErrSinkFull
	}
	if s.closed {
		return apperrors.ErrSinkClosed
	}
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *captureSink) Events() []event.Outbound {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Outbound(nil), s.events...)
}

func (s *captureSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func Test_Register_Supersedes_And_Closes_Previous(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	first := &captureSink{}
	second := &captureSink{}
	registry.Register("alice", first)
	registry.Register("alice", second)

	req.True(first.Closed(), "superseded sink must be closed")
	req.False(second.Closed())

	registry.Send("alice", event.Error("ping"))
	req.Empty(first.Events())
	req.Len(second.Events(), 1)
}

func Test_Stale_Unregister_Keeps_Newer_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	stale := &captureSink{}
	fresh := &captureSink{}
	registry.Register("alice", stale)
	registry.Register("alice", fresh)

	// the stale connection's deferred cleanup fires after replacement
	registry.Unregister("alice", stale)

	current, ok := registry.Lookup("alice")
	req.True(ok)
	req.Same(fresh, current.(*captureSink))
}

func Test_Send_To_Absent_User_Is_Noop(t *testing.T) {
	registry := NewRegistry(slog.Default())
	registry.Send("nobody", event.Error("lost"))
}

func Test_Failing_Sink_Is_Deregistered_And_Closed(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	broken := &captureSink{fail: true}
	registry.Register("alice", broken)
	registry.Send("alice", event.Error("ping"))

	req.True(broken.Closed())
	_, ok := registry.Lookup("alice")
	req.False(ok, "a blocked peer counts as offline")
}

func Test_SendAll_Skips_Offline_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	online := &captureSink{}
	registry.Register("alice", online)

	registry.SendAll([]string{"alice", "bob"}, event.Error("fanout"))
	req.Len(online.Events(), 1)
}
