// Package audit records who changed which college document and when.
//
// Writes are fail-open: the user-facing operation never fails because an
// audit sink is down. Callers log emit errors and move on.
package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"collegedesk/pkg/requestcontext"
)

// Sink receives audit events. Implementations must be safe for concurrent
// use.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and forwards audit events to a sink.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// Emit fills in ID, timestamp and request correlation, then appends the
// event to the sink.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return p.sink.Append(ctx, event)
}

// InMemorySink keeps events in memory. Default sink, also used by tests.
type InMemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByPhone returns events for one phone number in append order.
func (s *InMemorySink) ListByPhone(_ context.Context, phone string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, event := range s.events {
		if event.Phone == phone {
			out = append(out, event)
		}
	}
	return out
}

var _ Sink = (*InMemorySink)(nil)
