package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"collegedesk/pkg/requestcontext"
)

type PublisherSuite struct {
	suite.Suite
	sink      *InMemorySink
	publisher *Publisher
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.sink = NewInMemorySink()
	s.publisher = NewPublisher(s.sink)
}

func (s *PublisherSuite) TestEmitStampsMissingFields() {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	ctx = requestcontext.WithTime(ctx, at)

	err := s.publisher.Emit(ctx, Event{Phone: "5551234567", Action: ActionSave})
	s.Require().NoError(err)

	events := s.sink.ListByPhone(ctx, "5551234567")
	s.Require().Len(events, 1)
	s.NotEmpty(events[0].ID)
	s.Equal(at, events[0].Timestamp)
	s.Equal("req-42", events[0].RequestID)
}

func (s *PublisherSuite) TestEmitKeepsCallerValues() {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := Event{
		ID:        "evt-7",
		Timestamp: at,
		Phone:     "5551234567",
		Action:    ActionAppendFact,
		RequestID: "req-7",
	}

	err := s.publisher.Emit(context.Background(), event)
	s.Require().NoError(err)

	events := s.sink.ListByPhone(context.Background(), "5551234567")
	s.Require().Len(events, 1)
	s.Equal(event, events[0])
}

func (s *PublisherSuite) TestListByPhoneFilters() {
	ctx := context.Background()
	s.Require().NoError(s.publisher.Emit(ctx, Event{Phone: "5551110000", Action: ActionSave}))
	s.Require().NoError(s.publisher.Emit(ctx, Event{Phone: "5552220000", Action: ActionSave}))
	s.Require().NoError(s.publisher.Emit(ctx, Event{Phone: "5551110000", Action: ActionUpdateOrder}))

	events := s.sink.ListByPhone(ctx, "5551110000")
	s.Require().Len(events, 2)
	s.Equal(ActionSave, events[0].Action)
	s.Equal(ActionUpdateOrder, events[1].Action)
}
