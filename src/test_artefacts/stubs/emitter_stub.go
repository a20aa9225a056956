package stubs

import (
	"context"
	"sync"
)

type EmittedEvent struct {
	Topic   string
	Payload []any
}

// EmitterStub records every emitted event. OnEmit, when set, runs inside Emit.
type EmitterStub struct {
	mu     sync.Mutex
	events []EmittedEvent
	OnEmit func(topic string, payload []any)
}

func NewEmitterStub() *EmitterStub {
	return &EmitterStub{}
}

func (s *EmitterStub) Emit(_ context.Context, topic string, payload []any) {
	s.mu.Lock()
	s.events = append(s.events, EmittedEvent{Topic: topic, Payload: payload})
	s.mu.Unlock()

	if s.OnEmit != nil {
		s.OnEmit(topic, payload)
	}
}

func (s *EmitterStub) Events() []EmittedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmittedEvent(nil), s.events...)
}

func (s *EmitterStub) Topics() []string {
	events := s.Events()
	topics := make([]string, len(events))
	for i, event := range events {
		topics[i] = event.Topic
	}
	return topics
}
