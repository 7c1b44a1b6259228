package service

import (
	"context"
	"log"
)

// EventEmitter decouples services from whatever transport delivers job
// events (SSE, logs, a test recorder). Services receive this interface
// so they stay independently testable.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// LogEmitter is the default emitter: events go to the process log. A
// real transport can be swapped in without touching the services.
type LogEmitter struct{}

func (LogEmitter) Emit(_ context.Context, event string, data any) {
	log.Printf("event %s: %v", event, data)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
