package events

import (
	"context"
	"sync"

	"bridgeid/internal/verification/models"
)

// Log is an in-memory sink that keeps every event in emission order.
type Log struct {
	mu     sync.RWMutex
	events []models.Event
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Name() string { return "memory" }

func (l *Log) Publish(_ context.Context, event models.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// All returns a copy of the recorded events.
func (l *Log) All() []models.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.Event(nil), l.events...)
}

// OfKind returns the recorded events of one kind.
func (l *Log) OfKind(kind models.EventKind) []models.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []models.Event
	for _, ev := range l.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}
