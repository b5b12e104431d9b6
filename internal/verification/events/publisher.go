// Package events fans committed protocol events out to the configured sinks.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"bridgeid/internal/verification/models"
)

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event models.Event) error
}

// FailureRecorder is notified when a sink rejects an event.
type FailureRecorder interface {
	IncrementPublishFailure(sink string, kind models.EventKind)
}

// Publisher delivers events to every sink. Delivery failures never reach the
// caller: state has already committed by the time an event is emitted.
type Publisher struct {
	sinks    []Sink
	logger   *slog.Logger
	failures FailureRecorder
	events   chan models.Event
	wg       sync.WaitGroup
	async    bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer queues events and delivers them from a background goroutine.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan models.Event, size)
			p.async = true
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithFailureRecorder(r FailureRecorder) Option {
	return func(p *Publisher) {
		p.failures = r
	}
}

func NewPublisher(sinks []Sink, opts ...Option) *Publisher {
	p := &Publisher{sinks: sinks, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.async {
		p.wg.Add(1)
		go p.process()
	}
	return p
}

func (p *Publisher) process() {
	defer p.wg.Done()
	for event := range p.events {
		_ = p.deliver(context.Background(), event)
	}
}

// Emit hands the event to the sinks. In async mode a full buffer drops the event.
func (p *Publisher) Emit(ctx context.Context, event models.Event) {
	if !p.async {
		_ = p.deliver(ctx, event)
		return
	}
	select {
	case p.events <- event:
	default:
		p.logger.WarnContext(ctx, "event buffer full, event dropped", "kind", event.Kind)
		p.recordFailure("buffer", event.Kind)
	}
}

// deliver publishes to every sink and joins the failures.
func (p *Publisher) deliver(ctx context.Context, event models.Event) error {
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish event",
				"sink", sink.Name(),
				"kind", event.Kind,
				"error", err,
			)
			p.recordFailure(sink.Name(), event.Kind)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) recordFailure(sink string, kind models.EventKind) {
	if p.failures != nil {
		p.failures.IncrementPublishFailure(sink, kind)
	}
}

// Close drains queued events and waits for delivery to finish.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}
