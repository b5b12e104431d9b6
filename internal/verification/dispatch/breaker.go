package dispatch

import (
	"context"
	"log/slog"

	"bridgeid/pkg/platform/circuit"
)

// BreakerObserver receives circuit state changes, typically to update metrics.
type BreakerObserver interface {
	SetCircuitOpen(open bool)
}

// Guarded wraps a Dispatcher with a circuit breaker so an unreachable responder
// fails requests fast instead of holding transactions open until timeout.
type Guarded struct {
	next     Dispatcher
	breaker  *circuit.Breaker
	logger   *slog.Logger
	observer BreakerObserver
}

func NewGuarded(next Dispatcher, breaker *circuit.Breaker, logger *slog.Logger, observer BreakerObserver) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{next: next, breaker: breaker, logger: logger, observer: observer}
}

func (g *Guarded) Dispatch(ctx context.Context, req OracleRequest) error {
	if !g.breaker.Allow() {
		return NewDispatchError(ErrorCircuitOpen, "responder circuit open", 0, nil)
	}

	err := g.next.Dispatch(ctx, req)
	if err != nil && isTransient(err) {
		if change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "responder circuit opened",
				"breaker", g.breaker.Name(),
				"error", err,
			)
			g.notify(true)
		}
		return err
	}

	// Permanent rejections prove the responder is reachable.
	if change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "responder circuit closed", "breaker", g.breaker.Name())
		g.notify(false)
	}
	return err
}

func (g *Guarded) notify(open bool) {
	if g.observer != nil {
		g.observer.SetCircuitOpen(open)
	}
}
