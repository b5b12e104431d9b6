package dispatch

import (
	"context"
	"sync"
)

// Recorder is an in-process Dispatcher for tests. It accepts every request and
// remembers it, optionally running a hook that plays the responder.
type Recorder struct {
	mu       sync.Mutex
	requests []OracleRequest
	err      error
	hook     func(ctx context.Context, req OracleRequest) error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Dispatch(ctx context.Context, req OracleRequest) error {
	r.mu.Lock()
	if r.err != nil {
		err := r.err
		r.mu.Unlock()
		return err
	}
	r.requests = append(r.requests, req)
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		return hook(ctx, req)
	}
	return nil
}

// OnDispatch runs fn for every accepted request before Dispatch returns.
// The error fn returns becomes the dispatch result.
func (r *Recorder) OnDispatch(fn func(ctx context.Context, req OracleRequest) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = fn
}

// FailWith makes subsequent dispatches fail with err; nil restores success.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Requests returns a copy of every accepted request in order.
func (r *Recorder) Requests() []OracleRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OracleRequest(nil), r.requests...)
}
