package service

import (
	"context"
	"sync"
	"time"

	dErrors "bridgeid/pkg/domain-errors"
)

// Stores groups the stores a transaction operates on.
type Stores struct {
	Requests RequestStore
	Statuses StatusStore
	Settings SettingsStore
}

// StoreTx provides the atomic boundary for one protocol transition.
// Implementations may wrap a database transaction or, in-memory, a coarse lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

const defaultTxTimeout = 5 * time.Second

// inMemoryStoreTx serializes every transition behind one lock. In-memory
// stores cannot roll back, so fn must not write before its last failure point.
type inMemoryStoreTx struct {
	mu      sync.Mutex
	stores  Stores
	timeout time.Duration
}

// NewInMemoryTx returns a single-writer StoreTx over in-memory stores.
func NewInMemoryTx(stores Stores) StoreTx {
	return &inMemoryStoreTx{stores: stores}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.stores)
}
