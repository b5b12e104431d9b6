// Package registry issues correlation IDs and enforces the pending to fulfilled
// lifecycle of verification requests.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
	dErrors "bridgeid/pkg/domain-errors"
	"bridgeid/pkg/platform/sentinel"
)

// maxAllocateAttempts bounds retries when a derived ID is already taken.
const maxAllocateAttempts = 3

// Store is the persistence contract the registry needs.
type Store interface {
	NextNonce(ctx context.Context) (uint64, error)
	Exists(ctx context.Context, correlationID id.CorrelationID) (bool, error)
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error)
	FindByIDForUpdate(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error)
	Update(ctx context.Context, req *models.Request) error
	DeletePending(ctx context.Context, correlationID id.CorrelationID) error
}

// Registry operates on a Store for the duration of one transaction.
type Registry struct {
	store    Store
	instance common.Address
	now      func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New binds a registry to store. instance seeds every correlation ID it derives.
func New(store Store, instance common.Address, opts ...Option) *Registry {
	r := &Registry{store: store, instance: instance, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Prepare builds a pending request under a correlation ID that has never been issued.
// The request is not stored until Record is called.
func (r *Registry) Prepare(ctx context.Context, draft models.Draft, cfg models.ResponderConfig) (*models.Request, error) {
	now := r.now()
	for range maxAllocateAttempts {
		nonce, err := r.store.NextNonce(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate request nonce")
		}
		correlationID := DeriveCorrelationID(r.instance, nonce, now)
		taken, err := r.store.Exists(ctx, correlationID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check correlation ID")
		}
		if taken {
			continue
		}
		return models.NewRequest(correlationID, draft, cfg, now)
	}
	return nil, dErrors.New(dErrors.CodeInternal, "failed to allocate a unique correlation ID")
}

// Record stores a prepared request as pending.
func (r *Registry) Record(ctx context.Context, req *models.Request) error {
	if err := r.store.Create(ctx, req); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "correlation ID already issued")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification request")
	}
	return nil
}

// CreateRequest prepares and records a request in one step.
func (r *Registry) CreateRequest(ctx context.Context, draft models.Draft, cfg models.ResponderConfig) (*models.Request, error) {
	req, err := r.Prepare(ctx, draft, cfg)
	if err != nil {
		return nil, err
	}
	if err := r.Record(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// MarkFulfilled is the single anti-replay point: it flips a pending request to
// fulfilled and returns it, failing with CodeUnknownRequest or CodeAlreadyFulfilled.
func (r *Registry) MarkFulfilled(ctx context.Context, correlationID id.CorrelationID, result models.ResultCode, by common.Address) (*models.Request, error) {
	req, err := r.store.FindByIDForUpdate(ctx, correlationID)
	if err != nil {
		return nil, wrapRequestErr(err, "failed to load verification request")
	}
	if err := req.Fulfill(result, by, r.now()); err != nil {
		return nil, err
	}
	if err := r.store.Update(ctx, req); err != nil {
		return nil, wrapRequestErr(err, "failed to mark request fulfilled")
	}
	return req, nil
}

// Discard withdraws a request the responder never accepted. A request that was
// fulfilled in the meantime is kept and reported as CodeAlreadyFulfilled.
func (r *Registry) Discard(ctx context.Context, correlationID id.CorrelationID) error {
	if err := r.store.DeletePending(ctx, correlationID); err != nil {
		return wrapRequestErr(err, "failed to discard verification request")
	}
	return nil
}

// Get returns the stored request for audit lookups.
func (r *Registry) Get(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error) {
	req, err := r.store.FindByID(ctx, correlationID)
	if err != nil {
		return nil, wrapRequestErr(err, "failed to load verification request")
	}
	return req, nil
}

func wrapRequestErr(err error, action string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeUnknownRequest, "verification request not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeAlreadyFulfilled, "verification request already fulfilled")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}
