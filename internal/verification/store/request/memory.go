package request

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
	"bridgeid/pkg/platform/sentinel"
)

// InMemory stores verification requests in memory for development and tests.
type InMemory struct {
	mu       sync.RWMutex
	requests map[id.CorrelationID]*models.Request
	nonce    uint64
}

func NewInMemory() *InMemory {
	return &InMemory{
		requests: make(map[id.CorrelationID]*models.Request),
	}
}

// NextNonce returns a strictly increasing counter value, starting at 1.
func (s *InMemory) NextNonce(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce++
	return s.nonce, nil
}

func (s *InMemory) Exists(_ context.Context, correlationID id.CorrelationID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.requests[correlationID]
	return ok, nil
}

// Create inserts a new request. An existing correlation ID is never overwritten.
func (s *InMemory) Create(_ context.Context, req *models.Request) error {
	if req == nil {
		return fmt.Errorf("request is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.CorrelationID]; exists {
		return fmt.Errorf("correlation ID %s: %w", req.CorrelationID, sentinel.ErrAlreadyUsed)
	}
	s.requests[req.CorrelationID] = req.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, correlationID id.CorrelationID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if req, ok := s.requests[correlationID]; ok {
		return req.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByIDForUpdate is FindByID; the in-memory transaction already serializes writers.
func (s *InMemory) FindByIDForUpdate(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error) {
	return s.FindByID(ctx, correlationID)
}

// Update replaces a stored request. Only a pending request may be replaced.
func (s *InMemory) Update(_ context.Context, req *models.Request) error {
	if req == nil {
		return fmt.Errorf("request is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.requests[req.CorrelationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !existing.IsPending() {
		return fmt.Errorf("request %s is final: %w", req.CorrelationID, sentinel.ErrInvalidState)
	}
	s.requests[req.CorrelationID] = req.Clone()
	return nil
}

// DeletePending removes a request that is still pending.
func (s *InMemory) DeletePending(_ context.Context, correlationID id.CorrelationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.requests[correlationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !existing.IsPending() {
		return fmt.Errorf("request %s is final: %w", correlationID, sentinel.ErrInvalidState)
	}
	delete(s.requests, correlationID)
	return nil
}

// CountPendingCreatedBefore counts pending requests older than cutoff.
func (s *InMemory) CountPendingCreatedBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, req := range s.requests {
		if req.IsPending() && req.CreatedAt.Before(cutoff) {
			n++
		}
	}
	return n, nil
}
