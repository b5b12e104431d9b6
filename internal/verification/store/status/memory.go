package status

import (
	"context"
	"sync"

	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
	"bridgeid/pkg/platform/sentinel"
)

// InMemory keeps the subject status table in memory.
type InMemory struct {
	mu       sync.RWMutex
	statuses map[id.SubjectID]models.SubjectStatus
}

func NewInMemory() *InMemory {
	return &InMemory{statuses: make(map[id.SubjectID]models.SubjectStatus)}
}

// Set overwrites the subject's status unconditionally.
func (s *InMemory) Set(_ context.Context, status models.SubjectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.SubjectID] = status
	return nil
}

// Find returns sentinel.ErrNotFound for subjects that were never fulfilled.
func (s *InMemory) Find(_ context.Context, subjectID id.SubjectID) (models.SubjectStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[subjectID]
	if !ok {
		return models.SubjectStatus{}, sentinel.ErrNotFound
	}
	return st, nil
}
