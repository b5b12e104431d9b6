package settings

import (
	"context"
	"fmt"
	"sync"

	"bridgeid/internal/verification/models"
	"bridgeid/pkg/platform/sentinel"
)

// InMemory holds the single settings record in memory.
type InMemory struct {
	mu       sync.RWMutex
	settings *models.Settings
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

// Initialize stores s only if no settings exist yet and reports whether it did.
func (m *InMemory) Initialize(_ context.Context, s *models.Settings) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("settings are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings != nil {
		return false, nil
	}
	m.settings = s.Clone()
	return true, nil
}

func (m *InMemory) Load(_ context.Context) (*models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, sentinel.ErrNotFound
	}
	return m.settings.Clone(), nil
}

// LoadForUpdate is Load; the in-memory transaction already serializes writers.
func (m *InMemory) LoadForUpdate(ctx context.Context) (*models.Settings, error) {
	return m.Load(ctx)
}

func (m *InMemory) Save(_ context.Context, s *models.Settings) error {
	if s == nil {
		return fmt.Errorf("settings are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return sentinel.ErrNotFound
	}
	m.settings = s.Clone()
	return nil
}
