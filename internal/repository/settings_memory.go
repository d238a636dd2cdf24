package repository

import (
	"context"
	"sync"
)

type memorySettingsRepository struct {
	mu       sync.Mutex
	settings IntegrationSettings
}

// NewMemorySettingsRepository keeps settings in process memory.
func NewMemorySettingsRepository() SettingsRepository {
	return &memorySettingsRepository{}
}

func (r *memorySettingsRepository) Load(ctx context.Context) (IntegrationSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings, nil
}

func (r *memorySettingsRepository) Save(ctx context.Context, settings IntegrationSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = settings
	return nil
}
