package repository

import (
	"context"
	"sync"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/storage"
)

type SettingsRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewSettingsRepository(store storage.Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

func (r *SettingsRepository) Get(ctx context.Context) models.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return readJSON(ctx, r.store, KeySettings, models.DefaultSettings())
}

func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSON(ctx, r.store, KeySettings, settings)
}

// Update merges a partial change over the stored record under the lock.
func (r *SettingsRepository) Update(ctx context.Context, apply func(*models.Settings)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings := readJSON(ctx, r.store, KeySettings, models.DefaultSettings())
	apply(&settings)
	return writeJSON(ctx, r.store, KeySettings, settings)
}
