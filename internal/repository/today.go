package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/storage"
)

// TodayRepository holds the singleton today-state record: the current
// date plus a taken flag per occurrence id.
type TodayRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewTodayRepository(store storage.Store) *TodayRepository {
	return &TodayRepository{store: store}
}

func (r *TodayRepository) Get(ctx context.Context) models.TodayState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(ctx)
}

func (r *TodayRepository) Save(ctx context.Context, state models.TodayState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSON(ctx, r.store, KeyToday, state)
}

// SetTaken flips one flag and returns the resulting state so the
// caller can mirror it into the history ledger. Read and write happen
// under the same lock.
func (r *TodayRepository) SetTaken(ctx context.Context, takeID string, taken bool, defaultDate string) (models.TodayState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.read(ctx)
	if state.Date == "" {
		state.Date = defaultDate
	}
	state.Taken[takeID] = taken
	if err := writeJSON(ctx, r.store, KeyToday, state); err != nil {
		return models.TodayState{}, err
	}
	return state, nil
}

// RemoveMedication drops every flag belonging to the medication.
func (r *TodayRepository) RemoveMedication(ctx context.Context, prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.read(ctx)
	cleaned := make(map[string]bool, len(state.Taken))
	for id, taken := range state.Taken {
		if !strings.HasPrefix(id, prefix) {
			cleaned[id] = taken
		}
	}
	state.Taken = cleaned
	return writeJSON(ctx, r.store, KeyToday, state)
}

func (r *TodayRepository) read(ctx context.Context) models.TodayState {
	state := readJSON(ctx, r.store, KeyToday, models.TodayState{Taken: map[string]bool{}})
	if state.Taken == nil {
		state.Taken = map[string]bool{}
	}
	return state
}
