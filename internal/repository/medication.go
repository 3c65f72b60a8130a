package repository

import (
	"context"
	"sync"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/storage"
)

type MedicationRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewMedicationRepository(store storage.Store) *MedicationRepository {
	return &MedicationRepository{store: store}
}

func (r *MedicationRepository) List(ctx context.Context) []models.Medication {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAll(ctx)
}

func (r *MedicationRepository) Get(ctx context.Context, id string) (*models.Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.readAll(ctx) {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MedicationRepository) Add(ctx context.Context, med models.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	meds := r.readAll(ctx)
	meds = append(meds, med)
	return writeJSON(ctx, r.store, KeyMedications, meds)
}

// Update applies a mutation to the stored medication under the
// repository lock. Returns ErrNotFound when the id is unknown.
func (r *MedicationRepository) Update(ctx context.Context, id string, apply func(*models.Medication)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	meds := r.readAll(ctx)
	for i := range meds {
		if meds[i].ID == id {
			apply(&meds[i])
			return writeJSON(ctx, r.store, KeyMedications, meds)
		}
	}
	return ErrNotFound
}

func (r *MedicationRepository) SetPaused(ctx context.Context, id string, paused bool) error {
	return r.Update(ctx, id, func(m *models.Medication) { m.Paused = paused })
}

// Delete removes the medication record only. Cascading cleanup of the
// today-state and the history ledger is the tracker's job.
func (r *MedicationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	meds := r.readAll(ctx)
	kept := meds[:0]
	found := false
	for _, m := range meds {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return ErrNotFound
	}
	return writeJSON(ctx, r.store, KeyMedications, kept)
}

func (r *MedicationRepository) readAll(ctx context.Context) []models.Medication {
	return readJSON(ctx, r.store, KeyMedications, []models.Medication{})
}
