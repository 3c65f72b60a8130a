package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/storage"
)

// HistoryRepository holds the history ledger: taken flags per date for
// every date ever touched. Dates accumulate; Prune bounds the growth.
type HistoryRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewHistoryRepository(store storage.Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

func (r *HistoryRepository) Ledger(ctx context.Context) models.HistoryLedger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(ctx)
}

func (r *HistoryRepository) ForDate(ctx context.Context, dateISO string) map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := r.read(ctx)[dateISO]
	if day == nil {
		return map[string]bool{}
	}
	return day
}

// SaveDay overwrites one date's entry with the given flags. The
// today-state map is authoritative for its date, so this is a full
// replacement, not a merge.
func (r *HistoryRepository) SaveDay(ctx context.Context, dateISO string, taken map[string]bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger := r.read(ctx)
	entry := make(map[string]bool, len(taken))
	for id, v := range taken {
		entry[id] = v
	}
	ledger[dateISO] = entry
	return writeJSON(ctx, r.store, KeyHistory, ledger)
}

// RemoveMedication drops the medication's occurrence ids from every
// date entry.
func (r *HistoryRepository) RemoveMedication(ctx context.Context, prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger := r.read(ctx)
	for date, day := range ledger {
		cleaned := make(map[string]bool, len(day))
		for id, taken := range day {
			if !strings.HasPrefix(id, prefix) {
				cleaned[id] = taken
			}
		}
		ledger[date] = cleaned
	}
	return writeJSON(ctx, r.store, KeyHistory, ledger)
}

// Prune deletes entries for dates strictly before cutoffISO. It never
// touches the today-state or the medications.
func (r *HistoryRepository) Prune(ctx context.Context, cutoffISO string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger := r.read(ctx)
	kept := models.HistoryLedger{}
	for date, day := range ledger {
		if date >= cutoffISO {
			kept[date] = day
		}
	}
	return writeJSON(ctx, r.store, KeyHistory, kept)
}

func (r *HistoryRepository) read(ctx context.Context) models.HistoryLedger {
	ledger := readJSON(ctx, r.store, KeyHistory, models.HistoryLedger{})
	if ledger == nil {
		ledger = models.HistoryLedger{}
	}
	return ledger
}
