// Package tracker manages the today-state: generating the day's dose
// list, toggling taken flags, and mirroring every toggle into the
// history ledger so nothing is lost when the date rolls over.
package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/repository"
	"github.com/easypills/easypills/internal/schedule"
	"github.com/easypills/easypills/internal/storage"
)

// Service serializes every today-state operation behind one mutex: a
// toggle spans two records (today-state, then ledger), and bot updates
// arrive on separate goroutines, so per-record locking alone would let
// two toggles flush their ledger snapshots out of order.
type Service struct {
	mu      sync.Mutex
	store   storage.Store
	meds    *repository.MedicationRepository
	today   *repository.TodayRepository
	history *repository.HistoryRepository
	now     func() time.Time
}

func New(store storage.Store, meds *repository.MedicationRepository, today *repository.TodayRepository, history *repository.HistoryRepository) *Service {
	return &Service{
		store:   store,
		meds:    meds,
		today:   today,
		history: history,
		now:     time.Now,
	}
}

// EnsureToday regenerates the today-state when its date no longer
// matches the calendar. Idempotent: when the stored date is current it
// does nothing, so it is safe to call on every start. Regeneration is
// destructive for the today-state only; toggles were already flushed
// to the ledger at toggle time.
func (s *Service) EnsureToday(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureToday(ctx)
}

func (s *Service) ensureToday(ctx context.Context) error {
	todayISO := schedule.ISODate(s.now())
	state := s.today.Get(ctx)
	if state.Date == todayISO {
		return nil
	}

	takes := schedule.ForDate(s.meds.List(ctx), s.now())
	taken := make(map[string]bool, len(takes))
	for _, t := range takes {
		taken[t.ID] = false
	}
	return s.today.Save(ctx, models.TodayState{Date: todayISO, Taken: taken})
}

// Today recomputes the occurrence list for the current date and joins
// each take against the stored flags by composite id, defaulting to
// not-taken when absent. Names and dosages come from the current
// medication records. Sorted ascending by scheduled time.
func (s *Service) Today(ctx context.Context) []models.Take {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.today.Get(ctx)
	takes := schedule.ForDate(s.meds.List(ctx), s.now())
	for i := range takes {
		takes[i].Taken = state.Taken[takes[i].ID]
	}
	schedule.SortByTime(takes)
	return takes
}

// SetTaken records a toggle in the today-state and flushes the whole
// map into the history ledger under the current date, in that order.
// A stale today-state is regenerated first so a toggle right after
// midnight lands under the new date instead of the old one. On a
// ledger failure the today-state is rolled back so no partial update
// stays visible; the caller surfaces the error and may retry.
func (s *Service) SetTaken(ctx context.Context, takeID string, taken bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureToday(ctx); err != nil {
		return err
	}

	todayISO := schedule.ISODate(s.now())
	prev := s.today.Get(ctx)
	state, err := s.today.SetTaken(ctx, takeID, taken, todayISO)
	if err != nil {
		return err
	}
	if err := s.history.SaveDay(ctx, state.Date, state.Taken); err != nil {
		if rbErr := s.today.Save(ctx, prev); rbErr != nil {
			log.Printf("Failed to roll back today-state: %v", rbErr)
		}
		return fmt.Errorf("failed to record take in history: %w", err)
	}
	return nil
}

// DeleteMedication removes the medication and cascades: every
// occurrence id with its prefix disappears from the today-state and
// from every history date entry.
func (s *Service) DeleteMedication(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.meds.Delete(ctx, id); err != nil {
		return err
	}
	prefix := schedule.MedicationPrefix(id)
	if err := s.today.RemoveMedication(ctx, prefix); err != nil {
		return err
	}
	return s.history.RemoveMedication(ctx, prefix)
}

// ResetAll wipes every stored record.
func (s *Service) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, repository.AllKeys...)
}
