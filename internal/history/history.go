// Package history reconstructs adherence over a date range by
// replaying the current medication rules against the stored ledger.
// The replay uses the rules as they are now: a retroactive schedule
// edit rewrites past reports. That tradeoff (no schedule versioning)
// is deliberate.
package history

import (
	"context"
	"time"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/repository"
	"github.com/easypills/easypills/internal/schedule"
)

// DefaultRetainDays is how much ledger history Prune keeps.
const DefaultRetainDays = 90

type Service struct {
	meds   *repository.MedicationRepository
	ledger *repository.HistoryRepository
	now    func() time.Time
}

func New(meds *repository.MedicationRepository, ledger *repository.HistoryRepository) *Service {
	return &Service{meds: meds, ledger: ledger, now: time.Now}
}

// ForRange returns one entry per calendar day in the inclusive range,
// ascending, including days with nothing scheduled (empty Takes). For
// each day the expected takes are expanded from the medication rules
// and joined against the ledger by composite id; an occurrence never
// toggled reads as not taken.
func (s *Service) ForRange(ctx context.Context, start, end time.Time) []models.HistoryDay {
	meds := s.meds.List(ctx)
	ledger := s.ledger.Ledger(ctx)

	var days []models.HistoryDay
	endISO := schedule.ISODate(end)
	for d := dayOf(start); schedule.ISODate(d) <= endISO; d = d.AddDate(0, 0, 1) {
		dateISO := schedule.ISODate(d)
		dayTaken := ledger[dateISO]
		takes := schedule.ForDate(meds, d)
		for i := range takes {
			takes[i].Taken = dayTaken[takes[i].ID]
		}
		schedule.SortByTime(takes)
		days = append(days, models.HistoryDay{Date: dateISO, Takes: takes})
	}
	return days
}

// Prune drops ledger entries older than retainDays before today.
// Never touches the today-state or the medications. Not called
// automatically; schedule it (e.g. at startup) or the ledger grows
// without bound.
func (s *Service) Prune(ctx context.Context, retainDays int) error {
	if retainDays <= 0 {
		retainDays = DefaultRetainDays
	}
	cutoff := schedule.ISODate(s.now().AddDate(0, 0, -retainDays))
	return s.ledger.Prune(ctx, cutoff)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
