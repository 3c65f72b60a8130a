package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/easypills/easypills/internal/models"
	"github.com/easypills/easypills/internal/storage"
)

func TestMedicationRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMedicationRepository(storage.NewMemoryStore())

	require.Empty(t, repo.List(ctx))

	med := models.Medication{ID: "m1", Name: "Doliprane", Times: []string{"08:00"}, Daily: true}
	require.NoError(t, repo.Add(ctx, med))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, "Doliprane", got.Name)

	_, err = repo.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Update(ctx, "m1", func(m *models.Medication) {
		m.Dosage = "1000 mg"
	}))
	got, err = repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, "1000 mg", got.Dosage)

	require.ErrorIs(t, repo.Update(ctx, "nope", func(*models.Medication) {}), ErrNotFound)

	require.NoError(t, repo.SetPaused(ctx, "m1", true))
	got, _ = repo.Get(ctx, "m1")
	require.True(t, got.Paused)

	require.NoError(t, repo.Delete(ctx, "m1"))
	require.ErrorIs(t, repo.Delete(ctx, "m1"), ErrNotFound)
	require.Empty(t, repo.List(ctx))
}

func TestCorruptRecordFallsBack(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Write(ctx, KeyMedications, []byte("{not json")))

	repo := NewMedicationRepository(store)
	require.Empty(t, repo.List(ctx))

	// The next write self-heals the record.
	require.NoError(t, repo.Add(ctx, models.Medication{ID: "m1", Name: "Doliprane"}))
	require.Len(t, repo.List(ctx), 1)
}

func TestTodayRepository_SetTakenDefaultsDate(t *testing.T) {
	ctx := context.Background()
	repo := NewTodayRepository(storage.NewMemoryStore())

	state, err := repo.SetTaken(ctx, "m1@2025-01-06@08:00", true, "2025-01-06")
	require.NoError(t, err)
	require.Equal(t, "2025-01-06", state.Date)
	require.True(t, state.Taken["m1@2025-01-06@08:00"])

	// An existing date is not overwritten by the default.
	state, err = repo.SetTaken(ctx, "m1@2025-01-06@20:00", true, "2025-01-07")
	require.NoError(t, err)
	require.Equal(t, "2025-01-06", state.Date)
}

func TestTodayRepository_RemoveMedication(t *testing.T) {
	ctx := context.Background()
	repo := NewTodayRepository(storage.NewMemoryStore())

	_, err := repo.SetTaken(ctx, "m1@2025-01-06@08:00", true, "2025-01-06")
	require.NoError(t, err)
	_, err = repo.SetTaken(ctx, "m2@2025-01-06@08:00", false, "2025-01-06")
	require.NoError(t, err)

	require.NoError(t, repo.RemoveMedication(ctx, "m1@"))

	state := repo.Get(ctx)
	require.NotContains(t, state.Taken, "m1@2025-01-06@08:00")
	require.Contains(t, state.Taken, "m2@2025-01-06@08:00")
}

func TestHistoryRepository_SaveDayReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(storage.NewMemoryStore())

	require.NoError(t, repo.SaveDay(ctx, "2025-01-06", map[string]bool{
		"m1@2025-01-06@08:00": true,
		"m1@2025-01-06@20:00": true,
	}))
	require.NoError(t, repo.SaveDay(ctx, "2025-01-06", map[string]bool{
		"m1@2025-01-06@08:00": false,
	}))

	day := repo.ForDate(ctx, "2025-01-06")
	require.Len(t, day, 1)
	require.False(t, day["m1@2025-01-06@08:00"])
}

func TestHistoryRepository_Prune(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(storage.NewMemoryStore())

	require.NoError(t, repo.SaveDay(ctx, "2024-09-01", map[string]bool{"a": true}))
	require.NoError(t, repo.SaveDay(ctx, "2024-12-01", map[string]bool{"b": true}))

	require.NoError(t, repo.Prune(ctx, "2024-10-05"))

	ledger := repo.Ledger(ctx)
	require.NotContains(t, ledger, "2024-09-01")
	require.Contains(t, ledger, "2024-12-01")
}

func TestSettingsRepository_Defaults(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(storage.NewMemoryStore())

	s := repo.Get(ctx)
	require.True(t, s.NotificationsEnabled)
	require.Equal(t, 10, s.SnoozeDuration)

	require.NoError(t, repo.Update(ctx, func(s *models.Settings) {
		s.NotificationsEnabled = false
		s.SnoozeDuration = 30
	}))

	s = repo.Get(ctx)
	require.False(t, s.NotificationsEnabled)
	require.Equal(t, 30, s.SnoozeDuration)
	// Untouched fields keep their defaults.
	require.True(t, s.SoundEnabled)
}
