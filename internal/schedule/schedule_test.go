package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/easypills/easypills/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestISOWeekday(t *testing.T) {
	require.Equal(t, 1, ISOWeekday(date(2025, 1, 6))) // Monday
	require.Equal(t, 7, ISOWeekday(date(2025, 1, 5))) // Sunday
}

func TestTakeIDRoundTrip(t *testing.T) {
	id := TakeID("m1", "2025-01-05", "08:00")
	require.Equal(t, "m1@2025-01-05@08:00", id)

	medID, dateISO, timeHM, ok := SplitTakeID(id)
	require.True(t, ok)
	require.Equal(t, "m1", medID)
	require.Equal(t, "2025-01-05", dateISO)
	require.Equal(t, "08:00", timeHM)

	_, _, _, ok = SplitTakeID("m1@2025-01-05")
	require.False(t, ok)
}

func TestForDate_Daily(t *testing.T) {
	meds := []models.Medication{{
		ID: "m1", Name: "Doliprane", Dosage: "1000 mg",
		Times: []string{"08:00", "20:00"}, Daily: true,
	}}

	takes := ForDate(meds, date(2025, 1, 5))
	require.Len(t, takes, 2)
	require.Equal(t, "m1@2025-01-05@08:00", takes[0].ID)
	require.Equal(t, "m1@2025-01-05@20:00", takes[1].ID)
	require.Equal(t, "Doliprane", takes[0].MedicationName)
	require.Equal(t, "1000 mg", takes[0].Dosage)
	require.False(t, takes[0].Taken)
}

func TestForDate_Weekdays(t *testing.T) {
	meds := []models.Medication{{
		ID: "m1", Name: "Levothyrox",
		Times: []string{"08:00"}, Days: []int{1, 3}, // Mon, Wed
	}}

	require.Len(t, ForDate(meds, date(2025, 1, 6)), 1) // Monday
	require.Empty(t, ForDate(meds, date(2025, 1, 7))) // Tuesday
	require.Len(t, ForDate(meds, date(2025, 1, 8)), 1) // Wednesday
}

func TestForDate_MonthlyOverridesWeekly(t *testing.T) {
	meds := []models.Medication{{
		ID: "m1", Name: "Alendronate",
		Times:       []string{"08:00"},
		Daily:       true,
		MonthlyDays: []int{5, 15},
	}}

	require.Len(t, ForDate(meds, date(2025, 1, 5)), 1)
	require.Len(t, ForDate(meds, date(2025, 1, 15)), 1)
	// Daily would match every day; the monthly rule wins.
	require.Empty(t, ForDate(meds, date(2025, 1, 6)))
}

func TestForDate_DateBounds(t *testing.T) {
	meds := []models.Medication{{
		ID: "m1", Times: []string{"08:00"}, Daily: true,
		StartISO: "2025-01-05", EndISO: "2025-01-10",
	}}

	require.Empty(t, ForDate(meds, date(2025, 1, 4)))
	require.Len(t, ForDate(meds, date(2025, 1, 5)), 1)  // start inclusive
	require.Len(t, ForDate(meds, date(2025, 1, 10)), 1) // end inclusive
	require.Empty(t, ForDate(meds, date(2025, 1, 11)))
}

func TestForDate_PausedAndEmpty(t *testing.T) {
	meds := []models.Medication{
		{ID: "m1", Times: []string{"08:00"}, Daily: true, Paused: true},
		{ID: "m2", Times: nil, Daily: true},
	}
	require.Empty(t, ForDate(meds, date(2025, 1, 5)))
}

func TestForDate_Deterministic(t *testing.T) {
	meds := []models.Medication{
		{ID: "m1", Times: []string{"08:00", "20:00"}, Daily: true},
		{ID: "m2", Times: []string{"12:00"}, Days: []int{7}},
	}
	first := ForDate(meds, date(2025, 1, 5))
	second := ForDate(meds, date(2025, 1, 5))
	require.Equal(t, first, second)
}

func TestSortByTime(t *testing.T) {
	takes := []models.Take{
		{ID: "a", ScheduledTime: "20:00"},
		{ID: "b", ScheduledTime: "08:00"},
		{ID: "c", ScheduledTime: "08:00"},
	}
	SortByTime(takes)
	require.Equal(t, "b", takes[0].ID)
	require.Equal(t, "c", takes[1].ID) // stable: b keeps its place before c
	require.Equal(t, "a", takes[2].ID)
}

func TestNextDose_Daily(t *testing.T) {
	m := &models.Medication{
		ID: "m1", Times: []string{"08:00"}, Daily: true,
		StartISO: "2025-03-01",
	}
	after := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	next, err := NextDose(m, after)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, time.Date(2025, 3, 11, 8, 0, 0, 0, time.Local), *next)
}

func TestNextDose_SameDayLaterSlot(t *testing.T) {
	m := &models.Medication{
		ID: "m1", Times: []string{"08:00", "20:00"}, Daily: true,
		StartISO: "2025-03-01",
	}
	after := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	next, err := NextDose(m, after)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local), *next)
}

func TestNextDose_Weekly(t *testing.T) {
	m := &models.Medication{
		ID: "m1", Times: []string{"08:00"}, Days: []int{1}, // Monday
		StartISO: "2025-03-01",
	}
	after := time.Date(2025, 3, 12, 10, 0, 0, 0, time.Local) // Wednesday

	next, err := NextDose(m, after)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, time.Date(2025, 3, 17, 8, 0, 0, 0, time.Local), *next)
}

func TestNextDose_Monthly(t *testing.T) {
	m := &models.Medication{
		ID: "m1", Times: []string{"08:00"}, MonthlyDays: []int{15},
		StartISO: "2025-01-01",
	}
	after := time.Date(2025, 3, 16, 0, 0, 0, 0, time.Local)

	next, err := NextDose(m, after)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, time.Date(2025, 4, 15, 8, 0, 0, 0, time.Local), *next)
}

func TestNextDose_None(t *testing.T) {
	after := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	paused := &models.Medication{ID: "m1", Times: []string{"08:00"}, Daily: true, Paused: true}
	next, err := NextDose(paused, after)
	require.NoError(t, err)
	require.Nil(t, next)

	noRule := &models.Medication{ID: "m2", Times: []string{"08:00"}}
	next, err = NextDose(noRule, after)
	require.NoError(t, err)
	require.Nil(t, next)

	ended := &models.Medication{
		ID: "m3", Times: []string{"08:00"}, Daily: true,
		StartISO: "2025-01-01", EndISO: "2025-03-01",
	}
	next, err = NextDose(ended, after)
	require.NoError(t, err)
	require.Nil(t, next)
}

func TestNextDose_InvalidWeekday(t *testing.T) {
	m := &models.Medication{ID: "m1", Times: []string{"08:00"}, Days: []int{9}}
	_, err := NextDose(m, time.Now())
	require.Error(t, err)
}
