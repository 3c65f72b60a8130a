// Package schedule derives dose occurrences from medication recurrence
// rules. Occurrences are values computed on demand from a Medication
// and a date; they are never persisted, so the expansion must be
// deterministic: identical inputs yield an identical list.
package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/easypills/easypills/internal/models"
)

// ISODate formats a time as "YYYY-MM-DD".
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ISOWeekday maps a time's weekday to 1=Monday..7=Sunday.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

// TakeID builds the composite occurrence key "{medID}@{date}@{time}".
func TakeID(medID, dateISO, timeHM string) string {
	return medID + "@" + dateISO + "@" + timeHM
}

// MedicationPrefix is the key prefix shared by every occurrence of one
// medication, used for cascade cleanup on delete.
func MedicationPrefix(medID string) string {
	return medID + "@"
}

// SplitTakeID decomposes a composite key. ok is false when the key does
// not have the three expected parts.
func SplitTakeID(id string) (medID, dateISO, timeHM string, ok bool) {
	parts := strings.SplitN(id, "@", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// ForDate expands the doses due on the given date. Paused medications
// and dates outside [StartISO, EndISO] contribute nothing; a medication
// with no times contributes nothing. Every take is emitted with
// Taken=false; joining stored flags is the caller's concern.
func ForDate(meds []models.Medication, date time.Time) []models.Take {
	dateISO := ISODate(date)
	weekday := ISOWeekday(date)
	dayOfMonth := date.Day()

	var takes []models.Take
	for i := range meds {
		m := &meds[i]
		if !m.ActiveOn(dateISO, weekday, dayOfMonth) {
			continue
		}
		for _, t := range m.Times {
			takes = append(takes, models.Take{
				ID:             TakeID(m.ID, dateISO, t),
				MedicationID:   m.ID,
				MedicationName: m.Name,
				ScheduledTime:  t,
				Date:           dateISO,
				Dosage:         m.Dosage,
			})
		}
	}
	return takes
}

// SortByTime orders takes ascending by scheduled time. Zero-padded
// "HH:MM" strings sort correctly lexicographically; the sort is stable
// so same-time takes keep their medication order.
func SortByTime(takes []models.Take) {
	sort.SliceStable(takes, func(i, j int) bool {
		return takes[i].ScheduledTime < takes[j].ScheduledTime
	})
}
