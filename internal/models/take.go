package models

// Take is one due administration of one medication at one time on one
// date. Takes are derived on demand from a Medication and a date, never
// stored as entities: only the taken flag is persisted, keyed by the
// composite ID "{medicationId}@{date}@{time}".
type Take struct {
	ID             string `json:"id"`
	MedicationID   string `json:"medicationId"`
	MedicationName string `json:"medicationName"`
	ScheduledTime  string `json:"scheduledTime"` // "HH:MM"
	Taken          bool   `json:"taken"`
	Date           string `json:"date"` // "YYYY-MM-DD"
	Dosage         string `json:"dosage,omitempty"`
}

// TodayState caches the taken flags for the current calendar date. If
// Date no longer matches today the record is stale and must be
// regenerated before use.
type TodayState struct {
	Date  string          `json:"date"`
	Taken map[string]bool `json:"taken"`
}

// HistoryLedger maps ISO dates to per-take taken flags. It is the
// durable source of truth for adherence reporting; TodayState mirrors
// its current-day entry.
type HistoryLedger map[string]map[string]bool

// HistoryDay is one calendar day of reconstructed takes.
type HistoryDay struct {
	Date  string `json:"date"`
	Takes []Take `json:"takes"`
}
