package models

// Medication is a registered treatment with its dosing schedule.
// Dates are ISO "YYYY-MM-DD" strings so range checks are plain string
// comparisons. EndISO empty means open-ended.
type Medication struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Dosage      string   `json:"dosage,omitempty"`
	Times       []string `json:"times"`                 // "HH:MM", one per daily slot
	Daily       bool     `json:"daily,omitempty"`       // take every day
	Days        []int    `json:"days,omitempty"`        // weekdays 1=Monday..7=Sunday
	MonthlyDays []int    `json:"monthlyDays,omitempty"` // days of month 1..31, overrides Days
	StartISO    string   `json:"startISO,omitempty"`
	EndISO      string   `json:"endISO,omitempty"`
	Paused      bool     `json:"paused,omitempty"`
	Color       string   `json:"color,omitempty"`
	Icon        string   `json:"icon,omitempty"`
}

// ActiveOn reports whether the medication is due on the given date.
// MonthlyDays takes precedence over the weekly rule when non-empty.
// dateISO must be "YYYY-MM-DD"; weekday is 1=Monday..7=Sunday;
// dayOfMonth is 1..31.
func (m *Medication) ActiveOn(dateISO string, weekday, dayOfMonth int) bool {
	if m.Paused {
		return false
	}
	if m.StartISO != "" && dateISO < m.StartISO {
		return false
	}
	if m.EndISO != "" && m.EndISO < dateISO {
		return false
	}
	if len(m.MonthlyDays) > 0 {
		for _, d := range m.MonthlyDays {
			if d == dayOfMonth {
				return true
			}
		}
		return false
	}
	if m.Daily {
		return true
	}
	for _, d := range m.Days {
		if d == weekday {
			return true
		}
	}
	return false
}

// IsMonthly reports whether the monthly rule is the authoritative one.
func (m *Medication) IsMonthly() bool {
	return len(m.MonthlyDays) > 0
}
