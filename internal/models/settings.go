package models

// Settings is the process-wide configuration record. It is read and
// written as a whole value; partial updates merge over the existing
// record at the repository layer.
type Settings struct {
	NotificationsEnabled bool `json:"notificationsEnabled"`
	SoundEnabled         bool `json:"soundEnabled"`
	VibrationEnabled     bool `json:"vibrationEnabled"`
	SnoozeDuration       int  `json:"snoozeDuration"` // minutes
	IsPremium            bool `json:"isPremium"`
	DiscreteMode         bool `json:"discreteMode"`
}

// DefaultSettings returns the record used when nothing is stored yet.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: true,
		SoundEnabled:         true,
		VibrationEnabled:     true,
		SnoozeDuration:       10,
	}
}
