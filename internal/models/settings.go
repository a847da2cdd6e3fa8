package models

// FontSize selects the text scale of the UI.
type FontSize string

const (
	FontNormal FontSize = "normal"
	FontLarge  FontSize = "large"
	FontXL     FontSize = "xl"
)

// AppSettings is presentation state persisted with the garden.
type AppSettings struct {
	FontSize     FontSize `json:"fontSize" yaml:"fontSize"`
	HighContrast bool     `json:"highContrast" yaml:"highContrast"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() AppSettings {
	return AppSettings{FontSize: FontNormal}
}

// Snapshot is the whole persisted state. It is also the import/export document.
type Snapshot struct {
	Specimens []Specimen  `json:"roses"`
	Events    []CareEvent `json:"events"`
	Settings  AppSettings `json:"settings"`
}
