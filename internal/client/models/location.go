package models

import "time"

// LocationRecord is a resolved device location, optionally enriched with
// reverse-geocoding details.
type LocationRecord struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`

	// Filled by reverse geocoding; empty when enrichment failed.
	Country     string `json:"country,omitempty"`
	CountryName string `json:"countryName,omitempty"`
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	Timezone    string `json:"timezone,omitempty"`

	// IsDefault marks the hardcoded fallback record used when resolution
	// failed or was not permitted.
	IsDefault bool `json:"isDefault,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// ConsentState tracks the per-session location permission negotiation.
type ConsentState string

const (
	ConsentUnknown   ConsentState = "unknown"
	ConsentPrompting ConsentState = "prompting"
	ConsentGranted   ConsentState = "granted"
	ConsentDenied    ConsentState = "denied"
)
