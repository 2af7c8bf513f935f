package models

// ValidationSource indicates where address data was verified.
type ValidationSource string

const (
	// SourceOnline marks data verified against the live geocoding provider.
	SourceOnline ValidationSource = "online"
	// SourceOfflineCache marks data served from the offline candidate store.
	SourceOfflineCache ValidationSource = "offline_cache"
)

// AddressSuggestion is a candidate returned by a suggestion search.
// It is ephemeral: produced per search call and never persisted directly.
type AddressSuggestion struct {
	PlaceID          string           `json:"place_id,omitempty"` // Opaque provider id; empty for offline-only candidates.
	Name             string           `json:"name"`
	FormattedAddress string           `json:"formatted_address"`
	Location         *Coordinates     `json:"location,omitempty"`
	Source           ValidationSource `json:"source,omitempty"`
}

// ResolvedAddress is the canonical output of address resolution.
// It is never mutated after creation; a new address change produces a new value.
type ResolvedAddress struct {
	StreetAddress        string           `json:"street_address"` // Route + house number only, no city/country.
	City                 string           `json:"city"`
	PostalCode           string           `json:"postal_code"`
	Coordinates          *Coordinates     `json:"coordinates,omitempty"`
	PlaceID              string           `json:"place_id,omitempty"`
	ResolvedStreetNumber string           `json:"resolved_street_number,omitempty"` // House number from the provider, distinct from user input.
	AddressFingerprint   string           `json:"address_fingerprint"`
	ValidationSource     ValidationSource `json:"validation_source,omitempty"`
	FormattedAddress     string           `json:"formatted_address"`
}

// OfflineCandidateRecord is a persisted row in the offline candidate store.
// At most one record exists per (BranchID, AddressFingerprint); upserts
// overwrite on conflict.
type OfflineCandidateRecord struct {
	PlaceID              string
	BranchID             string
	Name                 string
	FormattedAddress     string
	City                 string
	PostalCode           string
	Location             *Coordinates
	ResolvedStreetNumber string
	AddressFingerprint   string
	Source               ValidationSource
	Verified             bool
}
