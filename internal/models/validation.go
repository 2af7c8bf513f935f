package models

// ValidationStatus classifies an address against the delivery service boundary.
type ValidationStatus string

const (
	// StatusIdle means no address has been entered yet.
	StatusIdle ValidationStatus = "idle"
	// StatusRequiresSelection means the user typed free text without picking a suggestion.
	StatusRequiresSelection ValidationStatus = "requires_selection"
	// StatusInZone means the address lies inside a delivery zone boundary.
	StatusInZone ValidationStatus = "in_zone"
	// StatusOutOfZone means no delivery zone boundary contains the address.
	StatusOutOfZone ValidationStatus = "out_of_zone"
	// StatusUnverifiedOffline means the zone service was unreachable and the
	// address could not be verified; an explicit override is required to proceed.
	StatusUnverifiedOffline ValidationStatus = "unverified_offline"
)

// DeliveryZone is read-only reference data describing a delivery boundary.
type DeliveryZone struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	DeliveryFee        float64       `json:"delivery_fee"`
	MinimumOrderAmount float64       `json:"minimum_order_amount"`
	EstimatedTime      EstimatedTime `json:"estimated_time"`
}

// EstimatedTime is a delivery ETA window in minutes.
type EstimatedTime struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ValidationResult is the immutable outcome of one zone check. A new
// validation call always produces a new result.
type ValidationResult struct {
	Success            bool             `json:"success"` // Request completed without transport error.
	IsValid            bool             `json:"is_valid"`
	DeliveryAvailable  bool             `json:"delivery_available"`
	ValidationStatus   ValidationStatus `json:"validation_status"`
	RequiresOverride   bool             `json:"requires_override"`
	HouseNumberMatch   bool             `json:"house_number_match"` // False signals a likely bad geocode.
	Message            string           `json:"message,omitempty"`
	SelectedZone       *DeliveryZone    `json:"selected_zone,omitempty"`
	Coordinates        *Coordinates     `json:"coordinates,omitempty"`
	AddressFingerprint string           `json:"address_fingerprint"`
	ValidationSource   ValidationSource `json:"validation_source,omitempty"`
	SuggestedAction    string           `json:"suggested_action,omitempty"` // Optional hint from the zone service, e.g. "geocode_first".
}

// OverrideDecision is the user's explicit choice to proceed despite an
// out-of-zone or unverifiable address. Transient; reset whenever the address
// changes or a fresh validation returns in_zone.
type OverrideDecision struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason"`
}
