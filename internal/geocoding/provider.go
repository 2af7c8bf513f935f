package geocoding

import (
	"context"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// SearchOptions narrows a suggestion search to the caller's context.
type SearchOptions struct {
	BranchID     string              // Branch issuing the search, used for logging only.
	Location     *models.Coordinates // Optional bias point for ranking.
	RadiusMeters uint                // Optional bias radius around Location.
	Limit        int                 // Maximum number of suggestions to return.
}

// DetailsHint carries fallback data for providers that cannot resolve an
// opaque place id directly.
type DetailsHint struct {
	Location         *models.Coordinates // Raw location from the suggestion, for reverse lookup.
	FormattedAddress string              // Display address from the suggestion.
}

// PlaceDetails is the structured provider response for a single place.
type PlaceDetails struct {
	PlaceID          string
	StreetNumber     string
	Route            string
	City             string
	PostalCode       string
	FormattedAddress string
	Location         *models.Coordinates
}

// Provider is an interface that defines the autocomplete and place-details
// operations of a geocoding backend. Both methods take a context and must be
// treated as potentially slow or unreachable; callers own the fallback path.
type Provider interface {
	Search(ctx context.Context, input string, opts SearchOptions) ([]models.AddressSuggestion, error)
	PlaceDetails(ctx context.Context, placeID string, hint DetailsHint) (*PlaceDetails, error)
}
