package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/hermes/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Places autocomplete and details services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	PlaceAutocomplete(ctx context.Context, r *maps.PlaceAutocompleteRequest) (maps.AutocompleteResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given API client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Search returns address suggestions for the given input using the Google
// Places autocomplete API. Results are truncated to opts.Limit when set;
// the autocomplete API itself has no limit parameter.
func (gp *GoogleProvider) Search(
	ctx context.Context,
	input string,
	opts SearchOptions,
) ([]models.AddressSuggestion, error) {
	gp.log.DebugContext(ctx, "Searching suggestions using Google Places", "input", input, "branch", opts.BranchID)

	req := maps.PlaceAutocompleteRequest{
		Input: input,
		Types: maps.AutocompletePlaceTypeAddress,
	}
	if opts.Location != nil {
		req.Location = &maps.LatLng{Lat: opts.Location.Latitude, Lng: opts.Location.Longitude}
		req.Radius = opts.RadiusMeters
	}

	resp, err := gp.client.PlaceAutocomplete(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch autocomplete predictions: %w", err)
	}

	suggestions := make([]models.AddressSuggestion, 0, len(resp.Predictions))
	for _, prediction := range resp.Predictions {
		if opts.Limit > 0 && len(suggestions) >= opts.Limit {
			break
		}

		name := prediction.StructuredFormatting.MainText
		if name == "" {
			name = prediction.Description
		}

		suggestions = append(suggestions, models.AddressSuggestion{
			PlaceID:          prediction.PlaceID,
			Name:             name,
			FormattedAddress: prediction.Description,
			Source:           models.SourceOnline,
		})
	}

	return suggestions, nil
}

// PlaceDetails resolves a place id into structured address components and
// coordinates using the Google Places details API.
func (gp *GoogleProvider) PlaceDetails(
	ctx context.Context,
	placeID string,
	_ DetailsHint,
) (*PlaceDetails, error) {
	gp.log.DebugContext(ctx, "Fetching place details using Google Places", "place_id", placeID)

	req := maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskAddressComponent,
			maps.PlaceDetailsFieldMaskGeometry,
			maps.PlaceDetailsFieldMaskPlaceID,
		},
	}

	resp, err := gp.client.PlaceDetails(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch place details: %w", err)
	}

	if resp.FormattedAddress == "" && len(resp.AddressComponents) == 0 {
		return nil, ErrEmptyResponse
	}

	details := &PlaceDetails{
		PlaceID:          resp.PlaceID,
		FormattedAddress: resp.FormattedAddress,
	}
	// Zero geometry means the response carried no location.
	if resp.Geometry.Location.Lat != 0 || resp.Geometry.Location.Lng != 0 {
		details.Location = &models.Coordinates{
			Latitude:  resp.Geometry.Location.Lat,
			Longitude: resp.Geometry.Location.Lng,
		}
	}
	if details.PlaceID == "" {
		details.PlaceID = placeID
	}

	for _, component := range resp.AddressComponents {
		for _, compType := range component.Types {
			switch compType {
			case "street_number":
				details.StreetNumber = component.LongName
			case "route":
				details.Route = component.LongName
			case "locality", "postal_town":
				if details.City == "" {
					details.City = component.LongName
				}
			case "postal_code":
				details.PostalCode = component.LongName
			}
		}
	}

	return details, nil
}
