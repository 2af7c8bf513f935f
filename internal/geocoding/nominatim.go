package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
	"golang.org/x/time/rate"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's
// Nominatim API. This is a free geocoding service with usage limits
// (1 request/second for fair use).
type NominatimProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Nominatim search API
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter per Nominatim fair-use policy
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResult represents one entry of the jsonv2 response from Nominatim.
type nominatimResult struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Postcode    string `json:"postcode"`
	} `json:"address"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a new Nominatim geocoding provider.
// Uses the public Nominatim API endpoint by default.
func NewNominatimProvider(log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return &NominatimProvider{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL: "https://nominatim.openstreetmap.org/search",
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: "Hermes-Address-Engine/1.0 (https://github.com/UnknownOlympus/hermes)",
	}
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   "https://nominatim.openstreetmap.org/search",
		log:       log,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		userAgent: "Hermes-Address-Engine/1.0 (https://github.com/UnknownOlympus/hermes)",
	}
}

// Search returns address suggestions for the given input. Nominatim has no
// separate autocomplete endpoint, so full search results stand in as
// suggestions; it keeps a usable free backend for deployments without a
// Google API key.
func (np *NominatimProvider) Search(
	ctx context.Context,
	input string,
	opts SearchOptions,
) ([]models.AddressSuggestion, error) {
	np.log.DebugContext(ctx, "Searching suggestions using Nominatim", "input", input, "branch", opts.BranchID)

	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	results, err := np.search(ctx, input, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]models.AddressSuggestion, 0, len(results))
	for _, result := range results {
		suggestion := models.AddressSuggestion{
			PlaceID:          strconv.FormatInt(result.PlaceID, 10),
			Name:             result.Name,
			FormattedAddress: result.DisplayName,
			Source:           models.SourceOnline,
		}
		if suggestion.Name == "" {
			suggestion.Name = result.DisplayName
		}
		if coords, errCoords := result.coordinates(); errCoords == nil {
			suggestion.Location = coords
		}
		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

// PlaceDetails resolves structured address components for a suggestion.
// Nominatim place ids are not stable across reindexing, so the lookup is
// served from a fresh search against the suggestion's formatted address.
func (np *NominatimProvider) PlaceDetails(
	ctx context.Context,
	placeID string,
	hint DetailsHint,
) (*PlaceDetails, error) {
	np.log.DebugContext(ctx, "Fetching place details using Nominatim",
		"place_id", placeID, "hint", hint.FormattedAddress)

	if hint.FormattedAddress == "" {
		return nil, ErrNominatimEmptyResponse
	}

	results, err := np.search(ctx, hint.FormattedAddress, 1)
	if err != nil {
		return nil, err
	}

	result := results[0]
	coords, err := result.coordinates()
	if err != nil {
		return nil, err
	}

	city := result.Address.City
	if city == "" {
		city = result.Address.Town
	}
	if city == "" {
		city = result.Address.Village
	}

	return &PlaceDetails{
		PlaceID:          placeID,
		StreetNumber:     result.Address.HouseNumber,
		Route:            result.Address.Road,
		City:             city,
		PostalCode:       result.Address.Postcode,
		FormattedAddress: result.DisplayName,
		Location:         coords,
	}, nil
}

// search performs a single Nominatim search request and decodes the response.
func (np *NominatimProvider) search(ctx context.Context, query string, limit int) ([]nominatimResult, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var results []nominatimResult
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	return results, nil
}

// coordinates parses the string lat/lon pair of a result.
func (nr nominatimResult) coordinates() (*models.Coordinates, error) {
	lat, errLat := strconv.ParseFloat(nr.Lat, 64)
	lon, errLon := strconv.ParseFloat(nr.Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, ErrNominatimInvalidCoords
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
