package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleSearch(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		req := &maps.PlaceAutocompleteRequest{Input: "kresnas", Types: maps.AutocompletePlaceTypeAddress}

		mockClient.On("PlaceAutocomplete", ctx, req).Return(maps.AutocompleteResponse{}, assert.AnError).Once()

		_, err := provider.Search(ctx, "kresnas", geocoding.SearchOptions{})

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("successful search maps predictions", func(t *testing.T) {
		req := &maps.PlaceAutocompleteRequest{Input: "kresnas", Types: maps.AutocompletePlaceTypeAddress}
		mockResponse := maps.AutocompleteResponse{Predictions: []maps.AutocompletePrediction{
			{
				PlaceID:     "p1",
				Description: "Kresnas 4, Athens, Greece",
				StructuredFormatting: maps.AutocompleteStructuredFormatting{
					MainText: "Kresnas 4",
				},
			},
			{PlaceID: "p2", Description: "Kresnas 6, Athens, Greece"},
		}}

		mockClient.On("PlaceAutocomplete", ctx, req).Return(mockResponse, nil).Once()

		suggestions, err := provider.Search(ctx, "kresnas", geocoding.SearchOptions{})

		require.NoError(t, err)
		require.Len(t, suggestions, 2)
		assert.Equal(t, "p1", suggestions[0].PlaceID)
		assert.Equal(t, "Kresnas 4", suggestions[0].Name)
		assert.Equal(t, "Kresnas 4, Athens, Greece", suggestions[0].FormattedAddress)
		assert.Equal(t, models.SourceOnline, suggestions[0].Source)
		// Second prediction has no structured formatting; falls back to the description.
		assert.Equal(t, "Kresnas 6, Athens, Greece", suggestions[1].Name)
		mockClient.AssertExpectations(t)
	})

	t.Run("limit truncates predictions", func(t *testing.T) {
		req := &maps.PlaceAutocompleteRequest{Input: "kresnas", Types: maps.AutocompletePlaceTypeAddress}
		mockResponse := maps.AutocompleteResponse{Predictions: []maps.AutocompletePrediction{
			{PlaceID: "p1", Description: "Kresnas 4"},
			{PlaceID: "p2", Description: "Kresnas 6"},
			{PlaceID: "p3", Description: "Kresnas 8"},
		}}

		mockClient.On("PlaceAutocomplete", ctx, req).Return(mockResponse, nil).Once()

		suggestions, err := provider.Search(ctx, "kresnas", geocoding.SearchOptions{Limit: 2})

		require.NoError(t, err)
		assert.Len(t, suggestions, 2)
		mockClient.AssertExpectations(t)
	})
}

func TestGooglePlaceDetails(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		mockClient.On("PlaceDetails", ctx, mock.Anything).Return(maps.PlaceDetailsResult{}, assert.AnError).Once()

		_, err := provider.PlaceDetails(ctx, "p1", geocoding.DetailsHint{})

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("empty response", func(t *testing.T) {
		mockClient.On("PlaceDetails", ctx, mock.Anything).Return(maps.PlaceDetailsResult{}, nil).Once()

		details, err := provider.PlaceDetails(ctx, "p1", geocoding.DetailsHint{})

		require.Nil(t, details)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		mockClient.AssertExpectations(t)
	})

	t.Run("successful details with structured components", func(t *testing.T) {
		mockResponse := maps.PlaceDetailsResult{
			PlaceID:          "p1",
			FormattedAddress: "Kresnas 4, Athens 114 73, Greece",
			AddressComponents: []maps.AddressComponent{
				{LongName: "4", Types: []string{"street_number"}},
				{LongName: "Kresnas", Types: []string{"route"}},
				{LongName: "Athens", Types: []string{"locality", "political"}},
				{LongName: "11473", Types: []string{"postal_code"}},
			},
			Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 37.97945, Lng: 23.71622}},
		}

		mockClient.On("PlaceDetails", ctx, mock.Anything).Return(mockResponse, nil).Once()

		details, err := provider.PlaceDetails(ctx, "p1", geocoding.DetailsHint{})

		require.NoError(t, err)
		require.NotNil(t, details)
		assert.Equal(t, "4", details.StreetNumber)
		assert.Equal(t, "Kresnas", details.Route)
		assert.Equal(t, "Athens", details.City)
		assert.Equal(t, "11473", details.PostalCode)
		require.NotNil(t, details.Location)
		assert.InEpsilon(t, 37.97945, details.Location.Latitude, 0.0001)
		mockClient.AssertExpectations(t)
	})

	t.Run("missing geometry leaves location unset", func(t *testing.T) {
		mockResponse := maps.PlaceDetailsResult{
			PlaceID:          "p1",
			FormattedAddress: "Kresnas 4, Athens 114 73, Greece",
			AddressComponents: []maps.AddressComponent{
				{LongName: "4", Types: []string{"street_number"}},
				{LongName: "Kresnas", Types: []string{"route"}},
			},
		}

		mockClient.On("PlaceDetails", ctx, mock.Anything).Return(mockResponse, nil).Once()

		details, err := provider.PlaceDetails(ctx, "p1", geocoding.DetailsHint{})

		require.NoError(t, err)
		require.NotNil(t, details)
		assert.Nil(t, details.Location)
		mockClient.AssertExpectations(t)
	})
}
