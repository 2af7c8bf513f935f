package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestNominatimProvider_Search(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful search", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "kresnas 4 athens", req.URL.Query().Get("q"))
				assert.Equal(t, "jsonv2", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("addressdetails"))
				assert.Equal(t, "5", req.URL.Query().Get("limit"))
				assert.Equal(
					t,
					"Hermes-Address-Engine/1.0 (https://github.com/UnknownOlympus/hermes)",
					req.Header.Get("User-Agent"),
				)

				responseBody := `[{
					"place_id": 12345,
					"lat": "37.97945",
					"lon": "23.71622",
					"name": "Kresnas 4",
					"display_name": "Kresnas 4, Athens, 11473, Greece",
					"address": {"house_number": "4", "road": "Kresnas", "city": "Athens", "postcode": "11473"}
				}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		suggestions, err := provider.Search(ctx, "kresnas 4 athens", geocoding.SearchOptions{Limit: 5})

		require.NoError(t, err)
		require.Len(t, suggestions, 1)
		assert.Equal(t, "12345", suggestions[0].PlaceID)
		assert.Equal(t, "Kresnas 4", suggestions[0].Name)
		assert.Equal(t, "Kresnas 4, Athens, 11473, Greece", suggestions[0].FormattedAddress)
		assert.Equal(t, models.SourceOnline, suggestions[0].Source)
		require.NotNil(t, suggestions[0].Location)
		assert.InEpsilon(t, 37.97945, suggestions[0].Location.Latitude, 0.0001)
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`[]`)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		suggestions, err := provider.Search(ctx, "nowhere at all", geocoding.SearchOptions{})

		require.Nil(t, suggestions)
		require.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
	})

	t.Run("transport error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		_, err := provider.Search(ctx, "kresnas", geocoding.SearchOptions{})

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("non-200 status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusTooManyRequests,
					Body:       io.NopCloser(bytes.NewBufferString(``)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		_, err := provider.Search(ctx, "kresnas", geocoding.SearchOptions{})

		require.Error(t, err)
		require.ErrorContains(t, err, "status 429")
	})
}

func TestNominatimProvider_PlaceDetails(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("details served from formatted address search", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "Kresnas 4, Athens, 11473, Greece", req.URL.Query().Get("q"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))

				responseBody := `[{
					"place_id": 12345,
					"lat": "37.97945",
					"lon": "23.71622",
					"display_name": "Kresnas 4, Athens, 11473, Greece",
					"address": {"house_number": "4", "road": "Kresnas", "town": "Athens", "postcode": "11473"}
				}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		details, err := provider.PlaceDetails(ctx, "12345", geocoding.DetailsHint{
			FormattedAddress: "Kresnas 4, Athens, 11473, Greece",
		})

		require.NoError(t, err)
		require.NotNil(t, details)
		assert.Equal(t, "4", details.StreetNumber)
		assert.Equal(t, "Kresnas", details.Route)
		assert.Equal(t, "Athens", details.City)
		assert.Equal(t, "11473", details.PostalCode)
	})

	t.Run("missing hint", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(&mockHTTPClient{}, logger)

		details, err := provider.PlaceDetails(ctx, "12345", geocoding.DetailsHint{})

		require.Nil(t, details)
		require.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				responseBody := `[{"place_id": 1, "lat": "not-a-number", "lon": "23.7", "display_name": "x"}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		_, err := provider.PlaceDetails(ctx, "1", geocoding.DetailsHint{FormattedAddress: "x"})

		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
	})
}
