package resolver_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/hermes/internal/fingerprint"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/resolver"
	"github.com/UnknownOlympus/hermes/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const persistTimeout = 2 * time.Second

func newResolver(t *testing.T) (*resolver.Resolver, *mocks.Provider, *mocks.Interface) {
	t.Helper()
	mockProvider := mocks.NewProvider(t)
	mockRepo := mocks.NewInterface(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	res := resolver.NewResolver(slog.Default(), mockProvider, mockRepo, "google", appMetrics)

	return res, mockProvider, mockRepo
}

func TestResolve_Online(t *testing.T) {
	ctx := t.Context()
	suggestion := models.AddressSuggestion{
		PlaceID:          "p1",
		Name:             "Kresnas 4",
		FormattedAddress: "Kresnas 4, Athens, 11473",
	}

	t.Run("structured details resolve to canonical address", func(t *testing.T) {
		res, mockProvider, mockRepo := newResolver(t)
		coords := &models.Coordinates{Latitude: 37.97945, Longitude: 23.71622}

		mockProvider.On("PlaceDetails", ctx, "p1", mock.Anything).Return(&geocoding.PlaceDetails{
			PlaceID:          "p1",
			StreetNumber:     "4",
			Route:            "Kresnas",
			City:             "Athens",
			PostalCode:       "11473",
			FormattedAddress: "Kresnas 4, Athens, 11473, Greece",
			Location:         coords,
		}, nil).Once()

		persisted := make(chan models.OfflineCandidateRecord, 1)
		mockRepo.On("EnsureRuntimeReady", mock.Anything, "branch-1").Return(nil).Once()
		mockRepo.On("UpsertVerifiedCandidate", mock.Anything, mock.AnythingOfType("models.OfflineCandidateRecord")).
			Run(func(args mock.Arguments) {
				record, _ := args.Get(1).(models.OfflineCandidateRecord)
				persisted <- record
			}).
			Return(nil).Once()

		resolved := res.Resolve(ctx, suggestion, "kresnas 4", resolver.Context{BranchID: "branch-1"})

		require.NotNil(t, resolved)
		assert.Equal(t, "Kresnas 4", resolved.StreetAddress)
		assert.Equal(t, "Athens", resolved.City)
		assert.Equal(t, "11473", resolved.PostalCode)
		assert.Equal(t, "4", resolved.ResolvedStreetNumber)
		assert.Equal(t, models.SourceOnline, resolved.ValidationSource)
		assert.Equal(t, fingerprint.Fingerprint("Kresnas 4", coords), resolved.AddressFingerprint)

		select {
		case record := <-persisted:
			assert.Equal(t, "branch-1", record.BranchID)
			assert.Equal(t, resolved.AddressFingerprint, record.AddressFingerprint)
			assert.True(t, record.Verified)
			assert.Equal(t, models.SourceOnline, record.Source)
		case <-time.After(persistTimeout):
			t.Fatal("verified candidate was never persisted")
		}
	})

	t.Run("missing components fall back to suggestion name", func(t *testing.T) {
		res, mockProvider, mockRepo := newResolver(t)

		mockProvider.On("PlaceDetails", ctx, "p1", mock.Anything).Return(&geocoding.PlaceDetails{
			PlaceID:          "p1",
			FormattedAddress: "Kresnas 4, Athens, 11473, Greece",
			Location:         &models.Coordinates{Latitude: 37.97945, Longitude: 23.71622},
		}, nil).Once()

		persisted := make(chan struct{})
		mockRepo.On("EnsureRuntimeReady", mock.Anything, "branch-1").Return(nil).Once()
		mockRepo.On("UpsertVerifiedCandidate", mock.Anything, mock.AnythingOfType("models.OfflineCandidateRecord")).
			Run(func(mock.Arguments) { close(persisted) }).
			Return(nil).Once()

		resolved := res.Resolve(ctx, suggestion, "kresnas 4", resolver.Context{BranchID: "branch-1"})

		assert.Equal(t, "Kresnas 4", resolved.StreetAddress)
		assert.Empty(t, resolved.City)

		select {
		case <-persisted:
		case <-time.After(persistTimeout):
			t.Fatal("verified candidate was never persisted")
		}
	})
}

func TestResolve_Offline(t *testing.T) {
	ctx := t.Context()
	suggestion := models.AddressSuggestion{
		PlaceID:          "p1",
		Name:             "Kresnas 4",
		FormattedAddress: "Kresnas 4, Athens, 11473",
	}
	key := fingerprint.Fingerprint("Kresnas 4", nil)

	t.Run("offline fingerprint hit", func(t *testing.T) {
		res, mockProvider, mockRepo := newResolver(t)
		record := &models.OfflineCandidateRecord{
			PlaceID:              "p1",
			BranchID:             "branch-1",
			Name:                 "Kresnas 4",
			FormattedAddress:     "Kresnas 4, Athens, 11473, Greece",
			City:                 "Athens",
			PostalCode:           "11473",
			Location:             &models.Coordinates{Latitude: 37.97945, Longitude: 23.71622},
			ResolvedStreetNumber: "4",
			AddressFingerprint:   "stored-fp",
			Source:               models.SourceOnline,
			Verified:             true,
		}

		mockProvider.On("PlaceDetails", ctx, "p1", mock.Anything).Return(nil, assert.AnError).Once()
		mockRepo.On("LookupByFingerprint", ctx, "branch-1", key).Return(record, nil).Once()

		resolved := res.Resolve(ctx, suggestion, "kresnas 4", resolver.Context{BranchID: "branch-1"})

		require.NotNil(t, resolved)
		assert.Equal(t, "Kresnas 4", resolved.StreetAddress)
		assert.Equal(t, "Athens", resolved.City)
		assert.Equal(t, "stored-fp", resolved.AddressFingerprint)
		assert.Equal(t, models.SourceOfflineCache, resolved.ValidationSource)
	})

	t.Run("offline text hit after fingerprint miss", func(t *testing.T) {
		res, mockProvider, mockRepo := newResolver(t)
		records := []models.OfflineCandidateRecord{{
			Name:               "Kresnas 4",
			FormattedAddress:   "Kresnas 4, Athens",
			City:               "Athens",
			AddressFingerprint: "stored-fp",
			Source:             models.SourceOnline,
			Verified:           true,
		}}

		mockProvider.On("PlaceDetails", ctx, "p1", mock.Anything).Return(nil, assert.AnError).Once()
		mockRepo.On("LookupByFingerprint", ctx, "branch-1", key).Return(nil, nil).Once()
		mockRepo.On("LookupByText", ctx, "branch-1", "Kresnas 4", 1).Return(records, nil).Once()

		resolved := res.Resolve(ctx, suggestion, "kresnas 4", resolver.Context{BranchID: "branch-1"})

		assert.Equal(t, "stored-fp", resolved.AddressFingerprint)
		assert.Equal(t, models.SourceOfflineCache, resolved.ValidationSource)
	})

	t.Run("store failure degrades to text-derived address", func(t *testing.T) {
		res, mockProvider, mockRepo := newResolver(t)

		mockProvider.On("PlaceDetails", ctx, "p1", mock.Anything).Return(nil, assert.AnError).Once()
		mockRepo.On("LookupByFingerprint", ctx, "branch-1", key).Return(nil, assert.AnError).Once()
		mockRepo.On("LookupByText", ctx, "branch-1", "Kresnas 4", 1).Return(nil, assert.AnError).Once()

		resolved := res.Resolve(ctx, suggestion, "kresnas 4", resolver.Context{BranchID: "branch-1"})

		require.NotNil(t, resolved)
		assert.Equal(t, "Kresnas 4", resolved.StreetAddress)
		assert.Nil(t, resolved.Coordinates)
		assert.Empty(t, resolved.ValidationSource)
		assert.Equal(t, fingerprint.Fingerprint("Kresnas 4", nil), resolved.AddressFingerprint)
	})

	t.Run("degraded street falls back to first formatted segment", func(t *testing.T) {
		res, mockProvider, mockRepo := newResolver(t)
		nameless := models.AddressSuggestion{
			PlaceID:          "p2",
			FormattedAddress: "Kreontos 12, Athens, 10443",
		}
		namelessKey := fingerprint.Fingerprint("", nil)

		mockProvider.On("PlaceDetails", ctx, "p2", mock.Anything).Return(nil, assert.AnError).Once()
		mockRepo.On("LookupByFingerprint", ctx, "branch-1", namelessKey).Return(nil, nil).Once()
		mockRepo.On("LookupByText", ctx, "branch-1", "Kreontos 12", 1).Return(nil, nil).Once()

		resolved := res.Resolve(ctx, nameless, "", resolver.Context{BranchID: "branch-1"})

		assert.Equal(t, "Kreontos 12", resolved.StreetAddress)
	})
}
