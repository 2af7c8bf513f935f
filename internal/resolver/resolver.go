// Package resolver converts selected address suggestions into canonical
// resolved addresses, backed by the geocoding provider with the offline
// candidate store as its degraded path.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hermes/internal/fingerprint"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/repository"
)

// Context identifies the branch an address is being resolved for.
type Context struct {
	BranchID string
}

// Resolver produces a ResolvedAddress from a selected suggestion. Resolve
// never fails: a hard failure here would block the user from ever entering
// an address, so every path degrades to a best-effort result instead.
type Resolver struct {
	log          *slog.Logger
	provider     geocoding.Provider
	repo         repository.Interface
	providerName string
	metrics      *metrics.Metrics
	writeTimeout time.Duration
}

// NewResolver creates a new Resolver instance.
func NewResolver(
	log *slog.Logger,
	provider geocoding.Provider,
	repo repository.Interface,
	providerName string,
	appMetrics *metrics.Metrics,
) *Resolver {
	const writeTimeout = 5 * time.Second

	return &Resolver{
		log:          log,
		provider:     provider,
		repo:         repo,
		providerName: providerName,
		metrics:      appMetrics,
		writeTimeout: writeTimeout,
	}
}

// Resolve converts the selected suggestion into a canonical ResolvedAddress.
// On provider success the result is tagged online and a verified candidate is
// written back to the offline store without blocking the caller. On provider
// failure the offline store is consulted; if that also yields nothing, a
// degraded address is derived from the suggestion text.
func (r *Resolver) Resolve(
	ctx context.Context,
	suggestion models.AddressSuggestion,
	rawInput string,
	rctx Context,
) *models.ResolvedAddress {
	startTime := time.Now()
	details, err := r.provider.PlaceDetails(ctx, suggestion.PlaceID, geocoding.DetailsHint{
		Location:         suggestion.Location,
		FormattedAddress: suggestion.FormattedAddress,
	})
	r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		r.log.ErrorContext(ctx, "Place details call failed, consulting offline store",
			"place_id", suggestion.PlaceID, "error", err)
		r.metrics.ProviderErrors.Inc()

		return r.resolveOffline(ctx, suggestion, rawInput, rctx)
	}

	resolved := r.fromDetails(details, suggestion, rawInput)
	r.metrics.ResolutionsTotal.WithLabelValues(string(models.SourceOnline)).Inc()

	// Fire and forget: resolution does not wait on the cache write.
	go r.persistCandidate(resolved, rctx.BranchID)

	return resolved
}

// fromDetails builds the canonical address from a structured provider response.
func (r *Resolver) fromDetails(
	details *geocoding.PlaceDetails,
	suggestion models.AddressSuggestion,
	rawInput string,
) *models.ResolvedAddress {
	street := strings.TrimSpace(details.Route + " " + details.StreetNumber)
	if street == "" {
		// Raw-text-only result without structured components.
		street = fallbackStreet(suggestion, rawInput)
	}

	return &models.ResolvedAddress{
		StreetAddress:        street,
		City:                 details.City,
		PostalCode:           details.PostalCode,
		Coordinates:          details.Location,
		PlaceID:              details.PlaceID,
		ResolvedStreetNumber: details.StreetNumber,
		AddressFingerprint:   fingerprint.Fingerprint(street, details.Location),
		ValidationSource:     models.SourceOnline,
		FormattedAddress:     details.FormattedAddress,
	}
}

// resolveOffline serves resolution from the offline candidate store, falling
// back to a degraded text-derived address when no candidate matches.
func (r *Resolver) resolveOffline(
	ctx context.Context,
	suggestion models.AddressSuggestion,
	rawInput string,
	rctx Context,
) *models.ResolvedAddress {
	record := r.lookupCandidate(ctx, suggestion, rctx.BranchID)
	if record != nil {
		r.metrics.CacheLookups.WithLabelValues("hit").Inc()
		r.metrics.ResolutionsTotal.WithLabelValues(string(models.SourceOfflineCache)).Inc()

		street := strings.TrimSpace(record.Name)
		if street == "" {
			street = firstSegment(record.FormattedAddress)
		}

		return &models.ResolvedAddress{
			StreetAddress:        street,
			City:                 record.City,
			PostalCode:           record.PostalCode,
			Coordinates:          record.Location,
			PlaceID:              record.PlaceID,
			ResolvedStreetNumber: record.ResolvedStreetNumber,
			AddressFingerprint:   record.AddressFingerprint,
			ValidationSource:     models.SourceOfflineCache,
			FormattedAddress:     record.FormattedAddress,
		}
	}

	r.metrics.CacheLookups.WithLabelValues("miss").Inc()
	r.metrics.ResolutionsTotal.WithLabelValues("degraded").Inc()

	street := fallbackStreet(suggestion, rawInput)

	return &models.ResolvedAddress{
		StreetAddress:      street,
		PlaceID:            suggestion.PlaceID,
		AddressFingerprint: fingerprint.Fingerprint(street, nil),
		FormattedAddress:   suggestion.FormattedAddress,
	}
}

// lookupCandidate tries the fingerprint index first, then the text index.
// Store failures are swallowed: an empty cache is an expected state.
func (r *Resolver) lookupCandidate(
	ctx context.Context,
	suggestion models.AddressSuggestion,
	branchID string,
) *models.OfflineCandidateRecord {
	key := fingerprint.Fingerprint(suggestion.Name, suggestion.Location)
	record, err := r.repo.LookupByFingerprint(ctx, branchID, key)
	if err != nil {
		r.log.ErrorContext(ctx, "Offline fingerprint lookup failed", "error", err)
	}
	if record != nil {
		return record
	}

	query := suggestion.Name
	if query == "" {
		query = firstSegment(suggestion.FormattedAddress)
	}

	records, err := r.repo.LookupByText(ctx, branchID, query, 1)
	if err != nil {
		r.log.ErrorContext(ctx, "Offline text lookup failed", "error", err)
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	return &records[0]
}

// persistCandidate writes the verified candidate back to the offline store.
// Runs detached from the request; errors are logged only.
func (r *Resolver) persistCandidate(resolved *models.ResolvedAddress, branchID string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	record := models.OfflineCandidateRecord{
		PlaceID:              resolved.PlaceID,
		BranchID:             branchID,
		Name:                 resolved.StreetAddress,
		FormattedAddress:     resolved.FormattedAddress,
		City:                 resolved.City,
		PostalCode:           resolved.PostalCode,
		Location:             resolved.Coordinates,
		ResolvedStreetNumber: resolved.ResolvedStreetNumber,
		AddressFingerprint:   resolved.AddressFingerprint,
		Source:               models.SourceOnline,
		Verified:             true,
	}

	if err := r.repo.EnsureRuntimeReady(ctx, branchID); err != nil {
		r.log.ErrorContext(ctx, "Offline store is not ready, skipping candidate write",
			"branch", branchID, "error", err)
		return
	}

	if err := r.repo.UpsertVerifiedCandidate(ctx, record); err != nil {
		r.log.ErrorContext(ctx, "Failed to persist verified candidate",
			"branch", branchID, "fingerprint", record.AddressFingerprint, "error", err)
	}
}

// fallbackStreet derives a best-effort street line from the suggestion name,
// the first comma-delimited segment of its formatted address, or the raw input.
func fallbackStreet(suggestion models.AddressSuggestion, rawInput string) string {
	if name := strings.TrimSpace(suggestion.Name); name != "" {
		return name
	}
	if segment := firstSegment(suggestion.FormattedAddress); segment != "" {
		return segment
	}

	return strings.TrimSpace(rawInput)
}

// firstSegment returns the text before the first comma.
func firstSegment(formatted string) string {
	segment, _, _ := strings.Cut(formatted, ",")

	return strings.TrimSpace(segment)
}
