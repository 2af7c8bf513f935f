// Package server exposes the stateless engine operations over a thin JSON
// surface: suggestion search, address resolution, and zone validation. The
// per-form session and search coordinator remain library types and are not
// served here.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/repository"
	"github.com/UnknownOlympus/hermes/internal/resolver"
	"github.com/UnknownOlympus/hermes/internal/zone"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// AddressResolver converts a selected suggestion into a resolved address.
type AddressResolver interface {
	Resolve(
		ctx context.Context,
		suggestion models.AddressSuggestion,
		rawInput string,
		rctx resolver.Context,
	) *models.ResolvedAddress
}

// Server wires the engine components behind HTTP handlers.
type Server struct {
	log          *slog.Logger
	provider     geocoding.Provider
	repo         repository.Interface
	resolver     AddressResolver
	validator    zone.Validator
	providerName string
	metrics      *metrics.Metrics
	validate     *validator.Validate
	limit        int
}

// NewServer creates the HTTP surface over the given engine components.
func NewServer(
	log *slog.Logger,
	provider geocoding.Provider,
	repo repository.Interface,
	addressResolver AddressResolver,
	zoneValidator zone.Validator,
	providerName string,
	appMetrics *metrics.Metrics,
	limit int,
) *Server {
	return &Server{
		log:          log,
		provider:     provider,
		repo:         repo,
		resolver:     addressResolver,
		validator:    zoneValidator,
		providerName: providerName,
		metrics:      appMetrics,
		validate:     validator.New(),
		limit:        limit,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/suggestions", s.handleSuggestions).Methods(http.MethodPost)
	api.HandleFunc("/resolve", s.handleResolve).Methods(http.MethodPost)
	api.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)

	return router
}

type suggestionsRequest struct {
	Query        string              `json:"query"                   validate:"required,min=3"`
	BranchID     string              `json:"branch_id"               validate:"required"`
	Location     *models.Coordinates `json:"location,omitempty"`
	RadiusMeters uint                `json:"radius_meters,omitempty"`
	Limit        int                 `json:"limit,omitempty"         validate:"omitempty,min=1,max=20"`
}

type suggestionsResponse struct {
	Suggestions []models.AddressSuggestion `json:"suggestions"`
	Source      models.ValidationSource    `json:"source"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/v1/suggestions"
	timer := prometheus.NewTimer(s.metrics.HTTPLatency.WithLabelValues(http.MethodPost, endpoint))
	defer timer.ObserveDuration()

	var req suggestionsRequest
	if !s.decode(w, r, endpoint, &req) {
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.limit
	}

	startTime := time.Now()
	suggestions, err := s.provider.Search(r.Context(), req.Query, geocoding.SearchOptions{
		BranchID:     req.BranchID,
		Location:     req.Location,
		RadiusMeters: req.RadiusMeters,
		Limit:        limit,
	})
	s.metrics.RequestSeconds.WithLabelValues(s.providerName).Observe(time.Since(startTime).Seconds())

	source := models.SourceOnline
	if err != nil {
		s.log.ErrorContext(r.Context(), "Suggestion search failed, falling back to offline store",
			"query", req.Query, "error", err)
		s.metrics.ProviderErrors.Inc()

		suggestions = s.offlineSuggestions(r.Context(), req.BranchID, req.Query, limit)
		source = models.SourceOfflineCache
	}
	s.metrics.SearchesTotal.WithLabelValues(string(source)).Inc()

	if suggestions == nil {
		suggestions = []models.AddressSuggestion{}
	}
	s.respondJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions, Source: source},
		http.MethodPost, endpoint)
}

type resolveRequest struct {
	Suggestion models.AddressSuggestion `json:"suggestion" validate:"required"`
	RawInput   string                   `json:"raw_input"`
	BranchID   string                   `json:"branch_id"  validate:"required"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/v1/resolve"
	timer := prometheus.NewTimer(s.metrics.HTTPLatency.WithLabelValues(http.MethodPost, endpoint))
	defer timer.ObserveDuration()

	var req resolveRequest
	if !s.decode(w, r, endpoint, &req) {
		return
	}

	resolved := s.resolver.Resolve(r.Context(), req.Suggestion, req.RawInput,
		resolver.Context{BranchID: req.BranchID})

	s.respondJSON(w, http.StatusOK, resolved, http.MethodPost, endpoint)
}

type validateRequest struct {
	AddressText          string                  `json:"address_text"                     validate:"required"`
	BranchID             string                  `json:"branch_id"                        validate:"required"`
	OrderAmount          float64                 `json:"order_amount,omitempty"           validate:"omitempty,gte=0"`
	PlaceID              string                  `json:"place_id,omitempty"`
	Coordinates          *models.Coordinates     `json:"coordinates,omitempty"`
	InputStreetNumber    string                  `json:"input_street_number,omitempty"`
	ResolvedStreetNumber string                  `json:"resolved_street_number,omitempty"`
	AddressFingerprint   string                  `json:"address_fingerprint,omitempty"`
	ValidationSource     models.ValidationSource `json:"validation_source,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/v1/validate"
	timer := prometheus.NewTimer(s.metrics.HTTPLatency.WithLabelValues(http.MethodPost, endpoint))
	defer timer.ObserveDuration()

	var req validateRequest
	if !s.decode(w, r, endpoint, &req) {
		return
	}

	result := s.validator.Validate(r.Context(), req.AddressText, zone.Context{
		BranchID:             req.BranchID,
		OrderAmount:          req.OrderAmount,
		PlaceID:              req.PlaceID,
		Coordinates:          req.Coordinates,
		InputStreetNumber:    req.InputStreetNumber,
		ResolvedStreetNumber: req.ResolvedStreetNumber,
		AddressFingerprint:   req.AddressFingerprint,
		ValidationSource:     req.ValidationSource,
	})
	s.metrics.ValidationsTotal.WithLabelValues(string(result.ValidationStatus)).Inc()
	if !result.Success {
		s.metrics.ZoneServiceErrors.Inc()
	}

	s.respondJSON(w, http.StatusOK, result, http.MethodPost, endpoint)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, http.MethodGet, "/health")
}

// offlineSuggestions serves the degraded suggestion source from the offline
// candidate store. Storage failures degrade to an empty list.
func (s *Server) offlineSuggestions(
	ctx context.Context,
	branchID, query string,
	limit int,
) []models.AddressSuggestion {
	records, err := s.repo.LookupByText(ctx, branchID, query, limit)
	if err != nil {
		s.log.ErrorContext(ctx, "Offline suggestion lookup failed", "query", query, "error", err)
		s.metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil
	}

	if len(records) == 0 {
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	s.metrics.CacheLookups.WithLabelValues("hit").Inc()

	suggestions := make([]models.AddressSuggestion, 0, len(records))
	for _, record := range records {
		suggestions = append(suggestions, models.AddressSuggestion{
			PlaceID:          record.PlaceID,
			Name:             record.Name,
			FormattedAddress: record.FormattedAddress,
			Location:         record.Location,
			Source:           models.SourceOfflineCache,
		})
	}

	return suggestions
}

// decode parses and validates a JSON request body, responding with 400 or 422
// on failure. Returns false when a response was already written.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, endpoint string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "Malformed JSON body", r.Method, endpoint)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error(), r.Method, endpoint)
		return false
	}

	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, payload any, method, endpoint string) {
	s.metrics.HTTPRequests.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.log.Error("Failed to encode response", "endpoint", endpoint, "error", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, message, method, endpoint string) {
	s.respondJSON(w, code, map[string]string{"error": message}, method, endpoint)
}
