// Package zone classifies resolved addresses against delivery service
// boundaries by calling the delivery zone service.
package zone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
	"golang.org/x/time/rate"
)

// Context carries the request context for one zone check. The street-number
// fields are passed through so the zone service, or an auditor downstream,
// can flag mismatches between what the user typed and what the provider
// geocoded.
type Context struct {
	BranchID             string
	OrderAmount          float64
	PlaceID              string
	Coordinates          *models.Coordinates
	InputStreetNumber    string
	ResolvedStreetNumber string
	AddressFingerprint   string
	ValidationSource     models.ValidationSource
}

// Validator classifies an address against delivery-zone boundaries.
// Implementations never fail the caller: transport problems are absorbed
// into an unverified_offline result that requires a manual override.
type Validator interface {
	Validate(ctx context.Context, addressText string, vctx Context) models.ValidationResult
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the delivery zone service over HTTP.
type Client struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL of the zone service
	apiKey  string        // Resolved credential passed through from configuration
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// validateRequest is the wire shape of a zone check.
type validateRequest struct {
	Address              string   `json:"address"`
	BranchID             string   `json:"branch_id"`
	OrderAmount          float64  `json:"order_amount"`
	PlaceID              string   `json:"place_id,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	InputStreetNumber    string   `json:"input_street_number,omitempty"`
	ResolvedStreetNumber string   `json:"resolved_street_number,omitempty"`
	AddressFingerprint   string   `json:"address_fingerprint"`
	ValidationSource     string   `json:"validation_source,omitempty"`
}

// validateResponse is the wire shape of the zone service reply.
type validateResponse struct {
	Matched          bool                 `json:"matched"`
	Inside           bool                 `json:"inside"`
	HouseNumberMatch *bool                `json:"house_number_match,omitempty"`
	Message          string               `json:"message,omitempty"`
	SuggestedAction  string               `json:"suggested_action,omitempty"`
	Zone             *models.DeliveryZone `json:"zone,omitempty"`
}

// unverifiedMessage is shown when the service cannot be reached; the user may
// proceed only through a manual override.
const unverifiedMessage = "Delivery zone could not be verified. Manual override is required to proceed."

// NewClient creates a new zone service client.
func NewClient(baseURL, apiKey string, rateLimit int, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewClientWithHTTPClient allows injecting custom HTTP client.
func NewClientWithHTTPClient(client HTTPClient, baseURL, apiKey string, limiter *rate.Limiter, log *slog.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// Validate issues the zone-lookup call and classifies the result. Repeated
// calls with the same fingerprint return the same classification barring
// zone-configuration changes server-side. Transport failures yield an
// unverified_offline result, never a silent in_zone and never a hard error.
func (c *Client) Validate(ctx context.Context, addressText string, vctx Context) models.ValidationResult {
	c.log.DebugContext(ctx, "Validating delivery zone",
		"address", addressText, "branch", vctx.BranchID, "fingerprint", vctx.AddressFingerprint)

	resp, err := c.call(ctx, addressText, vctx)
	if err != nil {
		c.log.ErrorContext(ctx, "Zone service unreachable, falling back to unverified result",
			"error", err, "branch", vctx.BranchID)

		return models.ValidationResult{
			Success:            false,
			ValidationStatus:   models.StatusUnverifiedOffline,
			RequiresOverride:   true,
			HouseNumberMatch:   vctx.InputStreetNumber == "" || vctx.InputStreetNumber == vctx.ResolvedStreetNumber,
			Message:            unverifiedMessage,
			Coordinates:        vctx.Coordinates,
			AddressFingerprint: vctx.AddressFingerprint,
			ValidationSource:   vctx.ValidationSource,
		}
	}

	return classify(resp, vctx)
}

// classify maps the service's zone match onto a ValidationResult.
func classify(resp *validateResponse, vctx Context) models.ValidationResult {
	result := models.ValidationResult{
		Success:            true,
		HouseNumberMatch:   true,
		Message:            resp.Message,
		SelectedZone:       resp.Zone,
		Coordinates:        vctx.Coordinates,
		AddressFingerprint: vctx.AddressFingerprint,
		ValidationSource:   vctx.ValidationSource,
		SuggestedAction:    resp.SuggestedAction,
	}

	if resp.HouseNumberMatch != nil {
		result.HouseNumberMatch = *resp.HouseNumberMatch
	}

	if resp.Matched && resp.Inside {
		result.ValidationStatus = models.StatusInZone
		result.IsValid = true
		result.DeliveryAvailable = true
		return result
	}

	result.ValidationStatus = models.StatusOutOfZone
	result.RequiresOverride = true
	if result.Message == "" {
		result.Message = "Address is outside the delivery area."
	}

	return result
}

// call performs the HTTP round trip to the zone service.
func (c *Client) call(ctx context.Context, addressText string, vctx Context) (*validateResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	payload := validateRequest{
		Address:              addressText,
		BranchID:             vctx.BranchID,
		OrderAmount:          vctx.OrderAmount,
		PlaceID:              vctx.PlaceID,
		InputStreetNumber:    vctx.InputStreetNumber,
		ResolvedStreetNumber: vctx.ResolvedStreetNumber,
		AddressFingerprint:   vctx.AddressFingerprint,
		ValidationSource:     string(vctx.ValidationSource),
	}
	if vctx.Coordinates != nil {
		payload.Latitude = &vctx.Coordinates.Latitude
		payload.Longitude = &vctx.Coordinates.Longitude
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/validate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zone service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var decoded validateResponse
	if err = json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &decoded, nil
}
