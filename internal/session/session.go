// Package session owns the validation state of one in-progress address form:
// the current classification, the fingerprint snapshot, the override decision,
// and the submission gate.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/UnknownOlympus/hermes/internal/fingerprint"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/resolver"
	"github.com/UnknownOlympus/hermes/internal/zone"
)

// Submission gate errors. These are the only errors of the engine that halt
// the user-visible flow, and each carries a distinguishable reason.
var (
	ErrSelectionRequired      = errors.New("select an address from the suggestions")
	ErrOverrideRequired       = errors.New("delivery is unavailable for this address; accept the override to proceed")
	ErrOverrideReasonTooShort = errors.New("override reason is too short")
	ErrValidationFailed       = errors.New("address validation failed")
)

// minOverrideReasonLength is the minimum trimmed length of an override reason.
const minOverrideReasonLength = 6

// AddressResolver converts a selected suggestion into a resolved address.
type AddressResolver interface {
	Resolve(
		ctx context.Context,
		suggestion models.AddressSuggestion,
		rawInput string,
		rctx resolver.Context,
	) *models.ResolvedAddress
}

// View is the session state exposed to a UI layer. The UI derives all of its
// booleans from this value rather than owning them independently.
type View struct {
	ValidationStatus models.ValidationStatus
	Message          string
	SelectedZone     *models.DeliveryZone
	IsValidating     bool
	OverrideApplied  bool
	OverrideReason   string
}

// Session is the stateful orchestrator for one form-fill session. One
// instance exists per in-progress form; it is safe for use from concurrent
// callbacks within that session.
type Session struct {
	log         *slog.Logger
	resolver    AddressResolver
	validator   zone.Validator
	metrics     *metrics.Metrics
	branchID    string
	settleDelay time.Duration
	onUpdate    func(View)

	mu           sync.Mutex
	epoch        uint64 // bumped on every address change; stale results compare against it
	status       models.ValidationStatus
	isValidating bool
	addressText  string
	orderAmount  float64
	resolved     *models.ResolvedAddress
	result       *models.ValidationResult
	override     models.OverrideDecision
	settleTimer  *time.Timer
	pending      *pendingSelection
}

// pendingSelection is a selected suggestion whose resolution has not been
// applied yet. It lets the submission gate run the resolution inline instead
// of waiting out the settle timer.
type pendingSelection struct {
	suggestion models.AddressSuggestion
	rawInput   string
}

// NewSession creates a validation session for one form. onUpdate, when
// non-nil, receives a fresh view after every visible change, outside the
// session lock.
func NewSession(
	log *slog.Logger,
	addressResolver AddressResolver,
	validator zone.Validator,
	appMetrics *metrics.Metrics,
	branchID string,
	orderAmount float64,
	settleDelay time.Duration,
	onUpdate func(View),
) *Session {
	return &Session{
		log:         log,
		resolver:    addressResolver,
		validator:   validator,
		metrics:     appMetrics,
		branchID:    branchID,
		orderAmount: orderAmount,
		settleDelay: settleDelay,
		onUpdate:    onUpdate,
		status:      models.StatusIdle,
	}
}

// SetOrderAmount updates the order amount carried into zone checks.
func (s *Session) SetOrderAmount(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderAmount = amount
}

// OnAddressTextChanged registers free typing in the address field. Empty text
// resets the session to idle; non-empty text that was not selected from a
// suggestion yields a local requires_selection result without a network call,
// so the UI can immediately tell the user to pick a real suggestion.
func (s *Session) OnAddressTextChanged(_ context.Context, text string) {
	s.mu.Lock()
	s.invalidateLocked()
	s.addressText = text

	if strings.TrimSpace(text) == "" {
		s.status = models.StatusIdle
		s.result = nil
	} else {
		s.status = models.StatusRequiresSelection
		s.result = &models.ValidationResult{
			Success:            true,
			ValidationStatus:   models.StatusRequiresSelection,
			Message:            ErrSelectionRequired.Error(),
			AddressFingerprint: fingerprint.Fingerprint(text, nil),
		}
	}
	view := s.viewLocked()
	s.mu.Unlock()

	s.notify(view)
}

// OnSuggestionSelected registers a suggestion pick. The suggestion is
// resolved and validated after a short settle delay, independent of the
// search debounce; a result is applied only if the address has not changed
// again in the meantime.
func (s *Session) OnSuggestionSelected(ctx context.Context, suggestion models.AddressSuggestion) {
	s.mu.Lock()
	s.invalidateLocked()
	epoch := s.epoch
	rawInput := s.addressText
	s.addressText = suggestion.FormattedAddress
	s.isValidating = true
	s.pending = &pendingSelection{suggestion: suggestion, rawInput: rawInput}

	s.settleTimer = time.AfterFunc(s.settleDelay, func() {
		s.resolveAndValidate(ctx, epoch, suggestion, rawInput)
	})
	view := s.viewLocked()
	s.mu.Unlock()

	s.notify(view)
}

// SetOverride records the user's override decision.
func (s *Session) SetOverride(applied bool, reason string) {
	s.mu.Lock()
	s.override = models.OverrideDecision{Applied: applied, Reason: reason}
	view := s.viewLocked()
	s.mu.Unlock()

	s.notify(view)
}

// View returns the current session state for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewLocked()
}

// Result returns the last applied validation result, or nil.
func (s *Session) Result() *models.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.result
}

// Close tears the session down, cancelling any pending settle timer.
// In-flight work is discarded on arrival.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
}

// EvaluateSubmission is the submission gate, called at form-submit time. The
// user may submit faster than validation completes, so a still-settling
// selection is resolved and validated inline, and a missing or stale result
// triggers a synchronous re-validation before the gate decides. An unchanged
// fingerprint reuses the stored result instead of issuing a new zone call.
func (s *Session) EvaluateSubmission(ctx context.Context) error {
	s.mu.Lock()

	if s.pending != nil {
		// The settle delay has not elapsed; run the selection's resolution
		// now instead of making the user wait out the timer. Bumping the
		// epoch discards whatever the timer may still deliver.
		pending := *s.pending
		s.pending = nil
		if s.settleTimer != nil {
			s.settleTimer.Stop()
			s.settleTimer = nil
		}
		s.epoch++
		epoch := s.epoch
		s.isValidating = true
		s.mu.Unlock()

		s.resolveAndValidate(ctx, epoch, pending.suggestion, pending.rawInput)

		s.mu.Lock()
		if epoch != s.epoch || s.result == nil {
			s.mu.Unlock()
			return ErrValidationFailed
		}
		result := s.result
		override := s.override
		s.mu.Unlock()

		return gate(result, override)
	}

	if s.status == models.StatusIdle || strings.TrimSpace(s.addressText) == "" {
		s.mu.Unlock()
		return ErrValidationFailed
	}
	if s.status == models.StatusRequiresSelection || s.resolved == nil {
		s.mu.Unlock()
		return ErrSelectionRequired
	}

	var updated *View
	if s.result != nil && s.result.AddressFingerprint == s.resolved.AddressFingerprint {
		s.metrics.SnapshotReuses.Inc()
	} else {
		// Do not submit against a stale or missing result.
		if err := s.revalidateLocked(ctx); err != nil {
			s.mu.Unlock()
			return err
		}
		view := s.viewLocked()
		updated = &view
	}

	result := s.result
	override := s.override
	s.mu.Unlock()

	if updated != nil {
		s.notify(*updated)
	}

	return gate(result, override)
}

// gate applies the submission policy to a fresh result.
func gate(result *models.ValidationResult, override models.OverrideDecision) error {
	switch result.ValidationStatus {
	case models.StatusInZone:
		return nil
	case models.StatusRequiresSelection:
		return ErrSelectionRequired
	case models.StatusOutOfZone, models.StatusUnverifiedOffline:
		if !override.Applied {
			return ErrOverrideRequired
		}
		if len(strings.TrimSpace(override.Reason)) < minOverrideReasonLength {
			return ErrOverrideReasonTooShort
		}
		return nil
	default:
		return ErrValidationFailed
	}
}

// revalidateLocked issues a synchronous zone check for the resolved address.
// Called with the lock held; the lock is dropped for the network call and the
// result is applied only if the address did not change meanwhile.
func (s *Session) revalidateLocked(ctx context.Context) error {
	epoch := s.epoch
	resolved := s.resolved
	vctx := s.zoneContextLocked(resolved)
	s.isValidating = true
	s.mu.Unlock()

	result := s.validator.Validate(ctx, resolved.StreetAddress, vctx)
	s.metrics.ValidationsTotal.WithLabelValues(string(result.ValidationStatus)).Inc()
	if !result.Success {
		s.metrics.ZoneServiceErrors.Inc()
	}

	s.mu.Lock()
	if epoch != s.epoch {
		// The address changed while the check was in flight.
		return ErrValidationFailed
	}
	s.applyResultLocked(result)

	return nil
}

// resolveAndValidate runs after the settle delay: resolve the suggestion,
// then classify it against the delivery zones. Both steps re-check the epoch
// before applying, symmetric to the search coordinator's request-id check.
func (s *Session) resolveAndValidate(
	ctx context.Context,
	epoch uint64,
	suggestion models.AddressSuggestion,
	rawInput string,
) {
	resolved := s.resolver.Resolve(ctx, suggestion, rawInput, resolver.Context{BranchID: s.branchID})

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.resolved = resolved
	s.pending = nil
	vctx := s.zoneContextLocked(resolved)
	s.mu.Unlock()

	result := s.validator.Validate(ctx, resolved.StreetAddress, vctx)
	s.metrics.ValidationsTotal.WithLabelValues(string(result.ValidationStatus)).Inc()
	if !result.Success {
		s.metrics.ZoneServiceErrors.Inc()
	}

	s.mu.Lock()
	if epoch != s.epoch || resolved.AddressFingerprint != s.resolved.AddressFingerprint {
		s.mu.Unlock()
		s.log.DebugContext(ctx, "Discarding stale validation result",
			"fingerprint", result.AddressFingerprint)
		return
	}
	s.applyResultLocked(result)
	view := s.viewLocked()
	s.mu.Unlock()

	s.notify(view)
}

// applyResultLocked installs a fresh classification. A fresh in_zone resets
// the override decision.
func (s *Session) applyResultLocked(result models.ValidationResult) {
	s.result = &result
	s.status = result.ValidationStatus
	s.isValidating = false

	if result.ValidationStatus == models.StatusInZone {
		s.override = models.OverrideDecision{}
	}
}

// zoneContextLocked assembles the zone check context from session state.
func (s *Session) zoneContextLocked(resolved *models.ResolvedAddress) zone.Context {
	return zone.Context{
		BranchID:             s.branchID,
		OrderAmount:          s.orderAmount,
		PlaceID:              resolved.PlaceID,
		Coordinates:          resolved.Coordinates,
		InputStreetNumber:    extractStreetNumber(s.addressText),
		ResolvedStreetNumber: resolved.ResolvedStreetNumber,
		AddressFingerprint:   resolved.AddressFingerprint,
		ValidationSource:     resolved.ValidationSource,
	}
}

// invalidateLocked bumps the epoch so in-flight work is discarded on arrival,
// stops the settle timer, and resets per-address state.
func (s *Session) invalidateLocked() {
	s.epoch++
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	s.resolved = nil
	s.pending = nil
	s.isValidating = false
	s.override = models.OverrideDecision{}
}

func (s *Session) viewLocked() View {
	view := View{
		ValidationStatus: s.status,
		IsValidating:     s.isValidating,
		OverrideApplied:  s.override.Applied,
		OverrideReason:   s.override.Reason,
	}
	if s.result != nil {
		view.Message = s.result.Message
		view.SelectedZone = s.result.SelectedZone
	}

	return view
}

func (s *Session) notify(view View) {
	if s.onUpdate != nil {
		s.onUpdate(view)
	}
}

// extractStreetNumber returns the first token of the text that starts with a
// digit, which is what the user typed as a house number.
func extractStreetNumber(text string) string {
	for _, field := range strings.Fields(text) {
		runes := []rune(field)
		if len(runes) > 0 && unicode.IsDigit(runes[0]) {
			return strings.TrimRight(field, ",.")
		}
	}

	return ""
}
