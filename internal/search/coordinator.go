// Package search turns noisy keystroke input into a small number of
// well-ordered suggestion fetches and guarantees that only the latest
// input's result is ever shown.
package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/hermes/internal/fingerprint"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/repository"
)

// minQueryLength is the shortest normalized input that triggers a search.
// Anything shorter clears the suggestion list and suppresses in-flight work.
const minQueryLength = 3

// Snapshot is the coordinator state visible to a UI layer.
type Snapshot struct {
	Suggestions []models.AddressSuggestion
	Loading     bool
	RequestID   uint64
}

// Coordinator debounces raw keystrokes, stamps each search with a
// monotonically increasing request id, and discards any completion whose id
// no longer matches the current counter. Without that discipline a slow
// response to an earlier keystroke could overwrite the suggestions for a
// later, faster-returning one.
type Coordinator struct {
	log          *slog.Logger
	provider     geocoding.Provider
	repo         repository.Interface
	providerName string
	metrics      *metrics.Metrics
	branchID     string
	debounce     time.Duration
	limit        int
	onUpdate     func(Snapshot)

	mu          sync.Mutex
	seq         uint64
	timer       *time.Timer
	suggestions []models.AddressSuggestion
	loading     bool
}

// NewCoordinator creates a coordinator for one in-progress form. onUpdate,
// when non-nil, is invoked with a fresh snapshot after every visible change;
// it is always called outside the coordinator lock.
func NewCoordinator(
	log *slog.Logger,
	provider geocoding.Provider,
	repo repository.Interface,
	providerName string,
	appMetrics *metrics.Metrics,
	branchID string,
	debounce time.Duration,
	limit int,
	onUpdate func(Snapshot),
) *Coordinator {
	return &Coordinator{
		log:          log,
		provider:     provider,
		repo:         repo,
		providerName: providerName,
		metrics:      appMetrics,
		branchID:     branchID,
		debounce:     debounce,
		limit:        limit,
		onUpdate:     onUpdate,
	}
}

// SetInput registers a new input value. Any pending debounce timer is
// cancelled; short input clears the suggestions immediately and invalidates
// whatever is still in flight.
func (c *Coordinator) SetInput(ctx context.Context, text string) {
	c.mu.Lock()
	c.stopTimerLocked()
	c.seq++
	requestID := c.seq

	query := fingerprint.Normalize(text)
	if len([]rune(query)) < minQueryLength {
		c.suggestions = nil
		c.loading = false
		snapshot := c.snapshotLocked()
		c.mu.Unlock()

		c.notify(snapshot)
		return
	}

	c.loading = true
	c.timer = time.AfterFunc(c.debounce, func() {
		c.execute(ctx, requestID, query)
	})
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snapshot)
}

// Snapshot returns the current visible state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// Close cancels any pending debounce timer and invalidates in-flight work.
// No background tasks survive a closed coordinator.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.seq++
	c.suggestions = nil
	c.loading = false
}

// execute runs one debounced search carrying its request id. The id is
// compared against the session counter immediately before applying the
// result; a mismatch means a newer query has superseded this one and the
// result is discarded unconditionally.
func (c *Coordinator) execute(ctx context.Context, requestID uint64, query string) {
	c.mu.Lock()
	superseded := requestID != c.seq
	c.mu.Unlock()
	if superseded {
		c.metrics.StaleDiscards.Inc()
		return
	}

	startTime := time.Now()
	suggestions, err := c.provider.Search(ctx, query, geocoding.SearchOptions{
		BranchID: c.branchID,
		Limit:    c.limit,
	})
	c.metrics.RequestSeconds.WithLabelValues(c.providerName).Observe(time.Since(startTime).Seconds())

	source := models.SourceOnline
	if err != nil {
		c.log.ErrorContext(ctx, "Suggestion search failed, falling back to offline store",
			"query", query, "error", err)
		c.metrics.ProviderErrors.Inc()

		suggestions = c.offlineSuggestions(ctx, query)
		source = models.SourceOfflineCache
	}
	c.metrics.SearchesTotal.WithLabelValues(string(source)).Inc()

	c.mu.Lock()
	if requestID != c.seq {
		c.mu.Unlock()
		c.metrics.StaleDiscards.Inc()
		return
	}
	c.suggestions = suggestions
	c.loading = false
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snapshot)
}

// offlineSuggestions serves the degraded suggestion source from the offline
// candidate store. Storage failures degrade to an empty list.
func (c *Coordinator) offlineSuggestions(ctx context.Context, query string) []models.AddressSuggestion {
	records, err := c.repo.LookupByText(ctx, c.branchID, query, c.limit)
	if err != nil {
		c.log.ErrorContext(ctx, "Offline suggestion lookup failed", "query", query, "error", err)
		c.metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil
	}

	if len(records) == 0 {
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	c.metrics.CacheLookups.WithLabelValues("hit").Inc()

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

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) snapshotLocked() Snapshot {
	suggestions := make([]models.AddressSuggestion, len(c.suggestions))
	copy(suggestions, c.suggestions)

	return Snapshot{Suggestions: suggestions, Loading: c.loading, RequestID: c.seq}
}

func (c *Coordinator) notify(snapshot Snapshot) {
	if c.onUpdate != nil {
		c.onUpdate(snapshot)
	}
}
