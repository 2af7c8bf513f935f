package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SearchesTotal     *prometheus.CounterVec
	StaleDiscards     prometheus.Counter
	ValidationsTotal  *prometheus.CounterVec
	ResolutionsTotal  *prometheus.CounterVec
	ProviderErrors    prometheus.Counter
	ZoneServiceErrors prometheus.Counter
	CacheLookups      *prometheus.CounterVec
	RequestSeconds    *prometheus.HistogramVec
	SnapshotReuses    prometheus.Counter
	HTTPRequests      *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SearchesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "address_searches_total",
			Help: "Total number of suggestion searches, labeled by serving source.",
		}, []string{"source"}),
		StaleDiscards: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "address_search_stale_discards_total",
			Help: "Total number of search responses discarded as superseded.",
		}),
		ValidationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "zone_validations_total",
			Help: "Total number of zone validations, labeled by resulting status.",
		}, []string{"status"}),
		ResolutionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "address_resolutions_total",
			Help: "Total number of address resolutions, labeled by validation source.",
		}, []string{"source"}),
		ProviderErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		ZoneServiceErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "zone_service_api_errors_total",
			Help: "Total number of errors received from the delivery zone service.",
		}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "offline_cache_lookups_total",
			Help: "Total number of offline candidate store lookups, labeled by outcome.",
		}, []string{"outcome"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "outbound_request_duration_seconds",
			Help:    "Duration of requests to outbound collaborators.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		SnapshotReuses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "validation_snapshot_reuses_total",
			Help: "Total number of submissions served from an unchanged validation snapshot.",
		}),
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hermes_http_requests_total",
			Help: "Total HTTP requests processed, labeled by status code.",
		}, []string{"method", "endpoint", "status"}),
		HTTPLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hermes_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "endpoint"}),
	}
}
