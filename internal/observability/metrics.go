package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "menuqr",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "menuqr",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	codecEncodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "menuqr",
			Subsystem: "codec",
			Name:      "encodes_total",
			Help:      "Menu tokens produced, by schema version.",
		},
		[]string{"version"},
	)
	codecDecodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "menuqr",
			Subsystem: "codec",
			Name:      "decodes_total",
			Help:      "Menu token decodes, by schema version or failure.",
		},
		[]string{"result"},
	)
	linkLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "menuqr",
			Subsystem: "codec",
			Name:      "link_length_chars",
			Help:      "Character length of issued shareable links.",
			Buckets:   []float64{250, 500, 1000, 1500, 2000, 3000, 5000, 10000},
		},
	)
	capacityOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "menuqr",
			Subsystem: "capacity",
			Name:      "outcomes_total",
			Help:      "Capacity classification results for issued links.",
		},
		[]string{"outcome"},
	)
	ipLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "menuqr",
			Subsystem: "provenance",
			Name:      "ip_lookups_total",
			Help:      "Caller address lookups, by success.",
		},
		[]string{"success"},
	)
	publishSuperseded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "menuqr",
			Subsystem: "editor",
			Name:      "publish_superseded_total",
			Help:      "Publish cycles dropped because a newer cycle was already applied or started.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			codecEncodes,
			codecDecodes,
			linkLength,
			capacityOutcomes,
			ipLookups,
			publishSuperseded,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordEncode(version string, linkChars int, outcome string) {
	RegisterMetrics()
	codecEncodes.WithLabelValues(version).Inc()
	linkLength.Observe(float64(linkChars))
	capacityOutcomes.WithLabelValues(outcome).Inc()
}

func RecordDecode(result string) {
	RegisterMetrics()
	codecDecodes.WithLabelValues(result).Inc()
}

func RecordIPLookup(success bool) {
	RegisterMetrics()
	ipLookups.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func RecordPublishSuperseded() {
	RegisterMetrics()
	publishSuperseded.Inc()
}
