package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "api_requests_total",
			Help:      "Count of Holidaze API requests by endpoint and status class.",
		},
		[]string{"endpoint", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "holidaze",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of Holidaze API requests.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	apiCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "api_cache_hits_total",
			Help:      "Count of venue list pages served from Redis.",
		},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "availability_checks_total",
			Help:      "Count of availability checks by verdict.",
		},
		[]string{"verdict"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "booking_created_total",
			Help:      "Count of booking attempts by outcome.",
		},
		[]string{"status"},
	)

	sessionChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "session_changes_total",
			Help:      "Count of session writes by kind.",
		},
		[]string{"kind"},
	)

	breakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "holidaze",
			Name:      "api_circuit_open",
			Help:      "1 while the API circuit breaker is open.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, apiDuration, apiCacheHits, availabilityChecks,
			bookingCreated, sessionChanges, breakerState)
	})
}

// ObserveAPI records one API call. status 0 means the request never got a response.
func ObserveAPI(endpoint string, status int, elapsed time.Duration) {
	apiRequests.WithLabelValues(endpoint, statusClass(status)).Inc()
	apiDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func IncCacheHit() {
	apiCacheHits.Inc()
}

func IncAvailabilityCheck(verdict string) {
	availabilityChecks.WithLabelValues(verdict).Inc()
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncSessionChange(kind string) {
	sessionChanges.WithLabelValues(kind).Inc()
}

func SetCircuitOpen(open bool) {
	if open {
		breakerState.Set(1)
		return
	}
	breakerState.Set(0)
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
