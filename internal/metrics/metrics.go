// Package metrics exposes the engine's Prometheus instrumentation.
// Registration is lazy and idempotent so tests can call the helpers
// without wiring a registry.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	checkIns     *prometheus.CounterVec
	spins        *prometheus.CounterVec
	redemptions  *prometheus.CounterVec
	cleanedUp    prometheus.Counter
	httpDuration *prometheus.HistogramVec
)

func register() {
	registerOnce.Do(func() {
		checkIns = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spinpoint_checkins_total",
			Help: "Check-in attempts by result.",
		}, []string{"result"})
		spins = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spinpoint_spins_total",
			Help: "Spin attempts by result.",
		}, []string{"result"})
		redemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spinpoint_redemptions_total",
			Help: "Redemption attempts by result.",
		}, []string{"result"})
		cleanedUp = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinpoint_expired_prizes_removed_total",
			Help: "Issued prizes removed by expiry cleanup.",
		})
		httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spinpoint_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		prometheus.MustRegister(checkIns, spins, redemptions, cleanedUp, httpDuration)
	})
}

// ObserveCheckIn counts one check-in attempt with its result label.
func ObserveCheckIn(result string) {
	register()
	checkIns.WithLabelValues(result).Inc()
}

// ObserveSpin counts one spin attempt with its result label.
func ObserveSpin(result string) {
	register()
	spins.WithLabelValues(result).Inc()
}

// ObserveRedemption counts one redemption attempt with its result label.
func ObserveRedemption(result string) {
	register()
	redemptions.WithLabelValues(result).Inc()
}

// AddCleanedPrizes counts prizes removed by the expiry sweep.
func AddCleanedPrizes(n int64) {
	register()
	if n > 0 {
		cleanedUp.Add(float64(n))
	}
}

// ObserveHTTPRequest records one request's latency.
func ObserveHTTPRequest(method, path, status string, seconds float64) {
	register()
	httpDuration.WithLabelValues(method, path, status).Observe(seconds)
}
