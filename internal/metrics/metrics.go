// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReservationsTotal counts reservation attempts by strategy and outcome.
	ReservationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_reservations_total",
		Help: "Total number of reservation attempts by strategy and outcome",
	}, []string{"strategy", "outcome"})
	// LockAcquisitionsTotal counts distributed lock acquisitions by outcome.
	LockAcquisitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_lock_acquisitions_total",
		Help: "Total number of distributed lock acquisitions by outcome",
	}, []string{"outcome"})
	// CacheLookupsTotal counts cache lookups by result (hit, miss).
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_cache_lookups_total",
		Help: "Total number of read-through cache lookups by result",
	}, []string{"cache", "result"})
	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"scope"})
	// EventsPublishFailedTotal counts domain events that could not be delivered.
	EventsPublishFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_events_publish_failed_total",
		Help: "Total number of domain events that failed to publish",
	})
)

// Reservation outcomes.
const (
	OutcomeReserved    = "reserved"
	OutcomeUnavailable = "unavailable"
	OutcomeConflict    = "conflict"
	OutcomeError       = "error"
)

// NewRegistry creates a registry with the service and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	Register(reg)

	return reg
}

// Register registers the service collectors on reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ReservationsTotal,
		LockAcquisitionsTotal,
		CacheLookupsTotal,
		RateLimitedTotal,
		EventsPublishFailedTotal,
	)
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveLock records a lock acquisition outcome.
func ObserveLock(outcome string) {
	LockAcquisitionsTotal.WithLabelValues(outcome).Inc()
}
