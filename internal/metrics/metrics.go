// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers and background jobs report to.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordAuth(kind string, ok bool)
	RecordBooking(tickets int)
	RecordCancellation()
	RecordSaveToggle(saved bool)
	RecordSearch(hits int)
	RecordCatalogReload(ok bool)
	RecordEvictions(count int)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	auth            *prometheus.CounterVec
	bookings        prometheus.Counter
	tickets         prometheus.Counter
	cancellations   prometheus.Counter
	saveToggles     *prometheus.CounterVec
	searches        prometheus.Counter
	searchHits      prometheus.Histogram
	catalogReloads  *prometheus.CounterVec
	evictions       prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secretshows_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "secretshows_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		auth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secretshows_auth_attempts_total",
			Help: "Login and signup attempts by outcome.",
		}, []string{"kind", "result"}),
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretshows_bookings_total",
			Help: "Bookings confirmed.",
		}),
		tickets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretshows_tickets_booked_total",
			Help: "Tickets across all confirmed bookings.",
		}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretshows_booking_cancellations_total",
			Help: "Booking cancellation requests.",
		}),
		saveToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secretshows_save_toggles_total",
			Help: "Save toggles by resulting state.",
		}, []string{"state"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretshows_searches_total",
			Help: "Typeahead searches executed.",
		}),
		searchHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "secretshows_search_hits",
			Help:    "Hits returned per typeahead search.",
			Buckets: []float64{0, 1, 2, 5, 10, 25},
		}),
		catalogReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secretshows_catalog_reloads_total",
			Help: "Catalog reloads by outcome.",
		}, []string{"result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretshows_session_evictions_total",
			Help: "Idle session stores dropped from memory.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.auth,
		c.bookings,
		c.tickets,
		c.cancellations,
		c.saveToggles,
		c.searches,
		c.searchHits,
		c.catalogReloads,
		c.evictions,
	)

	return c
}

// RegisterGauge exposes fn as a gauge, e.g. the number of sessions in memory.
func RegisterGauge(reg prometheus.Registerer, name, help string, fn func() float64) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordRequest records one served HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuth records a login or signup attempt.
func (c *Collector) RecordAuth(kind string, ok bool) {
	c.auth.WithLabelValues(kind, result(ok)).Inc()
}

// RecordBooking records a confirmed booking.
func (c *Collector) RecordBooking(tickets int) {
	c.bookings.Inc()
	c.tickets.Add(float64(tickets))
}

// RecordCancellation records a cancellation request.
func (c *Collector) RecordCancellation() {
	c.cancellations.Inc()
}

// RecordSaveToggle records a save toggle and the state it left.
func (c *Collector) RecordSaveToggle(saved bool) {
	state := "unsaved"
	if saved {
		state = "saved"
	}
	c.saveToggles.WithLabelValues(state).Inc()
}

// RecordSearch records a typeahead search.
func (c *Collector) RecordSearch(hits int) {
	c.searches.Inc()
	c.searchHits.Observe(float64(hits))
}

// RecordCatalogReload records a catalog reload attempt.
func (c *Collector) RecordCatalogReload(ok bool) {
	c.catalogReloads.WithLabelValues(result(ok)).Inc()
}

// RecordEvictions records idle session stores dropped.
func (c *Collector) RecordEvictions(count int) {
	c.evictions.Add(float64(count))
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordRequest(string, string, int, time.Duration) {}
func (Noop) RecordAuth(string, bool)                          {}
func (Noop) RecordBooking(int)                                {}
func (Noop) RecordCancellation()                              {}
func (Noop) RecordSaveToggle(bool)                            {}
func (Noop) RecordSearch(int)                                 {}
func (Noop) RecordCatalogReload(bool)                         {}
func (Noop) RecordEvictions(int)                              {}
