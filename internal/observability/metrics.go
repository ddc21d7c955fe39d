package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestCount     *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestSize      *prometheus.HistogramVec
	ResponseSize     *prometheus.HistogramVec
	InFlightRequests prometheus.Gauge
	HealthStatus     prometheus.Gauge
	BookingEvents    *prometheus.CounterVec
	CatalogReloads   *prometheus.CounterVec

	registry *prometheus.Registry
	handler  http.Handler
}

// NewMetrics builds the collectors on a private registry, so several servers
// can coexist in one process (tests) without duplicate registration panics.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status_code"},
		),
		RequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route"},
		),
		ResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route", "status_code"},
		),
		InFlightRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_in_flight_requests",
				Help: "Number of HTTP requests currently being served",
			},
		),
		HealthStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "app_health_status",
				Help: "Application health status (1 = healthy, 0 = unhealthy)",
			},
		),
		BookingEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_booking_events_total",
				Help: "Mock booking operations by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		CatalogReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_catalog_reloads_total",
				Help: "Hotel catalog reload attempts by outcome",
			},
			[]string{"outcome"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RequestCount,
		m.RequestDuration,
		m.RequestSize,
		m.ResponseSize,
		m.InFlightRequests,
		m.HealthStatus,
		m.BookingEvents,
		m.CatalogReloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return m
}

func (m *Metrics) RecordRequest(method, route string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	status := strconv.Itoa(statusCode)

	m.RequestCount.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, route).Observe(float64(requestSize))
	m.ResponseSize.WithLabelValues(method, route, status).Observe(float64(responseSize))
}

// RecordBookingEvent counts a mock hotel operation
func (m *Metrics) RecordBookingEvent(action, outcome string) {
	m.BookingEvents.WithLabelValues(action, outcome).Inc()
}

// RecordCatalogReload counts a catalog reload attempt
func (m *Metrics) RecordCatalogReload(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.CatalogReloads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetHealthStatus(healthy bool) {
	if healthy {
		m.HealthStatus.Set(1)
	} else {
		m.HealthStatus.Set(0)
	}
}

func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registry exposes the private registry for scraping in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
