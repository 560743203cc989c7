package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

const metricsNamespace = "sectionforge"

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	scrapes         *prometheus.CounterVec
	sectionsFound   prometheus.Histogram
	generations     *prometheus.CounterVec
	generationTime  *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"route"}),
		scrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scrapes_total",
			Help:      "Scrape requests by outcome.",
		}, []string{"outcome"}),
		sectionsFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sections_per_scrape",
			Help:      "Number of sections extracted per successful scrape.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "generations_total",
			Help:      "Component generations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		generationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating a component, by provider.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"provider"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.scrapes,
		m.sectionsFound,
		m.generations,
		m.generationTime,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request counts and latency by matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveScrape records one scrape. sections is ignored unless outcome is OutcomeOK.
func (m *Metrics) ObserveScrape(outcome string, sections int) {
	m.scrapes.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.sectionsFound.Observe(float64(sections))
	}
}

// ObserveGeneration records one generation.
func (m *Metrics) ObserveGeneration(provider, outcome string, d time.Duration) {
	m.generations.WithLabelValues(provider, outcome).Inc()
	if outcome != OutcomeError {
		m.generationTime.WithLabelValues(provider).Observe(d.Seconds())
	}
}
