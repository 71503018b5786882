package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recommendation"

// Collector holds the service's Prometheus metrics on its own registry.
// All methods are safe to call on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	pipelineOutcomes     *prometheus.CounterVec
	collaboratorFailures *prometheus.CounterVec
	parseDegradations    prometheus.Counter
	generationDuration   *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pipelineOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_outcomes_total",
			Help:      "Terminal pipeline states by pipeline",
		}, []string{"pipeline", "state"}),
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_failures_total",
			Help:      "Failed calls to collaborator services",
		}, []string{"collaborator"}),
		parseDegradations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_degradations_total",
			Help:      "Generation outputs that held no decodable JSON object",
		}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Generation backend latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"provider", "result"}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.pipelineOutcomes,
		c.collaboratorFailures,
		c.parseDegradations,
		c.generationDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) PipelineOutcome(pipeline, state string) {
	if c == nil {
		return
	}
	c.pipelineOutcomes.WithLabelValues(pipeline, state).Inc()
}

func (c *Collector) CollaboratorFailure(name string) {
	if c == nil {
		return
	}
	c.collaboratorFailures.WithLabelValues(name).Inc()
}

func (c *Collector) ParseDegraded() {
	if c == nil {
		return
	}
	c.parseDegradations.Inc()
}

func (c *Collector) ObserveGeneration(provider string, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.generationDuration.WithLabelValues(provider, result).Observe(d.Seconds())
}
