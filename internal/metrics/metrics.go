// Package metrics exposes Prometheus collectors for the HTTP API and the score engines.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanshika/creditguardian/internal/domain"
)

const namespace = "creditguardian"

// Registry owns every collector. Each Registry has its own prometheus.Registry
// so tests can create as many as they like.
type Registry struct {
	reg *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	projections     prometheus.Counter
	scoreDelta      prometheus.Histogram
	recommendations *prometheus.CounterVec
	saved           prometheus.Counter
}

func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
		projections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_projections_total",
			Help:      "Advanced-mode score projections computed.",
		}),
		scoreDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_projection_delta_points",
			Help:      "Projected minus base score.",
			Buckets:   []float64{-100, -50, -25, -10, 0, 10, 25, 50, 75},
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Simple-mode recommendations issued by goal.",
		}, []string{"goal"}),
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_saved_total",
			Help:      "Simulation snapshots saved.",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.requestDuration,
		r.rateLimited,
		r.projections,
		r.scoreDelta,
		r.recommendations,
		r.saved,
	)
	return r
}

// Handler serves the exposition format for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (r *Registry) RateLimited() {
	r.rateLimited.Inc()
}

func (r *Registry) ProjectionComputed(baseScore, projectedScore int) {
	r.projections.Inc()
	r.scoreDelta.Observe(float64(projectedScore - baseScore))
}

func (r *Registry) RecommendationIssued(goal domain.Goal, _ int) {
	r.recommendations.WithLabelValues(string(goal)).Inc()
}

func (r *Registry) SimulationSaved() {
	r.saved.Inc()
}
