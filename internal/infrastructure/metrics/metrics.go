// Package metrics exposes Prometheus instrumentation for the HTTP API,
// payment reconciliation and the payment gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "permitak"

// Metrics owns every collector the service registers
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	reconcile      *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	gatewayCalls   *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	lockContention prometheus.Counter
}

// New registers all collectors on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reconcile: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_reconciliation_total",
			Help:      "Gateway verification results by outcome.",
		}, []string{"outcome"}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_submissions_total",
			Help:      "Payment attempts recorded by method.",
		}, []string{"method"}),
		gatewayCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Payment gateway calls by action and result.",
		}, []string{"action", "result"}),
		gatewayLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Payment gateway call latency by action.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"action"}),
		lockContention: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_lock_contention_total",
			Help:      "Verifications rejected because another one held the bill lock.",
		}),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware records request count and latency per matched route.
// Unmatched routes are grouped under "unmatched" to bound cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveReconciliation counts one verification outcome
func (m *Metrics) ObserveReconciliation(outcome string) {
	m.reconcile.WithLabelValues(outcome).Inc()
}

// ObserveSubmission counts one recorded payment attempt
func (m *Metrics) ObserveSubmission(method string) {
	m.submissions.WithLabelValues(method).Inc()
}

// ObserveLockContention counts one rejected concurrent verification
func (m *Metrics) ObserveLockContention() {
	m.lockContention.Inc()
}

// ObserveGatewayCall matches the gateway client's call observer signature
func (m *Metrics) ObserveGatewayCall(action string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.gatewayCalls.WithLabelValues(action, result).Inc()
	m.gatewayLatency.WithLabelValues(action).Observe(elapsed.Seconds())
}
