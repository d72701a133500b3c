package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors; served on /metrics.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ai_tools",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ai_tools",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"method", "path"},
	)

	providerAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ai_tools",
			Subsystem: "provider",
			Name:      "attempts_total",
			Help:      "Provider attempts made by fallback chains.",
		},
		[]string{"chain", "provider", "outcome"},
	)

	providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ai_tools",
			Subsystem: "provider",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of provider attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 11), // 50ms to ~50s
		},
		[]string{"chain", "provider"},
	)

	effectFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ai_tools",
			Subsystem: "artifact",
			Name:      "effect_fallbacks_total",
			Help:      "Host effects rejected and replaced by the untransformed URL.",
		},
		[]string{"store", "effect"},
	)

	quotaDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ai_tools",
			Subsystem: "entitlement",
			Name:      "denials_total",
			Help:      "Requests denied by the entitlement gate.",
		},
		[]string{"operation", "reason"},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, providerAttempts, providerDuration, effectFallbacks, quotaDenials)
}

// Handler serves the application registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordProviderAttempt(chain, provider string, success bool, d time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	providerAttempts.WithLabelValues(chain, provider, outcome).Inc()
	providerDuration.WithLabelValues(chain, provider).Observe(d.Seconds())
}

func RecordEffectFallback(store, effect string) {
	effectFallbacks.WithLabelValues(store, effect).Inc()
}

func RecordQuotaDenial(operation, reason string) {
	quotaDenials.WithLabelValues(operation, reason).Inc()
}
