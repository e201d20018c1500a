package middlewares

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec
	authzDenialsTotal   *prometheus.CounterVec
	rateLimitedTotal    prometheus.Counter
)

func rateLimitedInc() {
	if rateLimitedTotal != nil {
		rateLimitedTotal.Inc()
	}
}

// RegisterMetrics inicializa las métricas HTTP y devuelve el handler para /metrics.
func RegisterMetrics(registry prometheus.Registerer) (http.Handler, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		authzDenialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authz_denials_total",
			Help: "Requests denegadas por autenticación (401) o autorización (403)",
		}, []string{"status", "path"})

		rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight, authzDenialsTotal, rateLimitedTotal,
		} {
			if err := registry.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					metricsErr = err
					return
				}
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	return promhttp.Handler(), nil
}

// WithMetrics instrumenta requests HTTP (contadores, latencia, inflight, denials).
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpRequestsTotal == nil {
				next.ServeHTTP(w, r)
				return
			}

			method := strings.ToUpper(r.Method)
			pathLabel := normalizePath(r.URL.Path)

			httpInflight.WithLabelValues(method, pathLabel).Inc()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			httpInflight.WithLabelValues(method, pathLabel).Dec()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(rec.status)).Inc()

			if rec.status == http.StatusUnauthorized || rec.status == http.StatusForbidden {
				authzDenialsTotal.WithLabelValues(strconv.Itoa(rec.status), pathLabel).Inc()
			}
		})
	}
}

// idSegment matchea UUIDs y IDs largos para colapsarlos en la label de path
// (cardinalidad acotada en Prometheus).
var idSegment = regexp.MustCompile(`^([0-9a-fA-F-]{16,}|\d+)$`)

func normalizePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if idSegment.MatchString(part) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
