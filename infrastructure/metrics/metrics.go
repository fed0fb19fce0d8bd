package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingestion outcomes.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rhythmlab_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhythmlab_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rhythmlab_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	showIngestions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhythmlab_show_ingestions_total",
			Help: "Show ingestion runs by outcome.",
		},
		[]string{"outcome"},
	)

	tracksParsed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rhythmlab_tracks_parsed_total",
		Help: "Tracks parsed from submitted tracklists.",
	})

	tokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhythmlab_mixcloud_token_refreshes_total",
			Help: "Mixcloud token refresh attempts by result.",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// Init registers the collectors in the default registry. Safe to call twice.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration,
			showIngestions, tracksParsed, tokenRefreshes)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request count, latency and in-flight gauge. The route
// template is used as path label so slugs do not explode cardinality.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpInFlight.Dec()
	}
}

func ObserveIngestion(outcome string, tracks int) {
	showIngestions.WithLabelValues(outcome).Inc()
	if tracks > 0 {
		tracksParsed.Add(float64(tracks))
	}
}

func ObserveTokenRefresh(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	tokenRefreshes.WithLabelValues(result).Inc()
}
