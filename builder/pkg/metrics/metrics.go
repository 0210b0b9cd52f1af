// Package metrics defines the prometheus collectors shared by the builder
// and the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildInfo carries version metadata as labels; the value is always 1.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flightgraph_build_info",
		Help: "Build information",
	}, []string{"version", "commit", "date"})

	RowsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightgraph_rows_ingested_total",
		Help: "Rows accepted per dataset",
	}, []string{"dataset"})

	RowsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightgraph_rows_rejected_total",
		Help: "Rows rejected per dataset",
	}, []string{"dataset"})

	TemporalWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightgraph_temporal_warnings_total",
		Help: "Advisory temporal-consistency warnings recorded during the build",
	})

	GraphBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightgraph_build_duration_seconds",
		Help:    "Wall time of a full graph build",
		Buckets: prometheus.DefBuckets,
	})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flightgraph_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request latency and status for every route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestDuration.WithLabelValues(
			r.Method,
			r.URL.Path,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	})
}
