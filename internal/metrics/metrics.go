package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	referencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_references_total",
			Help: "Reference reconciliation outcomes by kind and result.",
		},
		[]string{"kind", "result"},
	)
	gamesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_games_total",
			Help: "Game upsert outcomes by result.",
		},
		[]string{"result"},
	)
	mediaTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_media_total",
			Help: "Media attachment outcomes by field and result.",
		},
		[]string{"field", "result"},
	)
	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_populate_duration_seconds",
			Help:    "Duration of populate runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"status"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(referencesTotal, gamesTotal, mediaTotal, runDuration, httpRequestsTotal)
}

// RecordReference counts one reconciled reference name.
func RecordReference(kind, result string) {
	referencesTotal.WithLabelValues(kind, result).Inc()
}

// RecordGame counts one upserted catalog product.
func RecordGame(result string) {
	gamesTotal.WithLabelValues(result).Inc()
}

// RecordMedia counts one image attachment.
func RecordMedia(field, result string) {
	mediaTotal.WithLabelValues(field, result).Inc()
}

// RecordRun observes a populate run.
func RecordRun(status string, d time.Duration) {
	runDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordRequest counts an HTTP request by status class.
func RecordRequest(method, endpoint string, statusCode int) {
	httpRequestsTotal.WithLabelValues(method, endpoint, classifyStatus(statusCode)).Inc()
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
