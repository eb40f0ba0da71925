// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bedtime_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"route"},
	)

	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_generations_total",
			Help: "Story generation attempts by story type and outcome.",
		},
		[]string{"type", "status"},
	)

	ttsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedtime_tts_total",
			Help: "Speech synthesis attempts by outcome.",
		},
		[]string{"status"},
	)
)

// Outcome labels.
const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// ObserveGeneration counts one story generation attempt.
func ObserveGeneration(storyType, status string) {
	generationsTotal.WithLabelValues(storyType, status).Inc()
}

// ObserveTTS counts one speech synthesis attempt.
func ObserveTTS(status string) {
	ttsTotal.WithLabelValues(status).Inc()
}

// StatusRecorder captures the status code written by a handler. Wrote is set
// once the header has gone out.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
	Wrote  bool
}

// WriteHeader records code before passing it on. Later calls are dropped.
func (r *StatusRecorder) WriteHeader(code int) {
	if r.Wrote {
		return
	}
	r.Status = code
	r.Wrote = true
	r.ResponseWriter.WriteHeader(code)
}

// Write sends an implicit 200 header on first use.
func (r *StatusRecorder) Write(b []byte) (int, error) {
	if !r.Wrote {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *StatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records request count and latency labelled by the matched mux route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec, ok := w.(*StatusRecorder)
		if !ok {
			rec = &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.Status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
