package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/bedtime/internal/metrics"
)

// NewRouter wires every route onto a mux router. staticDir is served under /static/.
func NewRouter(h *Handler, staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(logMiddleware, metrics.Middleware, recoverMiddleware)

	for _, page := range []string{"classic", "personalised", "adult"} {
		r.HandleFunc("/"+page, h.Page(page)).Methods("GET")
	}
	r.HandleFunc("/", h.Page("index")).Methods("GET")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))).Methods("GET")

	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stories", h.ListStories).Methods("GET")
	api.HandleFunc("/story/{id}", h.GetStory).Methods("GET")
	api.HandleFunc("/generate-story", h.GenerateStory).Methods("POST")
	api.HandleFunc("/generate-adult-story", h.GenerateAdultStory).Methods("POST")
	api.HandleFunc("/test-gemini", h.TestGemini).Methods("GET")
	api.HandleFunc("/tts", h.TextToSpeech).Methods("POST")
	api.HandleFunc("/setup-classic-stories", h.SetupClassicStories).Methods("POST")

	return r
}

// recoverMiddleware turns a panicking handler into a 500 JSON response. It
// runs innermost so the outer middlewares see the 500. A response that has
// already started is left as is.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				log.Error().Interface("panic", p).Str("path", r.URL.Path).Msg("Handler panicked")
				if rec, ok := w.(*metrics.StatusRecorder); ok && rec.Wrote {
					return
				}
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// logMiddleware logs one line per request, at a level chosen by status class.
func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metrics.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

		next.ServeHTTP(rec, r)

		event := log.Debug()
		switch {
		case rec.Status >= http.StatusInternalServerError:
			event = log.Error()
		case rec.Status >= http.StatusBadRequest:
			event = log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.Status).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	})
}
