package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Page returns a handler for GET /, /classic, /personalised and /adult.
func (h *Handler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := renderPage(name)
		if err != nil {
			log.Error().Err(err).Str("page", name).Msg("Failed to render page")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
