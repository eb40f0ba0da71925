package handlers

import (
	"net/http"

	"github.com/snappy-loop/bedtime/internal/models"
)

// TextToSpeech handles POST /api/tts
func (h *Handler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req models.TTSRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	url, err := h.speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TTSResponse{AudioURL: url})
}
