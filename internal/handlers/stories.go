package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/bedtime/internal/models"
)

// ListStories handles GET /api/stories
func (h *Handler) ListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.stories.ListStories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

// GetStory handles GET /api/story/{id}
func (h *Handler) GetStory(w http.ResponseWriter, r *http.Request) {
	story, err := h.stories.GetStory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

// GenerateStory handles POST /api/generate-story
func (h *Handler) GenerateStory(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateStoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	log.Info().
		Str("child_name", req.ChildName).
		Strs("keywords", req.Keywords).
		Msg("Generating children's story")

	story, err := h.stories.GenerateChildStory(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

// GenerateAdultStory handles POST /api/generate-adult-story
func (h *Handler) GenerateAdultStory(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateAdultStoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	log.Info().
		Str("adult_name", req.AdultName).
		Str("sleep_issue", req.SleepIssue).
		Int("memories", len(req.Memories)).
		Msg("Generating adult story")

	story, err := h.stories.GenerateAdultStory(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

// TestGemini handles GET /api/test-gemini
func (h *Handler) TestGemini(w http.ResponseWriter, r *http.Request) {
	msg, err := h.stories.TestGeneration(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TestGeminiResponse{Success: true, Message: msg})
}

// SetupClassicStories handles POST /api/setup-classic-stories
func (h *Handler) SetupClassicStories(w http.ResponseWriter, r *http.Request) {
	added, err := h.stories.SeedClassics(r.Context(), h.classics)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SetupClassicsResponse{
		Success:      true,
		Message:      fmt.Sprintf("Added %d new classic stories to the database", added),
		TotalStories: len(h.classics),
	})
}
