package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/bedtime/internal/models"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type storyService interface {
	ListStories(ctx context.Context) ([]*models.Story, error)
	GetStory(ctx context.Context, id string) (*models.Story, error)
	GenerateChildStory(ctx context.Context, req *models.GenerateStoryRequest) (*models.Story, error)
	GenerateAdultStory(ctx context.Context, req *models.GenerateAdultStoryRequest) (*models.Story, error)
	TestGeneration(ctx context.Context) (string, error)
	SeedClassics(ctx context.Context, classics []*models.Story) (int, error)
}

type speechService interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	stories  storyService
	speech   speechService
	classics []*models.Story
}

// NewHandler creates a new handler. classics is the built-in list used by the seeding endpoint.
func NewHandler(stories storyService, speech speechService, classics []*models.Story) *Handler {
	return &Handler{
		stories:  stories,
		speech:   speech,
		classics: classics,
	}
}

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeError maps err to a status code and writes its message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	}
	writeJSONError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
