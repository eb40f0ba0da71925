package services

import (
	"context"

	"github.com/snappy-loop/bedtime/internal/models"
)

// StoryRepository is the subset of document-store operations used by StoryService.
type StoryRepository interface {
	List(ctx context.Context) ([]*models.Story, error)
	Get(ctx context.Context, id string) (*models.Story, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Insert(ctx context.Context, story *models.Story) (string, error)
	Count(ctx context.Context) (int, error)
}

// StoryGenerator submits prompts to the text-generation service.
type StoryGenerator interface {
	GenerateStory(ctx context.Context, prompt string) (string, error)
	Ping(ctx context.Context, prompt string) (string, error)
}

// AudioStore persists synthesized audio and returns a URL for it.
type AudioStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
