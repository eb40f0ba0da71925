// Package docstore implements story repositories backed by a document store.
package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/snappy-loop/bedtime/internal/models"
)

// MemoryRepository keeps stories in process memory. Used for local runs and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]models.Story
}

// NewMemoryRepository creates an empty MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]models.Story)}
}

// List returns all non-generated stories in insertion order.
func (r *MemoryRepository) List(ctx context.Context) ([]*models.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stories := make([]*models.Story, 0, len(r.order))
	for _, id := range r.order {
		doc := r.docs[id]
		if doc.Type.IsGenerated() {
			continue
		}
		s := cloneStory(doc)
		s.ID = id
		stories = append(stories, s)
	}
	return stories, nil
}

// Get returns the story with the given id or models.ErrNotFound.
func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	s := cloneStory(doc)
	s.ID = id
	return s, nil
}

// ExistsByTitle reports whether any stored story has the given title.
func (r *MemoryRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, doc := range r.docs {
		if doc.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// Insert stores a copy of story under a new id and returns the id.
func (r *MemoryRepository) Insert(ctx context.Context, story *models.Story) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	doc := *cloneStory(*story)
	doc.ID = ""
	r.docs[id] = doc
	r.order = append(r.order, id)
	return id, nil
}

// Count returns the number of stored stories.
func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs), nil
}

func cloneStory(s models.Story) *models.Story {
	c := s
	c.Keywords = append([]string(nil), s.Keywords...)
	c.Memories = append([]string(nil), s.Memories...)
	return &c
}
