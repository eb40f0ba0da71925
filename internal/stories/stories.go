// Package stories holds the built-in classic story collection.
package stories

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/snappy-loop/bedtime/internal/models"
)

//go:embed classics.json
var classicsJSON []byte

var (
	classicsOnce sync.Once
	classics     []*models.Story
	classicsErr  error
)

// Classics returns the built-in classic stories, parsed once. Callers get fresh
// copies and may modify them. Timestamps are left empty; seeding stamps them.
func Classics() ([]*models.Story, error) {
	classicsOnce.Do(func() {
		classics, classicsErr = parse(classicsJSON)
	})
	if classicsErr != nil {
		return nil, classicsErr
	}

	out := make([]*models.Story, len(classics))
	for i, s := range classics {
		c := *s
		c.Keywords = append([]string(nil), s.Keywords...)
		out[i] = &c
	}
	return out, nil
}

func parse(data []byte) ([]*models.Story, error) {
	var list []*models.Story
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse classics: %w", err)
	}

	seen := make(map[string]bool, len(list))
	for _, s := range list {
		if s.Title == "" || s.Content == "" {
			return nil, fmt.Errorf("classic story missing title or content")
		}
		if s.Type != models.StoryTypeClassic {
			return nil, fmt.Errorf("classic story %q has type %q", s.Title, s.Type)
		}
		if seen[s.Title] {
			return nil, fmt.Errorf("duplicate classic story title %q", s.Title)
		}
		seen[s.Title] = true
	}
	return list, nil
}
