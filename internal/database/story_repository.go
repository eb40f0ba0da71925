package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/snappy-loop/bedtime/internal/models"
)

const storyColumns = `id, title, content, keywords, story_timestamp, story_type,
	child_name, adult_name, sleep_issue, custom_sleep_reason, sleep_issue_display,
	memories, custom_memory`

// StoryRepository handles story-related database operations
type StoryRepository struct {
	db *DB
}

// NewStoryRepository creates a new StoryRepository
func NewStoryRepository(db *DB) *StoryRepository {
	return &StoryRepository{db: db}
}

// List returns all stories that did not come from the generation service
func (r *StoryRepository) List(ctx context.Context) ([]*models.Story, error) {
	query := `SELECT ` + storyColumns + `
		FROM stories
		WHERE story_type NOT IN ('generated', 'adult_generated')
		ORDER BY created_at, title`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []*models.Story
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// Get retrieves a story by ID
func (r *StoryRepository) Get(ctx context.Context, id string) (*models.Story, error) {
	storyID, err := uuid.Parse(id)
	if err != nil {
		// Not a key this table could hold.
		return nil, models.ErrNotFound
	}

	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	story, err := scanStory(r.db.QueryRowContext(ctx, query, storyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return story, err
}

// ExistsByTitle reports whether a story with the given title is stored
func (r *StoryRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM stories WHERE title = $1)`, title).Scan(&exists)
	return exists, err
}

// Insert creates a new story and returns its ID
func (r *StoryRepository) Insert(ctx context.Context, story *models.Story) (string, error) {
	id := uuid.New()
	query := `
		INSERT INTO stories (` + storyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		id, story.Title, story.Content, pq.Array(story.Keywords), story.Timestamp, string(story.Type),
		story.ChildName, story.AdultName, story.SleepIssue, story.CustomSleepReason, story.SleepIssueDisplay,
		pq.Array(story.Memories), story.CustomMemory,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert story: %w", err)
	}
	return id.String(), nil
}

// Count returns the number of stored stories
func (r *StoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stories`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStory(row rowScanner) (*models.Story, error) {
	var (
		story     models.Story
		id        uuid.UUID
		storyType string
	)
	err := row.Scan(
		&id, &story.Title, &story.Content, pq.Array(&story.Keywords), &story.Timestamp, &storyType,
		&story.ChildName, &story.AdultName, &story.SleepIssue, &story.CustomSleepReason, &story.SleepIssueDisplay,
		pq.Array(&story.Memories), &story.CustomMemory,
	)
	if err != nil {
		return nil, err
	}

	story.ID = id.String()
	story.Type, err = models.ParseStoryType(storyType)
	if err != nil {
		return nil, fmt.Errorf("story %s: %w", story.ID, err)
	}
	return &story, nil
}
