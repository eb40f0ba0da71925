package docstore

import (
	"context"

	"github.com/snappy-loop/bedtime/internal/models"
)

// Unavailable stands in for a repository whose client could not be created at
// startup. Every call fails with models.ErrServiceMisconfigured.
type Unavailable struct {
	Reason error
}

func (u Unavailable) err() error {
	return models.NewError(models.ErrServiceMisconfigured, "Story database not configured", u.Reason)
}

func (u Unavailable) List(ctx context.Context) ([]*models.Story, error) { return nil, u.err() }

func (u Unavailable) Get(ctx context.Context, id string) (*models.Story, error) { return nil, u.err() }

func (u Unavailable) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	return false, u.err()
}

func (u Unavailable) Insert(ctx context.Context, story *models.Story) (string, error) {
	return "", u.err()
}

func (u Unavailable) Count(ctx context.Context) (int, error) { return 0, u.err() }
