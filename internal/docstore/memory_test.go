package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/snappy-loop/bedtime/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_InsertGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	id, err := repo.Insert(ctx, &models.Story{
		Title:    "The Lion and the Mouse",
		Content:  "Once upon a time",
		Keywords: []string{"lion", "mouse"},
		Type:     models.StoryTypeClassic,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = repo.Insert(ctx, &models.Story{Title: "Generated", Type: models.StoryTypeGenerated})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &models.Story{Title: "Adult", Type: models.StoryTypeAdultGenerated})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "The Lion and the Mouse", got.Title)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMemoryRepository_GetMissing(t *testing.T) {
	_, err := NewMemoryRepository().Get(context.Background(), "unknown-id")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestMemoryRepository_ExistsByTitle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	ok, err := repo.ExistsByTitle(ctx, "The Ugly Duckling")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Insert(ctx, &models.Story{Title: "The Ugly Duckling", Type: models.StoryTypeClassic})
	require.NoError(t, err)

	ok, err = repo.ExistsByTitle(ctx, "The Ugly Duckling")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryRepository_StoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	s := &models.Story{Title: "Hen", Keywords: []string{"hen"}, Type: models.StoryTypeClassic}
	id, err := repo.Insert(ctx, s)
	require.NoError(t, err)
	s.Keywords[0] = "fox"
	assert.Empty(t, s.ID, "insert does not mutate the caller's story")

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"hen"}, got.Keywords)
}

func TestUnavailable(t *testing.T) {
	repo := Unavailable{Reason: errors.New("key file missing")}
	_, err := repo.List(context.Background())
	assert.True(t, errors.Is(err, models.ErrServiceMisconfigured))
	_, err = repo.Get(context.Background(), "x")
	assert.False(t, errors.Is(err, models.ErrNotFound))
}
