package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/snappy-loop/bedtime/internal/config"
	"github.com/snappy-loop/bedtime/internal/docstore"
	"github.com/snappy-loop/bedtime/internal/models"
	"github.com/snappy-loop/bedtime/internal/stories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records prompts and returns a canned reply.
type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
	pings   int
}

func (f *fakeGenerator) GenerateStory(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) Ping(ctx context.Context, prompt string) (string, error) {
	f.pings++
	return f.reply, f.err
}

var fixedNow = time.Date(2026, 3, 14, 20, 30, 15, 123456000, time.UTC)

func newTestStoryService(repo StoryRepository, gen StoryGenerator, apiKey string) *StoryService {
	cfg := &config.Config{
		GeminiAPIKey:      apiKey,
		StoreTimeout:      time.Second,
		GenerationTimeout: time.Second,
	}
	svc := NewStoryService(repo, gen, cfg)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGenerateChildStory(t *testing.T) {
	gen := &fakeGenerator{reply: "Once upon a time, Mia met a bunny on the moon."}
	svc := newTestStoryService(docstore.NewMemoryRepository(), gen, "key")

	story, err := svc.GenerateChildStory(context.Background(), &models.GenerateStoryRequest{
		Keywords:  []string{"moon", "bunny"},
		ChildName: "Mia",
	})
	require.NoError(t, err)

	assert.Equal(t, "Mia's Story with moon, bunny", story.Title)
	assert.Equal(t, gen.reply, story.Content)
	assert.Equal(t, "Mia", story.ChildName)
	assert.Equal(t, models.StoryTypeGenerated, story.Type)
	assert.True(t, story.Temporary)
	assert.Empty(t, story.ID)
	assert.Equal(t, "2026-03-14T20:30:15.123456", story.Timestamp)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "a child named Mia")
	assert.Contains(t, gen.prompts[0], "moon, bunny")
}

func TestGenerateChildStory_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  *models.GenerateStoryRequest
		want string
	}{
		{"no keywords", &models.GenerateStoryRequest{ChildName: "Mia"}, "No keywords provided"},
		{"blank keywords", &models.GenerateStoryRequest{Keywords: []string{" ", ""}, ChildName: "Mia"}, "No keywords provided"},
		{"no name", &models.GenerateStoryRequest{Keywords: []string{"moon"}}, "Child name is required"},
		{"blank name", &models.GenerateStoryRequest{Keywords: []string{"moon"}, ChildName: "  "}, "Child name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: "story"}
			svc := newTestStoryService(docstore.NewMemoryRepository(), gen, "key")

			_, err := svc.GenerateChildStory(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			assert.Equal(t, tt.want, err.Error())
			assert.Empty(t, gen.prompts, "generator must not be called")
		})
	}
}

func TestGenerateChildStory_NotConfigured(t *testing.T) {
	gen := &fakeGenerator{reply: "story"}
	svc := newTestStoryService(docstore.NewMemoryRepository(), gen, "")

	_, err := svc.GenerateChildStory(context.Background(), &models.GenerateStoryRequest{
		Keywords:  []string{"moon"},
		ChildName: "Mia",
	})
	assert.ErrorIs(t, err, models.ErrServiceMisconfigured)
	assert.Empty(t, gen.prompts)
}

func TestGenerateChildStory_Failures(t *testing.T) {
	req := &models.GenerateStoryRequest{Keywords: []string{"moon"}, ChildName: "Mia"}

	t.Run("service error", func(t *testing.T) {
		cause := errors.New("quota exceeded")
		svc := newTestStoryService(docstore.NewMemoryRepository(), &fakeGenerator{err: cause}, "key")
		_, err := svc.GenerateChildStory(context.Background(), req)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("empty output", func(t *testing.T) {
		svc := newTestStoryService(docstore.NewMemoryRepository(), &fakeGenerator{reply: "  \n"}, "key")
		_, err := svc.GenerateChildStory(context.Background(), req)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
		assert.Equal(t, msgNoStoryGenerated, err.Error())
	})
}

func TestGenerateAdultStory(t *testing.T) {
	gen := &fakeGenerator{reply: "Breathe in slowly, Sam."}
	svc := newTestStoryService(docstore.NewMemoryRepository(), gen, "key")

	story, err := svc.GenerateAdultStory(context.Background(), &models.GenerateAdultStoryRequest{
		SleepIssue: "racing_thoughts",
		Memories:   []string{"beach holiday", ""},
		AdultName:  "Sam",
	})
	require.NoError(t, err)

	assert.Equal(t, "Sam's Soothing Story", story.Title)
	assert.Equal(t, models.StoryTypeAdultGenerated, story.Type)
	assert.Equal(t, "Racing Thoughts", story.SleepIssueDisplay)
	assert.Equal(t, []string{"beach holiday"}, story.Memories)
	assert.True(t, story.Temporary)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "beach holiday")
}

func TestGenerateAdultStory_CustomReasonWins(t *testing.T) {
	gen := &fakeGenerator{reply: "story"}
	svc := newTestStoryService(docstore.NewMemoryRepository(), gen, "key")

	story, err := svc.GenerateAdultStory(context.Background(), &models.GenerateAdultStoryRequest{
		SleepIssue:        "stress",
		CustomSleepReason: "a noisy neighbour",
		AdultName:         "Sam",
	})
	require.NoError(t, err)
	assert.Equal(t, "a noisy neighbour", story.SleepIssueDisplay)
	assert.Contains(t, gen.prompts[0], "a noisy neighbour")
}

func TestGenerateAdultStory_InvalidInput(t *testing.T) {
	gen := &fakeGenerator{reply: "story"}
	svc := newTestStoryService(docstore.NewMemoryRepository(), gen, "key")

	_, err := svc.GenerateAdultStory(context.Background(), &models.GenerateAdultStoryRequest{AdultName: "Sam"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, "No sleep issue provided", err.Error())

	_, err = svc.GenerateAdultStory(context.Background(), &models.GenerateAdultStoryRequest{SleepIssue: "stress"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, "Adult name is required", err.Error())

	assert.Empty(t, gen.prompts)
}

func TestGenerationIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewMemoryRepository()
	svc := newTestStoryService(repo, &fakeGenerator{reply: "story"}, "key")

	classics, err := stories.Classics()
	require.NoError(t, err)
	_, err = svc.SeedClassics(ctx, classics)
	require.NoError(t, err)

	before, err := svc.ListStories(ctx)
	require.NoError(t, err)

	_, err = svc.GenerateChildStory(ctx, &models.GenerateStoryRequest{Keywords: []string{"moon"}, ChildName: "Mia"})
	require.NoError(t, err)
	_, err = svc.GenerateAdultStory(ctx, &models.GenerateAdultStoryRequest{SleepIssue: "stress", AdultName: "Sam"})
	require.NoError(t, err)

	after, err := svc.ListStories(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestSeedClassics_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewMemoryRepository()
	svc := newTestStoryService(repo, &fakeGenerator{}, "")

	classics, err := stories.Classics()
	require.NoError(t, err)

	added, err := svc.SeedClassics(ctx, classics)
	require.NoError(t, err)
	assert.Equal(t, len(classics), added)

	added, err = svc.SeedClassics(ctx, classics)
	require.NoError(t, err)
	assert.Zero(t, added)

	list, err := svc.ListStories(ctx)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, s := range list {
		assert.False(t, seen[s.Title], "duplicate title %q", s.Title)
		seen[s.Title] = true
		assert.Equal(t, models.StoryTypeClassic, s.Type)
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, "2026-03-14T20:30:15.123456", s.Timestamp)
	}
	assert.Len(t, list, len(classics))

	n, err := svc.CountStories(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(classics), n)
}

func TestSeedClassics_RejectsNonClassic(t *testing.T) {
	svc := newTestStoryService(docstore.NewMemoryRepository(), &fakeGenerator{}, "")
	_, err := svc.SeedClassics(context.Background(), []*models.Story{
		{Title: "x", Content: "y", Type: models.StoryTypeGenerated},
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSeedOnStartup_ReportsStoredCount(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewMemoryRepository()
	_, err := repo.Insert(ctx, &models.Story{Title: "Owl Lullaby", Content: "Hoo.", Type: models.StoryTypeClassic})
	require.NoError(t, err)
	svc := newTestStoryService(repo, &fakeGenerator{}, "")

	classics, err := stories.Classics()
	require.NoError(t, err)

	added, total, err := svc.SeedOnStartup(ctx, classics)
	require.NoError(t, err)
	assert.Equal(t, len(classics), added)
	assert.Equal(t, len(classics)+1, total)

	added, total, err = svc.SeedOnStartup(ctx, classics)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, len(classics)+1, total)

	svc = newTestStoryService(failingRepo{errors.New("connection refused")}, &fakeGenerator{}, "")
	_, _, err = svc.SeedOnStartup(ctx, classics)
	assert.ErrorIs(t, err, models.ErrBackendUnavailable)
}

// generatedLeakRepo returns generated records from List, as a misbehaving backend might.
type generatedLeakRepo struct {
	*docstore.MemoryRepository
}

func (r generatedLeakRepo) List(ctx context.Context) ([]*models.Story, error) {
	return []*models.Story{
		{ID: "1", Title: "classic", Type: models.StoryTypeClassic},
		{ID: "2", Title: "gen", Type: models.StoryTypeGenerated},
		{ID: "3", Title: "adult", Type: models.StoryTypeAdultGenerated},
	}, nil
}

func TestListStories_ExcludesGenerated(t *testing.T) {
	svc := newTestStoryService(generatedLeakRepo{docstore.NewMemoryRepository()}, &fakeGenerator{}, "")

	list, err := svc.ListStories(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "classic", list[0].Title)
}

func TestGetStory(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewMemoryRepository()
	id, err := repo.Insert(ctx, &models.Story{Title: "The Moon", Content: "...", Type: models.StoryTypeClassic})
	require.NoError(t, err)

	svc := newTestStoryService(repo, &fakeGenerator{}, "")

	story, err := svc.GetStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "The Moon", story.Title)

	for _, missing := range []string{"", "unknown-id"} {
		_, err = svc.GetStory(ctx, missing)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Equal(t, "Story not found", err.Error())
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured store", func(t *testing.T) {
		svc := newTestStoryService(docstore.Unavailable{Reason: errors.New("no key")}, &fakeGenerator{}, "")
		_, err := svc.ListStories(ctx)
		assert.ErrorIs(t, err, models.ErrServiceMisconfigured)
		_, err = svc.GetStory(ctx, "abc")
		assert.ErrorIs(t, err, models.ErrServiceMisconfigured)
	})

	t.Run("backend failure", func(t *testing.T) {
		svc := newTestStoryService(failingRepo{errors.New("connection refused")}, &fakeGenerator{}, "")
		_, err := svc.ListStories(ctx)
		assert.ErrorIs(t, err, models.ErrBackendUnavailable)
		assert.True(t, strings.Contains(err.Error(), "connection refused"))
	})
}

type failingRepo struct{ err error }

func (r failingRepo) List(ctx context.Context) ([]*models.Story, error) { return nil, r.err }
func (r failingRepo) Get(ctx context.Context, id string) (*models.Story, error) {
	return nil, r.err
}
func (r failingRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	return false, r.err
}
func (r failingRepo) Insert(ctx context.Context, story *models.Story) (string, error) {
	return "", r.err
}
func (r failingRepo) Count(ctx context.Context) (int, error) { return 0, r.err }

func TestTestGeneration(t *testing.T) {
	ctx := context.Background()

	svc := newTestStoryService(docstore.NewMemoryRepository(), &fakeGenerator{reply: "Hello, Gemini is working!"}, "key")
	msg, err := svc.TestGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello, Gemini is working!", msg)

	gen := &fakeGenerator{reply: "hi"}
	svc = newTestStoryService(docstore.NewMemoryRepository(), gen, "your_gemini_api_key_here")
	_, err = svc.TestGeneration(ctx)
	assert.ErrorIs(t, err, models.ErrServiceMisconfigured)
	assert.Zero(t, gen.pings)

	svc = newTestStoryService(docstore.NewMemoryRepository(), &fakeGenerator{err: errors.New("boom")}, "key")
	_, err = svc.TestGeneration(ctx)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestSleepIssueDisplay(t *testing.T) {
	assert.Equal(t, "Racing Thoughts", sleepIssueDisplay("racing_thoughts", ""))
	assert.Equal(t, "Stress", sleepIssueDisplay("stress", ""))
	assert.Equal(t, "my own words", sleepIssueDisplay("stress", "my own words"))
}
