package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/bedtime/internal/config"
	"github.com/snappy-loop/bedtime/internal/llm"
	"github.com/snappy-loop/bedtime/internal/metrics"
	"github.com/snappy-loop/bedtime/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	msgGeminiNotConfigured = "Gemini API key not configured. Please set GEMINI_API_KEY in your .env file."
	msgNoStoryGenerated    = "No story generated. Please try again."
)

// StoryService handles story listing, seeding and generation
type StoryService struct {
	repo              StoryRepository
	generator         StoryGenerator
	geminiConfigured  bool
	storeTimeout      time.Duration
	generationTimeout time.Duration
	now               func() time.Time
}

// NewStoryService creates a new StoryService
func NewStoryService(repo StoryRepository, generator StoryGenerator, cfg *config.Config) *StoryService {
	return &StoryService{
		repo:              repo,
		generator:         generator,
		geminiConfigured:  cfg.GeminiConfigured(),
		storeTimeout:      cfg.StoreTimeout,
		generationTimeout: cfg.GenerationTimeout,
		now:               time.Now,
	}
}

// ListStories returns persisted stories, never generated ones.
func (s *StoryService) ListStories(ctx context.Context) ([]*models.Story, error) {
	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	all, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stories")
		return nil, backendError(err)
	}

	stories := make([]*models.Story, 0, len(all))
	for _, story := range all {
		if story.Type.IsGenerated() {
			continue
		}
		stories = append(stories, story)
	}
	return stories, nil
}

// GetStory returns a single persisted story.
func (s *StoryService) GetStory(ctx context.Context, id string) (*models.Story, error) {
	if id == "" {
		return nil, models.NewError(models.ErrNotFound, "Story not found", nil)
	}

	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	story, err := s.repo.Get(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewError(models.ErrNotFound, "Story not found", err)
	}
	if err != nil {
		log.Error().Err(err).Str("story_id", id).Msg("Failed to get story")
		return nil, backendError(err)
	}
	return story, nil
}

// SeedClassics inserts each classic whose title is not stored yet and returns
// how many were inserted. Safe to call repeatedly.
func (s *StoryService) SeedClassics(ctx context.Context, classics []*models.Story) (int, error) {
	ctx, cancel := withTimeout(ctx, s.storeTimeout*time.Duration(len(classics)+1))
	defer cancel()

	added := 0
	for _, classic := range classics {
		if classic.Type != models.StoryTypeClassic {
			return added, models.InvalidInput(fmt.Sprintf("story %q is not a classic", classic.Title))
		}

		exists, err := s.repo.ExistsByTitle(ctx, classic.Title)
		if err != nil {
			return added, backendError(err)
		}
		if exists {
			continue
		}

		story := *classic
		story.ID = ""
		if story.Timestamp == "" {
			story.Timestamp = models.Timestamp(s.now())
		}
		id, err := s.repo.Insert(ctx, &story)
		if err != nil {
			return added, backendError(err)
		}
		added++
		log.Debug().Str("story_id", id).Str("title", story.Title).Msg("Classic story added")
	}

	log.Info().Int("added", added).Int("total", len(classics)).Msg("Classic stories seeded")
	return added, nil
}

// CountStories returns the number of stored stories.
func (s *StoryService) CountStories(ctx context.Context) (int, error) {
	ctx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()

	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, backendError(err)
	}
	return n, nil
}

// SeedOnStartup seeds the classics and reports how many stories the store
// holds afterwards.
func (s *StoryService) SeedOnStartup(ctx context.Context, classics []*models.Story) (added, total int, err error) {
	added, err = s.SeedClassics(ctx, classics)
	if err != nil {
		return added, 0, err
	}
	total, err = s.CountStories(ctx)
	if err != nil {
		return added, 0, err
	}
	return added, total, nil
}

// GenerateChildStory generates a transient children's story. The result is never persisted.
func (s *StoryService) GenerateChildStory(ctx context.Context, req *models.GenerateStoryRequest) (*models.Story, error) {
	keywords := nonEmpty(req.Keywords)
	childName := strings.TrimSpace(req.ChildName)

	if len(keywords) == 0 {
		metrics.ObserveGeneration(string(models.StoryTypeGenerated), metrics.StatusInvalid)
		return nil, models.InvalidInput("No keywords provided")
	}
	if childName == "" {
		metrics.ObserveGeneration(string(models.StoryTypeGenerated), metrics.StatusInvalid)
		return nil, models.InvalidInput("Child name is required")
	}

	text, err := s.generate(ctx, models.StoryTypeGenerated, llm.BuildChildPrompt(childName, keywords))
	if err != nil {
		return nil, err
	}

	return &models.Story{
		Title:     fmt.Sprintf("%s's Story with %s", childName, strings.Join(keywords, ", ")),
		Content:   text,
		Keywords:  keywords,
		ChildName: childName,
		Timestamp: models.Timestamp(s.now()),
		Type:      models.StoryTypeGenerated,
		Temporary: true,
	}, nil
}

// GenerateAdultStory generates a transient therapeutic story for an adult. The result is never persisted.
func (s *StoryService) GenerateAdultStory(ctx context.Context, req *models.GenerateAdultStoryRequest) (*models.Story, error) {
	sleepIssue := strings.TrimSpace(req.SleepIssue)
	customReason := strings.TrimSpace(req.CustomSleepReason)
	adultName := strings.TrimSpace(req.AdultName)

	if sleepIssue == "" && customReason == "" {
		metrics.ObserveGeneration(string(models.StoryTypeAdultGenerated), metrics.StatusInvalid)
		return nil, models.InvalidInput("No sleep issue provided")
	}
	if adultName == "" {
		metrics.ObserveGeneration(string(models.StoryTypeAdultGenerated), metrics.StatusInvalid)
		return nil, models.InvalidInput("Adult name is required")
	}

	finalIssue := sleepIssue
	if customReason != "" {
		finalIssue = customReason
	}
	memories := nonEmpty(req.Memories)
	customMemory := strings.TrimSpace(req.CustomMemory)

	prompt := llm.BuildAdultPrompt(llm.AdultPrompt{
		AdultName:    adultName,
		SleepIssue:   finalIssue,
		Memories:     memories,
		CustomMemory: customMemory,
	})
	text, err := s.generate(ctx, models.StoryTypeAdultGenerated, prompt)
	if err != nil {
		return nil, err
	}

	return &models.Story{
		Title:             fmt.Sprintf("%s's Soothing Story", adultName),
		Content:           text,
		SleepIssue:        sleepIssue,
		CustomSleepReason: customReason,
		SleepIssueDisplay: sleepIssueDisplay(sleepIssue, customReason),
		Memories:          memories,
		CustomMemory:      customMemory,
		AdultName:         adultName,
		Timestamp:         models.Timestamp(s.now()),
		Type:              models.StoryTypeAdultGenerated,
		Temporary:         true,
	}, nil
}

// TestGeneration sends a fixed prompt to check that the generation service answers.
func (s *StoryService) TestGeneration(ctx context.Context) (string, error) {
	if !s.geminiConfigured {
		return "", models.NewError(models.ErrServiceMisconfigured, "Gemini API key not configured", nil)
	}

	ctx, cancel := withTimeout(ctx, s.generationTimeout)
	defer cancel()

	reply, err := s.generator.Ping(ctx, llm.PingPrompt)
	if err != nil {
		log.Error().Err(err).Msg("Gemini test failed")
		return "", models.NewError(models.ErrGenerationFailed, "Gemini test failed: "+err.Error(), err)
	}
	if reply == "" {
		return "", models.NewError(models.ErrGenerationFailed, "No response from Gemini", nil)
	}
	return reply, nil
}

// generate runs one generation call. No retries: a failure goes straight back to the caller.
func (s *StoryService) generate(ctx context.Context, storyType models.StoryType, prompt string) (string, error) {
	if !s.geminiConfigured {
		metrics.ObserveGeneration(string(storyType), metrics.StatusError)
		return "", models.NewError(models.ErrServiceMisconfigured, msgGeminiNotConfigured, nil)
	}

	ctx, cancel := withTimeout(ctx, s.generationTimeout)
	defer cancel()

	start := s.now()
	text, err := s.generator.GenerateStory(ctx, prompt)
	if err != nil {
		metrics.ObserveGeneration(string(storyType), metrics.StatusError)
		log.Error().Err(err).Str("type", string(storyType)).Msg("Story generation failed")
		return "", models.NewError(models.ErrGenerationFailed, "Story generation failed: "+err.Error(), err)
	}
	if strings.TrimSpace(text) == "" {
		metrics.ObserveGeneration(string(storyType), metrics.StatusError)
		return "", models.NewError(models.ErrGenerationFailed, msgNoStoryGenerated, nil)
	}

	metrics.ObserveGeneration(string(storyType), metrics.StatusSuccess)
	log.Info().
		Str("type", string(storyType)).
		Int("story_length", len(text)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Story generated")
	return text, nil
}

// sleepIssueDisplay is the custom reason when given, else the issue tag as a title ("racing_thoughts" -> "Racing Thoughts").
func sleepIssueDisplay(issue, customReason string) string {
	if customReason != "" {
		return customReason
	}
	return cases.Title(language.English).String(strings.ReplaceAll(issue, "_", " "))
}

// nonEmpty returns the trimmed, non-blank entries of in, preserving order.
func nonEmpty(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// backendError classifies a store failure. Misconfiguration passes through unchanged.
func backendError(err error) error {
	if errors.Is(err, models.ErrServiceMisconfigured) {
		return err
	}
	return models.NewError(models.ErrBackendUnavailable, err.Error(), err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
