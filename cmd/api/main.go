package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/bedtime/internal/config"
	"github.com/snappy-loop/bedtime/internal/database"
	"github.com/snappy-loop/bedtime/internal/docstore"
	"github.com/snappy-loop/bedtime/internal/handlers"
	"github.com/snappy-loop/bedtime/internal/llm"
	"github.com/snappy-loop/bedtime/internal/services"
	"github.com/snappy-loop/bedtime/internal/speech"
	"github.com/snappy-loop/bedtime/internal/storage"
	"github.com/snappy-loop/bedtime/internal/stories"
	"github.com/snappy-loop/bedtime/migrations"
)

func main() {
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Bedtime Stories")

	// ctx bounds client construction and the audio sweeper; cancelled on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn().Err(err).Msg("Close failed")
			}
		}
	}()

	repo, closer := openStoryStore(ctx, cfg)
	if closer != nil {
		closers = append(closers, closer)
	}

	llmClient := llm.NewClient(ctx, llm.Options{
		APIKey:      cfg.GeminiAPIKey,
		APIEndpoint: cfg.GeminiAPIEndpoint,
		Model:       cfg.GeminiModel,
		ModelTTS:    cfg.GeminiModelTTS,
		TTSVoice:    cfg.GeminiTTSVoice,
	})
	closers = append(closers, llmClient)
	if !cfg.GeminiConfigured() {
		log.Warn().Msg("GEMINI_API_KEY not set; story generation is disabled")
	}

	synth, closer := openSynthesizer(ctx, cfg, llmClient)
	if closer != nil {
		closers = append(closers, closer)
	}

	audioStore, err := openAudioStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio storage")
	}

	classics, err := stories.Classics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load classic stories")
	}

	storyService := services.NewStoryService(repo, llmClient, cfg)
	speechService := services.NewSpeechService(synth, audioStore, cfg)

	if cfg.SeedOnStartup {
		if added, total, err := storyService.SeedOnStartup(ctx, classics); err != nil {
			log.Warn().Err(err).Msg("Seeding classic stories failed")
		} else {
			log.Info().Int("added", added).Int("stored", total).Msg("Story store ready")
		}
	}

	h := handlers.NewHandler(storyService, speechService, classics)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handlers.NewRouter(h, cfg.StaticDir),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server exited")
}

// openStoryStore selects the story backend. A backend that cannot be opened is
// replaced by docstore.Unavailable so the server still starts.
func openStoryStore(ctx context.Context, cfg *config.Config) (services.StoryRepository, io.Closer) {
	switch cfg.StoreBackend {
	case "memory":
		log.Info().Msg("Using in-memory story store")
		return docstore.NewMemoryRepository(), nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return unavailableStore(errors.New("DATABASE_URL not set"))
		}
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return unavailableStore(err)
		}
		if err := migrations.Run(ctx, db.SQLDB()); err != nil {
			db.Close()
			return unavailableStore(err)
		}
		log.Info().Msg("Using PostgreSQL story store")
		return database.NewStoryRepository(db), db

	case "firestore":
		if !config.FileExists(cfg.FirebaseKeyPath) {
			return unavailableStore(fmt.Errorf("firebase key file %q not found", cfg.FirebaseKeyPath))
		}
		client, err := docstore.NewFirebaseClient(ctx, cfg.FirebaseKeyPath, cfg.FirebaseProjectID)
		if err != nil {
			return unavailableStore(err)
		}
		log.Info().Str("collection", cfg.FirestoreCollection).Msg("Using Firestore story store")
		repo := docstore.NewFirestoreRepository(client, cfg.FirestoreCollection)
		return repo, repo

	default:
		return unavailableStore(fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend))
	}
}

func unavailableStore(reason error) (services.StoryRepository, io.Closer) {
	log.Warn().Err(reason).Msg("Story store unavailable; story endpoints will fail")
	return docstore.Unavailable{Reason: reason}, nil
}

// openSynthesizer selects the speech provider, falling back to speech.Unavailable.
func openSynthesizer(ctx context.Context, cfg *config.Config, gemini *llm.Client) (speech.Synthesizer, io.Closer) {
	switch cfg.TTSProvider {
	case "gemini":
		if !cfg.GeminiConfigured() {
			return unavailableSynth(errors.New("GEMINI_API_KEY not set"))
		}
		log.Info().Str("model", cfg.GeminiModelTTS).Msg("Using Gemini speech synthesis")
		return gemini, nil

	case "google":
		if !config.FileExists(cfg.TTSKeyPath) {
			return unavailableSynth(fmt.Errorf("tts key file %q not found", cfg.TTSKeyPath))
		}
		synth, err := speech.NewCloudSynthesizer(ctx, cfg.TTSKeyPath, cfg.TTSVoice, cfg.TTSLanguage)
		if err != nil {
			return unavailableSynth(err)
		}
		log.Info().Str("voice", cfg.TTSVoice).Msg("Using Cloud Text-to-Speech")
		return synth, synth

	default:
		return unavailableSynth(fmt.Errorf("unknown TTS_PROVIDER %q", cfg.TTSProvider))
	}
}

func unavailableSynth(reason error) (speech.Synthesizer, io.Closer) {
	log.Warn().Err(reason).Msg("Speech synthesis unavailable; /api/tts will fail")
	return speech.Unavailable{Reason: reason}, nil
}

// openAudioStore selects where synthesized audio is written. The local store
// gets a background sweeper bound to ctx when a retention is configured.
func openAudioStore(ctx context.Context, cfg *config.Config) (services.AudioStore, error) {
	switch cfg.AudioStore {
	case "local":
		store := storage.NewLocalStore(cfg.AudioDir, cfg.AudioURLPrefix)
		if cfg.AudioRetention > 0 {
			go store.RunSweeper(ctx, cfg.AudioSweepInterval, cfg.AudioRetention)
		}
		log.Info().Str("dir", cfg.AudioDir).Dur("retention", cfg.AudioRetention).Msg("Storing audio locally")
		return store, nil

	case "s3":
		client, err := storage.NewClient(ctx, storage.S3Options{
			Endpoint:   cfg.S3Endpoint,
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			PublicURL:  cfg.S3PublicURL,
			KeyPrefix:  "audio/",
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Storing audio in S3")
		return client, nil

	default:
		return nil, fmt.Errorf("unknown AUDIO_STORE %q", cfg.AudioStore)
	}
}
