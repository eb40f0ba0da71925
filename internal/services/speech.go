package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/bedtime/internal/config"
	"github.com/snappy-loop/bedtime/internal/metrics"
	"github.com/snappy-loop/bedtime/internal/models"
	"github.com/snappy-loop/bedtime/internal/speech"
)

// audioNameLayout is the timestamp part of generated audio file names.
const audioNameLayout = "20060102_150405"

// SpeechService turns story text into a stored audio file
type SpeechService struct {
	synth   speech.Synthesizer
	store   AudioStore
	timeout time.Duration
	now     func() time.Time
}

// NewSpeechService creates a new SpeechService
func NewSpeechService(synth speech.Synthesizer, store AudioStore, cfg *config.Config) *SpeechService {
	return &SpeechService{
		synth:   synth,
		store:   store,
		timeout: cfg.TTSTimeout,
		now:     time.Now,
	}
}

// Synthesize converts text to audio, stores it and returns its URL.
// Markdown is stripped before synthesis.
func (s *SpeechService) Synthesize(ctx context.Context, text string) (string, error) {
	text = speech.PlainText(text)
	if text == "" {
		metrics.ObserveTTS(metrics.StatusInvalid)
		return "", models.InvalidInput("No text provided")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		metrics.ObserveTTS(metrics.StatusError)
		if errors.Is(err, models.ErrServiceMisconfigured) {
			return "", err
		}
		log.Error().Err(err).Int("text_length", len(text)).Msg("Speech synthesis failed")
		return "", models.NewError(models.ErrSynthesisFailed, err.Error(), err)
	}
	if audio == nil || len(audio.Data) == 0 {
		metrics.ObserveTTS(metrics.StatusError)
		return "", models.NewError(models.ErrSynthesisFailed, "No audio generated", nil)
	}

	name := audioFileName(s.now(), audio.Ext)
	url, err := s.store.Save(ctx, name, audio.Data, audio.MimeType)
	if err != nil {
		metrics.ObserveTTS(metrics.StatusError)
		log.Error().Err(err).Str("file", name).Msg("Failed to store audio")
		return "", models.NewError(models.ErrBackendUnavailable, "Failed to store audio: "+err.Error(), err)
	}

	metrics.ObserveTTS(metrics.StatusSuccess)
	log.Info().Str("file", name).Int("audio_size", len(audio.Data)).Msg("Audio generated")
	return url, nil
}

// audioFileName is story_<timestamp>_<8 hex><ext>. The suffix keeps names unique within one second.
func audioFileName(t time.Time, ext string) string {
	if ext == "" {
		ext = ".mp3"
	}
	return fmt.Sprintf("story_%s_%s%s", t.Format(audioNameLayout), strings.ReplaceAll(uuid.NewString(), "-", "")[:8], ext)
}
