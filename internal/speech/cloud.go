package speech

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// CloudSynthesizer calls Google Cloud Text-to-Speech with a fixed voice and MP3 output.
type CloudSynthesizer struct {
	client   *texttospeech.Client
	voice    string
	language string
}

// NewCloudSynthesizer creates a Cloud Text-to-Speech client. credentialsPath may be
// empty to fall back to application default credentials.
func NewCloudSynthesizer(ctx context.Context, credentialsPath, voice, language string) (*CloudSynthesizer, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	log.Info().
		Str("voice", voice).
		Str("language", language).
		Msg("Cloud Text-to-Speech client initialized")

	return &CloudSynthesizer{client: client, voice: voice, language: language}, nil
}

// Synthesize converts text to MP3 audio.
func (s *CloudSynthesizer) Synthesize(ctx context.Context, text string) (*Audio, error) {
	resp, err := s.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.language,
			Name:         s.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	log.Debug().
		Int("text_length", len(text)).
		Int("audio_size_bytes", len(resp.AudioContent)).
		Msg("Cloud TTS audio generated")

	return &Audio{Data: resp.AudioContent, MimeType: "audio/mpeg", Ext: ".mp3"}, nil
}

// Close releases the underlying client connection.
func (s *CloudSynthesizer) Close() error {
	return s.client.Close()
}
