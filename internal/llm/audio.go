package llm

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/bedtime/internal/speech"
	unifiedgenai "google.golang.org/genai"
)

// bedtimeToneHint steers the speech model towards a slow, soft reading.
const bedtimeToneHint = "calm, soft and slow, like reading a bedtime story"

var pcmMimeRe = regexp.MustCompile(`audio/L(\d+)`)

// Synthesize converts text to speech with the Gemini speech modality. Raw PCM
// output is wrapped in a WAV header.
func (c *Client) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	if c.unifiedClient == nil {
		return nil, ErrNotConfigured
	}

	contents := []*unifiedgenai.Content{
		{
			Role: "user",
			Parts: []*unifiedgenai.Part{
				unifiedgenai.NewPartFromText("[tone: " + bedtimeToneHint + "] " + text),
			},
		},
	}

	config := &unifiedgenai.GenerateContentConfig{
		ResponseModalities: []string{"audio"},
		SpeechConfig: &unifiedgenai.SpeechConfig{
			VoiceConfig: &unifiedgenai.VoiceConfig{
				PrebuiltVoiceConfig: &unifiedgenai.PrebuiltVoiceConfig{
					VoiceName: c.ttsVoice,
				},
			},
		},
	}

	log.Debug().
		Str("model", c.modelTTS).
		Str("voice", c.ttsVoice).
		Int("text_length", len(text)).
		Msg("Calling Gemini TTS")

	var audioBuffer bytes.Buffer
	var lastMimeType string

	for resp, err := range c.unifiedClient.Models.GenerateContentStream(ctx, c.modelTTS, contents, config) {
		if err != nil {
			return nil, fmt.Errorf("TTS stream error: %w", err)
		}
		if len(resp.Candidates) == 0 {
			continue
		}
		cand := resp.Candidates[0]
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				audioBuffer.Write(part.InlineData.Data)
				if part.InlineData.MIMEType != "" {
					lastMimeType = part.InlineData.MIMEType
				}
			}
		}
	}

	if audioBuffer.Len() == 0 {
		return nil, fmt.Errorf("TTS returned no audio data")
	}

	audio := newAudio(audioBuffer.Bytes(), lastMimeType)

	log.Info().
		Int("audio_size_bytes", len(audio.Data)).
		Str("voice", c.ttsVoice).
		Str("mime_type", audio.MimeType).
		Msg("Gemini TTS audio generated")

	return audio, nil
}

// newAudio wraps raw PCM in a WAV header and picks the file extension from
// the final MIME type.
func newAudio(data []byte, mimeType string) *speech.Audio {
	if mimeType == "" || strings.HasPrefix(mimeType, "audio/L") {
		data = convertToWAV(data, mimeType)
		mimeType = "audio/wav"
	}
	return &speech.Audio{Data: data, MimeType: mimeType, Ext: audioExt(mimeType)}
}

func audioExt(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	switch strings.ToLower(strings.TrimSpace(base)) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/flac":
		return ".flac"
	case "audio/aac":
		return ".aac"
	default:
		return ".wav"
	}
}

// convertToWAV converts raw mono PCM audio data to WAV format.
func convertToWAV(audioData []byte, mimeType string) []byte {
	params := parseAudioMimeType(mimeType)
	numChannels := 1
	bytesPerSample := params.bitsPerSample / 8
	blockAlign := numChannels * bytesPerSample
	byteRate := params.rate * blockAlign
	dataSize := len(audioData)

	header := new(bytes.Buffer)
	header.WriteString("RIFF")
	binary.Write(header, binary.LittleEndian, uint32(36+dataSize))
	header.WriteString("WAVE")
	header.WriteString("fmt ")
	binary.Write(header, binary.LittleEndian, uint32(16))
	binary.Write(header, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(header, binary.LittleEndian, uint16(numChannels))
	binary.Write(header, binary.LittleEndian, uint32(params.rate))
	binary.Write(header, binary.LittleEndian, uint32(byteRate))
	binary.Write(header, binary.LittleEndian, uint16(blockAlign))
	binary.Write(header, binary.LittleEndian, uint16(params.bitsPerSample))
	header.WriteString("data")
	binary.Write(header, binary.LittleEndian, uint32(dataSize))

	return append(header.Bytes(), audioData...)
}

type audioParams struct {
	bitsPerSample int
	rate          int
}

// parseAudioMimeType parses bits per sample and rate from e.g. "audio/L16;codec=pcm;rate=24000".
func parseAudioMimeType(mimeType string) audioParams {
	params := audioParams{bitsPerSample: 16, rate: 24000}

	for _, part := range strings.Split(mimeType, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "rate=") {
			if rate, err := strconv.Atoi(part[len("rate="):]); err == nil {
				params.rate = rate
			}
		} else if m := pcmMimeRe.FindStringSubmatch(part); len(m) > 1 {
			if bits, err := strconv.Atoi(m[1]); err == nil {
				params.bitsPerSample = bits
			}
		}
	}
	return params
}
