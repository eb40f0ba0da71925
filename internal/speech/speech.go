// Package speech converts story text to audio through a hosted synthesis service.
package speech

import (
	"context"

	"github.com/snappy-loop/bedtime/internal/models"
)

// Audio is a synthesized audio payload.
type Audio struct {
	Data     []byte
	MimeType string // e.g. "audio/mpeg"
	Ext      string // file extension including the dot, e.g. ".mp3"
}

// Synthesizer turns text into Audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// Unavailable stands in for a synthesizer whose client could not be created.
type Unavailable struct {
	Reason error
}

// Synthesize always fails with models.ErrServiceMisconfigured.
func (u Unavailable) Synthesize(ctx context.Context, text string) (*Audio, error) {
	return nil, models.NewError(models.ErrServiceMisconfigured, "Text-to-speech not configured", u.Reason)
}
