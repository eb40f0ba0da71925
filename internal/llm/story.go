package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

// GenerateStory sends prompt to the text model and returns the produced text unmodified.
// An empty string with a nil error means the model answered with no text.
func (c *Client) GenerateStory(ctx context.Context, prompt string) (string, error) {
	if c.llm == nil {
		return "", ErrNotConfigured
	}

	log.Debug().Str("model", c.model).Int("prompt_length", len(prompt)).Msg("Generating story")

	resp, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	text := resp.Choices[0].Content
	logGeminiResponse("GenerateStory", text)
	return text, nil
}

// Ping sends a short prompt through the genai SDK and returns the reply text.
func (c *Client) Ping(ctx context.Context, prompt string) (string, error) {
	if c.genaiClient == nil {
		return "", ErrNotConfigured
	}

	resp, err := c.genaiClient.GenerativeModel(c.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.WriteString(string(text))
			}
		}
	}

	logGeminiResponse("Ping", result.String())
	return result.String(), nil
}
