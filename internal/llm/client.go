package llm

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"google.golang.org/api/option"
	unifiedgenai "google.golang.org/genai"
)

// ErrNotConfigured is returned when a Gemini call is made without an initialized client.
var ErrNotConfigured = errors.New("gemini client not initialized")

// maxGeminiResponseLogBytes is the max length of a Gemini response body to log in full (to avoid huge logs).
const maxGeminiResponseLogBytes = 8192

// httpClientForEndpoint returns an http.Client that rewrites request URLs to the given base endpoint (e.g. http://localhost:31300/gemini).
func httpClientForEndpoint(baseEndpoint string) *http.Client {
	base, err := url.Parse(baseEndpoint)
	if err != nil || base.Scheme == "" || base.Host == "" {
		log.Warn().Err(err).Str("endpoint", baseEndpoint).Msg("Invalid GEMINI_API_ENDPOINT, using default")
		return nil
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return &http.Client{
		Transport: &endpointRoundTripper{base: base, next: http.DefaultTransport},
	}
}

// endpointRoundTripper rewrites request URLs to a custom base (scheme, host, path prefix).
type endpointRoundTripper struct {
	base *url.URL
	next http.RoundTripper
}

func (e *endpointRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.URL.Scheme = e.base.Scheme
	req2.URL.Host = e.base.Host
	req2.URL.Path = "/" + path.Join(strings.TrimPrefix(e.base.Path, "/"), strings.TrimPrefix(req.URL.Path, "/"))
	req2.Host = e.base.Host
	return e.next.RoundTrip(req2)
}

// logGeminiResponse logs Gemini response text, truncating if over maxGeminiResponseLogBytes.
func logGeminiResponse(caller, raw string) {
	if len(raw) <= maxGeminiResponseLogBytes {
		log.Debug().Str("caller", caller).Str("gemini_response", raw).Msg("Gemini response")
		return
	}
	log.Debug().
		Str("caller", caller).
		Str("gemini_response", raw[:maxGeminiResponseLogBytes]+"... [truncated]").
		Int("gemini_response_len", len(raw)).
		Msg("Gemini response")
}

// Options configures a Client.
type Options struct {
	APIKey      string
	APIEndpoint string // optional Gemini API base URL override
	Model       string // text model, e.g. gemini-1.5-flash
	ModelTTS    string // speech model, e.g. gemini-2.5-flash-preview-tts
	TTSVoice    string // prebuilt voice name, e.g. Aoede
}

// Client wraps the Gemini SDKs used by the story service.
type Client struct {
	model         string
	modelTTS      string
	ttsVoice      string
	llm           llms.Model           // story text
	genaiClient   *genai.Client        // connectivity probe
	unifiedClient *unifiedgenai.Client // speech modality
}

// NewClient creates a new LLM client. SDK clients that fail to initialize are left
// nil and the corresponding calls return ErrNotConfigured.
func NewClient(ctx context.Context, opts Options) *Client {
	if opts.Model == "" {
		opts.Model = "gemini-1.5-flash"
	}
	if opts.ModelTTS == "" {
		opts.ModelTTS = "gemini-2.5-flash-preview-tts"
	}
	if opts.TTSVoice == "" {
		opts.TTSVoice = "Aoede"
	}

	c := &Client{
		model:    opts.Model,
		modelTTS: opts.ModelTTS,
		ttsVoice: opts.TTSVoice,
	}
	if opts.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, story generation will not work")
		return c
	}

	llmOpts := []googleai.Option{googleai.WithAPIKey(opts.APIKey), googleai.WithDefaultModel(opts.Model)}
	if opts.APIEndpoint != "" {
		if httpClient := httpClientForEndpoint(opts.APIEndpoint); httpClient != nil {
			llmOpts = append(llmOpts, googleai.WithHTTPClient(httpClient))
		}
	}
	model, err := googleai.New(ctx, llmOpts...)
	if err != nil {
		log.Error().Err(err).Str("model", opts.Model).Msg("Failed to initialize Gemini text model")
	} else {
		c.llm = model
	}

	genaiOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.APIEndpoint != "" {
		genaiOpts = append(genaiOpts, option.WithEndpoint(opts.APIEndpoint))
	}
	c.genaiClient, err = genai.NewClient(ctx, genaiOpts...)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize genai client")
	}

	unifiedCfg := &unifiedgenai.ClientConfig{APIKey: opts.APIKey, Backend: unifiedgenai.BackendGeminiAPI}
	if opts.APIEndpoint != "" {
		unifiedCfg.HTTPOptions = unifiedgenai.HTTPOptions{BaseURL: opts.APIEndpoint}
	}
	c.unifiedClient, err = unifiedgenai.NewClient(ctx, unifiedCfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize unified genai client for TTS")
	}

	log.Info().
		Str("model", opts.Model).
		Str("model_tts", opts.ModelTTS).
		Str("tts_voice", opts.TTSVoice).
		Str("api_endpoint", opts.APIEndpoint).
		Bool("text_model", c.llm != nil).
		Bool("genai_client", c.genaiClient != nil).
		Bool("unified_tts", c.unifiedClient != nil).
		Msg("LLM client initialized")

	return c
}

// Close releases SDK resources.
func (c *Client) Close() error {
	if c.genaiClient != nil {
		return c.genaiClient.Close()
	}
	return nil
}
