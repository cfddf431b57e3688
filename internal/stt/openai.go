package stt

import (
	"context"
	"errors"
	"fmt"

	. "github.com/roelfdiedericks/voicetools/internal/logging"
	openai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is Groq's OpenAI-compatible API root.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIConfig holds configuration for an OpenAI-compatible Whisper API.
type OpenAIConfig struct {
	APIKey   string `json:"apiKey" yaml:"apiKey" toml:"apiKey"`
	Model    string `json:"model" yaml:"model" toml:"model"`          // "whisper-1", "whisper-large-v3", ...
	BaseURL  string `json:"baseURL" yaml:"baseURL" toml:"baseURL"`    // empty = provider default
	Language string `json:"language" yaml:"language" toml:"language"` // optional ISO hint; empty = detect
}

// OpenAIProvider implements STT against the OpenAI audio transcription
// endpoint. Groq serves the same API and reuses this type.
type OpenAIProvider struct {
	name   string
	model  string
	config OpenAIConfig
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI Whisper STT provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	return newOpenAICompatible(ProviderOpenAI, openai.Whisper1, cfg)
}

// NewGroqProvider creates a Groq Whisper STT provider.
func NewGroqProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	return newOpenAICompatible(ProviderGroq, "whisper-large-v3", cfg)
}

func newOpenAICompatible(name, defaultModel string, cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key not configured", name)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	L_debug("stt: openai-compatible provider initialized", "provider", name, "model", model, "baseURL", clientCfg.BaseURL)

	return &OpenAIProvider{
		name:   name,
		model:  model,
		config: cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// Transcribe uploads the audio file and returns the verbose transcription.
// The API accepts webm/ogg/mp3/wav directly - no conversion needed.
func (o *OpenAIProvider) Transcribe(ctx context.Context, filePath string) (*Transcript, error) {
	L_debug("stt: transcribing", "provider", o.name, "file", filePath)

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: filePath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: o.config.Language,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			L_error("stt: transcription request failed", "provider", o.name, "status", apiErr.HTTPStatusCode, "message", apiErr.Message)
			return nil, fmt.Errorf("%s API error: %s", o.name, apiErr.Message)
		}
		return nil, fmt.Errorf("%s transcription: %w", o.name, err)
	}

	result := &Transcript{
		Language: normalizeLanguage(resp.Language),
		Text:     resp.Text,
	}
	L_debug("stt: transcription complete", "provider", o.name, "language", result.Language, "length", len(result.Text))

	return result, nil
}

// Name returns the provider name.
func (o *OpenAIProvider) Name() string {
	return o.name
}

// Close releases any resources (none for HTTP client).
func (o *OpenAIProvider) Close() error {
	return nil
}
