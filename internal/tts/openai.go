package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	. "github.com/roelfdiedericks/voicetools/internal/logging"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds OpenAI speech configuration.
type OpenAIConfig struct {
	APIKey  string  `json:"apiKey" yaml:"apiKey" toml:"apiKey"`
	Model   string  `json:"model" yaml:"model" toml:"model"`       // "tts-1", "tts-1-hd", "gpt-4o-mini-tts"
	Voice   string  `json:"voice" yaml:"voice" toml:"voice"`       // "alloy", "nova", ...
	Speed   float64 `json:"speed" yaml:"speed" toml:"speed"`       // 0.25 - 4.0, 0 = default
	BaseURL string  `json:"baseURL" yaml:"baseURL" toml:"baseURL"` // empty = api.openai.com
}

// OpenAIProvider synthesizes speech with the OpenAI audio API. The voices
// are multilingual, so the language only feeds logging.
type OpenAIProvider struct {
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	speed  float64
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI TTS provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}

	model := openai.SpeechModel(cfg.Model)
	if model == "" {
		model = openai.TTSModel1
	}
	voice := openai.SpeechVoice(cfg.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	L_debug("tts: openai provider initialized", "model", model, "voice", voice)

	return &OpenAIProvider{
		model:  model,
		voice:  voice,
		speed:  cfg.Speed,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// Synthesize requests MP3 speech and writes it to outPath.
func (o *OpenAIProvider) Synthesize(ctx context.Context, text, lang, outPath string) error {
	L_debug("tts: openai synthesizing", "lang", lang, "chars", len(text))

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          o.speed,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			L_error("tts: speech request failed", "status", apiErr.HTTPStatusCode, "message", apiErr.Message)
			return fmt.Errorf("openai API error: %s", apiErr.Message)
		}
		return fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if _, err := io.Copy(out, resp); err != nil {
		out.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	return out.Close()
}

// Name returns the provider name.
func (o *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Close releases any resources (none for HTTP client).
func (o *OpenAIProvider) Close() error {
	return nil
}
