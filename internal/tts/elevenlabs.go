package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/goccy/go-json"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// ElevenLabsEndpoint is the text-to-speech API root; the voice ID is appended.
const ElevenLabsEndpoint = "https://api.elevenlabs.io/v1/text-to-speech/"

// ElevenLabsConfig holds ElevenLabs configuration.
type ElevenLabsConfig struct {
	APIKey   string `json:"apiKey" yaml:"apiKey" toml:"apiKey"`
	VoiceID  string `json:"voiceId" yaml:"voiceId" toml:"voiceId"`
	Model    string `json:"model" yaml:"model" toml:"model"`          // default "eleven_multilingual_v2"
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"` // empty = ElevenLabsEndpoint
}

// ElevenLabsProvider synthesizes MP3 speech with ElevenLabs.
type ElevenLabsProvider struct {
	config ElevenLabsConfig
	client *http.Client
}

// NewElevenLabsProvider creates an ElevenLabs TTS provider.
func NewElevenLabsProvider(cfg ElevenLabsConfig) (*ElevenLabsProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs API key not configured")
	}
	if cfg.VoiceID == "" {
		return nil, fmt.Errorf("elevenlabs voiceId not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "eleven_multilingual_v2"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = ElevenLabsEndpoint
	}

	L_debug("tts: elevenlabs provider initialized", "voice", cfg.VoiceID, "model", cfg.Model)

	return &ElevenLabsProvider{config: cfg, client: &http.Client{}}, nil
}

type elevenLabsRequest struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	LanguageCode string `json:"language_code,omitempty"`
}

// Synthesize posts text to the configured voice and writes the MP3 to outPath.
func (e *ElevenLabsProvider) Synthesize(ctx context.Context, text, lang, outPath string) error {
	payload, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: e.config.Model, LanguageCode: lang})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.Endpoint+e.config.VoiceID, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	L_debug("tts: elevenlabs synthesizing", "lang", lang, "chars", len(text))

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		L_error("tts: elevenlabs request failed", "status", resp.StatusCode, "body", string(body))

		var errResp struct {
			Detail struct {
				Message string `json:"message"`
			} `json:"detail"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Detail.Message != "" {
			return fmt.Errorf("elevenlabs API error: %s", errResp.Detail.Message)
		}
		return fmt.Errorf("elevenlabs API error: status %d", resp.StatusCode)
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	return out.Close()
}

// Name returns the provider name.
func (e *ElevenLabsProvider) Name() string {
	return ProviderElevenLabs
}

// Close releases any resources (none for HTTP client).
func (e *ElevenLabsProvider) Close() error {
	return nil
}
