package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pion/opus/pkg/oggreader"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// GoogleEndpoint is the Cloud Speech-to-Text v1 recognize method.
const GoogleEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// GoogleConfig holds Google Cloud STT configuration.
type GoogleConfig struct {
	APIKey       string   `json:"apiKey" yaml:"apiKey" toml:"apiKey"`                   // Simple API key
	LanguageCode string   `json:"languageCode" yaml:"languageCode" toml:"languageCode"` // e.g., "en-US", "en-ZA"
	Alternatives []string `json:"alternatives" yaml:"alternatives" toml:"alternatives"` // extra candidate languages
	Endpoint     string   `json:"endpoint" yaml:"endpoint" toml:"endpoint"`             // empty = GoogleEndpoint
}

// GoogleProvider implements STT using Google Cloud Speech-to-Text API.
type GoogleProvider struct {
	config GoogleConfig
	client *http.Client
}

// NewGoogleProvider creates a new Google Cloud STT provider.
func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google API key not configured")
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = GoogleEndpoint
	}

	L_debug("stt: google provider initialized", "language", cfg.LanguageCode)

	return &GoogleProvider{
		config: cfg,
		client: &http.Client{},
	}, nil
}

// getOggSampleRate reads the sample rate from an OGG file header.
// Returns 0 if it cannot be determined.
func getOggSampleRate(filePath string) int {
	file, err := os.Open(filePath)
	if err != nil {
		return 0
	}
	defer file.Close()

	_, header, err := oggreader.NewWith(file)
	if err != nil {
		return 0
	}
	return int(header.SampleRate)
}

// googleEncoding picks the RecognitionConfig encoding for a file extension.
func googleEncoding(filePath string) (encoding string, sampleRate int) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ogg", ".opus", ".oga":
		sampleRate = getOggSampleRate(filePath)
		if sampleRate == 0 {
			sampleRate = 48000
		}
		return "OGG_OPUS", sampleRate
	case ".webm":
		return "WEBM_OPUS", 48000
	case ".wav":
		// LINEAR16 reads the rate from the WAV header
		return "LINEAR16", 0
	case ".mp3":
		return "MP3", 0
	case ".flac":
		return "FLAC", 0
	}
	return "ENCODING_UNSPECIFIED", 0
}

type googleRecognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
		LanguageCode string `json:"languageCode"`
	} `json:"results"`
}

// Transcribe converts an audio file to text using Google Cloud Speech-to-Text.
func (g *GoogleProvider) Transcribe(ctx context.Context, filePath string) (*Transcript, error) {
	L_debug("stt: google transcribing", "file", filePath)

	audioData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	encoding, sampleRate := googleEncoding(filePath)
	config := map[string]interface{}{
		"encoding":                   encoding,
		"languageCode":               g.config.LanguageCode,
		"model":                      "default",
		"enableAutomaticPunctuation": true,
	}
	if sampleRate > 0 {
		config["sampleRateHertz"] = sampleRate
	}
	if len(g.config.Alternatives) > 0 {
		config["alternativeLanguageCodes"] = g.config.Alternatives
	}

	jsonBody, err := json.Marshal(map[string]interface{}{
		"config": config,
		"audio":  map[string]interface{}{"content": base64.StdEncoding.EncodeToString(audioData)},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := g.config.Endpoint + "?key=" + url.QueryEscape(g.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	L_debug("stt: sending to google", "encoding", encoding, "language", g.config.LanguageCode)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		L_error("stt: google request failed", "status", resp.StatusCode, "body", string(body))

		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("google API error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("google API error: status %d", resp.StatusCode)
	}

	var result googleRecognizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var transcripts []string
	language := ""
	for _, r := range result.Results {
		if len(r.Alternatives) > 0 {
			transcripts = append(transcripts, r.Alternatives[0].Transcript)
		}
		if language == "" && r.LanguageCode != "" {
			language = r.LanguageCode
		}
	}
	if language == "" && len(transcripts) > 0 {
		language = g.config.LanguageCode
	}

	out := &Transcript{
		Language: normalizeLanguage(language),
		Text:     strings.Join(transcripts, " "),
	}
	L_debug("stt: google transcription complete", "language", out.Language, "length", len(out.Text))

	return out, nil
}

// Name returns the provider name.
func (g *GoogleProvider) Name() string {
	return ProviderGoogle
}

// Close releases any resources (none for HTTP client).
func (g *GoogleProvider) Close() error {
	return nil
}
