package stt

import (
	"fmt"
	"path/filepath"

	. "github.com/roelfdiedericks/voicetools/internal/logging"
	"github.com/roelfdiedericks/voicetools/internal/paths"
)

// Provider names.
const (
	ProviderWhisperCpp = "whispercpp"
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderGoogle     = "google"
)

// DefaultModelsDir is where whisper.cpp models are stored unless configured.
const DefaultModelsDir = "~/.voicetools/stt/whisper"

// DefaultModel matches the "medium" multilingual Whisper model.
const DefaultModel = "ggml-medium.bin"

// Config holds STT configuration.
type Config struct {
	Provider   string           `json:"provider" yaml:"provider" toml:"provider"`       // "whispercpp", "openai", "groq", "google"
	WhisperCpp WhisperCppConfig `json:"whispercpp" yaml:"whispercpp" toml:"whispercpp"` // Local whisper.cpp
	OpenAI     OpenAIConfig     `json:"openai" yaml:"openai" toml:"openai"`             // OpenAI Whisper API
	Groq       OpenAIConfig     `json:"groq" yaml:"groq" toml:"groq"`                   // Groq Whisper API (OpenAI-compatible)
	Google     GoogleConfig     `json:"google" yaml:"google" toml:"google"`             // Google Cloud STT
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderWhisperCpp,
		WhisperCpp: WhisperCppConfig{
			ModelsDir: DefaultModelsDir,
			Model:     DefaultModel,
			Language:  "auto",
		},
	}
}

// NewProvider initializes the transcriber selected by cfg.Provider.
// Any error here is a startup failure for the stt process.
func NewProvider(cfg Config) (Transcriber, error) {
	switch cfg.Provider {
	case ProviderWhisperCpp, "":
		return newWhisperCppFromConfig(cfg.WhisperCpp)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAI)
	case ProviderGroq:
		return NewGroqProvider(cfg.Groq)
	case ProviderGoogle:
		return NewGoogleProvider(cfg.Google)
	default:
		return nil, fmt.Errorf("stt: unknown provider: %s", cfg.Provider)
	}
}

// newWhisperCppFromConfig validates the model file and loads it.
func newWhisperCppFromConfig(cfg WhisperCppConfig) (Transcriber, error) {
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = DefaultModelsDir
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	modelsDir, err := paths.ExpandTilde(cfg.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("stt: failed to expand models dir: %w", err)
	}
	cfg.ModelsDir = modelsDir

	modelPath := filepath.Join(modelsDir, cfg.Model)
	if !IsModelDownloaded(modelsDir, cfg.Model) {
		return nil, fmt.Errorf("stt: model not found at %s - run 'voicemodels download %s'", modelPath, cfg.Model)
	}

	provider, err := NewWhisperCppProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("stt: failed to initialize whispercpp: %w", err)
	}

	L_debug("stt: whispercpp provider initialized", "model", cfg.Model)
	return provider, nil
}
