package tts

import (
	"fmt"
)

// Provider names.
const (
	ProviderGTTS       = "gtts"
	ProviderOpenAI     = "openai"
	ProviderElevenLabs = "elevenlabs"
)

// DefaultLanguage is spoken when detection fails.
const DefaultLanguage = "en"

// Config holds TTS configuration.
type Config struct {
	Provider        string           `json:"provider" yaml:"provider" toml:"provider"`                      // "gtts", "openai", "elevenlabs"
	DefaultLanguage string           `json:"defaultLanguage" yaml:"defaultLanguage" toml:"defaultLanguage"` // fallback when detection fails
	GTTS            GTTSConfig       `json:"gtts" yaml:"gtts" toml:"gtts"`
	OpenAI          OpenAIConfig     `json:"openai" yaml:"openai" toml:"openai"`
	ElevenLabs      ElevenLabsConfig `json:"elevenlabs" yaml:"elevenlabs" toml:"elevenlabs"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Provider:        ProviderGTTS,
		DefaultLanguage: DefaultLanguage,
	}
}

// NewProvider initializes the synthesizer selected by cfg.Provider.
func NewProvider(cfg Config) (Synthesizer, error) {
	switch cfg.Provider {
	case ProviderGTTS, "":
		return NewGTTSProvider(cfg.GTTS)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAI)
	case ProviderElevenLabs:
		return NewElevenLabsProvider(cfg.ElevenLabs)
	default:
		return nil, fmt.Errorf("tts: unknown provider: %s", cfg.Provider)
	}
}
