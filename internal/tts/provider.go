// Package tts provides text-to-speech synthesis.
package tts

import "context"

// Synthesizer is the interface for TTS implementations.
type Synthesizer interface {
	// Synthesize renders text spoken in lang (ISO 639-1) and writes the
	// encoded audio to outPath, replacing anything already there.
	Synthesize(ctx context.Context, text, lang, outPath string) error

	// Name returns the provider name (e.g., "gtts", "openai")
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// Detector guesses the language of a piece of text.
type Detector interface {
	// Detect returns an ISO 639-1 code or an error when the language
	// cannot be determined.
	Detect(text string) (string, error)
}
