// Package stt provides speech-to-text transcription for audio content.
package stt

import "context"

// Transcript is the outcome of one transcription call.
type Transcript struct {
	Language string // ISO 639-1 code when the provider reports one
	Text     string
}

// Transcriber is the interface for STT implementations.
type Transcriber interface {
	// Transcribe converts an audio file to text. Providers always run in
	// transcription mode, never translation.
	Transcribe(ctx context.Context, filePath string) (*Transcript, error)

	// Name returns the provider name (e.g., "whispercpp", "openai")
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}
