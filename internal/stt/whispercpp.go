package stt

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// WhisperCppProvider implements STT using whisper.cpp.
type WhisperCppProvider struct {
	model  whisper.Model
	config WhisperCppConfig
}

// WhisperCppConfig holds configuration for Whisper.cpp.
type WhisperCppConfig struct {
	ModelsDir string `json:"modelsDir" yaml:"modelsDir" toml:"modelsDir"` // Directory containing whisper models
	Model     string `json:"model" yaml:"model" toml:"model"`             // Model name (e.g., "ggml-medium.bin")
	Language  string `json:"language" yaml:"language" toml:"language"`    // Language code (e.g., "en", "auto" for detection)
	Threads   uint   `json:"threads" yaml:"threads" toml:"threads"`       // Number of threads (0 = auto)
}

// NewWhisperCppProvider loads a whisper.cpp model. Loading is the expensive
// step; the returned provider is cheap to call.
func NewWhisperCppProvider(cfg WhisperCppConfig) (*WhisperCppProvider, error) {
	if cfg.ModelsDir == "" {
		return nil, fmt.Errorf("whisper.cpp modelsDir not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("whisper.cpp model not configured")
	}

	modelPath := filepath.Join(cfg.ModelsDir, cfg.Model)
	L_info("stt: loading whisper.cpp model", "path", modelPath)

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}

	L_debug("stt: whisper.cpp model loaded", "multilingual", model.IsMultilingual())

	return &WhisperCppProvider{
		model:  model,
		config: cfg,
	}, nil
}

// Transcribe converts an audio file to text using Whisper.cpp.
func (w *WhisperCppProvider) Transcribe(ctx context.Context, filePath string) (*Transcript, error) {
	L_debug("stt: whisper.cpp transcribing", "file", filePath)

	samples, err := ConvertToFloat32(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("convert audio: %w", err)
	}

	L_debug("stt: audio converted", "samples", len(samples), "duration_sec", float64(len(samples))/targetSampleRate)

	wctx, err := w.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}

	wctx.SetTranslate(false)

	lang := w.config.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		// English-only models reject anything but "en"
		L_warn("stt: failed to set language", "language", lang, "error", err)
	}

	if w.config.Threads > 0 {
		wctx.SetThreads(w.config.Threads)
	}

	// The encoder-begin callback aborts processing once ctx is done.
	abort := func() bool { return ctx.Err() == nil }
	if err := wctx.Process(samples, abort, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper process: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper process: %w", err)
	}

	var text strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("get segment: %w", err)
		}
		text.WriteString(segment.Text)
	}

	detected := lang
	if lang == "auto" {
		detected = wctx.DetectedLanguage()
	}

	result := &Transcript{
		Language: detected,
		Text:     strings.TrimSpace(text.String()),
	}
	L_debug("stt: whisper.cpp transcription complete", "language", result.Language, "length", len(result.Text))

	return result, nil
}

// Name returns the provider name.
func (w *WhisperCppProvider) Name() string {
	return ProviderWhisperCpp
}

// Close releases the whisper model.
func (w *WhisperCppProvider) Close() error {
	L_debug("stt: closing whisper.cpp model")
	return w.model.Close()
}
