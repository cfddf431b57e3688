package stt

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/roelfdiedericks/voicetools/internal/artifact"
	"github.com/roelfdiedericks/voicetools/internal/envelope"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// UnknownLanguage is reported when the transcriber does not name a language.
const UnknownLanguage = "unknown"

// defaultAudioExt is used when the uploaded container cannot be sniffed.
// Browser MediaRecorder uploads are webm.
const defaultAudioExt = ".webm"

// Pipeline turns an STT request envelope into a result envelope.
type Pipeline struct {
	transcriber Transcriber
	scratchDir  string
}

// NewPipeline creates a pipeline over a loaded transcriber. Artifacts are
// written to scratchDir (empty = OS temp dir).
func NewPipeline(t Transcriber, scratchDir string) *Pipeline {
	return &Pipeline{transcriber: t, scratchDir: scratchDir}
}

// Transcribe handles one request. It never returns an error or panics: every
// failure is reported as a result with result=false.
func (p *Pipeline) Transcribe(ctx context.Context, req *envelope.Request) envelope.Result {
	return envelope.Run(func() (envelope.Result, error) {
		return p.transcribe(ctx, req)
	})
}

func (p *Pipeline) transcribe(ctx context.Context, req *envelope.Request) (envelope.Result, error) {
	start := time.Now()

	encoded, err := req.Field(envelope.FieldAudioFile)
	if err != nil {
		return envelope.Result{}, err
	}
	if encoded == "" {
		return envelope.Result{}, envelope.MissingField(envelope.FieldAudioFile)
	}

	audio, err := base64.StdEncoding.DecodeString(stripSpace(encoded))
	if err != nil {
		return envelope.Result{}, envelope.DecodeError(envelope.FieldAudioFile, err)
	}
	if len(audio) == 0 {
		return envelope.Result{}, envelope.DecodeError(envelope.FieldAudioFile, errors.New("audio payload is empty"))
	}

	art, err := artifact.Write(p.scratchDir, artifact.Extension(audio, defaultAudioExt), audio)
	if err != nil {
		return envelope.Result{}, err
	}
	defer art.Release()

	transcript, err := p.transcriber.Transcribe(ctx, art.Path())
	if err != nil {
		return envelope.Result{}, envelope.ModelFailure(err)
	}
	if transcript == nil {
		transcript = &Transcript{}
	}

	language := transcript.Language
	if language == "" {
		language = UnknownLanguage
	}

	L_elapsed(start, "stt: request complete", "provider", p.transcriber.Name(), "language", language, "chars", len(transcript.Text))
	return envelope.Transcription(language, transcript.Text), nil
}

// stripSpace drops ASCII whitespace so line-wrapped base64 still decodes.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return -1
		}
		return r
	}, s)
}
