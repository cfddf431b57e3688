package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/roelfdiedericks/voicetools/internal/artifact"
	"github.com/roelfdiedericks/voicetools/internal/envelope"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// outputExt is the container every provider produces.
const outputExt = ".mp3"

// Pipeline turns a TTS request envelope into a result envelope.
type Pipeline struct {
	synth           Synthesizer
	detector        Detector
	defaultLanguage string
	scratchDir      string
}

// NewPipeline creates a pipeline. A nil detector always speaks
// defaultLanguage; an empty defaultLanguage means DefaultLanguage.
func NewPipeline(synth Synthesizer, detector Detector, defaultLanguage, scratchDir string) *Pipeline {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}
	return &Pipeline{
		synth:           synth,
		detector:        detector,
		defaultLanguage: defaultLanguage,
		scratchDir:      scratchDir,
	}
}

// Synthesize handles one request. Every failure is reported in the result.
func (p *Pipeline) Synthesize(ctx context.Context, req *envelope.Request) envelope.Result {
	return envelope.Run(func() (envelope.Result, error) {
		return p.synthesize(ctx, req)
	})
}

func (p *Pipeline) synthesize(ctx context.Context, req *envelope.Request) (envelope.Result, error) {
	start := time.Now()

	text, err := req.Field(envelope.FieldText)
	if err != nil {
		return envelope.Result{}, err
	}
	if text == "" {
		return envelope.Result{}, envelope.MissingField(envelope.FieldText)
	}

	lang := p.detectLanguage(text)

	art, err := artifact.Create(p.scratchDir, outputExt)
	if err != nil {
		return envelope.Result{}, err
	}
	defer art.Release()

	if err := p.synth.Synthesize(ctx, text, lang, art.Path()); err != nil {
		return envelope.Result{}, envelope.ModelFailure(err)
	}

	audio, err := art.ReadAll()
	if err != nil {
		return envelope.Result{}, err
	}
	if len(audio) == 0 {
		return envelope.Result{}, envelope.ModelFailure(errors.New("synthesizer produced no audio"))
	}

	L_elapsed(start, "tts: request complete", "provider", p.synth.Name(), "language", lang,
		"bytes", len(audio), "duration", Duration(audio))
	return envelope.Audio(base64.StdEncoding.EncodeToString(audio)), nil
}

// detectLanguage never fails: detector errors and panics fall back to the
// default language.
func (p *Pipeline) detectLanguage(text string) (lang string) {
	if p.detector == nil {
		return p.defaultLanguage
	}

	defer func() {
		if r := recover(); r != nil {
			L_warn("tts: language detection panicked", "error", fmt.Sprint(r), "fallback", p.defaultLanguage)
			lang = p.defaultLanguage
		}
	}()

	detected, err := p.detector.Detect(text)
	if err != nil || detected == "" {
		L_debug("tts: language detection failed", "error", err, "fallback", p.defaultLanguage)
		return p.defaultLanguage
	}
	L_debug("tts: language detected", "language", detected)
	return detected
}
