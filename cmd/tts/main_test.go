package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/roelfdiedericks/voicetools/internal/tts"
)

type fakeSynth struct {
	audio    []byte
	lastLang string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, lang, outPath string) error {
	f.lastLang = lang
	return os.WriteFile(outPath, f.audio, 0600)
}
func (f *fakeSynth) Name() string { return "fake" }
func (f *fakeSynth) Close() error { return nil }

type fixedDetector string

func (d fixedDetector) Detect(string) (string, error) {
	if d == "" {
		return "", errors.New("undetected")
	}
	return string(d), nil
}

func synthFactory(s *fakeSynth) providerFactory {
	return func(tts.Config) (tts.Synthesizer, error) { return s, nil }
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestRunHello(t *testing.T) {
	isolate(t)
	synth := &fakeSynth{audio: []byte("ID3\x03fake-mp3")}
	var out bytes.Buffer

	code := run([]string{`{"text":"hello"}`}, &out, synthFactory(synth), fixedDetector("en"))
	if code != 0 {
		t.Fatalf("exit = %d, want 0 (stdout %q)", code, out.String())
	}

	line := out.String()
	if strings.Count(line, "\n") != 1 || !strings.HasSuffix(line, "\n") {
		t.Errorf("stdout should be exactly one line, got %q", line)
	}
	if !strings.Contains(line, `"result": true`) {
		t.Errorf("stdout = %q, want result true", line)
	}

	var res struct {
		Result    bool   `json:"result"`
		Audiofile string `json:"audiofile"`
	}
	if err := json.Unmarshal([]byte(line), &res); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	audio, err := base64.StdEncoding.DecodeString(res.Audiofile)
	if err != nil || !bytes.Equal(audio, synth.audio) {
		t.Errorf("audiofile = %q (err %v), want the synthesized bytes", res.Audiofile, err)
	}
	if synth.lastLang != "en" {
		t.Errorf("language = %q, want en", synth.lastLang)
	}
}

func TestRunInvalidOrMissingInput(t *testing.T) {
	isolate(t)
	want := `{"result": false, "reason": "Invalid or missing input"}` + "\n"

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"empty argument", []string{""}},
		{"not json", []string{"hello there"}},
		{"empty object", []string{"{}"}},
		{"null", []string{"null"}},
		{"array", []string{`["text"]`}},
		{"unknown flag", []string{`{"text":"hello"}`, "--verbose"}},
		{"bad timeout", []string{"--timeout", "soon", `{"text":"hello"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			code := run(tt.args, &out, synthFactory(&fakeSynth{audio: []byte("x")}), fixedDetector("en"))
			if code != 1 {
				t.Errorf("exit = %d, want 1", code)
			}
			if out.String() != want {
				t.Errorf("stdout = %q, want %q", out.String(), want)
			}
		})
	}
}

func TestRunMissingTextIsInBand(t *testing.T) {
	isolate(t)
	var out bytes.Buffer

	code := run([]string{`{"audiofile":"abc"}`}, &out, synthFactory(&fakeSynth{}), fixedDetector("en"))
	if code != 0 {
		t.Errorf("exit = %d, want 0", code)
	}
	if got := out.String(); got != `{"result": false, "reason": "Missing text"}`+"\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunDetectionFallback(t *testing.T) {
	isolate(t)
	synth := &fakeSynth{audio: []byte("mp3")}
	var out bytes.Buffer

	code := run([]string{`{"text":"???"}`}, &out, synthFactory(synth), fixedDetector(""))
	if code != 0 {
		t.Fatalf("exit = %d, stdout %q", code, out.String())
	}
	if synth.lastLang != tts.DefaultLanguage {
		t.Errorf("language = %q, want %q", synth.lastLang, tts.DefaultLanguage)
	}
}

func TestRunProviderInitFailure(t *testing.T) {
	isolate(t)
	var out bytes.Buffer

	code := run([]string{`{"text":"hello"}`}, &out, func(tts.Config) (tts.Synthesizer, error) {
		return nil, errors.New("elevenlabs API key not configured")
	}, fixedDetector("en"))
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "elevenlabs API key not configured") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestRunIgnoresExtraArguments(t *testing.T) {
	isolate(t)
	synth := &fakeSynth{audio: []byte("mp3")}
	var out bytes.Buffer

	code := run([]string{`{"text":"hello"}`, "extra", "more"}, &out, synthFactory(synth), fixedDetector("en"))
	if code != 0 {
		t.Fatalf("exit = %d, stdout %q", code, out.String())
	}
	if !strings.HasPrefix(out.String(), `{"result": true`) {
		t.Errorf("stdout = %q", out.String())
	}
}
