package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/roelfdiedericks/voicetools/internal/envelope"
)

// fakeTranscriber records calls and checks the artifact exists while it runs.
type fakeTranscriber struct {
	t          *testing.T
	transcript *Transcript
	err        error
	panicWith  interface{}

	calls     int
	lastPath  string
	lastBytes []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, filePath string) (*Transcript, error) {
	f.calls++
	f.lastPath = filePath
	data, err := os.ReadFile(filePath)
	if err != nil {
		f.t.Errorf("artifact not readable during transcription: %v", err)
	}
	f.lastBytes = data
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.transcript, f.err
}

func (f *fakeTranscriber) Name() string { return "fake" }
func (f *fakeTranscriber) Close() error { return nil }

// silenceWAV returns a mono 16-bit PCM WAV of the given number of samples at 16kHz.
func silenceWAV(samples int) []byte {
	var buf bytes.Buffer
	dataSize := uint32(samples * 2)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(16000))
	binary.Write(&buf, binary.LittleEndian, uint32(32000))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func assertGone(t *testing.T, path string) {
	t.Helper()
	if path == "" {
		t.Fatal("transcriber never saw an artifact path")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("artifact %s still exists after the call", path)
	}
}

func TestTranscribeMissingAudiofile(t *testing.T) {
	for _, body := range []string{`{}`, `{"audiofile":""}`, `{"audiofile":null}`, `{"text":"hi"}`} {
		fake := &fakeTranscriber{t: t}
		req, err := envelope.Decode([]byte(body))
		if err != nil {
			t.Fatalf("Decode(%s): %v", body, err)
		}

		res := NewPipeline(fake, t.TempDir()).Transcribe(context.Background(), req)
		if res.OK || res.Reason != "Missing audiofile" {
			t.Errorf("%s: result = %+v, want Missing audiofile", body, res)
		}
		if fake.calls != 0 {
			t.Errorf("%s: transcriber called %d times, want 0", body, fake.calls)
		}
	}
}

func TestTranscribeInvalidBase64(t *testing.T) {
	fake := &fakeTranscriber{t: t}
	req := envelope.NewRequest(map[string]string{"audiofile": "%%%not-base64%%%"})

	res := NewPipeline(fake, t.TempDir()).Transcribe(context.Background(), req)
	if res.OK {
		t.Fatalf("result = %+v, want failure", res)
	}
	if !strings.Contains(res.Reason, "decode") {
		t.Errorf("reason = %q, want mention of decode failure", res.Reason)
	}
	if fake.calls != 0 {
		t.Errorf("transcriber called %d times, want 0", fake.calls)
	}
}

func TestTranscribeNonStringAudiofile(t *testing.T) {
	fake := &fakeTranscriber{t: t}
	req, err := envelope.Decode([]byte(`{"audiofile": 12345}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	res := NewPipeline(fake, t.TempDir()).Transcribe(context.Background(), req)
	if res.OK || !strings.HasPrefix(res.Reason, "Base64 decode error") {
		t.Errorf("result = %+v, want Base64 decode error", res)
	}
}

func TestTranscribeSuccess(t *testing.T) {
	audio := silenceWAV(16000)
	fake := &fakeTranscriber{t: t, transcript: &Transcript{Language: "en", Text: "hello"}}
	req := envelope.NewRequest(map[string]string{"audiofile": base64.StdEncoding.EncodeToString(audio)})
	dir := t.TempDir()

	res := NewPipeline(fake, dir).Transcribe(context.Background(), req)
	if !res.OK {
		t.Fatalf("result = %+v, want success", res)
	}
	if lang, _ := res.Get("language"); lang != "en" {
		t.Errorf("language = %q, want en", lang)
	}
	if text, _ := res.Get("text"); text != "hello" {
		t.Errorf("text = %q, want hello", text)
	}
	if fake.calls != 1 {
		t.Errorf("transcriber called %d times, want 1", fake.calls)
	}
	if !bytes.Equal(fake.lastBytes, audio) {
		t.Error("artifact content differs from decoded audio")
	}
	if !strings.HasSuffix(fake.lastPath, ".wav") {
		t.Errorf("artifact %q should carry the sniffed .wav extension", fake.lastPath)
	}
	assertGone(t, fake.lastPath)
}

func TestTranscribeWrappedBase64(t *testing.T) {
	audio := silenceWAV(4000)
	encoded := base64.StdEncoding.EncodeToString(audio)

	var wrapped strings.Builder
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		wrapped.WriteString(encoded[i:end])
		wrapped.WriteString("\r\n\t ")
	}

	fake := &fakeTranscriber{t: t, transcript: &Transcript{Language: "en", Text: "hello"}}
	req := envelope.NewRequest(map[string]string{"audiofile": wrapped.String()})

	res := NewPipeline(fake, t.TempDir()).Transcribe(context.Background(), req)
	if !res.OK {
		t.Fatalf("result = %+v, want success", res)
	}
	if !bytes.Equal(fake.lastBytes, audio) {
		t.Error("artifact content differs from decoded audio")
	}
}

func TestStripSpace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"aGVs bG8=", "aGVsbG8="},
		{"aGVs\nbG8=\r\n", "aGVsbG8="},
		{"\taGVs\v\fbG8=", "aGVsbG8="},
		{"aGVsbG8=", "aGVsbG8="},
		{" \n ", ""},
	}

	for _, tt := range tests {
		if got := stripSpace(tt.in); got != tt.want {
			t.Errorf("stripSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranscribeDefaults(t *testing.T) {
	for _, tr := range []*Transcript{nil, {}} {
		fake := &fakeTranscriber{t: t, transcript: tr}
		req := envelope.NewRequest(map[string]string{"audiofile": base64.StdEncoding.EncodeToString([]byte("opaque audio"))})

		res := NewPipeline(fake, t.TempDir()).Transcribe(context.Background(), req)
		if !res.OK {
			t.Fatalf("result = %+v, want success", res)
		}
		if lang, _ := res.Get("language"); lang != UnknownLanguage {
			t.Errorf("language = %q, want %q", lang, UnknownLanguage)
		}
		if text, ok := res.Get("text"); !ok || text != "" {
			t.Errorf("text = %q (present %v), want empty string", text, ok)
		}
		if !strings.HasSuffix(fake.lastPath, defaultAudioExt) {
			t.Errorf("artifact %q should fall back to %s", fake.lastPath, defaultAudioExt)
		}
	}
}

func TestTranscribeModelFailureCleansUp(t *testing.T) {
	fake := &fakeTranscriber{t: t, err: errors.New("CUDA out of memory")}
	req := envelope.NewRequest(map[string]string{"audiofile": base64.StdEncoding.EncodeToString([]byte("audio"))})

	res := NewPipeline(fake, t.TempDir()).Transcribe(context.Background(), req)
	if res.OK || res.Reason != "CUDA out of memory" {
		t.Errorf("result = %+v, want model failure reason", res)
	}
	assertGone(t, fake.lastPath)
}

func TestTranscribePanicCleansUp(t *testing.T) {
	fake := &fakeTranscriber{t: t, panicWith: "segfault in decoder"}
	req := envelope.NewRequest(map[string]string{"audiofile": base64.StdEncoding.EncodeToString([]byte("audio"))})

	res := NewPipeline(fake, t.TempDir()).Transcribe(context.Background(), req)
	if res.OK || res.Reason != "segfault in decoder" {
		t.Errorf("result = %+v, want panic reason", res)
	}
	assertGone(t, fake.lastPath)
}

func TestTranscribeScratchDirMissing(t *testing.T) {
	fake := &fakeTranscriber{t: t}
	req := envelope.NewRequest(map[string]string{"audiofile": base64.StdEncoding.EncodeToString([]byte("audio"))})

	res := NewPipeline(fake, "/nonexistent/voicetools/scratch").Transcribe(context.Background(), req)
	if res.OK || !strings.Contains(res.Reason, "create artifact") {
		t.Errorf("result = %+v, want artifact creation failure", res)
	}
	if fake.calls != 0 {
		t.Errorf("transcriber called %d times, want 0", fake.calls)
	}
}
