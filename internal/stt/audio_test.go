package stt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseWAV(t *testing.T) {
	pcm, rate, channels, err := parseWAV(silenceWAV(1600))
	if err != nil {
		t.Fatalf("parseWAV: %v", err)
	}
	if rate != 16000 || channels != 1 {
		t.Errorf("rate=%d channels=%d, want 16000/1", rate, channels)
	}
	if len(pcm) != 1600 {
		t.Errorf("samples = %d, want 1600", len(pcm))
	}
}

func TestParseWAVRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("OggS0000000000000000")},
		{"header only", silenceWAV(0)[:12]},
	}

	for _, tt := range tests {
		if _, _, _, err := parseWAV(tt.data); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestConvertWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence.wav")
	if err := os.WriteFile(path, silenceWAV(16000), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	samples, err := convertWAV(path)
	if err != nil {
		t.Fatalf("convertWAV: %v", err)
	}
	if len(samples) != 16000 {
		t.Errorf("samples = %d, want 16000", len(samples))
	}
	for i, s := range samples {
		if s != 0 {
			t.Fatalf("sample %d = %f, want silence", i, s)
		}
	}
}

func TestToMono(t *testing.T) {
	stereo := []int16{100, 200, -100, -300, 0, 10}
	got := toMono(stereo, 2)
	want := []int16{150, -200, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mono[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	mono := []int16{1, 2, 3}
	if out := toMono(mono, 1); len(out) != 3 {
		t.Errorf("toMono with 1 channel changed length to %d", len(out))
	}
}

func TestInt16ToFloat32(t *testing.T) {
	got := int16ToFloat32([]int16{0, 16384, -32768})
	want := []float32{0, 0.5, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestBytesToInt16TrimsPadding(t *testing.T) {
	buf := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00}
	got := bytesToInt16(buf, 1)
	if len(got) != 2 || got[0] != 1 || got[1] != -1 {
		t.Errorf("bytesToInt16 = %v, want [1 -1]", got)
	}
}

func TestResampleSameRate(t *testing.T) {
	in := []int16{1, 2, 3}
	if out := resampleInt16(in, 16000, 16000); len(out) != 3 {
		t.Errorf("same-rate resample changed length to %d", len(out))
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"english":   "en",
		"English":   "en",
		"en":        "en",
		"EN":        "en",
		"en-US":     "en",
		"pt_BR":     "pt",
		"french":    "fr",
		"cantonese": "yue",
		"":          "",
		" Klingon ": "klingon",
	}

	for in, want := range tests {
		if got := normalizeLanguage(in); got != want {
			t.Errorf("normalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
