package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roelfdiedericks/voicetools/internal/config"
)

func TestListMarksDownloadedAndActive(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ggml-medium.bin"), []byte("weights"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if code := run(context.Background(), []string{"--models-dir", dir, "list"}, &out); code != 0 {
		t.Fatalf("exit = %d", code)
	}

	for _, line := range strings.Split(out.String(), "\n") {
		switch {
		case strings.HasPrefix(line, "ggml-medium.bin "):
			if !strings.Contains(line, "downloaded (active)") {
				t.Errorf("medium line = %q", line)
			}
		case strings.HasPrefix(line, "ggml-tiny.bin "):
			if strings.Contains(line, "downloaded") {
				t.Errorf("tiny line = %q", line)
			}
		}
	}
	if !strings.Contains(out.String(), "1.5 GB") {
		t.Errorf("sizes not humanized:\n%s", out.String())
	}
}

func TestDownloadCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tiny-weights"))
	}))
	defer server.Close()

	dir := t.TempDir()
	args := []string{"--models-dir", dir, "download", "ggml-tiny.bin", "--base-url", server.URL + "/"}

	var out bytes.Buffer
	if code := run(context.Background(), args, &out); code != 0 {
		t.Fatalf("exit = %d", code)
	}
	data, err := os.ReadFile(filepath.Join(dir, "ggml-tiny.bin"))
	if err != nil || string(data) != "tiny-weights" {
		t.Errorf("model file = %q, %v", data, err)
	}

	out.Reset()
	if code := run(context.Background(), args, &out); code != 0 {
		t.Fatalf("second run exit = %d", code)
	}
	if !strings.Contains(out.String(), "already downloaded") {
		t.Errorf("second run output = %q", out.String())
	}
}

func TestDownloadUnknownModel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	if code := run(context.Background(), []string{"--models-dir", t.TempDir(), "download", "ggml-huge.bin"}, &out); code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
}

func TestUseWritesConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "voicetools.yaml")
	if err := os.WriteFile(cfgPath, []byte("tts:\n  defaultLanguage: de\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if code := run(context.Background(), []string{"--config", cfgPath, "use", "ggml-small.bin"}, &out); code != 0 {
		t.Fatalf("exit = %d", code)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.STT.WhisperCpp.Model != "ggml-small.bin" {
		t.Errorf("model = %q", cfg.STT.WhisperCpp.Model)
	}
	if cfg.TTS.DefaultLanguage != "de" {
		t.Errorf("existing settings lost: defaultLanguage = %q", cfg.TTS.DefaultLanguage)
	}
	if _, err := os.Stat(cfgPath + ".bak"); err != nil {
		t.Errorf("backup missing: %v", err)
	}
}
