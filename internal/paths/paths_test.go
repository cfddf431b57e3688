package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~", home},
		{"~/models", filepath.Join(home, "models")},
	}

	for _, tt := range tests {
		got, err := ExpandTilde(tt.in)
		if err != nil {
			t.Errorf("ExpandTilde(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScratchDir(t *testing.T) {
	got, err := ScratchDir("")
	if err != nil {
		t.Fatalf("ScratchDir empty: %v", err)
	}
	if got != os.TempDir() {
		t.Errorf("ScratchDir(\"\") = %q, want %q", got, os.TempDir())
	}

	dir := filepath.Join(t.TempDir(), "nested", "scratch")
	got, err = ScratchDir(dir)
	if err != nil {
		t.Fatalf("ScratchDir: %v", err)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Errorf("ScratchDir(%q) did not create directory", dir)
	}
}
