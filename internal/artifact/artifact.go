// Package artifact manages transient audio files that live for the duration
// of a single model call.
//
// Every artifact gets a unique name, so concurrent processes sharing a
// scratch directory never touch each other's files.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// Prefix is prepended to every artifact file name.
const Prefix = "voicetools-"

// Artifact is a scoped temporary file. Release removes it and is safe to
// call more than once.
type Artifact struct {
	path     string
	released bool
}

// Create reserves a new empty artifact in dir with the given extension.
// An empty dir means the OS temp directory.
func Create(dir, ext string) (*Artifact, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, Prefix+uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("create artifact: %w", err)
	}

	L_trace("artifact: created", "path", path)
	return &Artifact{path: path}, nil
}

// Write creates an artifact holding data.
func Write(dir, ext string, data []byte) (*Artifact, error) {
	a, err := Create(dir, ext)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(a.path, data, 0600); err != nil {
		a.Release()
		return nil, fmt.Errorf("write artifact: %w", err)
	}
	L_debug("artifact: written", "path", a.path, "bytes", len(data))
	return a, nil
}

// Path returns the artifact's filesystem location.
func (a *Artifact) Path() string {
	return a.path
}

// ReadAll returns the artifact's current contents.
func (a *Artifact) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Release deletes the artifact. A file that is already gone is not an error.
func (a *Artifact) Release() error {
	if a == nil || a.released {
		return nil
	}
	a.released = true
	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		L_warn("artifact: failed to remove", "path", a.path, "error", err)
		return fmt.Errorf("release artifact: %w", err)
	}
	L_trace("artifact: released", "path", a.path)
	return nil
}

// Extension sniffs the audio container of data and returns its file
// extension, or fallback when the content is not recognised as media.
func Extension(data []byte, fallback string) string {
	mt := mimetype.Detect(data)
	kind := mt.String()
	if mt.Extension() == "" {
		return fallback
	}
	if strings.HasPrefix(kind, "audio/") || strings.HasPrefix(kind, "video/") || mt.Is("application/ogg") {
		return mt.Extension()
	}
	return fallback
}
