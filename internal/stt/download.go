package stt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
	"github.com/roelfdiedericks/voicetools/internal/paths"
)

// progressInterval throttles download progress logging.
const progressInterval = 2 * time.Second

// Downloader fetches whisper.cpp models.
type Downloader struct {
	Client  *http.Client
	BaseURL string // empty = ModelBaseURL
}

// DownloadModel downloads a catalog model into destDir with the default client.
func DownloadModel(ctx context.Context, model *WhisperModel, destDir string) (string, error) {
	return (&Downloader{}).Download(ctx, model, destDir)
}

// Download fetches model into destDir and returns the final path. The file
// is written under a ".download" suffix and renamed once complete.
func (d *Downloader) Download(ctx context.Context, model *WhisperModel, destDir string) (string, error) {
	if model == nil {
		return "", fmt.Errorf("model is nil")
	}

	expandedDir, err := paths.ExpandTilde(destDir)
	if err != nil {
		return "", fmt.Errorf("expand path: %w", err)
	}
	if err := paths.EnsureDir(expandedDir); err != nil {
		return "", fmt.Errorf("create models directory: %w", err)
	}

	destPath := filepath.Join(expandedDir, model.Name)
	tempPath := destPath + ".download"

	url := model.URL()
	if d.BaseURL != "" {
		url = d.BaseURL + model.Name
	}
	client := d.Client
	if client == nil {
		client = &http.Client{}
	}

	L_info("stt: downloading model", "model", model.Name, "size", model.Size(), "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = model.SizeBytes
	}

	tempFile, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	progress := &progressWriter{name: model.Name, total: total, last: time.Now()}
	_, err = io.Copy(io.MultiWriter(tempFile, progress), resp.Body)
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("write model: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("rename file: %w", err)
	}

	L_info("stt: download complete", "model", model.Name, "path", destPath, "size", humanize.Bytes(uint64(progress.written))) // #nosec G115
	return destPath, nil
}

// progressWriter logs download progress at most every progressInterval.
type progressWriter struct {
	name    string
	total   int64
	written int64
	last    time.Time
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if time.Since(p.last) >= progressInterval {
		percent := 0
		if p.total > 0 {
			percent = int(float64(p.written) / float64(p.total) * 100)
		}
		L_info("stt: downloading", "model", p.name, "progress", fmt.Sprintf("%d%%", percent),
			"downloaded", humanize.Bytes(uint64(p.written))+"/"+humanize.Bytes(uint64(p.total))) // #nosec G115
		p.last = time.Now()
	}
	return len(b), nil
}
