package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// GTTSEndpoint is the Google Translate speech endpoint.
const GTTSEndpoint = "https://translate.google.com/translate_tts"

// gttsMaxChunk is the longest text the endpoint accepts per request, in runes.
const gttsMaxChunk = 100

// GTTSConfig holds Google Translate TTS configuration.
type GTTSConfig struct {
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"` // empty = GTTSEndpoint
	TLD      string `json:"tld" yaml:"tld" toml:"tld"`                // regional host, e.g. "co.uk" (ignored with a custom endpoint)
	Slow     bool   `json:"slow" yaml:"slow" toml:"slow"`             // slower speech rate
	Timeout  string `json:"timeout" yaml:"timeout" toml:"timeout"`    // per-request timeout, e.g. "30s"
}

// GTTSProvider synthesizes MP3 speech through Google Translate. Long text is
// split into chunks and the MP3 responses are concatenated.
type GTTSProvider struct {
	endpoint string
	slow     bool
	client   *http.Client
}

// NewGTTSProvider creates a Google Translate TTS provider.
func NewGTTSProvider(cfg GTTSConfig) (*GTTSProvider, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = GTTSEndpoint
		if cfg.TLD != "" {
			endpoint = "https://translate.google." + cfg.TLD + "/translate_tts"
		}
	}

	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("gtts: invalid timeout %q: %w", cfg.Timeout, err)
		}
		timeout = d
	}

	L_debug("tts: gtts provider initialized", "endpoint", endpoint, "slow", cfg.Slow)

	return &GTTSProvider{
		endpoint: endpoint,
		slow:     cfg.Slow,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Synthesize fetches speech for text and writes the MP3 stream to outPath.
func (g *GTTSProvider) Synthesize(ctx context.Context, text, lang, outPath string) error {
	chunks := splitText(text, gttsMaxChunk)
	if len(chunks) == 0 {
		return fmt.Errorf("no text to speak")
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()

	L_debug("tts: gtts synthesizing", "lang", lang, "chunks", len(chunks))

	for i, chunk := range chunks {
		if err := g.fetchChunk(ctx, out, chunk, lang, i, len(chunks)); err != nil {
			return err
		}
	}
	return out.Close()
}

func (g *GTTSProvider) fetchChunk(ctx context.Context, w io.Writer, chunk, lang string, idx, total int) error {
	speed := "1"
	if g.slow {
		speed = "0.3"
	}
	q := url.Values{
		"ie":       {"UTF-8"},
		"client":   {"tw-ob"},
		"tl":       {lang},
		"q":        {chunk},
		"ttsspeed": {speed},
		"total":    {strconv.Itoa(total)},
		"idx":      {strconv.Itoa(idx)},
		"textlen":  {strconv.Itoa(len([]rune(chunk)))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		L_error("tts: gtts request failed", "status", resp.StatusCode, "lang", lang, "body", string(body))
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
			return fmt.Errorf("gtts: language not supported: %s", lang)
		}
		return fmt.Errorf("gtts: status %d", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	return nil
}

// Name returns the provider name.
func (g *GTTSProvider) Name() string {
	return ProviderGTTS
}

// Close releases any resources (none for HTTP client).
func (g *GTTSProvider) Close() error {
	return nil
}

// splitText breaks text into chunks of at most limit runes, preferring to cut
// after sentence punctuation, then at whitespace. Words longer than limit are
// hard-split.
func splitText(text string, limit int) []string {
	var chunks []string
	runes := []rune(strings.TrimSpace(text))

	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = appendChunk(chunks, string(runes))
			break
		}

		cut := -1
		for i := limit; i > 0; i-- {
			if strings.ContainsRune(".!?;:,。！？", runes[i-1]) {
				cut = i
				break
			}
		}
		if cut < 0 {
			for i := limit; i > 0; i-- {
				if unicode.IsSpace(runes[i]) {
					cut = i
					break
				}
			}
		}
		if cut <= 0 {
			cut = limit
		}

		chunks = appendChunk(chunks, string(runes[:cut]))
		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}
	return chunks
}

func appendChunk(chunks []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return chunks
	}
	return append(chunks, s)
}
