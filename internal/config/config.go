// Package config loads the voicetools configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	. "github.com/roelfdiedericks/voicetools/internal/logging"
	"github.com/roelfdiedericks/voicetools/internal/paths"
	"github.com/roelfdiedericks/voicetools/internal/stt"
	"github.com/roelfdiedericks/voicetools/internal/tts"
)

// Config is the merged voicetools configuration.
type Config struct {
	Logging    LoggingConfig `json:"logging" yaml:"logging" toml:"logging"`
	ScratchDir string        `json:"scratchDir" yaml:"scratchDir" toml:"scratchDir"` // artifact directory, empty = OS temp
	Timeout    string        `json:"timeout" yaml:"timeout" toml:"timeout"`          // pipeline bound, e.g. "2m"; empty = none
	STT        stt.Config    `json:"stt" yaml:"stt" toml:"stt"`
	TTS        tts.Config    `json:"tts" yaml:"tts" toml:"tts"`

	// Path is the file the config was loaded from ("" = defaults only).
	Path string `json:"-" yaml:"-" toml:"-"`
}

// LoggingConfig controls stderr logging.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" toml:"level"` // trace, debug, info, warn, error
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		STT:     stt.DefaultConfig(),
		TTS:     tts.DefaultConfig(),
	}
}

// Load reads the config file at path, or the first one paths.ConfigPath
// finds when path is empty. A missing file yields the defaults; an explicit
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := paths.ConfigPath()
		if err != nil {
			return nil, err
		}
		if found == "" {
			L_debug("config: no config file, using defaults")
			return Defaults(), nil
		}
		path = found
	}

	expanded, err := paths.ExpandTilde(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := decode(expanded, data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", expanded, err)
	}

	if err := mergo.Merge(cfg, Defaults()); err != nil {
		return nil, fmt.Errorf("merge defaults: %w", err)
	}
	cfg.Path = expanded

	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, err
	}
	if _, err := ParseLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}

	L_debug("config: loaded", "path", expanded, "stt", cfg.STT.Provider, "tts", cfg.TTS.Provider)
	return cfg, nil
}

// TimeoutDuration parses Timeout. Empty means no timeout (0).
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

func format(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func decode(path string, data []byte, cfg *Config) error {
	switch format(path) {
	case "json":
		return json.Unmarshal(data, cfg)
	case "yaml", "yml":
		return yaml.Unmarshal(data, cfg)
	case "toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

func encode(path string, cfg *Config) ([]byte, error) {
	switch format(path) {
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}
