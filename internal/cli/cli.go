// Package cli holds the plumbing shared by the one-shot commands: argument
// parsing, logging setup, the pipeline deadline and the response line.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/roelfdiedericks/voicetools/internal/config"
	"github.com/roelfdiedericks/voicetools/internal/envelope"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
)

// Parse parses args into grammar. done reports that the process should exit
// with code instead of continuing: help was printed, or err holds the
// argument error the caller must still report on stdout.
func Parse(name, description string, grammar interface{}, args []string) (code int, done bool, err error) {
	exitCode := -1
	parser, err := kong.New(grammar,
		kong.Name(name),
		kong.Description(description),
		kong.Writers(os.Stderr, os.Stderr),
		kong.Exit(func(c int) { exitCode = c }),
	)
	if err != nil {
		L_error("cli: setup failed", "command", name, "error", err)
		return 1, true, err
	}

	if _, err := parser.Parse(args); err != nil {
		L_debug("cli: invalid arguments", "command", name, "error", err)
		return 1, true, err
	}
	if exitCode >= 0 {
		return exitCode, true, nil
	}
	return 0, false, nil
}

// SetupLogging applies the configured level; debug forces LevelDebug.
func SetupLogging(cfg *config.Config, debug bool) {
	level, _ := ParseLevel(cfg.Logging.Level)
	if debug {
		level = LevelDebug
	}
	Init(&Options{Level: level, TimeFormat: "15:04:05"})
	SetLevel(level)
}

// Context bounds a pipeline run by flagTimeout, falling back to the config's
// timeout. Neither set means no deadline.
func Context(cfg *config.Config, flagTimeout time.Duration) (context.Context, context.CancelFunc) {
	timeout := flagTimeout
	if timeout <= 0 {
		timeout, _ = cfg.TimeoutDuration()
	}
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	L_debug("cli: deadline set", "timeout", timeout)
	return context.WithTimeout(context.Background(), timeout)
}

// Respond writes res as the single stdout line and returns code, or 1 when
// the line could not be written.
func Respond(stdout io.Writer, res envelope.Result, code int) int {
	if err := envelope.Encode(stdout, res); err != nil {
		L_error("cli: write response failed", "error", err)
		return 1
	}
	return code
}
