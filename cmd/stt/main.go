// Command stt transcribes one audio clip.
//
//	stt [flags] <request-file>
//
// The request file holds {"audiofile": "<base64>"}, optionally gzipped.
// Exactly one JSON line is written to stdout; logs go to stderr.
package main

import (
	"io"
	"os"
	"time"

	"github.com/roelfdiedericks/voicetools/internal/cli"
	"github.com/roelfdiedericks/voicetools/internal/config"
	"github.com/roelfdiedericks/voicetools/internal/envelope"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
	"github.com/roelfdiedericks/voicetools/internal/paths"
	"github.com/roelfdiedericks/voicetools/internal/stt"
)

// CLI defines the stt command line.
type CLI struct {
	Input   string        `arg:"" optional:"" help:"Request JSON file (plain or gzip)."`
	Rest    []string      `arg:"" optional:"" help:"Ignored."`
	Config  string        `help:"Config file (default: ./voicetools.* or ~/.voicetools/voicetools.*)."`
	Debug   bool          `help:"Enable debug logging."`
	Timeout time.Duration `help:"Abort transcription after this long (0 = config value or none)."`
}

// providerFactory builds the transcriber; tests replace it.
type providerFactory func(stt.Config) (stt.Transcriber, error)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, stt.NewProvider))
}

func run(args []string, stdout io.Writer, newTranscriber providerFactory) int {
	var c CLI
	code, done, err := cli.Parse("stt", "Transcribe the base64 audio in a JSON request file.", &c, args)
	if err != nil {
		return cli.Respond(stdout, envelope.FromError(envelope.InvalidInput(err)), 1)
	}
	if done {
		return code
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return cli.Respond(stdout, envelope.Failure("Failed to load config: "+err.Error()), 1)
	}
	cli.SetupLogging(cfg, c.Debug)

	if c.Input == "" {
		return cli.Respond(stdout, envelope.Failure("Missing input JSON file"), 1)
	}

	raw, err := os.ReadFile(c.Input)
	if err != nil {
		return cli.Respond(stdout, envelope.FromError(envelope.InvalidInput(err)), 1)
	}
	req, err := envelope.Decode(raw)
	if err != nil {
		return cli.Respond(stdout, envelope.FromError(err), 1)
	}

	scratch, err := paths.ScratchDir(cfg.ScratchDir)
	if err != nil {
		return cli.Respond(stdout, envelope.Failure(err.Error()), 1)
	}

	start := time.Now()
	transcriber, err := newTranscriber(cfg.STT)
	if err != nil {
		L_error("stt: provider init failed", "provider", cfg.STT.Provider, "error", err)
		return cli.Respond(stdout, envelope.FromError(envelope.StartupFailure(err)), 1)
	}
	defer transcriber.Close()
	L_elapsed(start, "stt: provider ready", "provider", transcriber.Name())

	ctx, cancel := cli.Context(cfg, c.Timeout)
	defer cancel()

	return cli.Respond(stdout, stt.NewPipeline(transcriber, scratch).Transcribe(ctx, req), 0)
}
