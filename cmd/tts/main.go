// Command tts synthesizes speech for one piece of text.
//
//	tts [flags] '{"text": "..."}'
//
// Anything but a non-empty JSON object, including a JSON array, exits 1 with
// "Invalid or missing input". Synthesis failures are reported in-band with exit 0.
//
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
	"github.com/roelfdiedericks/voicetools/internal/tts"
)

// invalidInput is the reason for a missing, unparsable or empty request.
const invalidInput = "Invalid or missing input"

// CLI defines the tts command line.
type CLI struct {
	Request string        `arg:"" optional:"" help:"Request JSON object, e.g. '{\"text\": \"hello\"}'. Anything that is not a JSON object exits 1."`
	Rest    []string      `arg:"" optional:"" help:"Ignored."`
	Config  string        `help:"Config file (default: ./voicetools.* or ~/.voicetools/voicetools.*)."`
	Debug   bool          `help:"Enable debug logging."`
	Timeout time.Duration `help:"Abort synthesis after this long (0 = config value or none)."`
}

// providerFactory builds the synthesizer; tests replace it.
type providerFactory func(tts.Config) (tts.Synthesizer, error)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, tts.NewProvider, tts.WhatlangDetector{}))
}

func run(args []string, stdout io.Writer, newSynthesizer providerFactory, detector tts.Detector) int {
	var c CLI
	code, done, err := cli.Parse("tts", "Synthesize speech for the text in a JSON request.", &c, args)
	if err != nil {
		return cli.Respond(stdout, envelope.Failure(invalidInput), 1)
	}
	if done {
		return code
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return cli.Respond(stdout, envelope.Failure("Failed to load config: "+err.Error()), 1)
	}
	cli.SetupLogging(cfg, c.Debug)

	req, err := envelope.Decode([]byte(c.Request))
	if c.Request == "" || err != nil || req.Empty() {
		if err != nil {
			L_debug("tts: request rejected", "error", err)
		}
		return cli.Respond(stdout, envelope.Failure(invalidInput), 1)
	}

	scratch, err := paths.ScratchDir(cfg.ScratchDir)
	if err != nil {
		return cli.Respond(stdout, envelope.Failure(err.Error()), 1)
	}

	synth, err := newSynthesizer(cfg.TTS)
	if err != nil {
		L_error("tts: provider init failed", "provider", cfg.TTS.Provider, "error", err)
		return cli.Respond(stdout, envelope.FromError(envelope.StartupFailure(err)), 1)
	}
	defer synth.Close()

	ctx, cancel := cli.Context(cfg, c.Timeout)
	defer cancel()

	pipeline := tts.NewPipeline(synth, detector, cfg.TTS.DefaultLanguage, scratch)
	return cli.Respond(stdout, pipeline.Synthesize(ctx, req), 0)
}
