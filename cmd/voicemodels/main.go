// Command voicemodels manages the whisper.cpp models the stt command loads.
//
//	voicemodels list
//	voicemodels download [model]
//	voicemodels use <model>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/roelfdiedericks/voicetools/internal/cli"
	"github.com/roelfdiedericks/voicetools/internal/config"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
	"github.com/roelfdiedericks/voicetools/internal/paths"
	"github.com/roelfdiedericks/voicetools/internal/stt"
)

// CLI defines the voicemodels command line.
type CLI struct {
	Config    string `help:"Config file (default: ./voicetools.* or ~/.voicetools/voicetools.*)."`
	Debug     bool   `help:"Enable debug logging."`
	ModelsDir string `help:"Models directory (default: stt.whispercpp.modelsDir from config)."`

	List     ListCmd     `cmd:"" default:"1" help:"List available models and whether they are downloaded."`
	Download DownloadCmd `cmd:"" help:"Download a model."`
	Use      UseCmd      `cmd:"" help:"Make a model the one stt loads (writes the config file)."`
}

// env is bound into every subcommand's Run.
type env struct {
	ctx       context.Context
	out       io.Writer
	cfg       *config.Config
	modelsDir string
}

// ListCmd prints the model catalog.
type ListCmd struct{}

func (l *ListCmd) Run(e *env) error {
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tDESCRIPTION\tSIZE\tSTATUS")
	for _, m := range stt.ListModels(e.modelsDir) {
		status := "-"
		if m.Downloaded {
			status = "downloaded"
		}
		if m.Name == e.cfg.STT.WhisperCpp.Model {
			status += " (active)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, m.Label, m.Size(), status)
	}
	return tw.Flush()
}

// DownloadCmd fetches a model into the models directory.
type DownloadCmd struct {
	Model   string `arg:"" optional:"" help:"Model file name (default: the configured model)."`
	Force   bool   `help:"Download even if the model is already present."`
	BaseURL string `hidden:"" help:"Override the model download host."`
}

func (d *DownloadCmd) Run(e *env) error {
	name := d.Model
	if name == "" {
		name = e.cfg.STT.WhisperCpp.Model
	}
	model := stt.GetModel(name)
	if model == nil {
		return fmt.Errorf("unknown model %q (see 'voicemodels list')", name)
	}

	if !d.Force && stt.IsModelDownloaded(e.modelsDir, model.Name) {
		fmt.Fprintf(e.out, "%s already downloaded in %s\n", model.Name, e.modelsDir)
		return nil
	}

	path, err := (&stt.Downloader{BaseURL: d.BaseURL}).Download(e.ctx, model, e.modelsDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "downloaded %s (%s) to %s\n", model.Name, model.Size(), path)
	return nil
}

// UseCmd selects the model in the config file.
type UseCmd struct {
	Model string `arg:"" help:"Model file name."`
}

func (u *UseCmd) Run(e *env) error {
	if stt.GetModel(u.Model) == nil {
		return fmt.Errorf("unknown model %q (see 'voicemodels list')", u.Model)
	}
	if !stt.IsModelDownloaded(e.modelsDir, u.Model) {
		L_warn("voicemodels: model not downloaded yet", "model", u.Model, "hint", "voicemodels download "+u.Model)
	}

	path := e.cfg.Path
	if path == "" {
		base, err := paths.BaseDir()
		if err != nil {
			return err
		}
		path = filepath.Join(base, paths.ConfigBaseName+".json")
	}

	e.cfg.STT.Provider = stt.ProviderWhisperCpp
	e.cfg.STT.WhisperCpp.Model = u.Model
	if err := config.Save(path, e.cfg); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "stt now uses %s (%s)\n", u.Model, path)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	var c CLI
	exitCode := -1
	parser, err := kong.New(&c,
		kong.Name("voicemodels"),
		kong.Description("Manage whisper.cpp models for the stt command."),
		kong.Writers(stdout, os.Stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		L_error("voicemodels: cli setup failed", "error", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		L_error("voicemodels: invalid arguments", "error", err)
		return 1
	}
	if exitCode >= 0 {
		return exitCode
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		L_error("voicemodels: failed to load config", "error", err)
		return 1
	}
	cli.SetupLogging(cfg, c.Debug)

	dir := c.ModelsDir
	if dir == "" {
		dir = cfg.STT.WhisperCpp.ModelsDir
	}
	modelsDir, err := paths.ExpandTilde(dir)
	if err != nil {
		L_error("voicemodels: bad models dir", "error", err)
		return 1
	}

	if err := kctx.Run(&env{ctx: ctx, out: stdout, cfg: cfg, modelsDir: modelsDir}); err != nil {
		L_error("voicemodels: command failed", "command", kctx.Command(), "error", err)
		return 1
	}
	return 0
}
