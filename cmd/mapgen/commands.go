package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/toyz/mapgen/internal/cli"
	"github.com/toyz/mapgen/internal/utils"
	"github.com/toyz/mapgen/internal/version"
)

// App is bound into every command's Run method
type App struct {
	*Globals

	Context     context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *zap.Logger
	Diagnostics *utils.DiagnosticSystem
}

func (a *App) generator() *cli.Generator {
	gen := cli.NewGeneratorWithDiagnostics(a.Verbose, a.Diagnostics, a.Logger)
	gen.Reporter().SetOutput(a.Stderr)
	return gen
}

// GenerateOptions are shared by generate and watch
type GenerateOptions struct {
	Directories      []string `arg:"" optional:"" name:"directories" help:"Directories to scan; a trailing /... recurses. Defaults to ./..."`
	Workers          int      `help:"Packages generated in parallel, 0 uses GOMAXPROCS."`
	Prefix           string   `help:"Prefix stripped from interface names (default I)."`
	Suffix           string   `help:"Suffix appended to generated type names."`
	Deciders         []string `sep:"," help:"Body deciders consulted in order (fields, none)."`
	RequireBaseline  bool     `help:"Fail when the reference set is missing baseline packages."`
	LenientAncestors bool     `help:"Drop enclosing scopes a mapper cannot be generated into, such as function bodies, instead of failing."`
	Dump             bool     `help:"Dump every generation result to stdout."`
}

func (o GenerateOptions) config(app *App) cli.Config {
	config := cli.Config{
		Directories:      o.Directories,
		ModuleName:       app.Module,
		Verbose:          app.Verbose,
		Workers:          o.Workers,
		Prefix:           o.Prefix,
		Suffix:           o.Suffix,
		Deciders:         o.Deciders,
		RequireBaseline:  o.RequireBaseline,
		LenientAncestors: o.LenientAncestors,
	}
	if o.Dump {
		config.Dump = app.Stdout
	}
	return config
}

// GenerateCmd writes a mapgen_<file>.go next to every source file declaring mapping interfaces
type GenerateCmd struct {
	GenerateOptions
}

func (c *GenerateCmd) Run(app *App) error {
	d := app.Diagnostics
	d.Header("Generating mappers")

	gen := app.generator()
	if err := gen.Run(app.Context, c.config(app)); err != nil {
		gen.Reporter().ReportError(err)
		return err
	}

	summary := gen.GetSummary()
	for _, file := range summary.GeneratedFiles {
		d.Verbose("wrote %s", file)
	}
	for _, file := range summary.RemovedFiles {
		d.Verbose("removed %s", file)
	}
	d.GenerationComplete()
	return nil
}

// CleanCmd removes generated mapper files
type CleanCmd struct {
	Directories []string `arg:"" optional:"" name:"directories" help:"Directories to clean; a trailing /... recurses. Defaults to ./..."`
}

func (c *CleanCmd) Run(app *App) error {
	d := app.Diagnostics
	d.StartProgress("Cleaning generated files")

	removed, err := cli.NewCleaner().CleanGeneratedFiles(c.Directories)
	if err != nil {
		d.EndProgress(false, err.Error())
		return err
	}
	d.EndProgress(true, fmt.Sprintf("%d files", len(removed)))

	for _, path := range removed {
		d.PhaseItem(path)
	}
	d.Success("Removed %d generated files", len(removed))
	return nil
}

// WatchCmd keeps generated files in sync with their sources
type WatchCmd struct {
	GenerateOptions

	Debounce time.Duration `default:"300ms" help:"Quiet period after a change before regenerating."`
}

func (c *WatchCmd) Run(app *App) error {
	d := app.Diagnostics
	config := c.config(app)
	config.Debounce = c.Debounce

	gen := app.generator()
	watcher := cli.NewWatcher(gen, config, app.Logger)
	watcher.OnRun = func(err error) {
		if err != nil {
			gen.Reporter().ReportError(err)
			return
		}
		summary := gen.GetSummary()
		d.Success("%d mapper types up to date (%d written, %d removed)",
			summary.TypesGenerated, len(summary.GeneratedFiles), len(summary.RemovedFiles))
	}

	d.Info("Watching for changes, press Ctrl+C to stop")
	return watcher.Run(app.Context)
}

// VersionCmd prints the generator version
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	_, err := fmt.Fprintf(app.Stdout, "%s %s\n", version.Name, version.Version())
	return err
}
