package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/toyz/mapgen/internal/version"
)

// ConfigFile is picked up from the working directory when present
const ConfigFile = ".mapgen.yaml"

// CLI is the command line grammar
type CLI struct {
	Globals

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate implementations for //mapgen::mapper interfaces."`
	Clean    CleanCmd    `cmd:"" help:"Delete generated mapper files."`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever Go sources change."`
	Version  VersionCmd  `cmd:"" help:"Print the generator version."`
}

// Globals are accepted by every command
type Globals struct {
	Config   kong.ConfigFlag `help:"Load options from a YAML file." placeholder:"FILE"`
	Module   string          `help:"Module path to use instead of the one declared in go.mod." placeholder:"PATH"`
	Verbose  bool            `short:"v" xor:"output" help:"Show every generation phase."`
	Quiet    bool            `short:"q" xor:"output" help:"Only print errors and the final result."`
	LogLevel string          `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Structured log level (debug, info, warn, error)."`
}

// exitCode carries a kong exit request out of Parse
type exitCode int

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes the selected command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			exit, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(exit)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name(version.Name),
		kong.Description("Generates implementations of annotated mapping interfaces."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitCode(code)) }),
		kong.Configuration(kongyaml.Loader, ConfigFile),
	)
	if err != nil {
		fmt.Fprintf(stderr, "mapgen: %v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	logger, err := newLogger(cli.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "mapgen: failed to setup logger: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	app := &App{
		Globals:     &cli.Globals,
		Context:     ctx,
		Stdout:      stdout,
		Stderr:      stderr,
		Logger:      logger,
		Diagnostics: newDiagnostics(cli.Globals, stdout, stderr),
	}
	if err := kctx.Run(app); err != nil {
		return 1
	}
	return 0
}
