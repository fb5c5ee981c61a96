package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/sambeau/rsx/config"
	"github.com/sambeau/rsx/pkg/rsx/codegen"
	"github.com/sambeau/rsx/pkg/rsx/repl"
	"github.com/sambeau/rsx/pkg/rsx/rsx"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

// stdin is read when no command is given and input is piped
var stdin io.Reader = os.Stdin

// errReported means the diagnostics have already been printed
var errReported = errors.New("errors reported")

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app carries what every command needs
type app struct {
	cfg     *config.Config
	dialect *codegen.Dialect
	stdout  io.Writer
	stderr  io.Writer
	color   bool
	verbose bool
}

// run is the main entry point, designed for testability
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("rsx", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printUsage(stderr) }

	var (
		configPath  = flags.String("config", "", "Path to config file")
		dialectName = flags.String("dialect", "", "Output dialect (overrides config)")
		colorMode   = flags.String("color", "", "Colorize diagnostics: auto, always, never")
		quiet       = flags.Bool("q", false, "Only report errors")
		verbose     = flags.Bool("v", false, "Log every compiled file")
		eval        = flags.String("e", "", "Compile a markup string")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.StringVar(eval, "eval", "", "Compile a markup string")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}
	if *showVersion {
		fmt.Fprintf(stdout, "rsx version %s\n", Version)
		return nil
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI overrides
	if *dialectName != "" {
		cfg.Dialect.Name = *dialectName
		cfg.Dialect.File = ""
	}
	if *colorMode != "" {
		cfg.Logging.Color = *colorMode
	}
	if *quiet {
		cfg.Logging.Quiet = true
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	a := &app{
		cfg:     cfg,
		stdout:  stdout,
		stderr:  stderr,
		color:   useColor(cfg.Logging.Color, stderr, getenv),
		verbose: *verbose,
	}
	if a.dialect, err = cfg.BuildDialect(); err != nil {
		return fmt.Errorf("loading dialect: %w", err)
	}
	if !cfg.Logging.Quiet {
		for _, w := range config.Warnings(cfg) {
			a.logInfo("warning: %s", w)
		}
	}

	if *eval != "" {
		return a.evalCommand(*eval)
	}

	rest := flags.Args()
	if len(rest) == 0 {
		if isTerminal(stdin) {
			repl.Start(stdout, Version, repl.Options{Dialect: a.dialect, Known: cfg.KnownTable()})
			return nil
		}
		return a.stdinCommand()
	}

	switch rest[0] {
	case "compile":
		return a.compileCommand(rest[1:])
	case "check":
		return a.checkCommand(rest[1:])
	case "watch":
		return a.watchCommand(ctx, rest[1:])
	case "ast":
		return a.astCommand(rest[1:])
	case "help":
		printUsage(stdout)
		return nil
	}
	return fmt.Errorf("unknown command %q (run 'rsx --help' for usage)", rest[0])
}

// options returns the compile options for one source
func (a *app) options(filename string) []rsx.Option {
	opts := []rsx.Option{
		rsx.WithDialect(a.dialect),
		rsx.WithKnown(a.cfg.KnownTable()),
		rsx.WithGenerator(a.cfg.Generator()),
	}
	if filename != "" {
		opts = append(opts, rsx.WithFilename(filename))
	}
	if a.verbose {
		opts = append(opts, rsx.WithLogger(rsx.WriterLogger(a.stderr)))
	}
	return opts
}

func useColor(mode string, w io.Writer, getenv func(string) string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if getenv("NO_COLOR") != "" || getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (a *app) logInfo(format string, args ...interface{}) {
	if a.cfg.Logging.Quiet {
		return
	}
	fmt.Fprintf(a.stderr, format+"\n", args...)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `rsx - compile markup embedded in host source

Usage:
  rsx [options] <command> [arguments]
  rsx [options] -e '<markup>'
  rsx [options]                 Start the REPL (or compile stdin when piped)

Commands:
  compile [-w|-d] [-l] [-o DIR] <paths>
                                       Compile sources (stdout unless -w, -d or -o)
  check <paths>                        Check syntax without writing anything
  watch [paths]                        Recompile sources when they change
  ast <file>                           Print the parse tree of a source file

Paths:
  file.rsx      only that file
  ./dir         sources in that directory
  ./dir/...     sources in that directory and below

Options:
  --config PATH      Path to config file (default: auto-detect)
  --dialect NAME     Output dialect: %s
  --color MODE       auto, always, or never
  -e, --eval CODE    Compile a single element or code block
  -q                 Only report errors
  -v                 Log every compiled file
  --version          Show version
  --help             Show this help

Config Resolution:
  1. --config flag
  2. RSX_CONFIG environment variable
  3. ./rsx.yaml
  4. ~/.config/rsx/rsx.yaml

Examples:
  rsx -e '<div hidden>Hello</div>'
  rsx compile view.rsx
  rsx compile -w ./...
  rsx --dialect react compile -o build ./src/...
  rsx check README.md

`, strings.Join(codegen.BuiltinNames(), ", "))
}
