package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sambeau/rsx/config"
	"github.com/sambeau/rsx/pkg/rsx/ast"
	"github.com/sambeau/rsx/pkg/rsx/parser"
	"github.com/sambeau/rsx/pkg/rsx/rsx"
	"github.com/sambeau/rsx/pkg/rsx/watch"
)

func (a *app) evalCommand(src string) error {
	out, err := rsx.Compile(src, a.options("")...)
	if err != nil {
		a.printError(err, src)
		return errReported
	}
	fmt.Fprintln(a.stdout, out)
	return nil
}

func (a *app) stdinCommand() error {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	out, err := rsx.CompileFile(string(data), a.options("<stdin>")...)
	if err != nil {
		a.printError(err, string(data))
		return errReported
	}
	io.WriteString(a.stdout, out)
	return nil
}

// compileSource reads and compiles one file, choosing Markdown or host
// mode from its extension.
func (a *app) compileSource(path string) (src, out string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	src = string(data)
	if config.IsMarkdown(path) {
		out, err = rsx.CompileMarkdown(src, a.options(path)...)
	} else {
		out, err = rsx.CompileFile(src, a.options(path)...)
	}
	return src, out, err
}

func (a *app) compileCommand(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	write := fs.Bool("w", false, "Write output next to each source")
	list := fs.Bool("l", false, "List the files written")
	outDir := fs.String("o", "", "Write output into this directory")
	dryRun := fs.Bool("d", false, "List outputs that are missing or out of date, writing nothing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("compile: no paths given")
	}

	files, err := a.collectSources(fs.Args())
	if err != nil {
		return err
	}

	var (
		failed  int
		written int
		stale   int
		total   uint64
	)
	for _, path := range files {
		src, out, err := a.compileSource(path)
		if err != nil {
			a.printError(err, src)
			failed++
			continue
		}
		if !*write && !*dryRun && *outDir == "" {
			io.WriteString(a.stdout, out)
			continue
		}
		dest := a.cfg.OutputPath(path, a.dialect.Fence)
		if *outDir != "" {
			dest = filepath.Join(*outDir, filepath.Base(dest))
		}
		if *dryRun {
			if current, err := os.ReadFile(dest); err != nil || string(current) != out {
				fmt.Fprintln(a.stdout, dest)
				stale++
			}
			continue
		}
		if err := writeOutput(dest, out); err != nil {
			a.printError(err, "")
			failed++
			continue
		}
		written++
		total += uint64(len(out))
		if *list {
			fmt.Fprintln(a.stdout, dest)
		}
	}

	if written > 0 {
		a.logInfo("compiled %d %s (%s)", written, filesWord(written), humanize.Bytes(total))
	}
	if failed > 0 {
		fmt.Fprintf(a.stderr, "%d %s failed\n", failed, filesWord(failed))
		return errReported
	}
	if stale > 0 {
		fmt.Fprintf(a.stderr, "%d %s out of date\n", stale, filesWord(stale))
		return errReported
	}
	return nil
}

func writeOutput(dest, out string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

func (a *app) checkCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("check: no paths given")
	}
	files, err := a.collectSources(args)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			a.printError(fmt.Errorf("reading %s: %w", path, err), "")
			failed++
			continue
		}
		src := string(data)
		if config.IsMarkdown(path) {
			_, err = rsx.CompileMarkdown(src, a.options(path)...)
		} else {
			err = rsx.Check(src, a.options(path)...)
		}
		if err != nil {
			a.printError(err, src)
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(a.stderr, "%d of %d %s failed\n", failed, len(files), filesWord(len(files)))
		return errReported
	}
	a.logInfo("%d %s ok", len(files), filesWord(len(files)))
	return nil
}

func (a *app) astCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("ast: expected exactly one file")
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	pe, err := parser.ParseFile(string(data),
		parser.WithFilename(path), parser.WithGenerator(a.cfg.Generator()))
	if err != nil {
		a.printError(err, string(data))
		return errReported
	}
	io.WriteString(a.stdout, ast.Dump(pe))
	return nil
}

// watchCommand compiles every source once and then recompiles each one as
// it changes, until ctx is cancelled.
func (a *app) watchCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	roots := make([]string, len(args))
	for i, arg := range args {
		roots[i] = strings.TrimSuffix(strings.TrimSuffix(arg, "..."), string(filepath.Separator))
		if roots[i] == "" {
			roots[i] = "."
		}
	}

	files, err := a.collectSources(recursive(roots))
	if err != nil {
		return err
	}
	for _, path := range files {
		a.rebuild(path)
	}

	w, err := watch.New(roots, a.rebuild, watch.Options{
		Debounce: a.cfg.Watch.Debounce,
		Filter:   a.watched,
		Stdout:   a.infoWriter(),
		Stderr:   a.stderr,
	})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	a.logInfo("watching %s (Ctrl+C to stop)", strings.Join(roots, ", "))
	return w.Run(ctx)
}

// rebuild compiles path and writes the result next to it
func (a *app) rebuild(path string) {
	src, out, err := a.compileSource(path)
	if err != nil {
		a.printError(err, src)
		return
	}
	dest := a.cfg.OutputPath(path, a.dialect.Fence)
	if err := writeOutput(dest, out); err != nil {
		a.printError(err, "")
		return
	}
	a.logInfo("%s -> %s (%s)", path, dest, humanize.Bytes(uint64(len(out))))
}

func (a *app) watched(path string) bool {
	return a.isSource(path) && !a.cfg.Ignored(path)
}

func (a *app) infoWriter() io.Writer {
	if a.cfg.Logging.Quiet {
		return io.Discard
	}
	return a.stderr
}

func recursive(roots []string) []string {
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = filepath.Join(r, "...")
	}
	return out
}

func filesWord(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}
