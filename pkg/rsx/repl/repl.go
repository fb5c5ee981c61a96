// Package repl is an interactive explorer: type markup, see the generated
// source.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/sambeau/rsx/pkg/rsx/ast"
	"github.com/sambeau/rsx/pkg/rsx/codegen"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/known"
	"github.com/sambeau/rsx/pkg/rsx/parser"
	"github.com/sambeau/rsx/pkg/rsx/placeholder"
	"github.com/sambeau/rsx/pkg/rsx/rsx"
)

const (
	PROMPT              = "rsx> "
	PROMPT_FILE         = "src> "
	CONTINUATION_PROMPT = "...> "
)

const historyName = ".rsx_history"

// Options configures a session
type Options struct {
	Dialect *codegen.Dialect
	Known   *known.Table
	// Generator returns a fresh generator for each input; the default
	// numbers placeholders from 1.
	Generator func() placeholder.Generator
}

// Session holds the state of one REPL: the pending multi-line input and
// the display modes. It is driven line by line, without a terminal.
type Session struct {
	out      io.Writer
	opts     Options
	buf      strings.Builder
	astMode  bool
	fileMode bool
}

// NewSession creates a session that writes results to out
func NewSession(out io.Writer, opts Options) *Session {
	if opts.Dialect == nil {
		opts.Dialect = codegen.DOM()
	}
	if opts.Known == nil {
		opts.Known = known.Default()
	}
	if opts.Generator == nil {
		opts.Generator = func() placeholder.Generator { return placeholder.NewCounter(1) }
	}
	return &Session{out: out, opts: opts}
}

// Prompt returns the prompt for the next line
func (s *Session) Prompt() string {
	switch {
	case s.buf.Len() > 0:
		return CONTINUATION_PROMPT
	case s.fileMode:
		return PROMPT_FILE
	}
	return PROMPT
}

// Pending reports whether a multi-line input is being collected
func (s *Session) Pending() bool { return s.buf.Len() > 0 }

// Cancel drops any pending input
func (s *Session) Cancel() { s.buf.Reset() }

// Feed processes one input line. It returns the complete input once one
// has been evaluated, so the caller can add it to the history, and reports
// whether the user asked to quit.
func (s *Session) Feed(input string) (entry string, quit bool) {
	trimmed := strings.TrimSpace(input)
	if s.buf.Len() == 0 {
		switch {
		case trimmed == "exit" || trimmed == "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return "", true
		case strings.HasPrefix(trimmed, ":"):
			s.command(trimmed)
			return "", false
		case trimmed == "":
			return "", false
		}
	}

	// A blank line forces evaluation of what has been collected.
	if trimmed != "" {
		if s.buf.Len() > 0 {
			s.buf.WriteString("\n")
		}
		s.buf.WriteString(input)
		if s.needsMoreInput() {
			return "", false
		}
	}

	entry = s.buf.String()
	s.buf.Reset()
	s.eval(entry)
	return entry, false
}

// needsMoreInput reports whether the pending input failed only because it
// ended too early.
func (s *Session) needsMoreInput() bool {
	_, err := s.compile(s.buf.String())
	var perr *perrors.RSXError
	if !errors.As(err, &perr) {
		return false
	}
	switch perr.Code {
	case "PARSE-0005", "PARSE-0007":
		return true
	case "PARSE-0001":
		return perr.Offset >= len(s.buf.String())
	}
	return false
}

func (s *Session) compile(src string) (string, error) {
	opts := []rsx.Option{
		rsx.WithDialect(s.opts.Dialect),
		rsx.WithKnown(s.opts.Known),
		rsx.WithGenerator(s.opts.Generator()),
	}
	if s.fileMode {
		return rsx.CompileFile(src, opts...)
	}
	return rsx.Compile(src, opts...)
}

func (s *Session) eval(src string) {
	if s.astMode {
		s.dump(src)
		return
	}
	out, err := s.compile(src)
	if err != nil {
		printError(s.out, err)
		return
	}
	fmt.Fprintln(s.out, strings.TrimRight(out, "\n"))
}

func (s *Session) dump(src string) {
	gen := parser.WithGenerator(s.opts.Generator())
	var node ast.Node
	if s.fileMode {
		pe, err := parser.ParseFile(src, gen)
		if err != nil {
			printError(s.out, err)
			return
		}
		node = pe
	} else {
		p := parser.New(src, gen)
		el, _, err := p.ParseElement()
		if err == nil {
			err = p.End()
		}
		if err != nil {
			printError(s.out, err)
			return
		}
		node = el
	}
	io.WriteString(s.out, ast.Dump(node))
}

// command handles REPL meta-commands that start with ':'
func (s *Session) command(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?     Show this help")
		fmt.Fprintln(s.out, "  :ast              Toggle printing the parse tree instead of code")
		fmt.Fprintln(s.out, "  :file             Toggle host-file mode (markup anywhere in source)")
		fmt.Fprintln(s.out, "  :dialect [name]   Show or switch the output dialect")
		fmt.Fprintln(s.out, "  exit, quit        Exit the REPL")
		fmt.Fprintln(s.out, "")
		fmt.Fprintln(s.out, "Input continues over several lines until it parses;")
		fmt.Fprintln(s.out, "an empty line evaluates what has been typed so far.")

	case ":ast":
		s.astMode = !s.astMode
		fmt.Fprintln(s.out, "AST mode", onOff(s.astMode))

	case ":file":
		s.fileMode = !s.fileMode
		fmt.Fprintln(s.out, "File mode", onOff(s.fileMode))

	case ":dialect":
		if len(fields) == 1 {
			fmt.Fprintf(s.out, "dialect: %s (available: %s)\n", s.opts.Dialect.Name, strings.Join(codegen.BuiltinNames(), ", "))
			return
		}
		d, err := codegen.Builtin(fields[1])
		if err != nil {
			printError(s.out, err)
			return
		}
		s.opts.Dialect = d
		fmt.Fprintln(s.out, "dialect:", d.Name)

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", fields[0])
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// Complete returns completions for line: known tag names after '<' or
// '</', and command names after ':'.
func (s *Session) Complete(line string) []string {
	if strings.HasPrefix(line, ":") && !strings.Contains(line, " ") {
		return filterPrefix([]string{":ast", ":dialect", ":file", ":help"}, line, "")
	}
	if strings.HasPrefix(line, ":dialect ") {
		word := strings.TrimPrefix(line, ":dialect ")
		return filterPrefix(codegen.BuiltinNames(), word, ":dialect ")
	}

	i := strings.LastIndexByte(line, '<')
	if i < 0 {
		return nil
	}
	head, word := line[:i+1], line[i+1:]
	if strings.HasPrefix(word, "/") {
		head, word = head+"/", word[1:]
	}
	if word == "" || strings.ContainsAny(word, " \t>/{}") {
		return nil
	}
	return filterPrefix(s.opts.Known.ElementNames(), strings.ToLower(word), head)
}

func filterPrefix(words []string, prefix, head string) []string {
	var matches []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			matches = append(matches, head+w)
		}
	}
	sort.Strings(matches)
	return matches
}

func printError(out io.Writer, err error) {
	var perr *perrors.RSXError
	if errors.As(err, &perr) {
		io.WriteString(out, perr.PrettyString())
		io.WriteString(out, "\n")
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}

// Start runs the REPL on the terminal with line editing, history, and tab
// completion.
func Start(out io.Writer, version string, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)

	s := NewSession(out, opts)
	line.SetCompleter(s.Complete)

	historyFile := filepath.Join(os.TempDir(), historyName)
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "rsx", version)
	fmt.Fprintln(out, "Type markup to see the generated code, ':help' for commands, Ctrl+D to quit")
	fmt.Fprintln(out, "")

	for {
		input, err := line.Prompt(s.Prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				if s.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				s.Cancel()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		entry, quit := s.Feed(input)
		if quit {
			return
		}
		if strings.TrimSpace(entry) != "" {
			line.AppendHistory(entry)
		}
	}
}
