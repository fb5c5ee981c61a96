package main

import (
	"errors"
	"fmt"
	"strings"

	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
)

const (
	ansiRed   = "\033[31m"
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

const tabWidth = 8

// printError writes err to stderr. When err carries a position inside src
// the offending line is shown with a caret under the column.
func (a *app) printError(err error, src string) {
	var perr *perrors.RSXError
	if !errors.As(err, &perr) {
		fmt.Fprintf(a.stderr, "%s %v\n", a.paint(ansiRed+ansiBold, "error:"), err)
		return
	}

	text := perr.PrettyString()
	header, rest, _ := strings.Cut(text, "\n")
	fmt.Fprintln(a.stderr, a.paint(ansiRed+ansiBold, header))
	if rest != "" {
		fmt.Fprintln(a.stderr, rest)
	}
	if src != "" {
		a.printSourceContext(strings.Split(src, "\n"), perr.Line, perr.Column)
	}
}

// printSourceContext shows line lineNum of lines, trimmed on the left, with
// a caret under colNum. Tabs count as tabWidth columns.
func (a *app) printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}
	sourceLine := []rune(strings.TrimRight(lines[lineNum-1], "\r"))

	trimCount := 0
	start := 0
	for start < len(sourceLine) && (sourceLine[start] == ' ' || sourceLine[start] == '\t') {
		trimCount += width(sourceLine[start])
		start++
	}
	fmt.Fprintf(a.stderr, "    %s\n", string(sourceLine[start:]))

	if colNum <= 0 {
		return
	}
	visualCol := 0
	for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
		visualCol += width(sourceLine[i])
	}
	pointer := strings.Repeat(" ", max(visualCol-trimCount, 0)) + "^"
	fmt.Fprintf(a.stderr, "    %s\n", a.paint(ansiRed, pointer))
}

func width(r rune) int {
	if r == '\t' {
		return tabWidth
	}
	return 1
}

func (a *app) paint(code, s string) string {
	if !a.color {
		return s
	}
	return code + s + ansiReset
}
