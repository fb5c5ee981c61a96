// Package rsx provides the public API for compiling markup embedded in host
// source into construction calls.
//
// Basic usage:
//
//	out, err := rsx.Compile(`<div hidden>Hello</div>`)
//
//	// Whole host files, with a non-default target
//	react, _ := codegen.Builtin("react")
//	out, err = rsx.CompileFile(src, rsx.WithDialect(react), rsx.WithFilename("view.jsx"))
package rsx

import (
	"github.com/sambeau/rsx/pkg/rsx/ast"
	"github.com/sambeau/rsx/pkg/rsx/codegen"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/known"
	"github.com/sambeau/rsx/pkg/rsx/markdown"
	"github.com/sambeau/rsx/pkg/rsx/parser"
	"github.com/sambeau/rsx/pkg/rsx/placeholder"
)

// Options holds the settings shared by every compile function
type Options struct {
	Dialect   *codegen.Dialect
	Generator placeholder.Generator
	Known     *known.Table
	Filename  string
	Logger    Logger
}

// Option configures a compile call
type Option func(*Options)

// WithDialect selects the target dialect (default "dom")
func WithDialect(d *codegen.Dialect) Option {
	return func(o *Options) { o.Dialect = d }
}

// WithGenerator sets the placeholder generator
func WithGenerator(g placeholder.Generator) Option {
	return func(o *Options) { o.Generator = g }
}

// WithKnown sets the known-name table
func WithKnown(t *known.Table) Option {
	return func(o *Options) { o.Known = t }
}

// WithFilename sets the filename recorded on errors
func WithFilename(name string) Option {
	return func(o *Options) { o.Filename = name }
}

// WithLogger sets the logger for progress lines
func WithLogger(l Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func newOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.Dialect == nil {
		o.Dialect = codegen.DOM()
	}
	if o.Known == nil {
		o.Known = known.Default()
	}
	if o.Logger == nil {
		o.Logger = NullLogger()
	}
	return o
}

func (o *Options) parser(src string) *parser.Parser {
	var popts []parser.Option
	if o.Generator != nil {
		popts = append(popts, parser.WithGenerator(o.Generator))
	}
	if o.Filename != "" {
		popts = append(popts, parser.WithFilename(o.Filename))
	}
	return parser.New(src, popts...)
}

func (o *Options) serializer() *codegen.Serializer {
	return codegen.New(codegen.WithDialect(o.Dialect), codegen.WithKnown(o.Known))
}

// Compile compiles a single element or a single braced code block. Only
// whitespace and comments may follow it.
func Compile(src string, opts ...Option) (string, error) {
	o := newOptions(opts)
	p := o.parser(src)

	var (
		out string
		n   int
		err error
	)
	if p.AtCodeBlock() {
		var pe *ast.ParsedExpression
		if pe, _, err = p.ParseCodeBlock(); err != nil {
			return "", err
		}
		if err = p.End(); err != nil {
			return "", err
		}
		n = countElements(pe)
		out, err = o.serializer().SerializeExpression(pe)
	} else {
		var el ast.Element
		if el, _, err = p.ParseElement(); err != nil {
			return "", err
		}
		if err = p.End(); err != nil {
			return "", err
		}
		n = countElements(el)
		out, err = o.serializer().SerializeElement(el)
	}
	if err != nil {
		return "", err
	}
	o.log("compiled", n, elementsWord(n))
	return out, nil
}

// CompileFile compiles a whole host source file, replacing every element
// found in expression position.
func CompileFile(src string, opts ...Option) (string, error) {
	o := newOptions(opts)
	return o.compileFile(src)
}

func (o *Options) compileFile(src string) (string, error) {
	pe, err := o.parser(src).ParseFile()
	if err != nil {
		return "", err
	}
	out, err := o.serializer().SerializeFile(pe)
	if err != nil {
		return "", err
	}
	n := countElements(pe)
	o.log("compiled", n, elementsWord(n))
	return out, nil
}

// CompileMarkdown compiles the rsx and jsx fenced blocks of a Markdown
// document. Compiled blocks are relabelled with the dialect's fence.
func CompileMarkdown(src string, opts ...Option) (string, error) {
	o := newOptions(opts)
	out, n, err := markdown.Rewrite([]byte(src), o.Dialect.Fence, o.compileFile)
	if err != nil {
		if perr, ok := err.(*perrors.RSXError); ok && perr.File == "" && o.Filename != "" {
			return "", perr.WithFile(o.Filename)
		}
		return "", err
	}
	o.log("compiled", n, "markdown", blocksWord(n))
	return string(out), nil
}

// Check compiles src as a host file and discards the output. It also
// verifies that no placeholder survived serialization.
func Check(src string, opts ...Option) error {
	o := newOptions(opts)
	out, err := o.compileFile(src)
	if err != nil {
		return err
	}
	if placeholder.Contains(out) && !placeholder.Contains(src) {
		return perrors.Internal("placeholder left in generated source")
	}
	return nil
}

func (o *Options) log(values ...any) {
	if o.Filename != "" {
		values = append([]any{o.Filename + ":"}, values...)
	}
	o.Logger.LogLine(values...)
}

func countElements(n ast.Node) int {
	count := 0
	ast.Walk(n, func(n ast.Node) bool {
		if _, ok := n.(ast.Element); ok {
			count++
		}
		return true
	})
	return count
}

func elementsWord(n int) string {
	if n == 1 {
		return "element"
	}
	return "elements"
}

func blocksWord(n int) string {
	if n == 1 {
		return "block"
	}
	return "blocks"
}
