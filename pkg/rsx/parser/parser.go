// Package parser turns markup source into the element tree defined in
// package ast.
//
// The grammar is scannerless and ordered: every alternative is tried in a
// fixed order and the parser rewinds the lexer when one fails. Failures
// are merged by position so that the reported error names everything that
// would have been accepted at the furthest point the parser reached.
// A mismatched closing tag is the one failure that is never retried.
package parser

import (
	"github.com/sambeau/rsx/pkg/rsx/ast"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/lexer"
	"github.com/sambeau/rsx/pkg/rsx/placeholder"
)

// Parser represents the parser
type Parser struct {
	l   *lexer.Lexer
	gen placeholder.Generator

	fail   failure
	fatal  *perrors.RSXError
	failed map[memoKey]bool
}

// failure is the furthest point any alternative gave up at.
type failure struct {
	offset   int
	line     int
	column   int
	found    string
	expected []string
	err      *perrors.RSXError // a more specific error at the same offset
}

// Option configures a Parser
type Option func(*Parser)

// WithGenerator sets the placeholder generator. The default draws
// random numbers.
func WithGenerator(g placeholder.Generator) Option {
	return func(p *Parser) { p.gen = g }
}

// WithFilename records a filename on every error the parser returns
func WithFilename(name string) Option {
	return func(p *Parser) { p.l = lexer.NewWithFilename(p.l.Input(), name) }
}

// New creates a new parser instance
func New(input string, opts ...Option) *Parser {
	p := &Parser{
		l:    lexer.New(input),
		fail: failure{offset: -1},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.gen == nil {
		p.gen = placeholder.NewRandom(0)
	}
	return p
}

// Parse parses one element from input, ignoring surrounding whitespace and
// comments, and returns it together with the unconsumed remainder.
func Parse(input string, opts ...Option) (ast.Element, string, error) {
	return New(input, opts...).ParseElement()
}

// ParseElement parses one element at the cursor
func (p *Parser) ParseElement() (ast.Element, string, error) {
	p.skip()
	if p.fatal != nil {
		return nil, "", p.fatal
	}
	if p.l.Ch() != '<' {
		err := p.l.ErrorHere("PARSE-0006", map[string]any{"Found": p.l.Describe()})
		return nil, "", err
	}

	el, ok := p.parseElement()
	if !ok {
		return nil, "", p.err()
	}
	p.skip()
	if p.fatal != nil {
		return nil, "", p.fatal
	}
	return el, p.l.Rest(), nil
}

// ParseCodeBlock parses one braced code block at the cursor
func (p *Parser) ParseCodeBlock() (*ast.ParsedExpression, string, error) {
	p.skip()
	expr, ok := p.parseCodeBlock(false)
	if !ok {
		return nil, "", p.err()
	}
	return expr, p.l.Rest(), nil
}

// ParseChildren parses element content up to the first character that
// cannot continue it, normally the `<` of a closing tag.
func (p *Parser) ParseChildren() ([]ast.Child, string, error) {
	p.skip()
	children := p.parseChildren()
	if p.fatal != nil {
		return nil, "", p.fatal
	}
	return children, p.l.Rest(), nil
}

// ParseAttributes parses a non-empty attribute list
func (p *Parser) ParseAttributes() ([]ast.Attribute, string, error) {
	p.skip()
	attrs, ok := p.parseAttributes()
	if !ok {
		return nil, "", p.err()
	}
	return attrs, p.l.Rest(), nil
}

// AtCodeBlock skips whitespace and comments and reports whether a braced
// code block starts at the cursor.
func (p *Parser) AtCodeBlock() bool {
	p.skip()
	return p.fatal == nil && p.l.Ch() == '{'
}

// End skips trailing whitespace and comments and fails with PARSE-0008 if
// any input is left.
func (p *Parser) End() error {
	p.skip()
	if p.fatal != nil {
		return p.fatal
	}
	if !p.l.EOF() {
		return p.l.ErrorHere("PARSE-0008", map[string]any{"Found": p.l.Describe()})
	}
	return nil
}

// attempt runs fn and rewinds the lexer when it fails. A fatal error is
// never rewound.
func attempt[T any](p *Parser, fn func() (T, bool)) (T, bool) {
	st := p.l.SaveState()
	v, ok := fn()
	if !ok && p.fatal == nil {
		p.l.RestoreState(st)
	}
	return v, ok
}

func (p *Parser) try(fn func() bool) bool {
	_, ok := attempt(p, func() (struct{}, bool) { return struct{}{}, fn() })
	return ok
}

// skip consumes whitespace and comments. An unterminated comment is
// recorded as a failure and left in place for the caller to trip over.
func (p *Parser) skip() {
	if _, err := p.l.SkipWhitespace(); err != nil {
		p.failWith(err.(*perrors.RSXError), p.l.Offset())
	}
}

// expected records that what would have been accepted at the cursor.
func (p *Parser) expected(what string) {
	off := p.l.Offset()
	switch {
	case off > p.fail.offset:
		p.fail = failure{
			offset:   off,
			line:     p.l.Line(),
			column:   p.l.Column(),
			found:    p.l.Describe(),
			expected: []string{what},
		}
	case off == p.fail.offset:
		p.fail.expected = append(p.fail.expected, what)
	}
}

// failWith records a specific error for the failure at offset at. It wins
// over a generic expected-set error at the same offset.
func (p *Parser) failWith(err *perrors.RSXError, at int) {
	switch {
	case at > p.fail.offset:
		p.fail = failure{offset: at, err: err}
	case at == p.fail.offset && p.fail.err == nil:
		p.fail.err = err
	}
}

// setFatal commits err; no enclosing alternative is tried after it.
func (p *Parser) setFatal(err *perrors.RSXError) {
	if p.fatal == nil {
		p.fatal = err
	}
}

// err builds the error reported for a failed parse.
func (p *Parser) err() *perrors.RSXError {
	var err *perrors.RSXError
	switch {
	case p.fatal != nil:
		return p.fatal
	case p.fail.err != nil:
		err = p.fail.err
	case p.fail.offset >= 0:
		err = perrors.NewExpected(p.fail.found, p.fail.expected, p.fail.offset, p.fail.line, p.fail.column)
	default:
		err = p.l.ErrorHere("PARSE-0006", map[string]any{"Found": p.l.Describe()})
	}
	if name := p.l.Filename(); name != "" && err.File == "" {
		err = err.WithFile(name)
	}
	return err
}
