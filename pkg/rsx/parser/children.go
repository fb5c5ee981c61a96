package parser

import (
	"github.com/sambeau/rsx/pkg/rsx/ast"
	"github.com/sambeau/rsx/pkg/rsx/lexer"
)

// parseChildren parses zero or more children, each followed by optional
// whitespace.
func (p *Parser) parseChildren() []ast.Child {
	var children []ast.Child
	for p.fatal == nil {
		child, ok := p.parseChild()
		if !ok {
			break
		}
		children = append(children, child)
		p.skip()
	}
	return children
}

// parseChild tries a code block, then an element, then text.
func (p *Parser) parseChild() (ast.Child, bool) {
	if expr, ok := attempt(p, func() (*ast.ParsedExpression, bool) { return p.parseCodeBlock(false) }); ok {
		return &ast.CodeBlockChild{Expr: expr}, true
	}
	if p.fatal != nil {
		return nil, false
	}
	if el, ok := p.parseElement(); ok {
		return &ast.ElementChild{Element: el}, true
	}
	if p.fatal != nil {
		return nil, false
	}
	if text, ok := p.parseText(); ok {
		return &ast.TextChild{Value: text}, true
	}
	return nil, false
}

// isTextDelimiter reports whether r ends a text run.
func isTextDelimiter(r rune) bool {
	return r == '{' || r == '}' || r == '<' || r == '>' || r == lexer.EOF
}

// parseText reads a run of characters up to a delimiter. Whitespace
// directly before a delimiter is consumed but not kept; whitespace before
// the end of input is kept.
func (p *Parser) parseText() (string, bool) {
	start := p.l.Offset()
	end := start
	for !isTextDelimiter(p.l.Ch()) {
		p.l.Next()
		end = p.l.Offset()

		for lexer.IsWhitespace(p.l.Ch()) {
			p.l.Next()
		}
		if p.l.Ch() != lexer.EOF && isTextDelimiter(p.l.Ch()) {
			break
		}
		end = p.l.Offset()
	}
	if end == start {
		p.expected("text")
		return "", false
	}
	return p.l.Input()[start:end], true
}
