package parser

import (
	"strings"
	"unicode"

	"github.com/sambeau/rsx/pkg/rsx/ast"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/lexer"
	"github.com/sambeau/rsx/pkg/rsx/placeholder"
)

type scanMode int

const (
	scanMarkup scanMode = iota // a code block inside markup
	scanSpread                 // the expression of a spread attribute
	scanHost                   // a block inside a host source file

	memoElement scanMode = -1
)

// fragments accumulates the token text of a code block.
type fragments struct {
	sb       strings.Builder
	elements []ast.EmbeddedElement
	count    int
	mark     int // length of the token text right after the last placeholder
}

func (f *fragments) write(s string) {
	f.sb.WriteString(s)
	f.count++
}

func (f *fragments) embed(ph ast.Placeholder, el ast.Element) {
	f.write(string(ph))
	f.elements = append(f.elements, ast.EmbeddedElement{Placeholder: ph, Element: el})
	f.mark = f.sb.Len()
}

func (f *fragments) expression() *ast.ParsedExpression {
	return &ast.ParsedExpression{Tokens: f.sb.String(), Elements: f.elements}
}

// expressionPosition reports whether markup may start after the text
// scanned so far. Host files use it to tell `<` in generics and
// comparisons from the start of an element.
func (f *fragments) expressionPosition() bool {
	text := strings.TrimRightFunc(f.sb.String(), unicode.IsSpace)
	if text == "" || (f.mark > 0 && len(text) == f.mark) {
		return true
	}
	if rest, ok := strings.CutSuffix(text, "return"); ok {
		if rest == "" {
			return true
		}
		r := []rune(rest)
		return !lexer.IsIdentifierPart(r[len(r)-1])
	}
	switch text[len(text)-1] {
	case '(', '[', '{', ',', ';', '=', '?', '!', '&', '|', '>':
		return true
	case ':':
		return !strings.HasSuffix(text, "::")
	}
	return false
}

// memoKey identifies an alternative that already failed at an offset.
type memoKey struct {
	offset int
	kind   scanMode
}

// parseCodeBlock parses '{' fragment* '}' and returns the fragments with
// every element replaced by a placeholder.
func (p *Parser) parseCodeBlock(host bool) (*ast.ParsedExpression, bool) {
	mode := scanMarkup
	if host {
		mode = scanHost
	}
	key := memoKey{offset: p.l.Offset(), kind: mode}
	if p.failed[key] {
		p.expected("code block")
		return nil, false
	}

	expr, ok := attempt(p, func() (*ast.ParsedExpression, bool) {
		open := p.l.SaveState()
		if !p.l.AcceptRune('{') {
			p.expected("`{`")
			return nil, false
		}
		return p.scanBlock(open, mode)
	})
	if !ok && p.fatal == nil {
		p.remember(key)
	}
	return expr, ok
}

func (p *Parser) remember(key memoKey) {
	if p.failed == nil {
		p.failed = make(map[memoKey]bool)
	}
	p.failed[key] = true
}

// scanBlock reads fragments up to the closing brace. open is the state at
// the opening brace, used to position an unterminated-block error.
func (p *Parser) scanBlock(open lexer.LexerState, mode scanMode) (*ast.ParsedExpression, bool) {
	var f fragments
	for {
		switch p.l.Ch() {
		case lexer.EOF:
			err := perrors.NewWithPosition("PARSE-0005", open.Offset(), open.Line(), open.Column(), nil)
			p.failWith(err, p.l.Offset())
			return nil, false
		case '}':
			if mode == scanSpread && f.count == 0 {
				p.expected("expression")
				return nil, false
			}
			p.l.Next()
			return f.expression(), true
		}
		if !p.scanFragment(&f, mode == scanHost) {
			return nil, false
		}
	}
}

// scanFragment consumes one fragment: a nested block, an element, a
// comment, a character literal, a string, or any other single character.
// It only fails on a fatal error.
func (p *Parser) scanFragment(f *fragments, host bool) bool {
	ch := p.l.Ch()
	at := p.l.Offset()

	switch {
	case ch == '{':
		if inner, ok := p.parseCodeBlock(host); ok {
			f.write("{" + inner.Tokens + "}")
			f.elements = append(f.elements, inner.Elements...)
			return true
		}

	case ch == '<' && (!host || f.expressionPosition()):
		key := memoKey{offset: at, kind: memoElement}
		if !p.failed[key] {
			if el, ok := p.parseElement(); ok {
				f.embed(placeholder.New(p.gen), el)
				return true
			}
			if p.fatal == nil {
				p.remember(key)
			}
		}

	case ch == '/' && (p.l.Peek() == '/' || p.l.Peek() == '*'):
		text, err := p.l.ReadComment()
		if err == nil {
			// Comments inside markup are dropped; host files keep them.
			if host {
				f.write(text)
			} else {
				f.count++
			}
			return true
		}
		p.failWith(err.(*perrors.RSXError), at)

	case ch == '\'':
		if lit, ok := p.l.ReadCharLiteral(); ok {
			f.write(lit)
			return true
		}

	case ch == '"':
		lit, ok, err := p.l.ReadHostString()
		if ok {
			f.write(lit)
			return true
		}
		if err != nil {
			p.failWith(err.(*perrors.RSXError), at)
		}

	case ch == '`':
		lit, ok, err := p.l.ReadRawString()
		if ok {
			f.write(lit)
			return true
		}
		if err != nil {
			p.failWith(err.(*perrors.RSXError), at)
		}
	}

	if p.fatal != nil {
		return false
	}
	f.write(string(ch))
	p.l.Next()
	return true
}

// ParseFile scans a whole host source file, lifting out every element that
// appears where an expression may start. Unlike a code block the file has
// no enclosing braces and an unmatched '}' is kept as-is.
func ParseFile(input string, opts ...Option) (*ast.ParsedExpression, error) {
	return New(input, opts...).ParseFile()
}

// ParseFile scans the parser's whole input as a host source file
func (p *Parser) ParseFile() (*ast.ParsedExpression, error) {
	var f fragments
	for !p.l.EOF() {
		if p.l.Ch() == '}' {
			f.write("}")
			p.l.Next()
			continue
		}
		if !p.scanFragment(&f, true) {
			return nil, p.err()
		}
	}
	return f.expression(), nil
}
