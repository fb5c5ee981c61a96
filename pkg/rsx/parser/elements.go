package parser

import (
	"strings"

	"github.com/sambeau/rsx/pkg/rsx/ast"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/lexer"
)

// parseElement parses a self-closing or normal element. Both forms share
// the opening tag, which is read once:
//
//	'<' name attributes? ( '/>' | '>' children '</' name '>' )
func (p *Parser) parseElement() (ast.Element, bool) {
	return attempt(p, func() (ast.Element, bool) {
		open := p.l.SaveState()
		if !p.l.AcceptRune('<') {
			p.expected("`<`")
			return nil, false
		}
		p.skip()

		name, ok := p.parseElementName()
		if !ok {
			return nil, false
		}
		p.skip()

		attrs, _ := p.parseAttributes()
		if p.fatal != nil {
			return nil, false
		}
		p.skip()

		if p.try(func() bool {
			if !p.l.AcceptRune('/') {
				return false
			}
			p.skip()
			return p.l.AcceptRune('>')
		}) {
			return &ast.SelfClosingElement{Name: name, Attributes: attrs}, true
		}

		if !p.l.AcceptRune('>') {
			p.expected("`/>`")
			p.expected("`>`")
			return nil, false
		}
		p.skip()

		children := p.parseChildren()
		if p.fatal != nil {
			return nil, false
		}
		p.skip()

		if !p.parseClosingTag(name, open) {
			return nil, false
		}
		return &ast.NormalElement{Name: name, Attributes: attrs, Children: children}, true
	})
}

// parseElementName tries a member path, then a namespaced name, then a
// (possibly hyphenated) identifier.
func (p *Parser) parseElementName() (ast.ElementName, bool) {
	if path, ok := attempt(p, p.parseMemberPath); ok {
		return path, true
	}
	if ns, ok := attempt(p, p.parseNamespacedName); ok {
		return ns, true
	}
	if name, ok := attempt(p, p.parseHyphenatedName); ok {
		return &ast.SimpleName{Value: name}, true
	}
	return nil, false
}

// parseAttributeName tries a namespaced name, then an identifier.
func (p *Parser) parseAttributeName() (ast.AttributeName, bool) {
	if ns, ok := attempt(p, p.parseNamespacedName); ok {
		return ns, true
	}
	if name, ok := attempt(p, p.parseHyphenatedName); ok {
		return &ast.SimpleName{Value: name}, true
	}
	return nil, false
}

// identifier reads a simple identifier and the whitespace after it.
func (p *Parser) identifier() (string, bool) {
	id, ok := p.l.ReadIdentifier()
	if !ok {
		p.expected("identifier")
		return "", false
	}
	p.skip()
	return id, true
}

// parseMemberPath parses name '.' name ('.' name)*, where each part may
// be hyphenated. No whitespace may follow a dot.
func (p *Parser) parseMemberPath() (ast.ElementName, bool) {
	first, ok := p.parseHyphenatedName()
	if !ok {
		return nil, false
	}
	parts := []string{first}
	for {
		next, ok := attempt(p, func() (string, bool) {
			if !p.l.AcceptRune('.') {
				return "", false
			}
			return p.parseHyphenatedName()
		})
		if !ok {
			break
		}
		parts = append(parts, next)
	}
	if len(parts) < 2 {
		return nil, false
	}
	return &ast.MemberPath{Parts: parts}, true
}

// parseNamespacedName parses name ':' name, where each part may be
// hyphenated. No whitespace may follow the colon.
func (p *Parser) parseNamespacedName() (*ast.NamespacedName, bool) {
	ns, ok := p.parseHyphenatedName()
	if !ok {
		return nil, false
	}
	if !p.l.AcceptRune(':') {
		return nil, false
	}
	name, ok := p.parseHyphenatedName()
	if !ok {
		return nil, false
	}
	return &ast.NamespacedName{Namespace: ns, Name: name}, true
}

// parseHyphenatedName parses ident ('-' ident)* and joins the parts with
// hyphens. A trailing hyphen is left unread.
func (p *Parser) parseHyphenatedName() (string, bool) {
	first, ok := p.identifier()
	if !ok {
		return "", false
	}
	parts := []string{first}
	for {
		next, ok := attempt(p, func() (string, bool) {
			if !p.l.AcceptRune('-') {
				return "", false
			}
			p.skip()
			return p.identifier()
		})
		if !ok {
			break
		}
		parts = append(parts, next)
	}
	return strings.Join(parts, "-"), true
}

// parseClosingTag parses '</' name '>'. Once '</' has been read, any
// difference from the opening name is fatal: the error names both tags
// and the first character at which they differ.
func (p *Parser) parseClosingTag(name ast.ElementName, open lexer.LexerState) bool {
	want := "`</" + name.String() + ">`"
	if !p.l.AcceptRune('<') {
		p.expected(want)
		return false
	}
	p.skip()
	if !p.l.AcceptRune('/') {
		p.expected(want)
		return false
	}
	p.skip()

	found := p.l.SaveState()
	expected := name.String()
	index, ok := p.matchName(expected)
	if ok {
		p.skip()
		if p.l.AcceptRune('>') {
			return true
		}
	}
	p.mismatch(expected, index, found, open)
	return false
}

// matchName consumes expected from the input, allowing whitespace around
// the separators of hyphenated, namespaced and member names. It returns
// the rune index of the first difference.
func (p *Parser) matchName(expected string) (int, bool) {
	var prev rune
	index := 0
	for _, r := range expected {
		if isNameSeparator(r) || isNameSeparator(prev) {
			p.skip()
		}
		if p.l.Ch() != r {
			return index, false
		}
		p.l.Next()
		prev = r
		index++
	}
	return index, true
}

func isNameSeparator(r rune) bool {
	return r == '-' || r == '.' || r == ':'
}

// mismatch commits a PARSE-0002 error positioned at the first differing
// character.
func (p *Parser) mismatch(expected string, index int, found, open lexer.LexerState) {
	at := p.l.SaveState()
	p.l.RestoreState(found)
	text := p.closingText()
	p.l.RestoreState(at)

	data := map[string]any{
		"Expected":   expected,
		"Found":      text,
		"Index":      index + 1,
		"OpenLine":   open.Line(),
		"OpenColumn": open.Column(),
	}
	if text != "" && text != expected {
		if s := perrors.FindClosestMatch(text, []string{expected}); s != "" {
			data["Suggestion"] = s
		}
	}

	err := p.l.ErrorHere("PARSE-0002", data)
	p.setFatal(err)
}

// closingText reads the name part of a closing tag for diagnostics: up to
// '>', a newline, or a short limit.
func (p *Parser) closingText() string {
	var sb strings.Builder
	for n := 0; n < 40; n++ {
		ch := p.l.Ch()
		if ch == lexer.EOF || ch == '>' || ch == '\n' || ch == '<' {
			break
		}
		sb.WriteRune(ch)
		p.l.Next()
	}
	return strings.TrimSpace(sb.String())
}
