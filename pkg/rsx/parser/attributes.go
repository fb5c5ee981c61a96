package parser

import (
	"github.com/sambeau/rsx/pkg/rsx/ast"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/lexer"
)

// parseAttributes parses one or more attributes, each followed by optional
// whitespace.
func (p *Parser) parseAttributes() ([]ast.Attribute, bool) {
	var attrs []ast.Attribute
	for {
		attr, ok := p.parseAttribute()
		if !ok {
			break
		}
		attrs = append(attrs, attr)
		p.skip()
	}
	if p.fatal != nil || len(attrs) == 0 {
		return nil, false
	}
	return attrs, true
}

// parseAttribute tries a spread, then name=value, then a bare name.
func (p *Parser) parseAttribute() (ast.Attribute, bool) {
	if spread, ok := attempt(p, p.parseSpread); ok {
		return spread, true
	}
	if p.fatal != nil {
		return nil, false
	}
	if named, ok := attempt(p, p.parseNamedAttribute); ok {
		return named, true
	}
	if p.fatal != nil {
		return nil, false
	}
	return attempt(p, func() (ast.Attribute, bool) {
		name, ok := p.parseAttributeName()
		if !ok {
			return nil, false
		}
		return &ast.NamedAttribute{Name: name, Value: &ast.DefaultValue{}}, true
	})
}

// parseSpread parses '{' '...' fragment+ '}'. Whitespace between the
// brace and the dots is not part of the expression.
func (p *Parser) parseSpread() (ast.Attribute, bool) {
	open := p.l.SaveState()
	if !p.l.AcceptRune('{') {
		p.expected("`{`")
		return nil, false
	}
	p.skip()
	if !p.l.Accept("...") {
		p.expected("`...`")
		return nil, false
	}
	expr, ok := p.scanBlock(open, scanSpread)
	if !ok {
		return nil, false
	}
	return &ast.SpreadAttribute{Expr: expr}, true
}

func (p *Parser) parseNamedAttribute() (ast.Attribute, bool) {
	name, ok := p.parseAttributeName()
	if !ok {
		return nil, false
	}
	p.skip()
	if !p.l.AcceptRune('=') {
		p.expected("`=`")
		return nil, false
	}
	p.skip()
	value, ok := p.parseAttributeValue()
	if !ok {
		return nil, false
	}
	return &ast.NamedAttribute{Name: name, Value: value}, true
}

// parseAttributeValue tries, in order, a boolean, a number, a string, an
// element and a code block. The first three may also be written inside
// braces, as in {true} or { 42 }.
func (p *Parser) parseAttributeValue() (ast.AttributeValue, bool) {
	alternatives := []func() (ast.AttributeValue, bool){
		p.bracketed(p.parseBoolean),
		p.bracketed(p.parseNumber),
		p.bracketed(p.parseString),
		func() (ast.AttributeValue, bool) {
			el, ok := p.parseElement()
			if !ok {
				return nil, false
			}
			return &ast.ElementValue{Element: el}, true
		},
		func() (ast.AttributeValue, bool) {
			expr, ok := p.parseCodeBlock(false)
			if !ok {
				return nil, false
			}
			return &ast.CodeBlockValue{Expr: expr}, true
		},
	}
	for _, alt := range alternatives {
		if v, ok := attempt(p, alt); ok {
			return v, true
		}
		if p.fatal != nil {
			return nil, false
		}
	}
	return nil, false
}

// bracketed accepts value either bare or as '{' value '}', with optional
// whitespace inside the braces.
func (p *Parser) bracketed(value func() (ast.AttributeValue, bool)) func() (ast.AttributeValue, bool) {
	return func() (ast.AttributeValue, bool) {
		if v, ok := attempt(p, value); ok {
			return v, true
		}
		return attempt(p, func() (ast.AttributeValue, bool) {
			if !p.l.AcceptRune('{') {
				return nil, false
			}
			p.skip()
			v, ok := value()
			if !ok {
				return nil, false
			}
			p.skip()
			if !p.l.AcceptRune('}') {
				p.expected("`}`")
				return nil, false
			}
			return v, true
		})
	}
}

// parseBoolean reads true or false. The keyword must not run on into a
// longer identifier.
func (p *Parser) parseBoolean() (ast.AttributeValue, bool) {
	for _, kw := range []string{"true", "false"} {
		if !p.l.HasPrefix(kw) {
			continue
		}
		st := p.l.SaveState()
		p.l.Accept(kw)
		if lexer.IsIdentifierPart(p.l.Ch()) {
			p.l.RestoreState(st)
			break
		}
		return &ast.BooleanValue{Value: kw == "true"}, true
	}
	p.expected("boolean")
	return nil, false
}

func (p *Parser) parseNumber() (ast.AttributeValue, bool) {
	value, _, ok := p.l.ReadNumber()
	if !ok {
		p.expected("number")
		return nil, false
	}
	return &ast.NumberValue{Value: value}, true
}

// parseString reads a quoted string and the whitespace after it.
func (p *Parser) parseString() (ast.AttributeValue, bool) {
	at := p.l.Offset()
	value, ok, err := p.l.ReadString()
	if err != nil {
		p.failWith(err.(*perrors.RSXError), at)
		return nil, false
	}
	if !ok {
		p.expected("string")
		return nil, false
	}
	p.skip()
	return &ast.StringValue{Value: value}, true
}
