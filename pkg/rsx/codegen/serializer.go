// Package codegen turns parsed markup into host source: one construction
// call per element, rendered through a Dialect's templates.
//
// Traversal is depth-first and post-order. Names found in the known-name
// table are emitted as symbols, everything else as string literals. Code
// blocks are re-emitted verbatim with each placeholder replaced by the
// code generated for its element.
package codegen

import (
	"math"
	"strings"

	"github.com/sambeau/rsx/pkg/rsx/ast"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/known"
)

// Serializer generates source for parsed markup
type Serializer struct {
	dialect *Dialect
	known   *known.Table
}

// Option configures a Serializer
type Option func(*Serializer)

// WithDialect selects the target dialect
func WithDialect(d *Dialect) Option {
	return func(s *Serializer) { s.dialect = d }
}

// WithKnown selects the known-name table
func WithKnown(t *known.Table) Option {
	return func(s *Serializer) { s.known = t }
}

// New creates a serializer. The defaults are the dom dialect and the
// default known-name table.
func New(opts ...Option) *Serializer {
	s := &Serializer{}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialect == nil {
		s.dialect = DOM()
	}
	if s.known == nil {
		s.known = known.Default()
	}
	return s
}

// Dialect returns the serializer's dialect
func (s *Serializer) Dialect() *Dialect { return s.dialect }

// SerializeElement generates the construction call for el
func (s *Serializer) SerializeElement(el ast.Element) (string, error) {
	name, err := s.elementName(el.TagName())
	if err != nil {
		return "", err
	}

	var attrs, children string
	if len(el.Attrs()) > 0 {
		if attrs, err = s.attributes(el.Attrs()); err != nil {
			return "", err
		}
	}
	if n, ok := el.(*ast.NormalElement); ok && len(n.Children) > 0 {
		if children, err = s.children(n.Children); err != nil {
			return "", err
		}
	}

	data := call{Name: name, Attrs: attrs, Children: children}
	switch {
	case attrs != "" && children != "":
		return s.dialect.render("element_full", data)
	case attrs != "":
		return s.dialect.render("element_attrs", data)
	case children != "":
		return s.dialect.render("element_children", data)
	}
	return s.dialect.render("element", data)
}

// SerializeExpression generates a braced code block with every embedded
// element replaced by its construction call.
func (s *Serializer) SerializeExpression(pe *ast.ParsedExpression) (string, error) {
	code, err := s.substitute(pe)
	if err != nil {
		return "", err
	}
	return "{" + code + "}", nil
}

// SerializeFile is SerializeExpression without the enclosing braces, for
// expressions scanned from whole host files.
func (s *Serializer) SerializeFile(pe *ast.ParsedExpression) (string, error) {
	return s.substitute(pe)
}

// substitute replaces each placeholder of pe with its element's code.
// Placeholders occur in the token text in discovery order, so one forward
// scan finds them all.
func (s *Serializer) substitute(pe *ast.ParsedExpression) (string, error) {
	var sb strings.Builder
	rest := pe.Tokens
	for _, emb := range pe.Elements {
		ph := string(emb.Placeholder)
		i := strings.Index(rest, ph)
		if i < 0 {
			return "", perrors.Internal("placeholder " + ph + " not found in code block")
		}
		if strings.Contains(rest[i+len(ph):], ph) {
			return "", perrors.Internal("placeholder " + ph + " occurs more than once")
		}
		code, err := s.SerializeElement(emb.Element)
		if err != nil {
			return "", err
		}
		sb.WriteString(rest[:i])
		sb.WriteString(code)
		rest = rest[i+len(ph):]
	}
	sb.WriteString(rest)
	return sb.String(), nil
}

// resolveElement maps a simple name found in the table to its symbol
func (s *Serializer) resolveElement(n ast.ElementName) ast.ElementName {
	if simple, ok := n.(*ast.SimpleName); ok {
		if sym, ok := s.known.Element(simple.Value); ok {
			return &ast.KnownElement{Symbol: sym}
		}
	}
	return n
}

func (s *Serializer) resolveAttribute(n ast.AttributeName) ast.AttributeName {
	if simple, ok := n.(*ast.SimpleName); ok {
		if sym, ok := s.known.Attribute(simple.Value); ok {
			return &ast.KnownAttribute{Symbol: sym}
		}
	}
	return n
}

func (s *Serializer) elementName(n ast.ElementName) (string, error) {
	switch name := s.resolveElement(n).(type) {
	case *ast.KnownElement:
		return s.dialect.render("known_tag", call{Symbol: name.Symbol, Name: rawName(n)})
	case *ast.SimpleName:
		return s.dialect.render("tag", call{Name: name.Value})
	case *ast.NamespacedName:
		return s.dialect.render("namespaced_tag", call{Namespace: name.Namespace, Local: name.Name})
	case *ast.MemberPath:
		return s.dialect.render("member_tag", call{Parts: name.Parts})
	}
	return "", perrors.Internal("unexpected element name type")
}

func (s *Serializer) attributeName(n ast.AttributeName) (string, error) {
	switch name := s.resolveAttribute(n).(type) {
	case *ast.KnownAttribute:
		return s.dialect.render("known_attribute_name", call{Symbol: name.Symbol, Name: rawName(n)})
	case *ast.SimpleName:
		return s.dialect.render("attribute_name", call{Name: name.Value})
	case *ast.NamespacedName:
		return s.dialect.render("namespaced_attribute_name", call{Namespace: name.Namespace, Local: name.Name})
	}
	return "", perrors.Internal("unexpected attribute name type")
}

// rawName is the source spelling of a simple name
func rawName(n ast.Node) string {
	if simple, ok := n.(*ast.SimpleName); ok {
		return simple.Value
	}
	return ""
}

func (s *Serializer) attributes(attrs []ast.Attribute) (string, error) {
	items := make([]string, 0, len(attrs))
	for _, a := range attrs {
		item, err := s.attribute(a)
		if err != nil {
			return "", err
		}
		items = append(items, item)
	}
	return s.dialect.render("attributes", call{Items: items})
}

func (s *Serializer) attribute(a ast.Attribute) (string, error) {
	switch a := a.(type) {
	case *ast.NamedAttribute:
		name, err := s.attributeName(a.Name)
		if err != nil {
			return "", err
		}
		value, err := s.value(a.Value)
		if err != nil {
			return "", err
		}
		return s.dialect.render("attribute", call{Name: name, Value: value})
	case *ast.SpreadAttribute:
		code, err := s.substitute(a.Expr)
		if err != nil {
			return "", err
		}
		return s.dialect.render("spread", call{Expr: "{" + code + "}", Code: code})
	}
	return "", perrors.Internal("unexpected attribute type")
}

func (s *Serializer) value(v ast.AttributeValue) (string, error) {
	var (
		inner string
		err   error
	)
	switch v := v.(type) {
	case *ast.DefaultValue:
		inner, err = s.dialect.render("boolean", call{Value: "true"})
	case *ast.BooleanValue:
		lit := "false"
		if v.Value {
			lit = "true"
		}
		inner, err = s.dialect.render("boolean", call{Value: lit})
	case *ast.NumberValue:
		inner, err = s.dialect.render("number", call{
			Number:  v.Value,
			Literal: ast.FormatNumber(v.Value),
			Inf:     math.IsInf(v.Value, 0),
		})
	case *ast.StringValue:
		inner, err = s.dialect.render("string", call{Text: v.Value})
	case *ast.ElementValue:
		inner, err = s.SerializeElement(v.Element)
	case *ast.CodeBlockValue:
		var code string
		if code, err = s.substitute(v.Expr); err == nil {
			inner, err = s.dialect.render("code_value", call{Expr: "{" + code + "}", Code: code})
		}
	default:
		return "", perrors.Internal("unexpected attribute value type")
	}
	if err != nil {
		return "", err
	}
	return s.dialect.render("value", call{Value: inner})
}

func (s *Serializer) children(children []ast.Child) (string, error) {
	items := make([]string, 0, len(children))
	for _, c := range children {
		item, err := s.child(c)
		if err != nil {
			return "", err
		}
		items = append(items, item)
	}
	return s.dialect.render("children", call{Items: items})
}

func (s *Serializer) child(c ast.Child) (string, error) {
	switch c := c.(type) {
	case *ast.ElementChild:
		return s.SerializeElement(c.Element)
	case *ast.TextChild:
		return s.dialect.render("text_child", call{Text: c.Value})
	case *ast.CodeBlockChild:
		code, err := s.substitute(c.Expr)
		if err != nil {
			return "", err
		}
		return s.dialect.render("code_child", call{Expr: "{" + code + "}", Code: code})
	}
	return "", perrors.Internal("unexpected child type")
}
