package ast

import (
	"bytes"
	"strconv"
	"strings"

	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
)

// Node represents any node in the tree
type Node interface {
	String() string
}

// Element represents a markup element, self-closing or with children
type Element interface {
	Node
	elementNode()
	TagName() ElementName
	Attrs() []Attribute
}

// ElementName represents the name of an element
type ElementName interface {
	Node
	elementName()
}

// AttributeName represents the name of a named attribute
type AttributeName interface {
	Node
	attributeName()
}

// Attribute represents a named attribute or a spread
type Attribute interface {
	Node
	attributeNode()
}

// AttributeValue represents the value side of a named attribute
type AttributeValue interface {
	Node
	valueNode()
}

// Child represents one item in an element's content
type Child interface {
	Node
	childNode()
}

// SelfClosingElement represents elements like <input type="text"/>
type SelfClosingElement struct {
	Name       ElementName
	Attributes []Attribute
}

func (e *SelfClosingElement) elementNode()         {}
func (e *SelfClosingElement) TagName() ElementName { return e.Name }
func (e *SelfClosingElement) Attrs() []Attribute   { return e.Attributes }
func (e *SelfClosingElement) String() string {
	var out bytes.Buffer
	out.WriteString("<" + e.Name.String())
	writeAttributes(&out, e.Attributes)
	out.WriteString("/>")
	return out.String()
}

// NormalElement represents paired tags like <div>content</div>
type NormalElement struct {
	Name       ElementName
	Attributes []Attribute
	Children   []Child
}

func (e *NormalElement) elementNode()         {}
func (e *NormalElement) TagName() ElementName { return e.Name }
func (e *NormalElement) Attrs() []Attribute   { return e.Attributes }
func (e *NormalElement) String() string {
	var out bytes.Buffer
	name := e.Name.String()
	out.WriteString("<" + name)
	writeAttributes(&out, e.Attributes)
	out.WriteString(">")
	for _, c := range e.Children {
		out.WriteString(c.String())
	}
	out.WriteString("</" + name + ">")
	return out.String()
}

func writeAttributes(out *bytes.Buffer, attrs []Attribute) {
	for _, a := range attrs {
		out.WriteString(" ")
		out.WriteString(a.String())
	}
}

// SimpleName represents a plain identifier name. Hyphenated identifiers
// are stored folded, e.g. "x-foo-bar".
type SimpleName struct {
	Value string
}

func (n *SimpleName) elementName()   {}
func (n *SimpleName) attributeName() {}
func (n *SimpleName) String() string { return n.Value }

// NamespacedName represents names like svg:rect
type NamespacedName struct {
	Namespace string
	Name      string
}

func (n *NamespacedName) elementName()   {}
func (n *NamespacedName) attributeName() {}
func (n *NamespacedName) String() string { return n.Namespace + ":" + n.Name }

// MemberPath represents element names like ui.forms.Input
type MemberPath struct {
	Parts []string
}

func (n *MemberPath) elementName()   {}
func (n *MemberPath) String() string { return strings.Join(n.Parts, ".") }

// KnownElement is a tag name resolved against the known-name table.
// Only the code generator creates it and it has no markup form: String
// panics, since no parsed tree can contain one.
type KnownElement struct {
	Symbol string
}

func (n *KnownElement) elementName() {}
func (n *KnownElement) String() string {
	panic(perrors.Internal("known element " + n.Symbol + " has no markup form"))
}

// KnownAttribute is the attribute counterpart of KnownElement and carries
// the same restriction.
type KnownAttribute struct {
	Symbol string
}

func (n *KnownAttribute) attributeName() {}
func (n *KnownAttribute) String() string {
	panic(perrors.Internal("known attribute " + n.Symbol + " has no markup form"))
}

// NamedAttribute represents name=value pairs and valueless attributes
type NamedAttribute struct {
	Name  AttributeName
	Value AttributeValue
}

func (a *NamedAttribute) attributeNode() {}
func (a *NamedAttribute) String() string {
	if _, ok := a.Value.(*DefaultValue); ok {
		return a.Name.String()
	}
	return a.Name.String() + "=" + a.Value.String()
}

// SpreadAttribute represents {...expr} in an attribute list
type SpreadAttribute struct {
	Expr *ParsedExpression
}

func (a *SpreadAttribute) attributeNode() {}
func (a *SpreadAttribute) String() string { return "{..." + a.Expr.Source() + "}" }

// DefaultValue is the value of an attribute written without one; it means true
type DefaultValue struct{}

func (v *DefaultValue) valueNode()     {}
func (v *DefaultValue) String() string { return "{true}" }

// BooleanValue represents true and false
type BooleanValue struct {
	Value bool
}

func (v *BooleanValue) valueNode()     {}
func (v *BooleanValue) String() string { return "{" + strconv.FormatBool(v.Value) + "}" }

// NumberValue represents numeric attribute values
type NumberValue struct {
	Value float64
}

func (v *NumberValue) valueNode()     {}
func (v *NumberValue) String() string { return "{" + FormatNumber(v.Value) + "}" }

// StringValue represents quoted attribute values, already unescaped
type StringValue struct {
	Value string
}

func (v *StringValue) valueNode()     {}
func (v *StringValue) String() string { return QuoteMarkup(v.Value) }

// ElementValue represents an element used directly as an attribute value
type ElementValue struct {
	Element Element
}

func (v *ElementValue) valueNode()     {}
func (v *ElementValue) String() string { return v.Element.String() }

// CodeBlockValue represents {expr} attribute values
type CodeBlockValue struct {
	Expr *ParsedExpression
}

func (v *CodeBlockValue) valueNode()     {}
func (v *CodeBlockValue) String() string { return v.Expr.String() }

// ElementChild represents a nested element
type ElementChild struct {
	Element Element
}

func (c *ElementChild) childNode()     {}
func (c *ElementChild) String() string { return c.Element.String() }

// TextChild represents raw text content
type TextChild struct {
	Value string
}

func (c *TextChild) childNode()     {}
func (c *TextChild) String() string { return c.Value }

// CodeBlockChild represents {expr} in element content
type CodeBlockChild struct {
	Expr *ParsedExpression
}

func (c *CodeBlockChild) childNode()     {}
func (c *CodeBlockChild) String() string { return c.Expr.String() }

// Placeholder is the inert marker that stands in for an element inside
// a code block's token text.
type Placeholder string

// EmbeddedElement pairs a placeholder with the element it replaced
type EmbeddedElement struct {
	Placeholder Placeholder
	Element     Element
}

// ParsedExpression is host code with its markup elements lifted out.
// Tokens holds the code with each element replaced by its placeholder;
// Elements lists them in discovery order, including elements found in
// nested blocks.
type ParsedExpression struct {
	Tokens   string
	Elements []EmbeddedElement
}

// Source returns Tokens with every placeholder replaced by its element's
// markup.
func (pe *ParsedExpression) Source() string {
	src := pe.Tokens
	for _, el := range pe.Elements {
		src = strings.Replace(src, string(el.Placeholder), el.Element.String(), 1)
	}
	return src
}

func (pe *ParsedExpression) String() string { return "{" + pe.Source() + "}" }

// FormatNumber renders a float the shortest way that reads back exactly.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// QuoteMarkup renders s as a double-quoted markup string using the markup
// escape set.
func QuoteMarkup(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
