package ast

import (
	"fmt"
	"strings"
)

// Walk traverses the tree rooted at n depth-first in source order, calling
// fn for every node. Returning false from fn skips the node's descendants.
// Elements embedded in code blocks are visited through the expression that
// holds them.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch n := n.(type) {
	case *SelfClosingElement:
		walkAttributes(n.Attributes, fn)
	case *NormalElement:
		walkAttributes(n.Attributes, fn)
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *NamedAttribute:
		Walk(n.Value, fn)
	case *SpreadAttribute:
		Walk(n.Expr, fn)
	case *ElementValue:
		Walk(n.Element, fn)
	case *CodeBlockValue:
		Walk(n.Expr, fn)
	case *ElementChild:
		Walk(n.Element, fn)
	case *CodeBlockChild:
		Walk(n.Expr, fn)
	case *ParsedExpression:
		for _, el := range n.Elements {
			Walk(el.Element, fn)
		}
	}
}

func walkAttributes(attrs []Attribute, fn func(Node) bool) {
	for _, a := range attrs {
		Walk(a, fn)
	}
}

// Dump renders the tree as an indented outline, one node per line.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := func(format string, args ...any) {
		sb.WriteString(indent)
		fmt.Fprintf(sb, format, args...)
		sb.WriteByte('\n')
	}

	switch n := n.(type) {
	case *SelfClosingElement:
		line("SelfClosing %s", describeName(n.Name))
		for _, a := range n.Attributes {
			dump(sb, a, depth+1)
		}
	case *NormalElement:
		line("Normal %s", describeName(n.Name))
		for _, a := range n.Attributes {
			dump(sb, a, depth+1)
		}
		for _, c := range n.Children {
			dump(sb, c, depth+1)
		}
	case *NamedAttribute:
		switch v := n.Value.(type) {
		case *ElementValue:
			line("Attribute %s =", describeName(n.Name))
			dump(sb, v.Element, depth+1)
		case *CodeBlockValue:
			line("Attribute %s =", describeName(n.Name))
			dump(sb, v.Expr, depth+1)
		default:
			line("Attribute %s = %s", describeName(n.Name), describeValue(v))
		}
	case *SpreadAttribute:
		line("Spread")
		dump(sb, n.Expr, depth+1)
	case *ElementChild:
		dump(sb, n.Element, depth)
	case *TextChild:
		line("Text %q", n.Value)
	case *CodeBlockChild:
		dump(sb, n.Expr, depth)
	case *ParsedExpression:
		line("Code %q", n.Tokens)
		for _, el := range n.Elements {
			sb.WriteString(indent + "  " + string(el.Placeholder) + "\n")
			dump(sb, el.Element, depth+2)
		}
	default:
		line("%T", n)
	}
}

func describeName(n Node) string {
	switch n := n.(type) {
	case *SimpleName:
		return fmt.Sprintf("Simple(%s)", n.Value)
	case *NamespacedName:
		return fmt.Sprintf("Namespaced(%s, %s)", n.Namespace, n.Name)
	case *MemberPath:
		return fmt.Sprintf("MemberPath(%s)", strings.Join(n.Parts, ", "))
	case *KnownElement:
		return fmt.Sprintf("Known(%s)", n.Symbol)
	case *KnownAttribute:
		return fmt.Sprintf("Known(%s)", n.Symbol)
	}
	return fmt.Sprintf("%T", n)
}

func describeValue(v AttributeValue) string {
	switch v := v.(type) {
	case *DefaultValue:
		return "Default"
	case *BooleanValue:
		return fmt.Sprintf("Boolean(%t)", v.Value)
	case *NumberValue:
		return "Number(" + FormatNumber(v.Value) + ")"
	case *StringValue:
		return fmt.Sprintf("Str(%q)", v.Value)
	}
	return fmt.Sprintf("%T", v)
}
