package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sambeau/rsx/pkg/rsx/ast"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/placeholder"
)

func parse(t *testing.T, input string) (ast.Element, string) {
	t.Helper()
	el, rest, err := Parse(input, WithGenerator(placeholder.NewCounter(1)))
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	return el, rest
}

func simple(name string) *ast.SimpleName { return &ast.SimpleName{Value: name} }

func text(s string) ast.Child { return &ast.TextChild{Value: s} }

func code(tokens string, elements ...ast.EmbeddedElement) *ast.ParsedExpression {
	return &ast.ParsedExpression{Tokens: tokens, Elements: elements}
}

func attr(name string, value ast.AttributeValue) ast.Attribute {
	return &ast.NamedAttribute{Name: simple(name), Value: value}
}

func TestParseElements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ast.Element
	}{
		{
			name:  "self-closing",
			input: "<foo/>",
			want:  &ast.SelfClosingElement{Name: simple("foo")},
		},
		{
			name:  "self-closing with whitespace",
			input: "< foo / >",
			want:  &ast.SelfClosingElement{Name: simple("foo")},
		},
		{
			name:  "empty normal",
			input: "<foo></foo>",
			want:  &ast.NormalElement{Name: simple("foo")},
		},
		{
			name:  "text child",
			input: "<foo>Hello world!</foo>",
			want: &ast.NormalElement{
				Name:     simple("foo"),
				Children: []ast.Child{text("Hello world!")},
			},
		},
		{
			name:  "whitespace around text is dropped",
			input: "<foo>\n  Hello  world!\n</foo>",
			want: &ast.NormalElement{
				Name:     simple("foo"),
				Children: []ast.Child{text("Hello  world!")},
			},
		},
		{
			name:  "hyphenated name",
			input: "<x-foo-bar></x-foo-bar>",
			want:  &ast.NormalElement{Name: simple("x-foo-bar")},
		},
		{
			name:  "hyphenated name with whitespace",
			input: "<x - foo></x-foo>",
			want:  &ast.NormalElement{Name: simple("x-foo")},
		},
		{
			name:  "namespaced name",
			input: "<svg:rect></svg : rect>",
			want:  &ast.NormalElement{Name: &ast.NamespacedName{Namespace: "svg", Name: "rect"}},
		},
		{
			name:  "member path",
			input: "<ui.forms.Input/>",
			want:  &ast.SelfClosingElement{Name: &ast.MemberPath{Parts: []string{"ui", "forms", "Input"}}},
		},
		{
			name:  "hyphenated member path",
			input: "<foo - bar.member.bar - baz/>",
			want:  &ast.SelfClosingElement{Name: &ast.MemberPath{Parts: []string{"foo-bar", "member", "bar-baz"}}},
		},
		{
			name:  "hyphenated namespaced name",
			input: "<foo-a:bar-b></foo - a:bar - b>",
			want:  &ast.NormalElement{Name: &ast.NamespacedName{Namespace: "foo-a", Name: "bar-b"}},
		},
		{
			name:  "known names and a code block attribute",
			input: `<div hidden style={stylesheet.get(".foo")}>Hello world!</div>`,
			want: &ast.NormalElement{
				Name: simple("div"),
				Attributes: []ast.Attribute{
					attr("hidden", &ast.DefaultValue{}),
					attr("style", &ast.CodeBlockValue{Expr: code(`stylesheet.get(".foo")`)}),
				},
				Children: []ast.Child{text("Hello world!")},
			},
		},
		{
			name:  "attribute values",
			input: `<a b="x" c='y\n' d=1.05 e=true f={false} g={ 42 } h=<br/> i={"s"} j=-3/>`,
			want: &ast.SelfClosingElement{
				Name: simple("a"),
				Attributes: []ast.Attribute{
					attr("b", &ast.StringValue{Value: "x"}),
					attr("c", &ast.StringValue{Value: "y\n"}),
					attr("d", &ast.NumberValue{Value: 1.05}),
					attr("e", &ast.BooleanValue{Value: true}),
					attr("f", &ast.BooleanValue{Value: false}),
					attr("g", &ast.NumberValue{Value: 42}),
					attr("h", &ast.ElementValue{Element: &ast.SelfClosingElement{Name: simple("br")}}),
					attr("i", &ast.StringValue{Value: "s"}),
					attr("j", &ast.NumberValue{Value: -3}),
				},
			},
		},
		{
			name:  "boolean prefix is a code block",
			input: `<a b={trueish}/>`,
			want: &ast.SelfClosingElement{
				Name:       simple("a"),
				Attributes: []ast.Attribute{attr("b", &ast.CodeBlockValue{Expr: code("trueish")})},
			},
		},
		{
			name:  "namespaced and hyphenated attributes",
			input: `<a xml:lang="en" data-id=7/>`,
			want: &ast.SelfClosingElement{
				Name: simple("a"),
				Attributes: []ast.Attribute{
					&ast.NamedAttribute{Name: &ast.NamespacedName{Namespace: "xml", Name: "lang"}, Value: &ast.StringValue{Value: "en"}},
					attr("data-id", &ast.NumberValue{Value: 7}),
				},
			},
		},
		{
			name:  "spread",
			input: `<a {...props} { ...rest }/>`,
			want: &ast.SelfClosingElement{
				Name: simple("a"),
				Attributes: []ast.Attribute{
					&ast.SpreadAttribute{Expr: code("props")},
					&ast.SpreadAttribute{Expr: code("rest ")},
				},
			},
		},
		{
			name:  "mixed children",
			input: "<p>Hi {name}<br/> there</p>",
			want: &ast.NormalElement{
				Name: simple("p"),
				Children: []ast.Child{
					text("Hi"),
					&ast.CodeBlockChild{Expr: code("name")},
					&ast.ElementChild{Element: &ast.SelfClosingElement{Name: simple("br")}},
					text("there"),
				},
			},
		},
		{
			name:  "element inside a code block",
			input: "<ul>{items.map(|i| <li>{i}</li>)}</ul>",
			want: &ast.NormalElement{
				Name: simple("ul"),
				Children: []ast.Child{
					&ast.CodeBlockChild{Expr: code("items.map(|i| /* rsx:1 */)", ast.EmbeddedElement{
						Placeholder: "/* rsx:1 */",
						Element: &ast.NormalElement{
							Name:     simple("li"),
							Children: []ast.Child{&ast.CodeBlockChild{Expr: code("i")}},
						},
					})},
				},
			},
		},
		{
			name:  "nested blocks and strings",
			input: `<a>{ if x { <b/> } else { "}" } }</a>`,
			want: &ast.NormalElement{
				Name: simple("a"),
				Children: []ast.Child{
					&ast.CodeBlockChild{Expr: code(` if x { /* rsx:1 */ } else { "}" } `, ast.EmbeddedElement{
						Placeholder: "/* rsx:1 */",
						Element:     &ast.SelfClosingElement{Name: simple("b")},
					})},
				},
			},
		},
		{
			name:  "comments in code blocks are dropped",
			input: "<a>{ x /* c */ + 1 // d\n}</a>",
			want: &ast.NormalElement{
				Name:     simple("a"),
				Children: []ast.Child{&ast.CodeBlockChild{Expr: code(" x  + 1 \n")}},
			},
		},
		{
			name:  "char literals and raw strings",
			input: "<a>{ f('}', `{`) }</a>",
			want: &ast.NormalElement{
				Name:     simple("a"),
				Children: []ast.Child{&ast.CodeBlockChild{Expr: code(" f('}', `{`) ")}},
			},
		},
		{
			name:  "comments between attributes",
			input: "<a /* one */ b // two\n/>",
			want: &ast.SelfClosingElement{
				Name:       simple("a"),
				Attributes: []ast.Attribute{attr("b", &ast.DefaultValue{})},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest := parse(t, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
			if rest != "" {
				t.Errorf("rest = %q, want empty", rest)
			}
		})
	}
}

func TestParseReturnsRemainder(t *testing.T) {
	tests := []struct {
		input string
		rest  string
	}{
		{"<a/>", ""},
		{"  <a/>  ", ""},
		{"<a/> tail", "tail"},
		{"<a></a><b/>", "<b/>"},
		{"/* lead */ <a/> // trail", ""},
	}

	for _, tt := range tests {
		_, rest := parse(t, tt.input)
		if rest != tt.rest {
			t.Errorf("Parse(%q) rest = %q, want %q", tt.input, rest, tt.rest)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		code   string
		line   int
		column int
		msg    string
	}{
		{
			name:   "not an element",
			input:  "hello",
			code:   "PARSE-0006",
			line:   1,
			column: 1,
			msg:    "expected an element, found `h`",
		},
		{
			name:   "mismatched closing tag",
			input:  "<foo></bar>",
			code:   "PARSE-0002",
			line:   1,
			column: 8,
			msg:    "expected closing tag `</foo>`, found `</bar`",
		},
		{
			name:   "closing tag with extra characters",
			input:  "<foo></foobar>",
			code:   "PARSE-0002",
			line:   1,
			column: 11,
			msg:    "expected closing tag `</foo>`, found `</foobar`",
		},
		{
			name:   "inner mismatch is not retried",
			input:  "<a>\n  <b></a>\n</b>",
			code:   "PARSE-0002",
			line:   2,
			column: 8,
			msg:    "expected closing tag `</b>`, found `</a`",
		},
		{
			name:   "mismatch inside a code block",
			input:  "<a>{ <b></c> }</a>",
			code:   "PARSE-0002",
			line:   1,
			column: 11,
		},
		{
			name:   "unterminated code block",
			input:  "<a>{ x </a>",
			code:   "PARSE-0005",
			line:   1,
			column: 4,
		},
		{
			name:   "unterminated string",
			input:  `<a b="x>`,
			code:   "PARSE-0003",
			line:   1,
			column: 6,
		},
		{
			name:   "invalid escape",
			input:  `<a b="\q"/>`,
			code:   "PARSE-0004",
			line:   1,
			column: 7,
		},
		{
			name:   "truncated opening tag",
			input:  "<a",
			code:   "PARSE-0001",
			line:   1,
			column: 3,
			msg:    "unexpected end of input, expected `/>`, `>`, `{` or identifier",
		},
		{
			name:   "missing closing tag",
			input:  "<a>text",
			code:   "PARSE-0001",
			line:   1,
			column: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want %s", tt.input, tt.code)
			}
			perr, ok := err.(*perrors.RSXError)
			if !ok {
				t.Fatalf("error is %T, want *RSXError", err)
			}
			if perr.Code != tt.code {
				t.Errorf("Code = %s, want %s (%v)", perr.Code, tt.code, perr)
			}
			if perr.Line != tt.line || perr.Column != tt.column {
				t.Errorf("position = %d:%d, want %d:%d", perr.Line, perr.Column, tt.line, tt.column)
			}
			if tt.msg != "" && perr.Message != tt.msg {
				t.Errorf("Message = %q, want %q", perr.Message, tt.msg)
			}
		})
	}
}

func TestMismatchHints(t *testing.T) {
	_, _, err := Parse("<section>\n</sectoin>")
	perr, ok := err.(*perrors.RSXError)
	if !ok {
		t.Fatalf("error is %T, want *RSXError", err)
	}

	hints := strings.Join(perr.Hints, "\n")
	for _, want := range []string{
		"names differ at character 5 of `section`",
		"did you mean `</section>`?",
		"`<section>` was opened at line 1, column 1",
	} {
		if !strings.Contains(hints, want) {
			t.Errorf("hints missing %q:\n%s", want, hints)
		}
	}
}

func TestWithFilename(t *testing.T) {
	_, _, err := Parse("<a></b>", WithFilename("page.rsx"))
	perr, ok := err.(*perrors.RSXError)
	if !ok {
		t.Fatalf("error is %T, want *RSXError", err)
	}
	if perr.File != "page.rsx" {
		t.Errorf("File = %q", perr.File)
	}
	if !strings.HasPrefix(perr.Error(), "page.rsx: line 1, column 6: ") {
		t.Errorf("Error() = %q", perr.Error())
	}
}

func TestParseCodeBlock(t *testing.T) {
	p := New("{ a <b/> } rest", WithGenerator(placeholder.NewCounter(5)))
	expr, rest, err := p.ParseCodeBlock()
	if err != nil {
		t.Fatal(err)
	}
	want := code(" a /* rsx:5 */ ", ast.EmbeddedElement{
		Placeholder: "/* rsx:5 */",
		Element:     &ast.SelfClosingElement{Name: simple("b")},
	})
	if diff := cmp.Diff(want, expr); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if rest != " rest" {
		t.Errorf("rest = %q", rest)
	}
}

func TestParseChildrenAndAttributes(t *testing.T) {
	children, rest, err := New("one {two} <three/></x>").ParseChildren()
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 3 || rest != "</x>" {
		t.Errorf("children = %d, rest = %q", len(children), rest)
	}

	attrs, rest, err := New(`a b="c" />`).ParseAttributes()
	if err != nil {
		t.Fatal(err)
	}
	if len(attrs) != 2 || rest != "/>" {
		t.Errorf("attrs = %d, rest = %q", len(attrs), rest)
	}

	if _, _, err := New("/>").ParseAttributes(); err == nil {
		t.Errorf("ParseAttributes on empty list succeeded")
	}
}

func TestEnd(t *testing.T) {
	p := New("<a/> // done\n")
	if _, _, err := p.ParseElement(); err != nil {
		t.Fatal(err)
	}
	if err := p.End(); err != nil {
		t.Errorf("End() = %v", err)
	}

	p = New("<a/>\n  <b/>")
	if _, _, err := p.ParseElement(); err != nil {
		t.Fatal(err)
	}
	err := p.End()
	perr, ok := err.(*perrors.RSXError)
	if !ok {
		t.Fatalf("End() = %v, want *RSXError", err)
	}
	if perr.Code != "PARSE-0008" || perr.Line != 2 || perr.Column != 3 {
		t.Errorf("got %s at %d:%d", perr.Code, perr.Line, perr.Column)
	}
	if perr.Message != "unexpected `<` after element" {
		t.Errorf("Message = %q", perr.Message)
	}
}

func TestAtCodeBlock(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"{ x }", true},
		{"  /* note */ // line\n { x }", true},
		{"<a/>", false},
		{"// {\n<a/>", false},
		{"/* unterminated {", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := New(tt.input).AtCodeBlock(); got != tt.want {
			t.Errorf("AtCodeBlock(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDeeplyNestedUnterminatedBlocks(t *testing.T) {
	// Forty levels of unterminated blocks; this must fail, and quickly.
	input := "<a>" + strings.Repeat("{<b>", 40)
	_, _, err := Parse(input)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		`<div hidden style={stylesheet.get(".foo")}>Hello world!</div>`,
		`<a b="x\ty" c={1.5} d=<br/> {...props}>one{two}<three/>four</a>`,
		`<ul>{items.map(|i| <li key={i}>{i}</li>)}</ul>`,
		`<svg:rect x-id=1/>`,
		`<foo-bar.member a-b:c-d/>`,
	}

	for _, input := range inputs {
		first, _ := parse(t, input)
		second, _ := parse(t, first.String())
		if first.String() != second.String() {
			t.Errorf("round trip of %q:\n%s\n%s", input, first.String(), second.String())
		}
	}
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		"<a/>",
		"<a b c=1 d=\"e\">f{g}<h/></a>",
		"<a>{ <b>{ c }</b> }</a>",
		"<a></b>",
		"<a {...x}/>",
		"<",
		"<a>{",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		el, _, err := Parse(input, WithGenerator(placeholder.NewCounter(1)))
		if err != nil {
			if _, ok := err.(*perrors.RSXError); !ok {
				t.Fatalf("error is %T, want *RSXError", err)
			}
			return
		}
		if _, _, err := Parse(el.String()); err != nil {
			t.Fatalf("reparse of %q failed: %v", el.String(), err)
		}
	})
}
