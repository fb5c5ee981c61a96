package rsx

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sambeau/rsx/pkg/rsx/codegen"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/placeholder"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "element",
			input: "<foo>hi</foo>",
			want:  `DOMNode::from((DOMTagName::from("foo"), DOMChildren::from(vec![DOMNode::from("hi"),])))`,
		},
		{
			name:  "surrounding whitespace and comments",
			input: "  // leading\n<foo/> /* trailing */\n",
			want:  `DOMNode::from(DOMTagName::from("foo"))`,
		},
		{
			name:  "code block",
			input: "{ a + <foo/> }",
			want:  `{ a + DOMNode::from(DOMTagName::from("foo")) }`,
		},
		{
			name:  "code block after comments",
			input: "/* note */ // more\n{ x }",
			want:  "{ x }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.input, WithGenerator(placeholder.NewCounter(1)))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"trailing element", "<a/><b/>", "PARSE-0008"},
		{"trailing text", "{ x } y", "PARSE-0008"},
		{"not markup", "hello", "PARSE-0006"},
		{"mismatch", "<a></b>", "PARSE-0002"},
		{"unterminated block", "{ x", "PARSE-0005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.input, WithFilename("inline.rsx"))
			var perr *perrors.RSXError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *RSXError", err)
			}
			if perr.Code != tt.code {
				t.Errorf("Code = %s, want %s", perr.Code, tt.code)
			}
			if perr.File != "inline.rsx" {
				t.Errorf("File = %q", perr.File)
			}
		})
	}
}

func TestCompileFileReact(t *testing.T) {
	react, err := codegen.Builtin("react")
	if err != nil {
		t.Fatal(err)
	}
	src := "const list = items.filter(i => i < max).map(i => <li key={i}>{i}</li>);\n"
	got, err := CompileFile(src, WithDialect(react))
	if err != nil {
		t.Fatal(err)
	}
	want := `const list = items.filter(i => i < max).map(i => React.createElement("li", { "key": (i) }, (i)));` + "\n"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestCompileMarkdown(t *testing.T) {
	src := "Intro\n\n```jsx\nlet a = <foo/>;\n```\n"
	got, err := CompileMarkdown(src)
	if err != nil {
		t.Fatal(err)
	}
	want := "Intro\n\n```rust\nlet a = DOMNode::from(DOMTagName::from(\"foo\"));\n```\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CompileMarkdown() mismatch (-want +got):\n%s", diff)
	}

	_, err = CompileMarkdown("x\n\n```rsx\n<a></b>\n```\n", WithFilename("doc.md"))
	var perr *perrors.RSXError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *RSXError", err)
	}
	if perr.File != "doc.md" || perr.Line != 4 {
		t.Errorf("error at %s:%d, want doc.md:4", perr.File, perr.Line)
	}
}

func TestCheck(t *testing.T) {
	if err := Check("fn f() -> Node { <p>{x}</p> }"); err != nil {
		t.Errorf("Check() = %v", err)
	}
	if err := Check("fn f() -> Node { <p>{x}</q> }"); err == nil {
		t.Error("Check() accepted a mismatched closing tag")
	}
	// A placeholder already present in the source is not an error.
	if err := Check("let s = /* rsx:1 */ 0;"); err != nil {
		t.Errorf("Check() = %v", err)
	}
}

func TestCompileLogs(t *testing.T) {
	log := NewBufferedLogger()
	if _, err := CompileFile("a = <x>{<y/>}</x>;", WithLogger(log), WithFilename("v.rsx")); err != nil {
		t.Fatal(err)
	}
	if _, err := Compile("<z/>", WithLogger(log)); err != nil {
		t.Fatal(err)
	}
	want := []string{"v.rsx: compiled 2 elements", "compiled 1 element"}
	if diff := cmp.Diff(want, log.Lines()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestBufferedLogger(t *testing.T) {
	l := NewBufferedLogger()
	l.Log("a", 1)
	l.LogLine("b")
	l.Log("pending")
	if got, want := l.String(), "a 1b\npending"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	l.Reset()
	if l.String() != "" || len(l.Lines()) != 0 {
		t.Errorf("Reset left %q", l.String())
	}
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := WriterLogger(&buf)
	l.Log("x", "y")
	l.LogLine(" z", 3)
	if got := buf.String(); got != "x y z 3\n" {
		t.Errorf("got %q", got)
	}
	NullLogger().LogLine("ignored")
}

func TestCompileDefaultsToRandomPlaceholders(t *testing.T) {
	out, err := Compile("{ [<a/>, <b/>] }")
	if err != nil {
		t.Fatal(err)
	}
	if placeholder.Contains(out) || strings.Count(out, "DOMNode::from") != 2 {
		t.Errorf("unexpected output %s", out)
	}
}
