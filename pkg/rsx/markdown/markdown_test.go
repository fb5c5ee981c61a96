package markdown

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sambeau/rsx/pkg/rsx/codegen"
	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
	"github.com/sambeau/rsx/pkg/rsx/parser"
	"github.com/sambeau/rsx/pkg/rsx/placeholder"
)

const doc = "# Title\n" +
	"\n" +
	"```rsx\n" +
	"<p>hi</p>\n" +
	"```\n" +
	"\n" +
	"```go\n" +
	"x := 1\n" +
	"```\n" +
	"\n" +
	"```jsx title=\"x\"\n" +
	"let a = <br/>;\n" +
	"```\n" +
	"\n" +
	"```rsx\n" +
	"```\n"

func compileFile(code string) (string, error) {
	pe, err := parser.ParseFile(code, parser.WithGenerator(placeholder.NewCounter(1)))
	if err != nil {
		return "", err
	}
	return codegen.New().SerializeFile(pe)
}

func TestBlocks(t *testing.T) {
	type summary struct {
		Language string
		Code     string
		Line     int
	}
	var got []summary
	for _, b := range Blocks([]byte(doc)) {
		got = append(got, summary{b.Language, b.Code, b.Line})
	}
	want := []summary{
		{"rsx", "<p>hi</p>\n", 4},
		{"jsx", "let a = <br/>;\n", 12},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Blocks() mismatch (-want +got):\n%s", diff)
	}
}

func TestRewrite(t *testing.T) {
	out, n, err := Rewrite([]byte(doc), "rust", compileFile)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("compiled %d blocks, want 2", n)
	}
	want := "# Title\n" +
		"\n" +
		"```rust\n" +
		"DOMNode::from((DOMTagName::from(KnownElementName::P), DOMChildren::from(vec![DOMNode::from(\"hi\"),])))\n" +
		"```\n" +
		"\n" +
		"```go\n" +
		"x := 1\n" +
		"```\n" +
		"\n" +
		"```rust title=\"x\"\n" +
		"let a = DOMNode::from(DOMTagName::from(KnownElementName::Br));\n" +
		"```\n" +
		"\n" +
		"```rsx\n" +
		"```\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("Rewrite() mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteKeepsFence(t *testing.T) {
	src := "```rsx\n<br/>\n```\n"
	out, _, err := Rewrite([]byte(src), "", func(string) (string, error) { return "br()\n", nil })
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(out), "```rsx\nbr()\n```\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteWithoutBlocks(t *testing.T) {
	src := []byte("just *text*\n")
	out, n, err := Rewrite(src, "rust", func(string) (string, error) {
		t.Fatal("compile called without a markup block")
		return "", nil
	})
	if err != nil || n != 0 || string(out) != string(src) {
		t.Errorf("Rewrite() = %q, %d, %v", out, n, err)
	}
}

func TestRewriteRelocatesErrors(t *testing.T) {
	failing := func(string) (string, error) {
		return "", perrors.NewWithPosition("PARSE-0005", 4, 2, 3, nil)
	}
	_, _, err := Rewrite([]byte(doc), "rust", failing)
	var perr *perrors.RSXError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *RSXError", err)
	}
	if perr.Line != 5 || perr.Column != 3 {
		t.Errorf("position = %d:%d, want 5:3", perr.Line, perr.Column)
	}
}

func TestRewriteRealParseError(t *testing.T) {
	src := "intro\n\n```rsx\n<a></b>\n```\n"
	_, _, err := Rewrite([]byte(src), "rust", compileFile)
	var perr *perrors.RSXError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *RSXError", err)
	}
	if perr.Code != "PARSE-0002" || perr.Line != 4 || perr.Column != 6 {
		t.Errorf("got %s at %d:%d", perr.Code, perr.Line, perr.Column)
	}
}

func TestReindent(t *testing.T) {
	tests := []struct {
		code, indent, want string
	}{
		{"a\nb\n", "", "a\nb\n"},
		{"a\nb\n", "  ", "a\n  b\n"},
		{"a\nb", "> ", "a\n> b"},
	}
	for _, tt := range tests {
		if got := reindent(tt.code, tt.indent); got != tt.want {
			t.Errorf("reindent(%q, %q) = %q, want %q", tt.code, tt.indent, got, tt.want)
		}
	}
}
