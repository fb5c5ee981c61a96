package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func feedAll(s *Session, lines ...string) {
	for _, l := range lines {
		s.Feed(l)
	}
}

func TestFeedCompiles(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, Options{})

	entry, quit := s.Feed("<foo>hi</foo>")
	if quit || entry != "<foo>hi</foo>" {
		t.Errorf("Feed() = %q, %v", entry, quit)
	}
	want := `DOMNode::from((DOMTagName::from("foo"), DOMChildren::from(vec![DOMNode::from("hi"),])))` + "\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestMultiLineInput(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, Options{})

	if entry, _ := s.Feed("<ul>"); entry != "" || !s.Pending() {
		t.Fatalf("first line evaluated early: %q", entry)
	}
	if s.Prompt() != CONTINUATION_PROMPT {
		t.Errorf("Prompt() = %q", s.Prompt())
	}
	s.Feed("  {items.map(|i| <li/>)")
	entry, _ := s.Feed("}</ul>")
	if entry != "<ul>\n  {items.map(|i| <li/>)\n}</ul>" {
		t.Errorf("entry = %q", entry)
	}
	if s.Pending() {
		t.Error("input still pending")
	}
	if !strings.Contains(out.String(), "KnownElementName::Li") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestBlankLineForcesEvaluation(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, Options{})
	feedAll(s, "<div>", "")
	if s.Pending() {
		t.Error("blank line did not flush the input")
	}
	if !strings.Contains(out.String(), "Syntax error") {
		t.Errorf("expected a syntax error, got %q", out.String())
	}
}

func TestErrorsArePrinted(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, Options{})
	s.Feed("<a></b>")
	if !strings.Contains(out.String(), "expected closing tag `</a>`") {
		t.Errorf("got %q", out.String())
	}
}

func TestCommands(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, Options{})

	feedAll(s, ":dialect react", "<br/>")
	if !strings.Contains(out.String(), `React.createElement("br", null)`) {
		t.Errorf("dialect switch: %q", out.String())
	}

	out.Reset()
	feedAll(s, ":dialect nope")
	if !strings.Contains(out.String(), "unknown dialect 'nope'") {
		t.Errorf("bad dialect: %q", out.String())
	}

	out.Reset()
	feedAll(s, ":ast", "<a b=1/>")
	if !strings.Contains(out.String(), "AST mode ON") || !strings.Contains(out.String(), "SelfClosing") {
		t.Errorf("ast mode: %q", out.String())
	}

	out.Reset()
	feedAll(s, ":ast", ":file")
	if s.Prompt() != PROMPT_FILE {
		t.Errorf("Prompt() = %q", s.Prompt())
	}
	feedAll(s, "let x = a < b && f(<br/>);")
	if !strings.Contains(out.String(), `let x = a < b && f(React.createElement("br", null));`) {
		t.Errorf("file mode: %q", out.String())
	}

	out.Reset()
	feedAll(s, ":bogus")
	if !strings.Contains(out.String(), "Unknown command: :bogus") {
		t.Errorf("unknown command: %q", out.String())
	}

	if _, quit := s.Feed("exit"); !quit {
		t.Error("exit did not quit")
	}
}

func TestComplete(t *testing.T) {
	s := NewSession(&bytes.Buffer{}, Options{})

	tests := []struct {
		line string
		want []string
	}{
		{":di", []string{":dialect"}},
		{":dialect r", []string{":dialect react"}},
		{"<p>x</texta", []string{"<p>x</textarea"}},
		{"<a b", nil},
		{"plain", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, s.Complete(tt.line)); diff != "" {
			t.Errorf("Complete(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}

	got := s.Complete("<di")
	if len(got) == 0 || got[0] != "<dialog" && got[0] != "<div" {
		t.Errorf("Complete(<di) = %v", got)
	}
}
