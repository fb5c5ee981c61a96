package errors

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRSXError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *RSXError
		expected string
	}{
		{
			name:     "message only",
			err:      &RSXError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with line and column",
			err:      &RSXError{Message: "unexpected `>`", Line: 5, Column: 10},
			expected: "line 5, column 10: unexpected `>`",
		},
		{
			name:     "with file",
			err:      &RSXError{Message: "parse error", File: "view.rsx", Line: 3, Column: 1},
			expected: "view.rsx: line 3, column 1: parse error",
		},
		{
			name: "with hints",
			err: &RSXError{
				Message: "unterminated string literal",
				Line:    1,
				Column:  7,
				Hints:   []string{"add a closing \""},
			},
			expected: "line 1, column 7: unterminated string literal\n  add a closing \"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.String()
			if got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRSXError_PrettyString(t *testing.T) {
	err := NewWithPosition("PARSE-0005", 12, 2, 4, nil).WithFile("app.rsx")
	got := err.PrettyString()

	for _, want := range []string{"Syntax error", "in: app.rsx", "at: line 2, column 4", "unterminated code block", "hint:"} {
		if !strings.Contains(got, want) {
			t.Errorf("PrettyString() = %q, missing %q", got, want)
		}
	}
}

func TestNew_Catalog(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		data      map[string]any
		wantClass ErrorClass
		wantMsg   string
		wantHints int
	}{
		{
			name:      "mismatched closing tag",
			code:      "PARSE-0002",
			data:      map[string]any{"Expected": "foo", "Found": "bar", "Index": 0},
			wantClass: ClassParse,
			wantMsg:   "expected closing tag `</foo>`, found `</bar`",
			wantHints: 1,
		},
		{
			name:      "mismatched closing tag with suggestion",
			code:      "PARSE-0002",
			data:      map[string]any{"Expected": "section", "Found": "sectoin", "Index": 4, "Suggestion": "section"},
			wantClass: ClassParse,
			wantMsg:   "expected closing tag `</section>`, found `</sectoin`",
			wantHints: 2,
		},
		{
			name:      "invalid escape",
			code:      "PARSE-0004",
			data:      map[string]any{"Char": "q"},
			wantClass: ClassParse,
			wantMsg:   "invalid escape sequence `\\q`",
			wantHints: 1,
		},
		{
			name:      "unknown dialect",
			code:      "CONFIG-0001",
			data:      map[string]any{"Name": "dmo", "Suggestion": "dom"},
			wantClass: ClassConfig,
			wantMsg:   "unknown dialect 'dmo'",
			wantHints: 1,
		},
		{
			name:      "unknown code",
			code:      "NOPE-0001",
			data:      map[string]any{"message": "custom"},
			wantClass: ClassInternal,
			wantMsg:   "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.data)
			if err.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", err.Class, tt.wantClass)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if len(err.Hints) != tt.wantHints {
				t.Errorf("Hints = %q, want %d hints", err.Hints, tt.wantHints)
			}
		})
	}
}

func TestNewExpected(t *testing.T) {
	err := NewExpected("`;`", []string{"`>`", "`/>`", "`>`", "attribute"}, 4, 1, 5)

	if err.Code != "PARSE-0001" {
		t.Errorf("Code = %q, want PARSE-0001", err.Code)
	}
	want := []string{"`/>`", "`>`", "attribute"}
	if strings.Join(err.Expected, "|") != strings.Join(want, "|") {
		t.Errorf("Expected = %q, want %q", err.Expected, want)
	}
	if err.Message != "unexpected `;`, expected `/>`, `>` or attribute" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Offset != 4 || err.Line != 1 || err.Column != 5 {
		t.Errorf("position = %d/%d:%d, want 4/1:5", err.Offset, err.Line, err.Column)
	}
}

func TestWithPositionCopies(t *testing.T) {
	orig := NewSimple(ClassIO, "boom")
	moved := orig.WithPosition(10, 2, 3)

	if orig.Line != 0 {
		t.Errorf("original mutated: line %d", orig.Line)
	}
	if moved.Line != 2 || moved.Column != 3 || moved.Offset != 10 {
		t.Errorf("WithPosition() = %d:%d@%d", moved.Line, moved.Column, moved.Offset)
	}
}

func TestToJSON(t *testing.T) {
	err := NewWithPosition("PARSE-0003", 0, 1, 1, map[string]any{"Quote": `"`})

	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON() error: %v", jerr)
	}

	var decoded map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("invalid JSON: %v", jerr)
	}
	if decoded["code"] != "PARSE-0003" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["class"] != "parse" {
		t.Errorf("class = %v", decoded["class"])
	}
}

func TestFindClosestMatch(t *testing.T) {
	tests := []struct {
		input      string
		candidates []string
		want       string
	}{
		{"doom", []string{"dom", "go"}, "dom"},
		{"sectoin", []string{"section", "select"}, "section"},
		{"dom", []string{"dom"}, ""},
		{"zzzzzz", []string{"dom"}, ""},
		{"", []string{"dom"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FindClosestMatch(tt.input, tt.candidates); got != tt.want {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinExpected(t *testing.T) {
	tests := []struct {
		items []string
		want  string
	}{
		{nil, "nothing"},
		{[]string{"`<`"}, "`<`"},
		{[]string{"a", "b"}, "a or b"},
		{[]string{"a", "b", "c"}, "a, b or c"},
	}

	for _, tt := range tests {
		if got := JoinExpected(tt.items); got != tt.want {
			t.Errorf("JoinExpected(%q) = %q, want %q", tt.items, got, tt.want)
		}
	}
}

func TestInternal(t *testing.T) {
	err := Internal("known names cannot be rendered as markup")
	if err.Class != ClassInternal {
		t.Errorf("Class = %q", err.Class)
	}
	if !strings.Contains(err.Error(), "known names cannot be rendered") {
		t.Errorf("Error() = %q", err.Error())
	}
}
