// Package errors provides structured error types for the rsx toolchain.
//
// RSXError carries a class, a catalog code, a rendered message, optional
// hints and the source position, so that the CLI, the REPL and embedders
// can all display and inspect failures the same way.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassParse    ErrorClass = "parse"    // Markup or code block syntax
	ClassConfig   ErrorClass = "config"   // Configuration and dialects
	ClassIO       ErrorClass = "io"       // File operations
	ClassInternal ErrorClass = "internal" // Broken invariants
)

// RSXError represents any error reported by the parser, the code generator
// or the surrounding tooling.
type RSXError struct {
	Class    ErrorClass     `json:"class"`              // Error category
	Code     string         `json:"code"`               // Error code (e.g., "PARSE-0002")
	Message  string         `json:"message"`            // Human-readable message
	Hints    []string       `json:"hints,omitempty"`    // Suggestions for fixing
	Line     int            `json:"line"`               // 1-based line (0 if unknown)
	Column   int            `json:"column"`             // 1-based column (0 if unknown)
	Offset   int            `json:"offset"`             // Byte offset into the input
	File     string         `json:"file,omitempty"`     // File path (if known)
	Expected []string       `json:"expected,omitempty"` // Tokens that would have been accepted
	Data     map[string]any `json:"data,omitempty"`     // Template variables
}

// Error implements the error interface.
func (e *RSXError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *RSXError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *RSXError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Syntax error")
	case ClassConfig:
		sb.WriteString("Configuration error")
	case ClassInternal:
		sb.WriteString("Internal error")
	default:
		sb.WriteString("Error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *RSXError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *RSXError) WithFile(file string) *RSXError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with offset, line and column set.
func (e *RSXError) WithPosition(offset, line, column int) *RSXError {
	copy := *e
	copy.Offset = offset
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError reports whether this is a syntax error.
func (e *RSXError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error template in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Go text/template for the message
	Hints    []string // Hint templates
}

// ErrorCatalog contains every error the toolchain reports, keyed by code.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Parse errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "unexpected {{.Found}}, expected {{.Expected}}",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "expected closing tag `</{{.Expected}}>`, found `</{{.Found}}`",
		Hints: []string{
			"names differ at character {{.Index}} of `{{.Expected}}`",
			"{{if .Suggestion}}did you mean `</{{.Suggestion}}>`?{{end}}",
			"{{if .OpenLine}}`<{{.Expected}}>` was opened at line {{.OpenLine}}, column {{.OpenColumn}}{{end}}",
		},
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "unterminated string literal",
		Hints:    []string{"add a closing {{.Quote}}"},
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "invalid escape sequence `\\{{.Char}}`",
		Hints:    []string{`valid escapes are \' \" \\ \n \r \t \b \f \v \0`},
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "unterminated code block",
		Hints:    []string{"every `{` needs a matching `}`"},
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "expected an element, found {{.Found}}",
		Hints:    []string{"markup must start with `<`"},
	},
	"PARSE-0007": {
		Class:    ClassParse,
		Template: "unterminated block comment",
		Hints:    []string{"close the comment with `*/`"},
	},
	"PARSE-0008": {
		Class:    ClassParse,
		Template: "unexpected {{.Found}} after element",
	},

	// ========================================
	// Configuration errors (CONFIG-0xxx)
	// ========================================
	"CONFIG-0001": {
		Class:    ClassConfig,
		Template: "unknown dialect '{{.Name}}'",
		Hints:    []string{"{{if .Suggestion}}did you mean '{{.Suggestion}}'?{{end}}"},
	},
	"CONFIG-0002": {
		Class:    ClassConfig,
		Template: "invalid {{.Field}} template in dialect '{{.Dialect}}': {{.GoError}}",
	},
	"CONFIG-0003": {
		Class:    ClassConfig,
		Template: "invalid placeholder mode '{{.Mode}}'",
		Hints:    []string{"use 'random' or 'counter'"},
	},
	"CONFIG-0004": {
		Class:    ClassConfig,
		Template: "invalid {{.Field}}: {{.GoError}}",
	},

	// ========================================
	// IO errors (IO-0xxx)
	// ========================================
	"IO-0001": {
		Class:    ClassIO,
		Template: "cannot {{.Operation}} '{{.Path}}': {{.GoError}}",
	},

	// ========================================
	// Internal errors (INTERNAL-0xxx)
	// ========================================
	"INTERNAL-0001": {
		Class:    ClassInternal,
		Template: "internal error: {{.Detail}}",
	},
}

// New creates an RSXError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *RSXError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &RSXError{
			Class:   ClassInternal,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &RSXError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates an RSXError with position information.
func NewWithPosition(code string, offset, line, column int, data map[string]any) *RSXError {
	err := New(code, data)
	err.Offset = offset
	err.Line = line
	err.Column = column
	return err
}

// NewExpected creates a PARSE-0001 error from a set of expected tokens.
// The set is sorted and de-duplicated.
func NewExpected(found string, expected []string, offset, line, column int) *RSXError {
	set := make(map[string]bool, len(expected))
	uniq := make([]string, 0, len(expected))
	for _, e := range expected {
		if !set[e] {
			set[e] = true
			uniq = append(uniq, e)
		}
	}
	sort.Strings(uniq)

	err := NewWithPosition("PARSE-0001", offset, line, column, map[string]any{
		"Found":    found,
		"Expected": JoinExpected(uniq),
	})
	err.Expected = uniq
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *RSXError {
	return &RSXError{
		Class:   class,
		Message: message,
	}
}

// Internal returns the value used to panic on states that no input can reach.
func Internal(detail string) *RSXError {
	return New("INTERNAL-0001", map[string]any{"Detail": detail})
}

// JoinExpected renders an expected-token list as "a, b or c".
func JoinExpected(items []string) string {
	switch len(items) {
	case 0:
		return "nothing"
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise empty string.
// Short inputs tolerate one edit, medium inputs two and long inputs three.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}

	return bestMatch
}
