// Package lexer provides the character-level scanner shared by the markup
// grammars and the host code block scanner.
//
// Unlike a token-stream lexer, the markup grammar is scannerless: the parser
// drives a Lexer one primitive at a time and rewinds it with
// SaveState/RestoreState when an alternative fails.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
)

// EOF is returned by Ch and Peek past the end of input.
const EOF rune = -1

// Lexer represents a cursor over the source text
type Lexer struct {
	input    string
	filename string

	position int  // offset of the current character
	ch       rune // current character (EOF past the end)
	chSize   int  // byte width of ch
	line     int  // 1-based line of ch
	column   int  // 1-based column of ch, counted in runes
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 1}
	l.decode()
	return l
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := New(input)
	l.filename = filename
	return l
}

// LexerState holds the state of a lexer for save/restore
type LexerState struct {
	position int
	ch       rune
	chSize   int
	line     int
	column   int
}

// Offset returns the byte offset recorded in the state.
func (s LexerState) Offset() int { return s.position }

// Line returns the 1-based line recorded in the state.
func (s LexerState) Line() int { return s.line }

// Column returns the 1-based column recorded in the state.
func (s LexerState) Column() int { return s.column }

// SaveState saves the current lexer state for potential restoration
func (l *Lexer) SaveState() LexerState {
	return LexerState{
		position: l.position,
		ch:       l.ch,
		chSize:   l.chSize,
		line:     l.line,
		column:   l.column,
	}
}

// RestoreState restores the lexer to a previously saved state
func (l *Lexer) RestoreState(state LexerState) {
	l.position = state.position
	l.ch = state.ch
	l.chSize = state.chSize
	l.line = state.line
	l.column = state.column
}

// decode loads the character at l.position.
// ASCII is handled without calling into utf8.
func (l *Lexer) decode() {
	if l.position >= len(l.input) {
		l.ch = EOF
		l.chSize = 0
		return
	}
	b := l.input[l.position]
	if b < utf8.RuneSelf {
		l.ch = rune(b)
		l.chSize = 1
		return
	}
	l.ch, l.chSize = utf8.DecodeRuneInString(l.input[l.position:])
}

// Next advances past the current character
func (l *Lexer) Next() {
	if l.ch == EOF {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.position += l.chSize
	l.decode()
}

// Ch returns the current character
func (l *Lexer) Ch() rune { return l.ch }

// EOF reports whether the whole input has been consumed
func (l *Lexer) EOF() bool { return l.ch == EOF }

// Peek returns the character after the current one
func (l *Lexer) Peek() rune {
	return l.PeekN(1)
}

// PeekN returns the character n positions ahead without advancing
func (l *Lexer) PeekN(n int) rune {
	pos := l.position
	for i := 0; i < n; i++ {
		if pos >= len(l.input) {
			return EOF
		}
		_, size := utf8.DecodeRuneInString(l.input[pos:])
		pos += size
	}
	if pos >= len(l.input) {
		return EOF
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

// Offset returns the byte offset of the current character
func (l *Lexer) Offset() int { return l.position }

// Line returns the 1-based line of the current character
func (l *Lexer) Line() int { return l.line }

// Column returns the 1-based column of the current character
func (l *Lexer) Column() int { return l.column }

// Filename returns the name the lexer was created with
func (l *Lexer) Filename() string { return l.filename }

// Input returns the complete source text
func (l *Lexer) Input() string { return l.input }

// Rest returns the unconsumed input
func (l *Lexer) Rest() string { return l.input[l.position:] }

// Slice returns the input between from and the current position
func (l *Lexer) Slice(from int) string { return l.input[from:l.position] }

// HasPrefix reports whether the unconsumed input starts with s
func (l *Lexer) HasPrefix(s string) bool {
	return strings.HasPrefix(l.input[l.position:], s)
}

// Accept consumes s if the unconsumed input starts with it
func (l *Lexer) Accept(s string) bool {
	if !l.HasPrefix(s) {
		return false
	}
	end := l.position + len(s)
	for l.position < end {
		l.Next()
	}
	return true
}

// AcceptRune consumes r if it is the current character
func (l *Lexer) AcceptRune(r rune) bool {
	if l.ch != r || l.ch == EOF {
		return false
	}
	l.Next()
	return true
}

// Describe returns a short printable description of the current character
// for diagnostics.
func (l *Lexer) Describe() string {
	switch {
	case l.ch == EOF:
		return "end of input"
	case l.ch == '\n':
		return "newline"
	case unicode.IsSpace(l.ch):
		return "whitespace"
	}
	return "`" + string(l.ch) + "`"
}

// errorAt builds a positioned error at the given state.
func (l *Lexer) errorAt(st LexerState, code string, data map[string]any) *perrors.RSXError {
	err := perrors.NewWithPosition(code, st.position, st.line, st.column, data)
	if l.filename != "" {
		err.File = l.filename
	}
	return err
}

// ErrorHere builds a positioned error at the current character.
func (l *Lexer) ErrorHere(code string, data map[string]any) *perrors.RSXError {
	return l.errorAt(l.SaveState(), code, data)
}

// SkipWhitespace skips whitespace, line comments and block comments.
// It reports whether anything was consumed. An unterminated block comment
// leaves the lexer at the opening `/*` and returns an error.
func (l *Lexer) SkipWhitespace() (bool, error) {
	start := l.position
	for {
		switch {
		case IsWhitespace(l.ch):
			l.Next()
		case l.ch == '/' && (l.Peek() == '/' || l.Peek() == '*'):
			if _, err := l.ReadComment(); err != nil {
				return l.position > start, err
			}
		default:
			return l.position > start, nil
		}
	}
}

// ReadComment consumes one `//` or `/* */` comment and returns its text.
func (l *Lexer) ReadComment() (string, error) {
	st := l.SaveState()
	switch {
	case l.HasPrefix("//"):
		for l.ch != EOF && l.ch != '\n' {
			l.Next()
		}
		return l.Slice(st.position), nil
	case l.HasPrefix("/*"):
		l.Next()
		l.Next()
		for l.ch != EOF {
			if l.ch == '*' && l.Peek() == '/' {
				l.Next()
				l.Next()
				return l.Slice(st.position), nil
			}
			l.Next()
		}
		l.RestoreState(st)
		return "", l.errorAt(st, "PARSE-0007", nil)
	}
	return "", nil
}

// ReadIdentifier reads a simple identifier: (letter|_|$)(letter|digit|_|$)*.
// Nothing is consumed when the current character cannot start one.
func (l *Lexer) ReadIdentifier() (string, bool) {
	if !IsIdentifierStart(l.ch) {
		return "", false
	}
	start := l.position
	for IsIdentifierPart(l.ch) {
		l.Next()
	}
	return l.Slice(start), true
}

// ReadNumber reads a numeric literal. Accepted forms are an optionally
// signed integer, integer.fraction, and integer(.fraction)?e[+-]integer.
// A `.` or exponent marker that is not followed by digits is left unread.
func (l *Lexer) ReadNumber() (float64, string, bool) {
	st := l.SaveState()

	if l.ch == '+' || l.ch == '-' {
		l.Next()
	}
	if !l.readDigits() {
		l.RestoreState(st)
		return 0, "", false
	}

	if l.ch == '.' && IsDigit(l.Peek()) {
		l.Next()
		l.readDigits()
	}

	if l.ch == 'e' || l.ch == 'E' {
		exp := l.SaveState()
		l.Next()
		if l.ch == '+' || l.ch == '-' {
			l.Next()
		}
		if !l.readDigits() {
			l.RestoreState(exp)
		}
	}

	text := l.Slice(st.position)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Only range errors are possible here; ParseFloat returns ±Inf.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			l.RestoreState(st)
			return 0, "", false
		}
	}
	return value, text, true
}

// readDigits consumes one or more ASCII digits.
func (l *Lexer) readDigits() bool {
	if !IsDigit(l.ch) {
		return false
	}
	for IsDigit(l.ch) {
		l.Next()
	}
	return true
}

// ReadString reads a single- or double-quoted markup string and returns its
// unescaped value. ok is false, with no error, when the current character is
// not a quote. Unknown escapes and missing closing quotes are errors; in
// both cases the lexer is rewound to the opening quote.
func (l *Lexer) ReadString() (value string, ok bool, err error) {
	quote := l.ch
	if quote != '"' && quote != '\'' {
		return "", false, nil
	}
	st := l.SaveState()
	l.Next()

	var sb strings.Builder
	for {
		switch l.ch {
		case EOF:
			l.RestoreState(st)
			return "", false, l.errorAt(st, "PARSE-0003", map[string]any{"Quote": string(quote)})
		case quote:
			l.Next()
			return sb.String(), true, nil
		case '\\':
			esc := l.SaveState()
			l.Next()
			r, valid := unescape(l.ch)
			if !valid {
				l.RestoreState(st)
				return "", false, l.errorAt(esc, "PARSE-0004", map[string]any{"Char": describeEscape(l.ch)})
			}
			sb.WriteRune(r)
			l.Next()
		default:
			sb.WriteRune(l.ch)
			l.Next()
		}
	}
}

// unescape maps the character after a backslash to its value.
func unescape(c rune) (rune, bool) {
	switch c {
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	case '0':
		return 0, true
	}
	return 0, false
}

func describeEscape(c rune) string {
	if c == EOF {
		return ""
	}
	return string(c)
}

// ReadCharLiteral reads a host character literal such as 'x', '\n' or
// '\u{1F600}' and returns its source text. Nothing is consumed when the
// text at the cursor is not a complete literal, so lifetimes like 'a pass
// through untouched.
func (l *Lexer) ReadCharLiteral() (string, bool) {
	if l.ch != '\'' {
		return "", false
	}
	st := l.SaveState()
	l.Next()

	switch l.ch {
	case EOF, '\'', '\n':
		l.RestoreState(st)
		return "", false
	case '\\':
		l.Next()
		// Escapes are short; anything longer is not a character literal.
		for i := 0; i < 10 && l.ch != EOF && l.ch != '\n'; i++ {
			if l.ch == '\'' {
				l.Next()
				return l.Slice(st.position), true
			}
			l.Next()
		}
		l.RestoreState(st)
		return "", false
	}

	l.Next()
	if l.ch != '\'' {
		l.RestoreState(st)
		return "", false
	}
	l.Next()
	return l.Slice(st.position), true
}

// ReadHostString reads a double-quoted host string and returns its source
// text verbatim, escapes included.
func (l *Lexer) ReadHostString() (string, bool, error) {
	if l.ch != '"' {
		return "", false, nil
	}
	st := l.SaveState()
	l.Next()
	for l.ch != EOF {
		switch l.ch {
		case '\\':
			l.Next()
			if l.ch != EOF {
				l.Next()
			}
		case '"':
			l.Next()
			return l.Slice(st.position), true, nil
		default:
			l.Next()
		}
	}
	l.RestoreState(st)
	return "", false, l.errorAt(st, "PARSE-0003", map[string]any{"Quote": `"`})
}

// ReadRawString reads a back-quoted raw string and returns its source text.
func (l *Lexer) ReadRawString() (string, bool, error) {
	if l.ch != '`' {
		return "", false, nil
	}
	st := l.SaveState()
	l.Next()
	for l.ch != EOF {
		if l.ch == '`' {
			l.Next()
			return l.Slice(st.position), true, nil
		}
		l.Next()
	}
	l.RestoreState(st)
	return "", false, l.errorAt(st, "PARSE-0003", map[string]any{"Quote": "`"})
}

// IsIdentifierStart reports whether r can begin an identifier
func IsIdentifierStart(r rune) bool {
	return r == '_' || r == '$' || (r != EOF && unicode.IsLetter(r))
}

// IsIdentifierPart reports whether r can continue an identifier
func IsIdentifierPart(r rune) bool {
	return IsIdentifierStart(r) || (r != EOF && unicode.IsDigit(r))
}

// IsDigit reports whether r is an ASCII digit
func IsDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// IsWhitespace reports whether r is Unicode white space
func IsWhitespace(r rune) bool {
	return r != EOF && unicode.IsSpace(r)
}
