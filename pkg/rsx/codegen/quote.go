package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Quote styles a dialect can select for its string literals
const (
	QuoteGo   = "go"
	QuoteRust = "rust"
	QuoteJS   = "js"
)

var quoters = map[string]func(string) string{
	QuoteGo:   strconv.Quote,
	QuoteRust: quoteRust,
	QuoteJS:   quoteJS,
}

// quoteRust renders s as a Rust string literal. Rust only knows the \n \r
// \t \\ \" \0 escapes; everything else that is not printable becomes
// \u{..}.
func quoteRust(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
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
		case 0:
			sb.WriteString(`\0`)
		default:
			if unicode.IsPrint(r) {
				sb.WriteRune(r)
			} else {
				fmt.Fprintf(&sb, `\u{%x}`, r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// quoteJS renders s as a JavaScript string literal. Unprintable runes
// outside the BMP are written as a surrogate pair of \u escapes.
func quoteJS(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
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
		default:
			switch {
			case unicode.IsPrint(r):
				sb.WriteRune(r)
			case r > 0xFFFF:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&sb, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(&sb, `\u%04x`, r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// jsMember renders a member path as a JavaScript expression. Parts that
// are not identifiers are bracketed; a root that is not one is looked up
// on globalThis.
func jsMember(parts []string) string {
	var sb strings.Builder
	for i, p := range parts {
		switch {
		case isJSIdentifier(p) && i == 0:
			sb.WriteString(p)
		case isJSIdentifier(p):
			sb.WriteString("." + p)
		case i == 0:
			sb.WriteString("globalThis[" + quoteJS(p) + "]")
		default:
			sb.WriteString("[" + quoteJS(p) + "]")
		}
	}
	return sb.String()
}

func isJSIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
