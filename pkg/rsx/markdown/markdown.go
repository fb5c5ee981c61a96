// Package markdown compiles markup embedded in the fenced code blocks of
// Markdown documents. Everything outside the selected blocks is copied
// through byte for byte.
package markdown

import (
	"bytes"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
)

// Languages are the info-string languages whose blocks are compiled
var Languages = []string{"rsx", "jsx"}

// Block is one fenced code block holding markup
type Block struct {
	Language string
	Code     string
	Line     int // line of the first code line, 1-based

	lang   text.Segment
	body   text.Segment
	indent string
}

// CompileFunc turns the body of a block into host source
type CompileFunc func(code string) (string, error)

// Blocks returns the compilable fenced blocks of source in document order.
// Empty blocks are skipped.
func Blocks(source []byte) []Block {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks []Block
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		fenced, ok := n.(*gmast.FencedCodeBlock)
		if !ok || fenced.Info == nil || fenced.Lines().Len() == 0 {
			return gmast.WalkContinue, nil
		}
		lang := string(fenced.Language(source))
		if !isMarkupLanguage(lang) {
			return gmast.WalkSkipChildren, nil
		}

		lines := fenced.Lines()
		var code strings.Builder
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(source))
		}
		first, last := lines.At(0), lines.At(lines.Len()-1)
		infoStart := fenced.Info.Segment.Start
		blocks = append(blocks, Block{
			Language: lang,
			Code:     code.String(),
			Line:     bytes.Count(source[:first.Start], []byte{'\n'}) + 1,
			lang:     text.NewSegment(infoStart, infoStart+len(lang)),
			body:     text.NewSegment(first.Start, last.Stop),
			indent:   indentOf(source, first.Start),
		})
		return gmast.WalkSkipChildren, nil
	})
	return blocks
}

func isMarkupLanguage(lang string) bool {
	return slices.ContainsFunc(Languages, func(l string) bool {
		return strings.EqualFold(l, lang)
	})
}

// indentOf returns the whitespace between the start of the line holding
// offset and offset itself.
func indentOf(source []byte, offset int) string {
	start := bytes.LastIndexByte(source[:offset], '\n') + 1
	prefix := source[start:offset]
	if len(bytes.TrimLeft(prefix, " \t>")) != 0 {
		return ""
	}
	return string(prefix)
}

// Rewrite compiles every markup block of source and replaces its body with
// the result. The block's language becomes fence; an empty fence leaves it
// unchanged. It returns the new document and the number of blocks compiled.
//
// A parse error in a block is reported against the document: its line is
// shifted to the block's position.
func Rewrite(source []byte, fence string, compile CompileFunc) ([]byte, int, error) {
	blocks := Blocks(source)
	if len(blocks) == 0 {
		return source, 0, nil
	}

	var out bytes.Buffer
	pos := 0
	for _, b := range blocks {
		code, err := compile(b.Code)
		if err != nil {
			return nil, 0, relocate(err, b)
		}

		if fence != "" {
			out.Write(source[pos:b.lang.Start])
			out.WriteString(fence)
			pos = b.lang.Stop
		}
		out.Write(source[pos:b.body.Start])
		out.WriteString(reindent(code, b.indent))
		pos = b.body.Stop
	}
	out.Write(source[pos:])
	return out.Bytes(), len(blocks), nil
}

// reindent prefixes every line after the first with indent, leaving a
// trailing newline alone.
func reindent(code, indent string) string {
	if indent == "" {
		return code
	}
	trimmed := strings.TrimSuffix(code, "\n")
	out := strings.ReplaceAll(trimmed, "\n", "\n"+indent)
	if len(trimmed) != len(code) {
		out += "\n"
	}
	return out
}

func relocate(err error, b Block) error {
	perr, ok := err.(*perrors.RSXError)
	if !ok || perr.Line == 0 {
		return err
	}
	moved := *perr
	moved.Column += len([]rune(b.indent))
	moved.Line += b.Line - 1
	return &moved
}
