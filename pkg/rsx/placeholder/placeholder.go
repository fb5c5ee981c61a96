// Package placeholder generates the inert markers that stand in for markup
// elements inside a code block's token text.
//
// A marker is a host block comment, /* rsx:<n> */, so a stray one left in
// generated code is harmless. Generators are plain values passed down the
// parser call chain; there is no package-level state.
package placeholder

import (
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/sambeau/rsx/pkg/rsx/ast"
)

// Prefix and Suffix delimit every placeholder
const (
	Prefix = "/* rsx:"
	Suffix = " */"
)

// Pattern matches any placeholder
var Pattern = regexp.MustCompile(`/\* rsx:[0-9]+ \*/`)

// Generator produces the numbers embedded in placeholders
type Generator interface {
	Next() uint64
}

// Format renders the placeholder for n
func Format(n uint64) ast.Placeholder {
	return ast.Placeholder(Prefix + strconv.FormatUint(n, 10) + Suffix)
}

// New draws the next placeholder from g
func New(g Generator) ast.Placeholder {
	return Format(g.Next())
}

// Contains reports whether text holds any placeholder
func Contains(text string) bool {
	return Pattern.MatchString(text)
}

// Counter is a monotonic generator, useful for reproducible output
type Counter struct {
	n uint64
}

// NewCounter returns a counter whose first value is start
func NewCounter(start uint64) *Counter {
	return &Counter{n: start}
}

func (c *Counter) Next() uint64 {
	v := c.n
	c.n++
	return v
}

// Random is an xorshift64* generator. Its numbers are large and spread out,
// which keeps accidental matches with literal source text unlikely.
type Random struct {
	state uint64
}

// NewRandom returns a generator seeded with seed. A zero seed draws one
// from math/rand/v2.
func NewRandom(seed uint64) *Random {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return &Random{state: seed}
}

func (r *Random) Next() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 2685821657736338717
}
