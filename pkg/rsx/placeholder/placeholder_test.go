package placeholder

import (
	"testing"
)

func TestFormat(t *testing.T) {
	if got := Format(42); got != "/* rsx:42 */" {
		t.Errorf("Format(42) = %q", got)
	}
}

func TestCounter(t *testing.T) {
	c := NewCounter(7)
	for _, want := range []uint64{7, 8, 9} {
		if got := c.Next(); got != want {
			t.Errorf("Next() = %d, want %d", got, want)
		}
	}
	if got := New(c); got != "/* rsx:10 */" {
		t.Errorf("New() = %q", got)
	}
}

func TestRandomIsDeterministicForSeed(t *testing.T) {
	a, b := NewRandom(99), NewRandom(99)
	for i := 0; i < 100; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("step %d: %d != %d", i, x, y)
		}
	}
}

func TestRandomDoesNotRepeatQuickly(t *testing.T) {
	r := NewRandom(0)
	seen := make(map[uint64]bool)
	for i := 0; i < 10000; i++ {
		v := r.Next()
		if seen[v] {
			t.Fatalf("value %d repeated after %d draws", v, i)
		}
		seen[v] = true
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"f(/* rsx:123 */)", true},
		{"/* rsx: */", false},
		{"/* rsx:12a */", false},
		{"/* comment */", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Contains(tt.text); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
