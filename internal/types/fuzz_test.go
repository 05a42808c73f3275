package types

import (
	"math"
	"testing"
)

// FuzzInternLiteralStringDeterminism exercises spec §8's interner
// determinism invariant directly against arbitrary input: interning the
// same literal string twice, on two independently constructed interners,
// must always hash-cons to the same TypeId.
func FuzzInternLiteralStringDeterminism(f *testing.F) {
	f.Add("")
	f.Add("a")
	f.Add("hello world")
	f.Add("\x00\x01\xff")
	f.Fuzz(func(t *testing.T, s string) {
		a := New().LiteralStringType(s)
		b := New().LiteralStringType(s)
		if a != b {
			t.Fatalf("interning %q across two interners diverged: %v != %v", s, a, b)
		}
		again := New().LiteralStringType(s)
		if a != again {
			t.Fatalf("interning %q a third time diverged: %v != %v", s, a, again)
		}
	})
}

// FuzzInternLiteralNumberDeterminism mirrors the string case for numeric
// literals, including NaN and the signed-zero distinction key.go's key
// derivation must preserve (spec §8).
func FuzzInternLiteralNumberDeterminism(f *testing.F) {
	f.Add(0.0)
	f.Add(math.Copysign(0, -1))
	f.Add(math.NaN())
	f.Add(math.Inf(1))
	f.Fuzz(func(t *testing.T, v float64) {
		a := New().LiteralNumberType(v)
		b := New().LiteralNumberType(v)
		if a != b {
			t.Fatalf("interning %v across two interners diverged: %v != %v", v, a, b)
		}
	})
}
