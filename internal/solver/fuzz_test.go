package solver

import (
	"testing"

	"github.com/tsz-lang/tszcore/internal/types"
)

// FuzzSubtypeReflexivity exercises spec §8's reflexivity invariant
// (IsSubtypeOf(t, t) holds for every t) across a fuzzed literal payload,
// constructing a handful of literal/primitive/union shapes from each seed
// rather than trying to fuzz TypeId directly (an arbitrary uint32 is
// overwhelmingly likely to not name any interned type at all).
func FuzzSubtypeReflexivity(f *testing.F) {
	f.Add("a", 1.0, true)
	f.Add("", 0.0, false)
	f.Fuzz(func(t *testing.T, s string, n float64, b bool) {
		c, in, _, _ := newChecker()
		lit := in.LiteralStringType(s)
		num := in.LiteralNumberType(n)
		boolLit := in.LiteralBoolean(b)
		union := in.Union([]types.TypeId{lit, num, boolLit})

		for _, id := range []types.TypeId{
			lit, num, boolLit, union,
			types.String, types.Number, types.Boolean,
			types.Any, types.Unknown, types.Never,
		} {
			if !c.IsSubtypeOf(id, id) {
				t.Fatalf("type %v is not a subtype of itself (reflexivity)", id)
			}
		}
	})
}

// FuzzNarrowTruthyIdempotent exercises spec §8's narrowing idempotence
// invariant: applying the same guard twice never narrows further than
// applying it once.
func FuzzNarrowTruthyIdempotent(f *testing.F) {
	f.Add(true)
	f.Add(false)
	f.Fuzz(func(t *testing.T, useNullishUnion bool) {
		c, in, _, _ := newChecker()
		base := types.String
		if useNullishUnion {
			base = in.Union([]types.TypeId{types.String, types.Null, types.Undefined})
		}
		g := TypeGuard{Kind: GuardTruthy}
		once := c.NarrowType(base, g, true)
		twice := c.NarrowType(once, g, true)
		if once != twice {
			t.Fatalf("narrowing is not idempotent: once=%v twice=%v", once, twice)
		}
	})
}
