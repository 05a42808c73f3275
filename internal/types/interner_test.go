package types

import (
	"math"
	"testing"
)

func TestInternDeterminism(t *testing.T) {
	in := New()
	a := in.ObjectType(ObjectShape{Properties: []PropertyInfo{{Name: 5, Type: String}}})
	b := in.ObjectType(ObjectShape{Properties: []PropertyInfo{{Name: 5, Type: String}}})
	if a != b {
		t.Fatalf("structurally identical object shapes must hash-cons to one TypeId")
	}

	c := in.ObjectType(ObjectShape{Properties: []PropertyInfo{{Name: 5, Type: Number}}})
	if a == c {
		t.Fatalf("structurally different object shapes must not share a TypeId")
	}

	// Same literal string always hash-conses to one id (no out-of-line shape).
	x := in.LiteralStringType("a")
	y := in.LiteralStringType("a")
	if x != y {
		t.Fatalf("identical literal strings must intern to the same TypeId")
	}
}

func TestUnionCollapsesAny(t *testing.T) {
	in := New()
	u := in.Union([]TypeId{String, Any, Number})
	if u != Any {
		t.Fatalf("union containing ANY must collapse to ANY, got %d", u)
	}
}

func TestUnionDropsNever(t *testing.T) {
	in := New()
	u := in.Union([]TypeId{String, Never})
	if u != String {
		t.Fatalf("union of {string, never} must collapse to string, got %d", u)
	}
}

func TestUnionSingletonCollapses(t *testing.T) {
	in := New()
	u := in.Union([]TypeId{String, String})
	if u != String {
		t.Fatalf("union of a type with itself must collapse to the element")
	}
}

func TestUnionBooleanLiteralsCollapseToBoolean(t *testing.T) {
	in := New()
	u := in.Union([]TypeId{in.LiteralBoolean(true), in.LiteralBoolean(false)})
	if u != Boolean {
		t.Fatalf("union of literal true|false must collapse to BOOLEAN, got %d", u)
	}
}

func TestUnionFlattensNested(t *testing.T) {
	in := New()
	inner := in.Union([]TypeId{String, Number})
	outer := in.Union([]TypeId{inner, Boolean})
	direct := in.Union([]TypeId{String, Number, Boolean})
	if outer != direct {
		t.Fatalf("nested union must flatten to the same id as the direct union")
	}
}

func TestIntersectionDropsUnknown(t *testing.T) {
	in := New()
	x := in.Intersection([]TypeId{String, Unknown})
	if x != String {
		t.Fatalf("intersection of {string, unknown} must collapse to string, got %d", x)
	}
}

func TestIntersectionOfNeverIsNever(t *testing.T) {
	in := New()
	x := in.Intersection([]TypeId{String, Never})
	if x != Never {
		t.Fatalf("intersection containing NEVER must collapse to NEVER, got %d", x)
	}
}

func TestIntersectionOfDisjointPrimitivesIsNever(t *testing.T) {
	in := New()
	x := in.Intersection([]TypeId{String, Number})
	if x != Never {
		t.Fatalf("string & number must be NEVER, got %d", x)
	}
}

func TestNegativeZeroDistinctFromZero(t *testing.T) {
	in := New()
	zero := in.LiteralNumberType(0.0)
	negZero := in.LiteralNumberType(math.Copysign(0, -1))
	if zero == negZero {
		t.Fatalf("-0 and 0 must intern to distinct TypeIds")
	}
}

func TestBigIntNormalization(t *testing.T) {
	in := New()
	a := in.LiteralBigIntType("007n")
	b := in.LiteralBigIntType("7n")
	if a != b {
		t.Fatalf("007n and 7n must normalize to the same literal type")
	}
}

func TestReadonlyIdempotent(t *testing.T) {
	in := New()
	arr := in.Array(String)
	ro1 := in.Readonly(arr)
	ro2 := in.Readonly(ro1)
	if ro1 != ro2 {
		t.Fatalf("wrapping an already-readonly type must be idempotent")
	}
}
