package flow

import (
	"testing"

	"github.com/tsz-lang/tszcore/internal/astnode"
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/solver"
	"github.com/tsz-lang/tszcore/internal/types"
)

type stubResolver struct{}

func (stubResolver) ResolveLazy(types.DefId) (types.TypeId, bool)         { return types.Invalid, false }
func (stubResolver) ResolveReference(types.SymbolRef) (types.TypeId, bool) { return types.Invalid, false }
func (stubResolver) TypeParamsOf(types.DefId) []types.TypeId               { return nil }

type stubValues struct {
	instanceType types.TypeId
	hasInstance  bool

	predParamIdx int
	predType     types.TypeId
	predAsserts  bool
	hasPredicate bool

	aliasBase astnode.NodeIndex
	aliasPath []atom.Atom
	hasAlias  bool
}

func (s stubValues) InstanceTypeOfConstructor(astnode.NodeIndex) (types.TypeId, bool) {
	return s.instanceType, s.hasInstance
}

func (s stubValues) PredicateOfCall(astnode.NodeIndex) (int, types.TypeId, bool, bool) {
	return s.predParamIdx, s.predType, s.predAsserts, s.hasPredicate
}

func (s stubValues) AliasOf(astnode.NodeIndex) (astnode.NodeIndex, []atom.Atom, bool) {
	return s.aliasBase, s.aliasPath, s.hasAlias
}

func newTestAnalyzer(values ValueResolver) (*Analyzer, *astnode.Arena, *types.Interner, *atom.Interner) {
	arena := astnode.NewArena()
	in := types.New()
	at := atom.New()
	checker := solver.New(in, at, stubResolver{})
	return NewAnalyzer(arena, checker, values), arena, in, at
}

func sameSymbolByName(arena *astnode.Arena) func(a, b astnode.NodeIndex) bool {
	return func(a, b astnode.NodeIndex) bool {
		return arena.Get(a).Name == arena.Get(b).Name
	}
}

func TestReferencesMatchIdentifiers(t *testing.T) {
	an, arena, _, at := newTestAnalyzer(stubValues{})
	x1 := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	x2 := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	y := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("y")})

	same := sameSymbolByName(arena)
	if !an.ReferencesMatch(x1, x2, same) {
		t.Fatal("expected x1, x2 to match")
	}
	if an.ReferencesMatch(x1, y, same) {
		t.Fatal("expected x1, y to not match")
	}
}

func TestReferencesMatchPropertyChain(t *testing.T) {
	an, arena, _, at := newTestAnalyzer(stubValues{})
	same := sameSymbolByName(arena)

	x1 := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("obj")})
	x2 := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("obj")})
	aName := at.Intern("a")
	p1 := arena.Add(astnode.Node{Kind: astnode.KindPropertyAccess, Base: x1, Name: aName})
	p2 := arena.Add(astnode.Node{Kind: astnode.KindPropertyAccess, Base: x2, Name: aName})

	if !an.ReferencesMatch(p1, p2, same) {
		t.Fatal("expected obj.a to match obj.a")
	}

	bName := at.Intern("b")
	p3 := arena.Add(astnode.Node{Kind: astnode.KindPropertyAccess, Base: x2, Name: bName})
	if an.ReferencesMatch(p1, p3, same) {
		t.Fatal("expected obj.a to not match obj.b")
	}
}

func TestReferencesMatchIsMemoized(t *testing.T) {
	an, arena, _, at := newTestAnalyzer(stubValues{})
	same := sameSymbolByName(arena)
	x1 := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	x2 := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})

	if !an.ReferencesMatch(x1, x2, same) {
		t.Fatal("expected match")
	}
	// second call (and the reverse order) should hit the memo cache, not
	// re-invoke sameSymbol against a possibly-stale closure.
	if !an.ReferencesMatch(x2, x1, func(a, b astnode.NodeIndex) bool {
		t.Fatal("sameSymbol should not be called on a cached pair")
		return false
	}) {
		t.Fatal("expected cached match")
	}
}

func TestEnvJoinUnionsNarrowedTypes(t *testing.T) {
	_, _, in, _ := newTestAnalyzer(stubValues{})
	checker := solver.New(in, atom.New(), stubResolver{})
	ref := astnode.NodeIndex(1)

	a := NewEnv()
	a.Declare(ref, in.Union2(types.String, types.Number))
	a.Set(ref, types.String)

	b := a.Clone()
	b.Set(ref, types.Number)

	joined := Join(checker, a, b)
	got, ok := joined.TypeOf(ref)
	if !ok {
		t.Fatal("expected joined type")
	}
	want := in.Union2(types.String, types.Number)
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWidenAfterMaxSteps(t *testing.T) {
	_, _, in, _ := newTestAnalyzer(stubValues{})
	env := NewEnv()
	ref := astnode.NodeIndex(1)
	literal := in.LiteralStringType("abc")
	env.Declare(ref, types.String)
	env.Set(ref, literal)

	Widen(env, maxWidenSteps-1)
	if got, _ := env.TypeOf(ref); got != literal {
		t.Fatal("should not widen before maxWidenSteps")
	}

	Widen(env, maxWidenSteps)
	if got, _ := env.TypeOf(ref); got != types.String {
		t.Fatal("should widen back to declared type at maxWidenSteps")
	}
}

func TestParseNumericAtom(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"42", "42", true},
		{"0x2A", "42", true},
		{"0b101010", "42", true},
		{"0o52", "42", true},
		{"1_000", "1000", true},
		{"not-a-number", "", false},
	}
	for _, c := range cases {
		got, ok := ParseNumericAtom(c.in)
		if ok != c.ok {
			t.Errorf("ParseNumericAtom(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseNumericAtom(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNarrowByExprTypeofString(t *testing.T) {
	an, arena, in, at := newTestAnalyzer(stubValues{})
	xName := at.Intern("x")
	x := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: xName})
	typeofX := arena.Add(astnode.Node{Kind: astnode.KindUnaryExpr, UnOp: astnode.OpTypeof, Operand: x})
	strLit := arena.Add(astnode.Node{Kind: astnode.KindStringLiteral, StrValue: "string"})
	guard := arena.Add(astnode.Node{Kind: astnode.KindBinaryExpr, BinOp: astnode.OpStrictEq, Left: typeofX, Right: strLit})

	env := NewEnv()
	union := in.Union2(types.String, types.Number)
	env.Declare(x, union)

	same := sameSymbolByName(arena)
	narrowed := an.NarrowByExpr(env, guard, x, true, same)
	if narrowed != types.String {
		t.Fatalf("true branch: got %v, want String", narrowed)
	}
	falseNarrowed := an.NarrowByExpr(env, guard, x, false, same)
	if falseNarrowed != types.Number {
		t.Fatalf("false branch: got %v, want Number", falseNarrowed)
	}
}

func TestNarrowByExprInstanceof(t *testing.T) {
	an, arena, in, at := newTestAnalyzer(stubValues{})
	instTy := in.ObjectType(types.ObjectShape{})

	an.Values = stubValues{instanceType: instTy, hasInstance: true}

	x := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	ctor := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("Foo")})
	guard := arena.Add(astnode.Node{Kind: astnode.KindBinaryExpr, BinOp: astnode.OpInstanceof, Left: x, Right: ctor})

	env := NewEnv()
	env.Declare(x, in.Union([]types.TypeId{instTy, types.String}))

	same := sameSymbolByName(arena)
	narrowed := an.NarrowByExpr(env, guard, x, true, same)
	if narrowed != instTy {
		t.Fatalf("got %v, want %v", narrowed, instTy)
	}
}

func TestNarrowByExprLogicalAnd(t *testing.T) {
	an, arena, in, at := newTestAnalyzer(stubValues{})
	x := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	typeofX := arena.Add(astnode.Node{Kind: astnode.KindUnaryExpr, UnOp: astnode.OpTypeof, Operand: x})
	strLit := arena.Add(astnode.Node{Kind: astnode.KindStringLiteral, StrValue: "string"})
	left := arena.Add(astnode.Node{Kind: astnode.KindBinaryExpr, BinOp: astnode.OpStrictEq, Left: typeofX, Right: strLit})

	truthy := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	and := arena.Add(astnode.Node{Kind: astnode.KindLogicalExpr, LogOp: astnode.OpAnd, Left: left, Right: truthy})

	env := NewEnv()
	env.Declare(x, in.Union2(types.String, types.Null))

	same := sameSymbolByName(arena)
	narrowed := an.NarrowByExpr(env, and, x, true, same)
	if narrowed != types.String {
		t.Fatalf("got %v, want String", narrowed)
	}
}

// TestNarrowByExprAliasedDiscriminant covers spec 4.5's "Aliased
// discriminants": `const k = x.kind; if (k === "a") { /* x is narrowed */ }`
// narrows x even though the comparison's operand is the alias k, not
// x.kind itself.
func TestNarrowByExprAliasedDiscriminant(t *testing.T) {
	an, arena, in, at := newTestAnalyzer(stubValues{})
	kindName := at.Intern("kind")

	x := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	k := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("k")})
	strLit := arena.Add(astnode.Node{Kind: astnode.KindStringLiteral, StrValue: "a"})
	guard := arena.Add(astnode.Node{Kind: astnode.KindBinaryExpr, BinOp: astnode.OpStrictEq, Left: k, Right: strLit})

	an.Values = stubValues{aliasBase: x, aliasPath: []atom.Atom{kindName}, hasAlias: true}

	memberA := in.ObjectType(types.ObjectShape{Properties: []types.PropertyInfo{{Name: kindName, Type: in.LiteralStringType("a")}}})
	memberB := in.ObjectType(types.ObjectShape{Properties: []types.PropertyInfo{{Name: kindName, Type: in.LiteralStringType("b")}}})
	union := in.Union([]types.TypeId{memberA, memberB})

	env := NewEnv()
	env.Declare(x, union)

	same := sameSymbolByName(arena)
	narrowed := an.NarrowByExpr(env, guard, x, true, same)
	if narrowed != memberA {
		t.Fatalf("true branch: got %v, want %v (only the %q member)", narrowed, memberA, "a")
	}
}

func TestAffectsReferenceThroughAssertions(t *testing.T) {
	an, arena, _, at := newTestAnalyzer(stubValues{})
	same := sameSymbolByName(arena)

	x1 := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	x2 := arena.Add(astnode.Node{Kind: astnode.KindIdentifier, Name: at.Intern("x")})
	asserted := arena.Add(astnode.Node{Kind: astnode.KindNonNullExpr, Inner: x2})

	if !an.AffectsReference(asserted, x1, same) {
		t.Fatal("expected assignment through x! to affect x")
	}
}
