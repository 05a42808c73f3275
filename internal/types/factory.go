package types

import (
	"math"

	"github.com/tsz-lang/tszcore/internal/atom"
)

// Intern is the general factory entry point (spec 4.1): it applies
// canonicalization for the variants that need it (Union, Intersection) and
// otherwise hash-conses d as-is, returning the existing TypeId on collision.
func (in *Interner) Intern(d Data) TypeId {
	switch v := d.(type) {
	case Union:
		return in.unionFromMembers(in.TypeList(v.Members))
	case Intersection:
		return in.intersectionFromMembers(in.TypeList(v.Members))
	default:
		return in.internNoCanon(d)
	}
}

// Union builds a canonicalized union from member TypeIds (spec 4.1).
func (in *Interner) Union(members []TypeId) TypeId {
	return in.unionFromMembers(members)
}

func (in *Interner) Union2(a, b TypeId) TypeId {
	return in.unionFromMembers([]TypeId{a, b})
}

func (in *Interner) unionFromMembers(members []TypeId) TypeId {
	flat := in.flattenUnion(members)
	flat = sortAndDedup(flat)

	for _, id := range flat {
		if id == Any {
			return Any
		}
	}
	filtered := flat[:0:0]
	for _, id := range flat {
		if id != Never {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		// Every member was Never: a union of nothing-but-never is never.
		return Never
	}
	filtered = in.collapseBooleanLiterals(filtered)

	if len(filtered) == 1 {
		return filtered[0]
	}
	listId := in.internList(filtered)
	return in.internNoCanon(Union{Members: listId})
}

func (in *Interner) flattenUnion(members []TypeId) []TypeId {
	out := make([]TypeId, 0, len(members))
	for _, id := range members {
		if d, ok := in.Lookup(id); ok {
			if u, ok := d.(Union); ok {
				out = append(out, in.flattenUnion(in.TypeList(u.Members))...)
				continue
			}
		}
		out = append(out, id)
	}
	return out
}

// collapseBooleanLiterals implements spec 4.1: "A union of boolean literal
// true and false returns BOOLEAN." Applied as a post-flatten rewrite so it
// also fires when true/false arrive via a nested union.
func (in *Interner) collapseBooleanLiterals(members []TypeId) []TypeId {
	var hasTrue, hasFalse bool
	trueId := in.LiteralBoolean(true)
	falseId := in.LiteralBoolean(false)
	for _, id := range members {
		if id == trueId {
			hasTrue = true
		}
		if id == falseId {
			hasFalse = true
		}
	}
	if !hasTrue || !hasFalse {
		return members
	}
	out := make([]TypeId, 0, len(members))
	out = append(out, Boolean)
	for _, id := range members {
		if id == trueId || id == falseId {
			continue
		}
		out = append(out, id)
	}
	return sortAndDedup(out)
}

// Intersection builds a canonicalized intersection from member TypeIds
// (spec 4.1).
func (in *Interner) Intersection(members []TypeId) TypeId {
	return in.intersectionFromMembers(members)
}

func (in *Interner) Intersection2(a, b TypeId) TypeId {
	return in.intersectionFromMembers([]TypeId{a, b})
}

func (in *Interner) intersectionFromMembers(members []TypeId) TypeId {
	flat := in.flattenIntersection(members)
	flat = sortAndDedup(flat)

	filtered := flat[:0:0]
	for _, id := range flat {
		if id != Unknown {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return Unknown
	}
	for _, id := range filtered {
		if id == Never {
			return Never
		}
	}
	if in.hasDisjointPrimitives(filtered) {
		return Never
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	listId := in.internList(filtered)
	return in.internNoCanon(Intersection{Members: listId})
}

func (in *Interner) flattenIntersection(members []TypeId) []TypeId {
	out := make([]TypeId, 0, len(members))
	for _, id := range members {
		if d, ok := in.Lookup(id); ok {
			if x, ok := d.(Intersection); ok {
				out = append(out, in.flattenIntersection(in.TypeList(x.Members))...)
				continue
			}
		}
		out = append(out, id)
	}
	return out
}

func (in *Interner) hasDisjointPrimitives(members []TypeId) bool {
	seen := map[PrimitiveTag]bool{}
	for _, id := range members {
		tag, ok := disjointPrimitiveTag(id)
		if !ok {
			continue
		}
		for other := range seen {
			if other != tag {
				return true
			}
		}
		seen[tag] = true
	}
	return false
}

// --- Literal constructors ---

func (in *Interner) LiteralStringType(s string) TypeId {
	return in.internNoCanon(Literal{ValueKind: LiteralString, Str: s})
}

func (in *Interner) LiteralNumberType(v float64) TypeId {
	return in.internNoCanon(Literal{ValueKind: LiteralNumber, NumBits: math.Float64bits(v)})
}

func (in *Interner) LiteralBigIntType(text string) TypeId {
	return in.internNoCanon(Literal{ValueKind: LiteralBigInt, BigInt: NormalizeBigIntText(text)})
}

func (in *Interner) LiteralBoolean(v bool) TypeId {
	return in.internNoCanon(Literal{ValueKind: LiteralBoolean, Bool: v})
}

// --- Structural constructors ---

func (in *Interner) Array(elem TypeId) TypeId {
	return in.internNoCanon(Array{Elem: elem})
}

// Readonly wraps inner (an Array or Tuple TypeId) in a ReadonlyWrapper.
// Wrapping an already-readonly type is idempotent.
func (in *Interner) Readonly(inner TypeId) TypeId {
	if d, ok := in.Lookup(inner); ok {
		if _, already := d.(ReadonlyWrapper); already {
			return inner
		}
	}
	return in.internNoCanon(ReadonlyWrapper{Inner: inner})
}

func (in *Interner) Tuple(elements []TupleElement) TypeId {
	return in.internNoCanon(Tuple{Elements: elements})
}

func (in *Interner) ObjectType(shape ObjectShape) TypeId {
	id := in.addObjectShape(shape, false)
	return in.internNoCanon(Object{Shape: id})
}

func (in *Interner) ObjectWithIndexType(shape ObjectShape) TypeId {
	id := in.addObjectShape(shape, true)
	return in.internNoCanon(ObjectWithIndex{Shape: id})
}

// FunctionShapeHandle interns a signature shape on its own (without wrapping
// it in a Function TypeId), for use as a CallSigs/ConstructSigs entry inside
// an ObjectShape or CallableShape.
func (in *Interner) FunctionShapeHandle(shape FunctionShape) FunctionShapeId {
	return in.addFunctionShape(shape)
}

func (in *Interner) FunctionType(shape FunctionShape) TypeId {
	id := in.addFunctionShape(shape)
	return in.internNoCanon(Function{Shape: id})
}

func (in *Interner) CallableType(shape CallableShape) TypeId {
	id := in.addCallableShape(shape)
	return in.internNoCanon(Callable{Shape: id})
}

func (in *Interner) ReferenceType(ref SymbolRef) TypeId {
	return in.internNoCanon(Reference{Ref: ref})
}

func (in *Interner) LazyType(def DefId) TypeId {
	return in.internNoCanon(Lazy{Def: def})
}

func (in *Interner) ApplicationType(base TypeId, args []TypeId) TypeId {
	listId := in.internList(args)
	return in.internNoCanon(Application{Base: base, Args: listId})
}

func (in *Interner) ConditionalType(check, extends, trueBranch, falseBranch TypeId) TypeId {
	return in.internNoCanon(Conditional{Check: check, Extends: extends, True: trueBranch, False: falseBranch})
}

func (in *Interner) TypeParamType(name atom.Atom, constraint, def TypeId, isConst bool) TypeId {
	return in.internNoCanon(TypeParam{Name: name, Constraint: constraint, Default: def, IsConst: isConst})
}

func (in *Interner) InferType(name atom.Atom, constraint TypeId) TypeId {
	return in.internNoCanon(Infer{Name: name, Constraint: constraint})
}

func (in *Interner) TemplateLiteralType(spans []TemplateSpan) TypeId {
	return in.internNoCanon(TemplateLiteral{Spans: spans})
}
