// Package typequery holds read-only classifiers and projections over the
// type graph (spec 4.1's "index-signature projection" and related
// predicates the solver and checker both need but that do not themselves
// decide subtyping).
package typequery

import (
	"math"

	"github.com/tsz-lang/tszcore/internal/types"
)

// Resolver is the minimal read path typequery needs to see through Lazy
// indirection; internal/solver.Resolver satisfies it.
type Resolver interface {
	ResolveLazy(def types.DefId) (types.TypeId, bool)
}

// Unwrap resolves Lazy indirection and strips ReadonlyWrapper down to a
// structural TypeId, following at most a bounded number of hops to stay safe
// against buggy cyclic aliases. An Application is returned unexpanded;
// internal/solver's resolveNominal is the path that also expands generic
// applications. This is the cheap query-only variant used for read-only
// classification.
func Unwrap(in *types.Interner, r Resolver, id types.TypeId) types.TypeId {
	const maxHops = 64
	for i := 0; i < maxHops; i++ {
		d, ok := in.Lookup(id)
		if !ok {
			return id
		}
		switch v := d.(type) {
		case types.Lazy:
			next, ok := r.ResolveLazy(v.Def)
			if !ok {
				return id
			}
			id = next
		case types.ReadonlyWrapper:
			id = v.Inner
		default:
			return id
		}
	}
	return id
}

// IsNullish reports whether id is exactly NULL or UNDEFINED.
func IsNullish(id types.TypeId) bool {
	return id == types.Null || id == types.Undefined
}

// IsPrimitive reports whether id's Data is the Primitive variant.
func IsPrimitive(in *types.Interner, id types.TypeId) bool {
	d, ok := in.Lookup(id)
	if !ok {
		return false
	}
	_, ok = d.(types.Primitive)
	return ok
}

// IsLiteral reports whether id's Data is the Literal variant.
func IsLiteral(in *types.Interner, id types.TypeId) (types.Literal, bool) {
	d, ok := in.Lookup(id)
	if !ok {
		return types.Literal{}, false
	}
	lit, ok := d.(types.Literal)
	return lit, ok
}

// BaseOfLiteral returns the primitive TypeId a literal widens to (spec
// testable property 6: a string literal satisfies is_subtype_of(L, STRING)).
func BaseOfLiteral(lit types.Literal) types.TypeId {
	switch lit.ValueKind {
	case types.LiteralString:
		return types.String
	case types.LiteralNumber:
		return types.Number
	case types.LiteralBigInt:
		return types.BigInt
	case types.LiteralBoolean:
		return types.Boolean
	default:
		return types.Unknown
	}
}

// IsFalsyLiteral reports whether lit is one of the falsy singleton literals
// enumerated by spec 4.3 (Truthy/Falsy narrowing): 0, -0, NaN, 0n, "",
// false. A number literal counts as NaN for any NaN bit pattern.
func IsFalsyLiteral(lit types.Literal) bool {
	switch lit.ValueKind {
	case types.LiteralString:
		return lit.Str == ""
	case types.LiteralNumber:
		return lit.NumBits == 0 || lit.NumBits == negZeroBits || math.IsNaN(math.Float64frombits(lit.NumBits))
	case types.LiteralBigInt:
		return lit.BigInt == "0"
	case types.LiteralBoolean:
		return !lit.Bool
	default:
		return false
	}
}

const negZeroBits = 1 << 63

// ObjectLike reports whether id is Object, ObjectWithIndex, or a Callable
// (callables carry a property list too), returning the shared property
// view the solver needs for member lookups.
func ObjectLike(in *types.Interner, id types.TypeId) (props []types.PropertyInfo, stringIdx, numberIdx *types.IndexSignature, ok bool) {
	d, found := in.Lookup(id)
	if !found {
		return nil, nil, nil, false
	}
	switch v := d.(type) {
	case types.Object:
		s := in.ObjectShape(v.Shape)
		return s.Properties, s.StringIndex, s.NumberIndex, true
	case types.ObjectWithIndex:
		s := in.ObjectShape(v.Shape)
		return s.Properties, s.StringIndex, s.NumberIndex, true
	case types.Callable:
		s := in.CallableShape(v.Shape)
		return s.Properties, nil, nil, true
	default:
		return nil, nil, nil, false
	}
}

// IndexSignatures is spec 4.1's "index-signature projection": it walks
// through unions, intersections and Lazy indirection to find the effective
// string/number index signatures of id, as seen by a member access or an
// index-signature assignability check (spec scenario S6). A generic
// Application is not expanded, so it reports no index signatures.
func IndexSignatures(in *types.Interner, r Resolver, id types.TypeId) (stringIdx, numberIdx *types.IndexSignature) {
	id = Unwrap(in, r, id)
	d, ok := in.Lookup(id)
	if !ok {
		return nil, nil
	}
	switch v := d.(type) {
	case types.Object:
		s := in.ObjectShape(v.Shape)
		return s.StringIndex, s.NumberIndex
	case types.ObjectWithIndex:
		s := in.ObjectShape(v.Shape)
		return s.StringIndex, s.NumberIndex
	case types.Union:
		// A union has an effective index signature only if every member
		// agrees on one; conservatively require exact structural equality.
		members := in.TypeList(v.Members)
		var s, n *types.IndexSignature
		for i, m := range members {
			ms, mn := IndexSignatures(in, r, m)
			if i == 0 {
				s, n = ms, mn
				continue
			}
			if !sameSig(s, ms) {
				s = nil
			}
			if !sameSig(n, mn) {
				n = nil
			}
		}
		return s, n
	case types.Intersection:
		members := in.TypeList(v.Members)
		for _, m := range members {
			ms, mn := IndexSignatures(in, r, m)
			if ms != nil || mn != nil {
				return ms, mn // first member that declares one wins; spec is silent beyond this
			}
		}
		return nil, nil
	default:
		return nil, nil
	}
}

func sameSig(a, b *types.IndexSignature) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IsUnionOrIntersection reports whether id's Data is Union or Intersection,
// the two variants that distribute over member-wise queries.
func IsUnionOrIntersection(in *types.Interner, id types.TypeId) bool {
	d, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch d.(type) {
	case types.Union, types.Intersection:
		return true
	default:
		return false
	}
}

// UnionMembers returns id's member list if id is a Union, else a single-
// element slice containing id itself -- the common "treat a non-union as a
// union of one" shape callers in internal/solver and internal/flow need when
// distributing a check over a possibly-unioned type.
func UnionMembers(in *types.Interner, id types.TypeId) []types.TypeId {
	if d, ok := in.Lookup(id); ok {
		if u, ok := d.(types.Union); ok {
			return in.TypeList(u.Members)
		}
	}
	return []types.TypeId{id}
}
