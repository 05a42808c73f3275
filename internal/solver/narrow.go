package solver

import (
	"math"

	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/typequery"
	"github.com/tsz-lang/tszcore/internal/types"
)

// GuardKind tags which TypeGuard variant is populated (spec 4.3's sum type).
type GuardKind uint8

const (
	GuardTruthy GuardKind = iota
	GuardFalsy
	GuardTypeofEquals
	GuardTypeofNotEquals
	GuardInstanceof
	GuardPredicate
	GuardInProperty
	GuardEqualsLiteral
	GuardNotEqualsLiteral
	GuardEqualsNullish
	GuardNotEqualsNullish
	GuardDiscriminant
)

// TypeGuard is the narrowing predicate a branch's guarding expression
// compiles down to (spec 4.3). Only the fields relevant to Kind are set.
type TypeGuard struct {
	Kind GuardKind

	TypeofTag      types.PrimitiveTag // TypeofEquals / TypeofNotEquals
	InstanceType   types.TypeId       // Instanceof
	PredicateType  types.TypeId       // Predicate
	PredicateAsserts bool             // Predicate
	PropertyName   atom.Atom          // InProperty
	LiteralType    types.TypeId       // EqualsLiteral / NotEqualsLiteral
	DiscriminantPath []atom.Atom      // Discriminant
	DiscriminantValue types.TypeId    // Discriminant
}

// NarrowType is narrow_type(source, guard, is_true_branch) (spec 4.3): it
// distributes over unions, mapping each member and dropping any that narrow
// to NEVER, then rebuilds the union from the survivors.
func (c *Checker) NarrowType(source types.TypeId, g TypeGuard, isTrueBranch bool) types.TypeId {
	members := typequery.UnionMembers(c.In, source)
	if len(members) == 1 && members[0] == source {
		if !typequery.IsUnionOrIntersection(c.In, source) {
			return c.narrowMember(source, g, isTrueBranch)
		}
	}
	out := make([]types.TypeId, 0, len(members))
	for _, mem := range members {
		n := c.narrowMember(mem, g, isTrueBranch)
		if n != types.Never {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return types.Never
	}
	return c.In.Union(out)
}

func (c *Checker) narrowMember(id types.TypeId, g TypeGuard, isTrueBranch bool) types.TypeId {
	switch g.Kind {
	case GuardTruthy:
		if isTrueBranch {
			if c.isFalsySingleton(id) {
				return types.Never
			}
			return id
		}
		return c.narrowMember(id, TypeGuard{Kind: GuardFalsy}, true)
	case GuardFalsy:
		if isTrueBranch {
			if c.isKnownTruthy(id) {
				return types.Never
			}
			return id
		}
		return c.narrowMember(id, TypeGuard{Kind: GuardTruthy}, true)
	case GuardTypeofEquals, GuardTypeofNotEquals:
		matches := c.matchesTypeofTag(id, g.TypeofTag)
		want := g.Kind == GuardTypeofEquals
		if isTrueBranch {
			if matches == want {
				return id
			}
			return types.Never
		}
		if matches != want {
			return id
		}
		return types.Never
	case GuardInstanceof:
		if isTrueBranch {
			if c.IsSubtypeOf(id, g.InstanceType) {
				return id
			}
			return types.Never
		}
		return id
	case GuardPredicate:
		if isTrueBranch {
			if c.IsSubtypeOf(id, g.PredicateType) {
				return id
			}
			return types.Never
		}
		if g.PredicateAsserts {
			return id
		}
		if c.IsSubtypeOf(id, g.PredicateType) {
			return types.Never
		}
		return id
	case GuardInProperty:
		props, stringIdx, numberIdx, ok := typequery.ObjectLike(c.In, id)
		if !ok {
			if isTrueBranch {
				return types.Never
			}
			return id
		}
		_, has := propertyByName(props, g.PropertyName)
		has = has || stringIdx != nil || numberIdx != nil
		if isTrueBranch {
			if has {
				return id
			}
			return types.Never
		}
		if !has {
			return id
		}
		return types.Never
	case GuardEqualsLiteral, GuardNotEqualsLiteral:
		equal := c.literalMatches(id, g.LiteralType)
		want := g.Kind == GuardEqualsLiteral
		if isTrueBranch {
			if equal == want {
				return id
			}
			return types.Never
		}
		if equal != want {
			return id
		}
		return types.Never
	case GuardEqualsNullish, GuardNotEqualsNullish:
		nullish := typequery.IsNullish(id)
		want := g.Kind == GuardEqualsNullish
		if isTrueBranch {
			if nullish == want {
				return id
			}
			return types.Never
		}
		if nullish != want {
			return id
		}
		return types.Never
	case GuardDiscriminant:
		val, ok := c.discriminantValue(id, g.DiscriminantPath)
		if !ok {
			if isTrueBranch {
				return types.Never
			}
			return id
		}
		matches := c.IsSubtypeOf(val, g.DiscriminantValue)
		if isTrueBranch {
			if matches {
				return id
			}
			return types.Never
		}
		if !matches {
			return id
		}
		return types.Never
	}
	return id
}

func (c *Checker) isFalsySingleton(id types.TypeId) bool {
	if id == types.Null || id == types.Undefined || id == types.Void {
		return true
	}
	if lit, ok := typequery.IsLiteral(c.In, id); ok {
		return typequery.IsFalsyLiteral(lit)
	}
	return false
}

// isKnownTruthy reports whether every value of id is truthy: a non-nullish
// primitive whose possible literal forms exclude the falsy singletons.
// Conservative by construction -- wide primitives like STRING or NUMBER are
// not "known truthy" since they admit falsy values, matching Falsy(true)'s
// spec requirement to "preserve otherwise".
func (c *Checker) isKnownTruthy(id types.TypeId) bool {
	if lit, ok := typequery.IsLiteral(c.In, id); ok {
		return !typequery.IsFalsyLiteral(lit)
	}
	return false
}

func (c *Checker) matchesTypeofTag(id types.TypeId, tag types.PrimitiveTag) bool {
	if d, ok := c.In.Lookup(id); ok {
		if p, ok := d.(types.Primitive); ok {
			return p.Tag == tag
		}
		if lit, ok := d.(types.Literal); ok {
			return primitiveOfLiteral(lit) == tag
		}
		switch d.(type) {
		case types.Object, types.ObjectWithIndex, types.Array, types.Tuple, types.ReadonlyWrapper:
			return tag == types.TagObject
		case types.Function, types.Callable:
			return tag == types.TagObject // typeof a function is "function" at the surface; treated as object-like for assignability purposes here
		}
	}
	return false
}

func (c *Checker) literalMatches(id, literal types.TypeId) bool {
	lit, ok := typequery.IsLiteral(c.In, literal)
	if !ok {
		return id == literal
	}
	idLit, ok := typequery.IsLiteral(c.In, id)
	if !ok {
		return false
	}
	return literalsEqual(idLit, lit)
}

// discriminantValue walks path through id's object members (spec 4.3:
// "walks object/union members following the property path").
func (c *Checker) discriminantValue(id types.TypeId, path []atom.Atom) (types.TypeId, bool) {
	cur := id
	for _, name := range path {
		props, _, _, ok := typequery.ObjectLike(c.In, cur)
		if !ok {
			return types.Invalid, false
		}
		p, found := propertyByName(props, name)
		if !found {
			return types.Invalid, false
		}
		cur = p.Type
	}
	return cur, true
}

// NaN is represented as a distinct literal-number bit pattern; callers that
// need to special-case it for Truthy/Falsy narrowing (spec 4.3: "and NaN
// where representable") can compare NumBits against this constant directly.
var nanBits = math.Float64bits(math.NaN())
