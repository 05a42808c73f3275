package solver

import (
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/types"
)

// Checker bundles the interner, atom table and resolver every subtype/
// narrow/instantiate query needs, mirroring the teacher's pattern of a small
// stateless struct holding onto shared read-only infrastructure rather than
// threading every argument through each call.
type Checker struct {
	In     *types.Interner
	Atoms  *atom.Interner
	R      Resolver
}

func New(in *types.Interner, atoms *atom.Interner, r Resolver) *Checker {
	return &Checker{In: in, Atoms: atoms, R: r}
}

// mode picks between the default (contravariant-parameter) subtype relation
// and the bivariant overload-compatibility variant spec 4.2 carves out
// separately.
type mode uint8

const (
	modeDefault mode = iota
	modeBivariantParams
)

// IsSubtypeOf decides whether every value of source is a value of target
// (spec 4.2). It is the entry point client packages call; Bivariant is the
// separately-invocable overload-compatibility variant.
func (c *Checker) IsSubtypeOf(source, target types.TypeId) bool {
	return c.isSubtype(source, target, modeDefault, nil)
}

// Bivariant checks implementation-vs-overload compatibility (spec 4.2): both
// parameter directions are tried, and the return type uses the bidirectional
// "assignable either way, or target is void" rule.
func (c *Checker) Bivariant(source, target types.TypeId) bool {
	return c.isSubtype(source, target, modeBivariantParams, nil)
}

func (c *Checker) isSubtype(source, target types.TypeId, m mode, visited []typePair) bool {
	if source == target {
		return true
	}

	// ANY is bidirectionally assignable; UNKNOWN accepts anything but only
	// assigns to itself or ANY; NEVER assigns to anything.
	if source == types.Any || target == types.Any {
		return true
	}
	if target == types.Unknown {
		return true
	}
	if source == types.Unknown {
		return target == types.Any
	}
	if source == types.Never {
		return true
	}
	if target == types.Never {
		return false
	}

	source = c.resolveNominal(source)
	target = c.resolveNominal(target)
	if source == target {
		return true
	}

	pair := typePair{source, target}
	for _, v := range visited {
		if v == pair {
			return true // co-inductive assumption: cyclic nominal types are equal until proven otherwise
		}
	}
	visited = append(visited, pair)

	sd, sok := c.In.Lookup(source)
	td, tok := c.In.Lookup(target)
	if !sok || !tok {
		return false
	}

	// Source-union distributes: every member must satisfy the target.
	if su, ok := sd.(types.Union); ok {
		for _, mem := range c.In.TypeList(su.Members) {
			if !c.isSubtype(mem, target, m, visited) {
				return false
			}
		}
		return true
	}
	// Target-union disjoins: source must satisfy some member.
	if tu, ok := td.(types.Union); ok {
		for _, mem := range c.In.TypeList(tu.Members) {
			if c.isSubtype(source, mem, m, visited) {
				return true
			}
		}
		return false
	}
	// Source-intersection disjoins: some member satisfying target suffices.
	if si, ok := sd.(types.Intersection); ok {
		for _, mem := range c.In.TypeList(si.Members) {
			if c.isSubtype(mem, target, m, visited) {
				return true
			}
		}
		return false
	}
	// Target-intersection conjoins: every member must be satisfied.
	if ti, ok := td.(types.Intersection); ok {
		for _, mem := range c.In.TypeList(ti.Members) {
			if !c.isSubtype(source, mem, m, visited) {
				return false
			}
		}
		return true
	}

	// Literal-to-primitive: one direction only.
	if slit, ok := sd.(types.Literal); ok {
		if tprim, ok := td.(types.Primitive); ok {
			return primitiveOfLiteral(slit) == tprim.Tag
		}
		if tlit, ok := td.(types.Literal); ok {
			return literalsEqual(slit, tlit)
		}
		return false
	}

	switch sv := sd.(type) {
	case types.Array:
		return c.arraySubtype(sv, target, td, m, visited)
	case types.ReadonlyWrapper:
		inner := sv.Inner
		if _, tIsReadonly := td.(types.ReadonlyWrapper); tIsReadonly {
			trw := td.(types.ReadonlyWrapper)
			return c.isSubtype(inner, trw.Inner, m, visited)
		}
		return c.isSubtype(inner, target, m, visited)
	case types.Tuple:
		tt, ok := td.(types.Tuple)
		if !ok {
			return false
		}
		return c.tupleSubtype(sv, tt, m, visited)
	case types.Object:
		return c.objectSubtype(sv.Shape, false, target, td, m, visited)
	case types.ObjectWithIndex:
		return c.objectSubtype(sv.Shape, true, target, td, m, visited)
	case types.Function:
		tf, ok := td.(types.Function)
		if !ok {
			return false
		}
		return c.functionSubtype(c.In.FunctionShape(sv.Shape), c.In.FunctionShape(tf.Shape), m, visited)
	case types.Callable:
		return c.callableSubtype(sv, target, td, m, visited)
	case types.TemplateLiteral:
		return false // a bare template literal only relates to itself or string, handled by source==target/primitive fallthrough above
	}

	return false
}

// resolveNominal unwraps Reference and Lazy indirection (spec 4.2: "nominal
// handles are resolved through the resolver before structural comparison"),
// bounded so a resolver bug can't spin the checker forever.
func (c *Checker) resolveNominal(id types.TypeId) types.TypeId {
	const maxHops = 64
	for i := 0; i < maxHops; i++ {
		d, ok := c.In.Lookup(id)
		if !ok {
			return id
		}
		switch v := d.(type) {
		case types.Reference:
			next, ok := c.R.ResolveReference(v.Ref)
			if !ok {
				return id
			}
			id = next
		case types.Lazy:
			next, ok := c.R.ResolveLazy(v.Def)
			if !ok {
				return id
			}
			id = next
		case types.Application:
			next := c.tryExpandApplication(v)
			if next == id {
				return id
			}
			id = next
		default:
			return id
		}
	}
	return id
}
