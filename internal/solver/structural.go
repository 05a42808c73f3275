package solver

import (
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/types"
)

func primitiveOfLiteral(lit types.Literal) types.PrimitiveTag {
	switch lit.ValueKind {
	case types.LiteralString:
		return types.TagString
	case types.LiteralNumber:
		return types.TagNumber
	case types.LiteralBigInt:
		return types.TagBigInt
	case types.LiteralBoolean:
		return types.TagBoolean
	default:
		return types.TagAny
	}
}

func literalsEqual(a, b types.Literal) bool {
	if a.ValueKind != b.ValueKind {
		return false
	}
	switch a.ValueKind {
	case types.LiteralString:
		return a.Str == b.Str
	case types.LiteralNumber:
		return a.NumBits == b.NumBits
	case types.LiteralBigInt:
		return a.BigInt == b.BigInt
	case types.LiteralBoolean:
		return a.Bool == b.Bool
	}
	return false
}

func (c *Checker) arraySubtype(sv types.Array, target types.TypeId, td types.Data, m mode, visited []typePair) bool {
	if tv, ok := td.(types.Array); ok {
		return c.isSubtype(sv.Elem, tv.Elem, m, visited)
	}
	if trw, ok := td.(types.ReadonlyWrapper); ok {
		if tarr, ok := c.In.Lookup(trw.Inner); ok {
			if ta, ok := tarr.(types.Array); ok {
				return c.isSubtype(sv.Elem, ta.Elem, m, visited)
			}
		}
	}
	_ = target
	return false
}

// tupleSubtype relates two tuples element-wise (spec 3.2/4.2 is silent on
// tuple-specific rules beyond "structural"; this follows the object-property
// treatment: required target elements must be satisfied, trailing optional/
// rest target elements may be left unconsumed by a shorter source).
func (c *Checker) tupleSubtype(sv, tv types.Tuple, m mode, visited []typePair) bool {
	si, ti := 0, 0
	for ti < len(tv.Elements) {
		te := tv.Elements[ti]
		if te.Rest {
			// A rest element in target consumes all remaining source
			// elements, each checked against its element type.
			for ; si < len(sv.Elements); si++ {
				if !c.isSubtype(sv.Elements[si].Type, te.Type, m, visited) {
					return false
				}
			}
			ti++
			continue
		}
		if si >= len(sv.Elements) {
			if te.Optional {
				ti++
				continue
			}
			return false
		}
		se := sv.Elements[si]
		if !c.isSubtype(se.Type, te.Type, m, visited) {
			return false
		}
		si++
		ti++
	}
	return si >= len(sv.Elements)
}

// objectSubtype implements spec 4.2's structural object rule: every
// non-optional target property must exist on source (directly or via an
// index signature) with a compatible type (covariant when the target
// property is readonly, invariant otherwise); an ObjectWithIndex target's
// index signatures are supertypes of the corresponding source-keyed members,
// while a plain Object target's index signatures are not checked.
func (c *Checker) objectSubtype(sourceShapeId types.ObjectShapeId, sourceHasIndex bool, target types.TypeId, td types.Data, m mode, visited []typePair) bool {
	ss := c.In.ObjectShape(sourceShapeId)

	var ts *types.ObjectShape
	targetHasIndex := false
	switch tv := td.(type) {
	case types.Object:
		ts = c.In.ObjectShape(tv.Shape)
	case types.ObjectWithIndex:
		ts = c.In.ObjectShape(tv.Shape)
		targetHasIndex = true
	case types.Callable:
		cs := c.In.CallableShape(tv.Shape)
		for _, tp := range cs.Properties {
			if !c.objectHasCompatibleProperty(ss, sourceHasIndex, tp, m, visited) {
				return false
			}
		}
		return true
	default:
		return false
	}

	for _, tp := range ts.Properties {
		if !c.objectHasCompatibleProperty(ss, sourceHasIndex, tp, m, visited) {
			return false
		}
	}
	if targetHasIndex && ts.StringIndex != nil {
		if !c.sourceSatisfiesIndex(ss, ts.StringIndex, m, visited) {
			return false
		}
	}
	if targetHasIndex && ts.NumberIndex != nil {
		if !c.sourceSatisfiesIndex(ss, ts.NumberIndex, m, visited) {
			return false
		}
	}
	return true
}

func (c *Checker) objectHasCompatibleProperty(ss *types.ObjectShape, sourceHasIndex bool, tp types.PropertyInfo, m mode, visited []typePair) bool {
	if sp, ok := ss.PropertyByName(tp.Name); ok {
		if tp.Readonly {
			return c.isSubtype(sp.Type, tp.Type, m, visited) // covariant
		}
		// Invariant for a mutable target property: both directions must hold.
		return c.isSubtype(sp.Type, tp.Type, m, visited) && c.isSubtype(tp.Type, sp.Type, m, visited)
	}
	if tp.Optional {
		return true
	}
	if sourceHasIndex {
		if ss.StringIndex != nil && c.isSubtype(ss.StringIndex.ValueType, tp.Type, m, visited) {
			return true
		}
		if ss.NumberIndex != nil && c.isSubtype(ss.NumberIndex.ValueType, tp.Type, m, visited) {
			return true
		}
	}
	return false
}

func (c *Checker) sourceSatisfiesIndex(ss *types.ObjectShape, sig *types.IndexSignature, m mode, visited []typePair) bool {
	ok := true
	for _, p := range ss.Properties {
		if p.Optional {
			continue
		}
		if !c.isSubtype(p.Type, sig.ValueType, m, visited) {
			ok = false
			break
		}
	}
	if !ok {
		return false
	}
	if sig.KeyType == types.String && ss.StringIndex != nil {
		return c.isSubtype(ss.StringIndex.ValueType, sig.ValueType, m, visited)
	}
	if sig.KeyType == types.Number && ss.NumberIndex != nil {
		return c.isSubtype(ss.NumberIndex.ValueType, sig.ValueType, m, visited)
	}
	return true
}

func (c *Checker) callableSubtype(sv types.Callable, target types.TypeId, td types.Data, m mode, visited []typePair) bool {
	cs := c.In.CallableShape(sv.Shape)
	switch tv := td.(type) {
	case types.Function:
		tf := c.In.FunctionShape(tv.Shape)
		for _, sigId := range cs.CallSigs {
			if c.functionSubtype(c.In.FunctionShape(sigId), tf, m, visited) {
				return true
			}
		}
		return false
	case types.Callable:
		tcs := c.In.CallableShape(tv.Shape)
		for _, tsigId := range tcs.CallSigs {
			tsig := c.In.FunctionShape(tsigId)
			matched := false
			for _, ssigId := range cs.CallSigs {
				if c.functionSubtype(c.In.FunctionShape(ssigId), tsig, m, visited) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		for _, tp := range tcs.Properties {
			if sp, ok := propertyByName(cs.Properties, tp.Name); ok {
				if !c.isSubtype(sp.Type, tp.Type, m, visited) {
					return false
				}
			} else if !tp.Optional {
				return false
			}
		}
		return true
	default:
		_ = target
		return false
	}
}

func propertyByName(props []types.PropertyInfo, name atom.Atom) (types.PropertyInfo, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}
	return types.PropertyInfo{}, false
}

// functionSubtype implements spec 4.2's function rule: contravariant
// parameters, covariant return, optional/rest-aware arity, and
// mode.bivariantParams's "try both directions" escape hatch for overload
// compatibility checks.
func (c *Checker) functionSubtype(sf, tf *types.FunctionShape, m mode, visited []typePair) bool {
	if !c.paramsCompatible(sf, tf, m, visited) {
		return false
	}
	if sf.This != types.Invalid && tf.This != types.Invalid {
		if !c.isSubtype(tf.This, sf.This, m, visited) {
			return false
		}
	}
	if m == modeBivariantParams {
		return c.isSubtype(sf.Return, tf.Return, m, visited) ||
			c.isSubtype(tf.Return, sf.Return, m, visited) ||
			tf.Return == types.Void
	}
	return c.isSubtype(sf.Return, tf.Return, m, visited)
}

func (c *Checker) paramsCompatible(sf, tf *types.FunctionShape, m mode, visited []typePair) bool {
	for i, tp := range tf.Params {
		var sp *types.ParamInfo
		if i < len(sf.Params) {
			sp = &sf.Params[i]
		}
		if sp == nil {
			if tp.Optional || tp.Rest {
				continue
			}
			return false
		}
		ok := c.isSubtype(tp.Type, sp.Type, m, visited)
		if m == modeBivariantParams && !ok {
			ok = c.isSubtype(sp.Type, tp.Type, m, visited)
		}
		if !ok {
			return false
		}
	}
	// Source may accept more required parameters than target supplies only
	// if those extra source parameters are themselves optional/rest (target
	// is allowed to call with fewer arguments than source declares).
	for i := len(tf.Params); i < len(sf.Params); i++ {
		if !sf.Params[i].Optional && !sf.Params[i].Rest {
			return false
		}
	}
	return true
}
