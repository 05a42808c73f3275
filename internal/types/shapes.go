package types

import "github.com/tsz-lang/tszcore/internal/atom"

// Shapes are not types (spec 3.2): ObjectShapeId, FunctionShapeId and
// CallableShapeId index separate out-of-line tables so that two distinct
// TypeIds (e.g. a Reference and its expanded Object) can share one shape
// without the interner needing to know about that sharing.
type ObjectShapeId uint32
type FunctionShapeId uint32
type CallableShapeId uint32

// PropertyInfo is one member of an ObjectShape's property bag.
type PropertyInfo struct {
	Name     atom.Atom
	Type     TypeId
	Optional bool
	Readonly bool
}

// IndexSignature is a string- or number-keyed index signature.
type IndexSignature struct {
	KeyType   TypeId
	ValueType TypeId
	Readonly  bool
}

// ObjectShape is an ordered (by insertion) property list plus optional
// index signatures and call/construct signatures (spec 3.3).
type ObjectShape struct {
	Properties    []PropertyInfo
	StringIndex   *IndexSignature
	NumberIndex   *IndexSignature
	CallSigs      []FunctionShapeId
	ConstructSigs []FunctionShapeId
}

// PropertyByName does a linear scan (property counts are small; this
// mirrors the teacher's atom-equality lookups rather than building a side
// map per shape).
func (s *ObjectShape) PropertyByName(name atom.Atom) (PropertyInfo, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyInfo{}, false
}

// ParamInfo is one parameter of a FunctionShape.
type ParamInfo struct {
	Name     atom.Atom // Invalid if unnamed
	Type     TypeId
	Optional bool
	Rest     bool
}

// TypePredicateTarget distinguishes `x is T` from `this is T`.
type TypePredicateTarget uint8

const (
	PredicateTargetIdentifier TypePredicateTarget = iota
	PredicateTargetThis
)

// TypePredicate is `{ target, type_id, asserts }` from spec 3.3.
type TypePredicate struct {
	Target     TypePredicateTarget
	TargetName atom.Atom // valid when Target == PredicateTargetIdentifier
	Type       TypeId    // Invalid if this predicate only asserts truthiness
	Asserts    bool
}

// FunctionShape is a single call signature (spec 3.3).
type FunctionShape struct {
	TypeParams    []TypeId // each Invalid-free TypeId refers to a TypeParam-kind TypeId
	Params        []ParamInfo
	This          TypeId // Invalid if absent
	Return        TypeId
	Predicate     *TypePredicate
	IsConstructor bool
	IsMethod      bool
}

// CallableShape backs overloaded callables: multiple call/construct
// signatures plus properties (spec 3.3), e.g. a class constructor or an
// interface with more than one call signature.
type CallableShape struct {
	CallSigs      []FunctionShapeId
	ConstructSigs []FunctionShapeId
	Properties    []PropertyInfo
}

// TupleElement is one element of a Tuple TypeData (spec 3.2): ordered,
// optionally named, optionally optional, optionally a variadic rest slot.
type TupleElement struct {
	Type     TypeId
	Name     atom.Atom // Invalid if unnamed
	Optional bool
	Rest     bool
}

// TemplateSpan is either a literal text atom or an interpolated TypeId,
// in source order, making up a TemplateLiteral TypeData (spec 3.2).
type TemplateSpan struct {
	IsType bool
	Text   atom.Atom // valid when !IsType
	Type   TypeId    // valid when IsType
}

// SymbolRef identifies an unresolved nominal reference (spec 3.2, Reference
// variant) before the solver has resolved it to a Lazy DefId. SymbolId is
// owned by the binder (spec 3.4) and is opaque to the type graph.
type SymbolRef struct {
	Symbol SymbolId
	Args   []TypeId // explicit type arguments written at the reference site, if any
}

// SymbolId is the binder's opaque handle for a resolved identifier (spec
// 3.4). The type graph never interprets it; only the checker, via the
// SymbolId -> DefId mapping it maintains, does.
type SymbolId uint32

// DefId is a stable handle keying a named type's body in the environment
// (spec 3.4, 3.5). Unlike SymbolId it is owned by the solver's side of the
// world: TypeEnvironment and Lazy both key off it.
type DefId uint32
