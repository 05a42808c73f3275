package types

// TypeId is a 32-bit handle into the type interner (spec 3.2). The zero
// value, Invalid, is never produced by Intern.
type TypeId uint32

const Invalid TypeId = 0

// Well-known TypeIds. Fixed, pre-allocated values so that external callers
// (the solver's own fast paths, the lowering layer, diagnostics) can compare
// against them without a map lookup. Order here fixes their numeric value;
// do not renumber without updating Interner.bootstrapWellKnown.
const (
	Any TypeId = iota + 1
	Unknown
	Never
	Void
	Null
	Undefined
	String
	Number
	Boolean
	BigInt
	Symbol
	NonPrimitive // the `object` type
	Error
	PromiseBase

	firstUserId // internal marker: first id Intern may hand out
)

// wellKnownTag maps a well-known TypeId to its PrimitiveTag, used by
// bootstrapWellKnown and by intersection canonicalization's disjointness
// check.
var wellKnownTag = map[TypeId]PrimitiveTag{
	Any:         TagAny,
	Unknown:     TagUnknown,
	Never:       TagNever,
	Void:        TagVoid,
	Null:        TagNull,
	Undefined:   TagUndefined,
	String:      TagString,
	Number:      TagNumber,
	Boolean:     TagBoolean,
	BigInt:      TagBigInt,
	Symbol:      TagSymbol,
	NonPrimitive: TagObject,
	Error:       TagError,
	PromiseBase: TagPromiseBase,
}

// disjointPrimitiveTag reports whether id names one of the mutually exclusive
// value-universe primitives (string/number/boolean/bigint/symbol/null/
// undefined/void), and which; Any, Unknown, Never, NonPrimitive, Error, PromiseBase are
// excluded since they are not simple disjoint value universes.
func disjointPrimitiveTag(id TypeId) (PrimitiveTag, bool) {
	tag, ok := wellKnownTag[id]
	if !ok {
		return 0, false
	}
	switch tag {
	case TagString, TagNumber, TagBoolean, TagBigInt, TagSymbol, TagNull, TagUndefined, TagVoid:
		return tag, true
	default:
		return 0, false
	}
}
