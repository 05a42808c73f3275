package types

import "github.com/tsz-lang/tszcore/internal/atom"

// Data is the payload stored for a TypeId (spec 3.2's TypeData). It is a
// closed set of variants; every consumer dispatches on Kind() with an
// exhaustive type switch rather than adding virtual methods per concern.
type Data interface {
	Kind() Kind
}

// Primitive is the payload for the fourteen well-known TypeIds.
type Primitive struct {
	Tag PrimitiveTag
}

func (Primitive) Kind() Kind { return KindPrimitive }

// LiteralValueKind distinguishes which field of Literal is populated.
type LiteralValueKind uint8

const (
	LiteralString LiteralValueKind = iota
	LiteralNumber
	LiteralBigInt
	LiteralBoolean
)

// Literal is a singleton value type: a specific string, number, bigint or
// boolean (spec 3.2). Numbers are keyed by IEEE-754 bit pattern so that -0
// and 0 remain distinct types, matching spec 3.2's invariant.
type Literal struct {
	ValueKind LiteralValueKind
	Str       string // LiteralString
	NumBits   uint64 // LiteralNumber: math.Float64bits(value)
	BigInt    string // LiteralBigInt: normalized decimal text, see NormalizeBigIntText
	Bool      bool   // LiteralBoolean
}

func (Literal) Kind() Kind { return KindLiteral }

// Union is a normalized (sorted, dedup'd, flattened) set of member TypeIds.
// Never empty; a singleton union is collapsed by the interner before this
// variant is ever stored (spec 3.2, 4.1).
type Union struct {
	Members TypeListId
}

func (Union) Kind() Kind { return KindUnion }

// Intersection mirrors Union with intersection's canonicalization rules.
type Intersection struct {
	Members TypeListId
}

func (Intersection) Kind() Kind { return KindIntersection }

// Tuple is an ordered vector of elements, each of which may be named,
// optional, or a variadic rest slot (spec 3.2).
type Tuple struct {
	Elements []TupleElement
}

func (Tuple) Kind() Kind { return KindTuple }

// Array is a homogeneous element type; the readonly flag is carried by a
// wrapper (spec 3.2: "Readonly flag stored separately via wrapper") rather
// than living on Array itself, so `T[]` and `readonly T[]` hash-cons to
// distinct but related TypeIds without duplicating the element-type field.
type Array struct {
	Elem TypeId
}

func (Array) Kind() Kind { return KindArray }

// ReadonlyWrapper marks an inner TypeId (an Array or Tuple) as readonly.
type ReadonlyWrapper struct {
	Inner TypeId
}

func (ReadonlyWrapper) Kind() Kind { return KindReadonly }

// Object is a property-bag-and-index type whose index signatures do not
// participate in subtyping directly (they're a convenience projection via
// typequery.IndexSignatures). ObjectWithIndex is the variant whose index
// signatures DO participate (spec 3.2).
type Object struct {
	Shape ObjectShapeId
}

func (Object) Kind() Kind { return KindObject }

type ObjectWithIndex struct {
	Shape ObjectShapeId
}

func (ObjectWithIndex) Kind() Kind { return KindObjectWithIndex }

// Function is a single call signature (spec 3.2).
type Function struct {
	Shape FunctionShapeId
}

func (Function) Kind() Kind { return KindFunction }

// Callable backs overloaded call/construct signature sets (spec 3.2).
type Callable struct {
	Shape CallableShapeId
}

func (Callable) Kind() Kind { return KindCallable }

// Reference is an unresolved nominal reference; the solver resolves it to
// Lazy on demand via the binder's SymbolId -> DefId mapping (spec 3.2, 3.4).
type Reference struct {
	Ref SymbolRef
}

func (Reference) Kind() Kind { return KindReference }

// Lazy is a named nominal type whose structural body is fetched from the
// TypeEnvironment on demand (spec 3.2, 3.5).
type Lazy struct {
	Def DefId
}

func (Lazy) Kind() Kind { return KindLazy }

// Application is a generic base type instantiated with argument TypeIds;
// expansion happens on demand via TryExpandApplication (spec 3.2, 4.4).
type Application struct {
	Base TypeId
	Args TypeListId
}

func (Application) Kind() Kind { return KindApplication }

// TypeParam is a bound type parameter: a name, optional constraint and
// default, and whether it was declared `const` (spec 3.2).
type TypeParam struct {
	Name       atom.Atom
	Constraint TypeId // Invalid if unconstrained
	Default    TypeId // Invalid if no default
	IsConst    bool
}

func (TypeParam) Kind() Kind { return KindTypeParam }

// Infer is a capture placeholder that only appears inside a Conditional's
// extends-clause pattern (spec 3.2, 4.4).
type Infer struct {
	Name       atom.Atom
	Constraint TypeId // Invalid if unconstrained
}

func (Infer) Kind() Kind { return KindInfer }

// TemplateLiteral is an ordered sequence of literal-text and interpolated-
// type spans (spec 3.2).
type TemplateLiteral struct {
	Spans []TemplateSpan
}

func (TemplateLiteral) Kind() Kind { return KindTemplateLiteral }

// Enum and EnumMember preserve nominal identity for enum declarations and
// their individual members (spec 3.2).
type Enum struct {
	Def     DefId
	Members []DefId
}

func (Enum) Kind() Kind { return KindEnum }

type EnumMember struct {
	Def       DefId
	Parent    DefId
	ValueKind LiteralValueKind
	Str       string
	NumBits   uint64
}

func (EnumMember) Kind() Kind { return KindEnumMember }

// Conditional is `check extends extends_ ? true_ : false_` (spec 3.2, 4.4).
// It is lazy: ResolveConditional performs distribution over naked unions
// and infer-pattern matching only when queried, never eagerly at Intern
// time, since the check type may itself still contain unresolved Lazy/
// Application indirection.
type Conditional struct {
	Check   TypeId
	Extends TypeId
	True    TypeId
	False   TypeId
}

func (Conditional) Kind() Kind { return KindConditional }
