// Package solver implements the subtype checker, narrowing primitives, and
// generic instantiation/infer machinery described in spec sections 4.2-4.4.
// It never mutates the type graph; every operation either answers a
// question about existing TypeIds or interns new ones through the supplied
// *types.Interner.
package solver

import "github.com/tsz-lang/tszcore/internal/types"

// Resolver is the checker's nominal-resolution surface (spec 3.4, 3.5): it
// lets the solver see through Lazy, Reference and Application indirection
// without owning the binder or the type environment itself.
type Resolver interface {
	// ResolveLazy returns the structural body stored for def, if any.
	ResolveLazy(def types.DefId) (types.TypeId, bool)
	// ResolveReference turns an unresolved nominal Reference into the Lazy
	// (or other) TypeId the binder's SymbolId maps to.
	ResolveReference(ref types.SymbolRef) (types.TypeId, bool)
	// TypeParamsOf returns the declared type parameters (as TypeParam-kind
	// TypeIds, in declaration order) for the generic named by def.
	TypeParamsOf(def types.DefId) []types.TypeId
}

// typePair is a comparison frame for the cycle guard both IsSubtypeOf and
// match_infer_pattern need (spec 4.2: "a pair under active comparison is
// treated as equal").
type typePair struct {
	source, target types.TypeId
}
