// Package lowering implements lower_type (spec 4.6): turning an AST type
// node into a TypeId. The AST/binder surfaces it depends on are the
// external collaborators documented in spec 6.1/6.2/6.3 (out of scope as
// full implementations); this package is parameterized by the small
// resolver interfaces it actually needs so it can be exercised against the
// in-memory astnode/symbols reference implementations in tests, and against
// a real parser/binder later without changing its own code.
package lowering

import (
	"github.com/tsz-lang/tszcore/internal/astnode"
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/types"
)

// TypeResolver resolves a type-reference AST node to the TypeId it names
// (an alias body, an interned primitive, a type parameter already in
// scope) -- spec 4.6's "parameterized by type-resolver".
type TypeResolver interface {
	ResolveTypeReferenceNode(node astnode.NodeIndex) (types.TypeId, bool)
}

// DefResolver resolves a named generic's DefId from its declaration node,
// spec 4.6's "DefId-resolver".
type DefResolver interface {
	DefOfDeclaration(node astnode.NodeIndex) (types.DefId, bool)
}

// ValueResolver resolves a value-position AST node used inside a `typeof x`
// type query to the TypeId of that value, spec 4.6's "value-resolver".
type ValueResolver interface {
	TypeOfValueNode(node astnode.NodeIndex) (types.TypeId, bool)
}

// Bindings is the in-scope type-parameter name -> TypeId map spec 4.6 calls
// "type-parameter bindings"; lowering consults it before falling back to
// TypeResolver for a plain identifier type node.
type Bindings map[atom.Atom]types.TypeId

// Lowerer bundles the interner and the three external resolvers.
type Lowerer struct {
	In     *types.Interner
	Arena  *astnode.Arena
	Types  TypeResolver
	Defs   DefResolver
	Values ValueResolver
}

func New(in *types.Interner, arena *astnode.Arena, t TypeResolver, d DefResolver, v ValueResolver) *Lowerer {
	return &Lowerer{In: in, Arena: arena, Types: t, Defs: d, Values: v}
}

// LowerTypeNode is lower_type(ast_node) -> TypeId (spec 4.6). Only the node
// kinds astnode.Kind actually represents as type-position nodes are
// handled: a plain type reference (resolved via bindings then TypeResolver)
// and a conditional type (whose check/extends/true/false sub-nodes are
// themselves lowered and combined into a Conditional TypeId, left for the
// solver to resolve lazily per spec 3.2's Conditional comment).
func (l *Lowerer) LowerTypeNode(node astnode.NodeIndex, bindings Bindings) types.TypeId {
	n := l.Arena.Get(node)
	switch n.Kind {
	case astnode.KindTypeReference:
		if bound, ok := bindings[n.Name]; ok {
			return bound
		}
		if id, ok := l.Types.ResolveTypeReferenceNode(node); ok {
			return id
		}
		return types.Unknown
	case astnode.KindConditionalType:
		check := l.LowerTypeNode(n.Test, bindings)
		extends := l.LowerTypeNode(n.Consequent, bindings) // reused field: extends-clause
		trueBranch := l.LowerTypeNode(n.Then, bindings)
		falseBranch := l.LowerTypeNode(n.Else, bindings)
		return l.In.ConditionalType(check, extends, trueBranch, falseBranch)
	default:
		return types.Unknown
	}
}

// LowerValueTypeofNode lowers a `typeof x` type query to the TypeId of the
// value node x names, via ValueResolver.
func (l *Lowerer) LowerValueTypeofNode(node astnode.NodeIndex) types.TypeId {
	if id, ok := l.Values.TypeOfValueNode(node); ok {
		return id
	}
	return types.Unknown
}
