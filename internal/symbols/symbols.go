// Package symbols is the external binder collaborator spec 6.2 documents:
// it owns SymbolId identity and the TypeEnvironment that Lazy TypeIds
// resolve against. Binding itself (turning AST declarations into symbols)
// is out of scope (spec Non-goals); this package only defines the contract
// the solver and checker are built against, plus an in-memory reference
// implementation good enough to drive the test suite.
package symbols

import (
	"sync"

	"github.com/tsz-lang/tszcore/internal/astnode"
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/types"
)

// SymbolFlags mirrors the small bitset a TypeScript-style binder attaches to
// every declaration it records.
type SymbolFlags uint32

const (
	FlagNone SymbolFlags = 0
	FlagType SymbolFlags = 1 << iota
	FlagValue
	FlagNamespace
	FlagExported
	FlagConst
	FlagEnumMember
)

// Symbol is a binder-owned record (spec 3.4): a name, its declaration
// sites, and the flags distinguishing a type-level symbol from a value-level
// one (they share a SymbolId when a declaration introduces both, e.g. a
// class).
type Symbol struct {
	Name            atom.Atom
	Flags           SymbolFlags
	Declarations    []astnode.NodeIndex
	ValueDeclaration astnode.NodeIndex
	Exports         map[atom.Atom]types.SymbolId
	ImportModule    string // non-empty if this symbol re-exports from another module
}

// Table owns SymbolId allocation and lookup; it is the minimal slice of a
// full binder that the solver needs to resolve a Reference (spec 3.2's
// SymbolRef) to a symbol record.
type Table struct {
	mu      sync.RWMutex
	symbols []Symbol // index 0 unused
}

func NewTable() *Table {
	return &Table{symbols: make([]Symbol, 1)}
}

func (t *Table) Declare(s Symbol) types.SymbolId {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := types.SymbolId(len(t.symbols))
	t.symbols = append(t.symbols, s)
	return id
}

func (t *Table) Get(id types.SymbolId) (Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id == 0 || int(id) >= len(t.symbols) {
		return Symbol{}, false
	}
	return t.symbols[id], true
}

// Environment is the TypeEnvironment (spec 3.5): a DefId-keyed store of a
// named type's structural body plus its declared type parameters, which
// Lazy TypeIds and generic Applications resolve against.
type Environment struct {
	mu     sync.RWMutex
	bodies map[types.DefId]types.TypeId
	params map[types.DefId][]types.TypeId
	nextID types.DefId
}

func NewEnvironment() *Environment {
	return &Environment{
		bodies: make(map[types.DefId]types.TypeId),
		params: make(map[types.DefId][]types.TypeId),
	}
}

// InsertDef reserves a fresh DefId -- callers that need to build a Lazy
// TypeId before its body is fully lowered (recursive type declarations)
// should reserve first, construct LazyType(id), then call SetBody once the
// body has been lowered.
func (e *Environment) InsertDef() types.DefId {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	return e.nextID
}

func (e *Environment) SetBody(def types.DefId, body types.TypeId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bodies[def] = body
}

func (e *Environment) SetParams(def types.DefId, params []types.TypeId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params[def] = params
}

// GetDef returns the body stored for def; ResolveLazy delegates to it.
func (e *Environment) GetDef(def types.DefId) (types.TypeId, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	body, ok := e.bodies[def]
	return body, ok
}

// ResolveLazy satisfies typequery.Resolver. Environment has no
// ResolveReference method; Resolver below is the solver.Resolver
// implementation.
func (e *Environment) ResolveLazy(def types.DefId) (types.TypeId, bool) {
	return e.GetDef(def)
}

// GetDefParams returns the type parameters stored for def; TypeParamsOf
// delegates to it.
func (e *Environment) GetDefParams(def types.DefId) []types.TypeId {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params[def]
}

func (e *Environment) TypeParamsOf(def types.DefId) []types.TypeId {
	return e.GetDefParams(def)
}

// Resolver composes a Table and Environment into the full solver.Resolver
// contract, turning an unresolved Reference into the Lazy body the binder's
// SymbolId ultimately names.
type Resolver struct {
	Symbols *Table
	Env     *Environment
	// SymbolDef maps a type-level SymbolId to the DefId owning its body
	// (spec 3.4's "SymbolId -> DefId mapping"). ResolveReference fails for a
	// SymbolId that has no entry; no package in this tree adds entries.
	SymbolDef map[types.SymbolId]types.DefId
}

func NewResolver(st *Table, env *Environment) *Resolver {
	return &Resolver{Symbols: st, Env: env, SymbolDef: map[types.SymbolId]types.DefId{}}
}

func (r *Resolver) ResolveLazy(def types.DefId) (types.TypeId, bool) {
	return r.Env.GetDef(def)
}

func (r *Resolver) ResolveReference(ref types.SymbolRef) (types.TypeId, bool) {
	def, ok := r.SymbolDef[ref.Symbol]
	if !ok {
		return types.Invalid, false
	}
	return r.Env.GetDef(def)
}

func (r *Resolver) TypeParamsOf(def types.DefId) []types.TypeId {
	return r.Env.GetDefParams(def)
}
