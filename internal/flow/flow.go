// Package flow is the control-flow narrowing engine (spec 4.5): it narrows
// the type of a target reference at a point in the program using the
// guarding expression of the enclosing branch.
package flow

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/tsz-lang/tszcore/internal/astnode"
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/solver"
	"github.com/tsz-lang/tszcore/internal/types"
)

// ValueResolver lets the flow analyzer ask the checker's value-symbol side
// for the instance type a constructor expression names (spec 4.5:
// "resolving identifiers to class/interface+constructor-value symbols"),
// for whether a call expression's callee carries a type predicate, and for
// the const-binding alias a plain identifier stands for (spec 4.5 "Aliased
// discriminants").
type ValueResolver interface {
	InstanceTypeOfConstructor(node astnode.NodeIndex) (types.TypeId, bool)
	PredicateOfCall(callee astnode.NodeIndex) (targetParamIndex int, predicateType types.TypeId, asserts bool, ok bool)

	// AliasOf reports, for a const-bound identifier ref, the base expression
	// and property path of its initializer: `const k = x.kind` reports
	// (x, ["kind"], true), and `const { kind: k } = x` reports the same
	// shape for its destructured binding. The binder owns scope/binding
	// tracking; flow only needs the resolved (base, path) pair to lift a
	// comparison on k into a discriminant guard on x.
	AliasOf(ref astnode.NodeIndex) (base astnode.NodeIndex, path []atom.Atom, ok bool)
}

// Analyzer holds the shared infrastructure a single file's flow analysis
// needs: the AST arena it reads from, the subtype checker it narrows
// through, and the reference-match memoization cache (spec 4.5: "memoized
// per flow analyzer, cache keyed by the min/max of the two node ids").
type Analyzer struct {
	Arena   *astnode.Arena
	Checker *solver.Checker
	Values  ValueResolver

	matchCache map[matchKey]bool
}

func NewAnalyzer(arena *astnode.Arena, checker *solver.Checker, values ValueResolver) *Analyzer {
	return &Analyzer{Arena: arena, Checker: checker, Values: values, matchCache: map[matchKey]bool{}}
}

type matchKey struct{ lo, hi astnode.NodeIndex }

// ReferencesMatch reports whether a and b are the same reference (spec 4.5):
// both resolve to the same symbol (callers supply that check via sameSymbol
// when a and b are plain identifiers, recorded out of band since this
// package has no binder access of its own), both this/super, or both
// property references with equal names and recursively matching bases.
func (an *Analyzer) ReferencesMatch(a, b astnode.NodeIndex, sameSymbol func(a, b astnode.NodeIndex) bool) bool {
	if a == b {
		return true
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	key := matchKey{lo, hi}
	if v, ok := an.matchCache[key]; ok {
		return v
	}
	result := an.referencesMatch(a, b, sameSymbol)
	an.matchCache[key] = result
	return result
}

func (an *Analyzer) referencesMatch(a, b astnode.NodeIndex, sameSymbol func(a, b astnode.NodeIndex) bool) bool {
	na, nb := an.Arena.Get(a), an.Arena.Get(b)
	if na.Kind != nb.Kind {
		return false
	}
	switch na.Kind {
	case astnode.KindIdentifier:
		return sameSymbol(a, b)
	case astnode.KindThisExpr, astnode.KindSuperExpr:
		return true
	case astnode.KindPropertyAccess:
		return na.Name == nb.Name && an.ReferencesMatch(na.Base, nb.Base, sameSymbol)
	case astnode.KindElementAccess:
		// Only literal-atom keys count as references (spec 4.5); compare
		// the literal index expressions structurally.
		ia, ib := an.Arena.Get(na.Index), an.Arena.Get(nb.Index)
		if ia.Kind != astnode.KindStringLiteral && ia.Kind != astnode.KindNumberLiteral {
			return false
		}
		if ia.Kind != ib.Kind || ia.StrValue != ib.StrValue || ia.NumValue != ib.NumValue {
			return false
		}
		return an.ReferencesMatch(na.Base, nb.Base, sameSymbol)
	default:
		return false
	}
}

// Env is the narrowed-type mapping at a point in the program: a
// reference (identified by the canonical NodeIndex of its innermost atomic
// form) to its narrowed TypeId, relative to the declared type (spec 4.5).
type Env struct {
	narrowed map[astnode.NodeIndex]types.TypeId
	declared map[astnode.NodeIndex]types.TypeId
}

func NewEnv() *Env {
	return &Env{narrowed: map[astnode.NodeIndex]types.TypeId{}, declared: map[astnode.NodeIndex]types.TypeId{}}
}

func (e *Env) Clone() *Env {
	out := NewEnv()
	for k, v := range e.narrowed {
		out.narrowed[k] = v
	}
	for k, v := range e.declared {
		out.declared[k] = v
	}
	return out
}

func (e *Env) Declare(ref astnode.NodeIndex, declared types.TypeId) {
	e.declared[ref] = declared
	e.narrowed[ref] = declared
}

func (e *Env) TypeOf(ref astnode.NodeIndex) (types.TypeId, bool) {
	t, ok := e.narrowed[ref]
	return t, ok
}

func (e *Env) Set(ref astnode.NodeIndex, t types.TypeId) {
	e.narrowed[ref] = t
}

// Join merges two environments at a control-flow merge point (spec 4.5:
// "joins at merge points use union").
func Join(c *solver.Checker, a, b *Env) *Env {
	out := NewEnv()
	for k, v := range a.declared {
		out.declared[k] = v
	}
	for k, v := range b.declared {
		out.declared[k] = v
	}
	for k, av := range a.narrowed {
		if bv, ok := b.narrowed[k]; ok {
			out.narrowed[k] = c.In.Union2(av, bv)
		} else {
			out.narrowed[k] = av
		}
	}
	for k, bv := range b.narrowed {
		if _, already := out.narrowed[k]; !already {
			out.narrowed[k] = bv
		}
	}
	return out
}

// maxWidenSteps bounds how many times a loop body may re-narrow a reference
// before flow analysis gives up and widens back to the declared type (spec
// 4.5: "loops reach fixpoint by widening after a bounded iteration count").
const maxWidenSteps = 3

// Widen replaces any reference whose narrowed type still differs from its
// declared type after maxWidenSteps loop iterations with the declared type.
func Widen(env *Env, steps int) {
	if steps < maxWidenSteps {
		return
	}
	for ref, declared := range env.declared {
		if env.narrowed[ref] != declared {
			env.narrowed[ref] = declared
		}
	}
}

// AffectsReference implements spec 4.5's assignment rule: an assignment
// lhs = rhs affects target iff lhs, after unwrapping parens/non-null/type
// assertions/spreads, contains a reference matching target.
func (an *Analyzer) AffectsReference(lhs, target astnode.NodeIndex, sameSymbol func(a, b astnode.NodeIndex) bool) bool {
	lhs = an.unwrapAssignmentTarget(lhs)
	return an.ReferencesMatch(lhs, target, sameSymbol)
}

func (an *Analyzer) unwrapAssignmentTarget(n astnode.NodeIndex) astnode.NodeIndex {
	for {
		node := an.Arena.Get(n)
		switch node.Kind {
		case astnode.KindParenExpr, astnode.KindNonNullExpr, astnode.KindAsExpr, astnode.KindSpreadExpr:
			n = node.Inner
		default:
			return n
		}
	}
}

// ParseNumericAtom canonicalizes a numeric property-name text (spec 4.5):
// parseFloat-equivalent with 0x/0b/0o prefix support and `_` separators,
// returning the canonical decimal text used for `in` and discriminant
// comparisons. BigInt literals are converted to decimal strings directly,
// not through float parsing, to avoid precision loss.
func ParseNumericAtom(text string) (string, bool) {
	clean := strings.ReplaceAll(text, "_", "")
	if clean == "" {
		return "", false
	}
	neg := false
	if strings.HasPrefix(clean, "-") {
		neg = true
		clean = clean[1:]
	}
	if strings.HasSuffix(clean, "n") {
		if bi, ok := new(big.Int).SetString(clean[:len(clean)-1], 0); ok {
			if neg {
				bi.Neg(bi)
			}
			return bi.String(), true
		}
	}
	var v float64
	var err error
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		var iv uint64
		iv, err = strconv.ParseUint(clean[2:], 16, 64)
		v = float64(iv)
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		var iv uint64
		iv, err = strconv.ParseUint(clean[2:], 2, 64)
		v = float64(iv)
	case strings.HasPrefix(clean, "0o") || strings.HasPrefix(clean, "0O"):
		var iv uint64
		iv, err = strconv.ParseUint(clean[2:], 8, 64)
		v = float64(iv)
	default:
		v, err = strconv.ParseFloat(clean, 64)
	}
	if err != nil {
		return "", false
	}
	if neg {
		v = -v
	}
	return strconv.FormatFloat(v, 'g', -1, 64), true
}
