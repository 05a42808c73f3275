package flow

import (
	"github.com/tsz-lang/tszcore/internal/astnode"
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/solver"
	"github.com/tsz-lang/tszcore/internal/types"
)

// NarrowByExpr is the guard-extraction + application step of spec 4.5: it
// walks a guarding expression, recognizes the forms spec 4.5 lists, and
// returns target's narrowed type for the given branch, recursing through
// the logical connectives itself rather than building an intermediate guard
// tree (truthy/falsy and friends still go through solver.Checker.NarrowType
// so the union-distribution and idempotence guarantees solver provides
// apply uniformly).
func (an *Analyzer) NarrowByExpr(env *Env, expr, target astnode.NodeIndex, isTrueBranch bool, sameSymbol func(a, b astnode.NodeIndex) bool) types.TypeId {
	base, ok := env.TypeOf(target)
	if !ok {
		return types.Invalid
	}
	node := an.Arena.Get(expr)

	switch node.Kind {
	case astnode.KindLogicalExpr:
		return an.narrowLogical(env, node, target, isTrueBranch, sameSymbol)
	case astnode.KindUnaryExpr:
		if node.UnOp == astnode.OpNot {
			return an.NarrowByExpr(env, node.Operand, target, !isTrueBranch, sameSymbol)
		}
	case astnode.KindParenExpr:
		return an.NarrowByExpr(env, node.Inner, target, isTrueBranch, sameSymbol)
	case astnode.KindBinaryExpr:
		if g, matches := an.guardFromBinary(node, target, sameSymbol); matches {
			return an.Checker.NarrowType(base, g, isTrueBranch)
		}
	case astnode.KindCallExpr:
		if g, matches := an.guardFromCall(node, target, sameSymbol); matches {
			return an.Checker.NarrowType(base, g, isTrueBranch)
		}
	default:
		if an.ReferencesMatch(expr, target, sameSymbol) {
			return an.Checker.NarrowType(base, solver.TypeGuard{Kind: solver.GuardTruthy}, isTrueBranch)
		}
	}
	return base
}

// narrowLogical implements "&&, ||, ??: combine guards per logical
// connective" (spec 4.5). The true branch of `a && b` and the false branch
// of `a || b` apply a's and then b's narrowing in sequence. The false branch
// of `a && b` and the true branches of `a || b` and `a ?? b` take the union
// of the two operands' narrowings, each computed from the unnarrowed type,
// rather than tracking which operand decided the result. The false branch of
// `a ?? b` applies a's false-branch narrowing only.
func (an *Analyzer) narrowLogical(env *Env, node astnode.Node, target astnode.NodeIndex, isTrueBranch bool, sameSymbol func(a, b astnode.NodeIndex) bool) types.TypeId {
	base, _ := env.TypeOf(target)
	switch node.LogOp {
	case astnode.OpAnd:
		if isTrueBranch {
			leftNarrowed := an.NarrowByExpr(env, node.Left, target, true, sameSymbol)
			sub := env.Clone()
			sub.Set(target, leftNarrowed)
			return an.NarrowByExpr(sub, node.Right, target, true, sameSymbol)
		}
		// Falsy either because a is falsy, or because a is truthy and b is
		// falsy; union both operands' false-branch narrowings.
		left := an.NarrowByExpr(env, node.Left, target, false, sameSymbol)
		right := an.NarrowByExpr(env, node.Right, target, false, sameSymbol)
		return an.Checker.In.Union2(left, right)
	case astnode.OpOr:
		if !isTrueBranch {
			leftNarrowed := an.NarrowByExpr(env, node.Left, target, false, sameSymbol)
			sub := env.Clone()
			sub.Set(target, leftNarrowed)
			return an.NarrowByExpr(sub, node.Right, target, false, sameSymbol)
		}
		left := an.NarrowByExpr(env, node.Left, target, true, sameSymbol)
		right := an.NarrowByExpr(env, node.Right, target, true, sameSymbol)
		return an.Checker.In.Union2(left, right)
	case astnode.OpNullish:
		if isTrueBranch {
			// `a ?? b` is truthy-ish only in the sense that a is non-nullish
			// OR b's true narrowing applies; conservatively union both.
			left := an.NarrowByExpr(env, node.Left, target, true, sameSymbol)
			right := an.NarrowByExpr(env, node.Right, target, true, sameSymbol)
			return an.Checker.In.Union2(left, right)
		}
		return an.NarrowByExpr(env, node.Left, target, false, sameSymbol)
	}
	return base
}

// guardFromBinary recognizes typeof/literal/nullish/instanceof/in/
// discriminant comparisons (spec 4.5) whose operand matches target, either
// directly or (for discriminants) through a property-access chain rooted at
// target.
func (an *Analyzer) guardFromBinary(node astnode.Node, target astnode.NodeIndex, sameSymbol func(a, b astnode.NodeIndex) bool) (solver.TypeGuard, bool) {
	left, right := an.Arena.Get(node.Left), an.Arena.Get(node.Right)

	switch node.BinOp {
	case astnode.OpInstanceof:
		if an.ReferencesMatch(node.Left, target, sameSymbol) {
			if instTy, ok := an.Values.InstanceTypeOfConstructor(node.Right); ok {
				return solver.TypeGuard{Kind: solver.GuardInstanceof, InstanceType: instTy}, true
			}
		}
		return solver.TypeGuard{}, false
	case astnode.OpIn:
		if left.Kind == astnode.KindStringLiteral && an.ReferencesMatch(node.Right, target, sameSymbol) {
			return solver.TypeGuard{Kind: solver.GuardInProperty, PropertyName: an.Checker.Atoms.Intern(left.StrValue)}, true
		}
		return solver.TypeGuard{}, false
	}

	// typeof x === "tag" / !==
	if left.Kind == astnode.KindUnaryExpr && left.UnOp == astnode.OpTypeof && right.Kind == astnode.KindStringLiteral {
		if an.ReferencesMatch(left.Operand, target, sameSymbol) {
			tag, ok := typeofTag(right.StrValue)
			if !ok {
				return solver.TypeGuard{}, false
			}
			return typeofGuard(node.BinOp, tag), true
		}
	}
	if right.Kind == astnode.KindUnaryExpr && right.UnOp == astnode.OpTypeof && left.Kind == astnode.KindStringLiteral {
		if an.ReferencesMatch(right.Operand, target, sameSymbol) {
			tag, ok := typeofTag(left.StrValue)
			if !ok {
				return solver.TypeGuard{}, false
			}
			return typeofGuard(node.BinOp, tag), true
		}
	}

	// x == null / x != null (either operand order; `null`/`undefined` on
	// either side both mean "nullish" for the loose operators).
	loose := node.BinOp == astnode.OpEq || node.BinOp == astnode.OpNotEq
	if loose && isNullishLiteral(left) && an.ReferencesMatch(node.Right, target, sameSymbol) {
		return nullishGuard(node.BinOp), true
	}
	if loose && isNullishLiteral(right) && an.ReferencesMatch(node.Left, target, sameSymbol) {
		return nullishGuard(node.BinOp), true
	}

	// Direct literal comparison on target: x === lit / x !== lit.
	if an.ReferencesMatch(node.Left, target, sameSymbol) {
		if lit, ok := an.literalTypeOf(right); ok {
			return literalGuard(node.BinOp, lit), true
		}
	}
	if an.ReferencesMatch(node.Right, target, sameSymbol) {
		if lit, ok := an.literalTypeOf(left); ok {
			return literalGuard(node.BinOp, lit), true
		}
	}

	// Discriminant: target.k === literal, including through a const-bound
	// alias of target.k (spec 4.5 "Aliased discriminants").
	if path, ok := an.discriminantPathFrom(node.Left, target, sameSymbol); ok {
		if lit, ok := an.literalTypeOf(right); ok {
			return solver.TypeGuard{Kind: solver.GuardDiscriminant, DiscriminantPath: path, DiscriminantValue: lit}, true
		}
	}
	if path, ok := an.discriminantPathFrom(node.Right, target, sameSymbol); ok {
		if lit, ok := an.literalTypeOf(left); ok {
			return solver.TypeGuard{Kind: solver.GuardDiscriminant, DiscriminantPath: path, DiscriminantValue: lit}, true
		}
	}

	return solver.TypeGuard{}, false
}

// guardFromCall recognizes `f(x)` where f has a type predicate whose
// identifier target corresponds to x (spec 4.5); false-branch narrowing is
// skipped for optional-chained calls.
func (an *Analyzer) guardFromCall(node astnode.Node, target astnode.NodeIndex, sameSymbol func(a, b astnode.NodeIndex) bool) (solver.TypeGuard, bool) {
	paramIdx, predTy, asserts, ok := an.Values.PredicateOfCall(node.Callee)
	if !ok || paramIdx < 0 || paramIdx >= len(node.Args) {
		return solver.TypeGuard{}, false
	}
	if !an.ReferencesMatch(node.Args[paramIdx], target, sameSymbol) {
		return solver.TypeGuard{}, false
	}
	if node.OptionalChained && !asserts {
		// Caller should treat false-branch narrowing as a no-op; signal via
		// an Asserts-like guard that preserves the type on the false branch
		// by reporting PredicateAsserts=true for suppression purposes only.
		return solver.TypeGuard{Kind: solver.GuardPredicate, PredicateType: predTy, PredicateAsserts: true}, true
	}
	return solver.TypeGuard{Kind: solver.GuardPredicate, PredicateType: predTy, PredicateAsserts: asserts}, true
}

func (an *Analyzer) literalTypeOf(n astnode.Node) (types.TypeId, bool) {
	switch n.Kind {
	case astnode.KindStringLiteral:
		return an.Checker.In.LiteralStringType(n.StrValue), true
	case astnode.KindNumberLiteral:
		return an.Checker.In.LiteralNumberType(n.NumValue), true
	case astnode.KindBigIntLiteral:
		return an.Checker.In.LiteralBigIntType(n.BigValue), true
	case astnode.KindBooleanLiteral:
		return an.Checker.In.LiteralBoolean(n.BoolValue), true
	default:
		return types.Invalid, false
	}
}

// propertyPathFrom reports the property-name path from target to expr if
// expr is a property-access chain rooted at target (spec 4.5 discriminant
// support), e.g. target.a.b yields [a, b].
func (an *Analyzer) propertyPathFrom(expr, target astnode.NodeIndex, sameSymbol func(a, b astnode.NodeIndex) bool) ([]atom.Atom, bool) {
	node := an.Arena.Get(expr)
	if node.Kind != astnode.KindPropertyAccess {
		return nil, false
	}
	if an.ReferencesMatch(node.Base, target, sameSymbol) {
		return []atom.Atom{node.Name}, true
	}
	rest, ok := an.propertyPathFrom(node.Base, target, sameSymbol)
	if !ok {
		return nil, false
	}
	return append(rest, node.Name), true
}

// discriminantPathFrom extends propertyPathFrom with alias-lifting (spec 4.5
// "Aliased discriminants"): expr may be a const-bound identifier whose
// initializer is target's property-access chain, rather than being that
// chain syntactically, e.g. `const k = x.kind; k === "a"` narrows x the same
// as `x.kind === "a"` would.
func (an *Analyzer) discriminantPathFrom(expr, target astnode.NodeIndex, sameSymbol func(a, b astnode.NodeIndex) bool) ([]atom.Atom, bool) {
	if path, ok := an.propertyPathFrom(expr, target, sameSymbol); ok {
		return path, true
	}
	node := an.Arena.Get(expr)
	if node.Kind != astnode.KindIdentifier {
		return nil, false
	}
	base, path, ok := an.Values.AliasOf(expr)
	if !ok {
		return nil, false
	}
	if an.ReferencesMatch(base, target, sameSymbol) {
		return path, true
	}
	// The alias's base may itself reach target through a property chain,
	// e.g. a const bound off a nested property: extend the matched prefix.
	if prefix, ok := an.propertyPathFrom(base, target, sameSymbol); ok {
		return append(prefix, path...), true
	}
	return nil, false
}

func isNullishLiteral(n astnode.Node) bool {
	return n.Kind == astnode.KindNullLiteral || n.Kind == astnode.KindUndefinedLiteral
}

func nullishGuard(op astnode.BinaryOp) solver.TypeGuard {
	if op == astnode.OpEq {
		return solver.TypeGuard{Kind: solver.GuardEqualsNullish}
	}
	return solver.TypeGuard{Kind: solver.GuardNotEqualsNullish}
}

func literalGuard(op astnode.BinaryOp, lit types.TypeId) solver.TypeGuard {
	if op == astnode.OpStrictEq || op == astnode.OpEq {
		return solver.TypeGuard{Kind: solver.GuardEqualsLiteral, LiteralType: lit}
	}
	return solver.TypeGuard{Kind: solver.GuardNotEqualsLiteral, LiteralType: lit}
}

func typeofGuard(op astnode.BinaryOp, tag types.PrimitiveTag) solver.TypeGuard {
	if op == astnode.OpStrictEq || op == astnode.OpEq {
		return solver.TypeGuard{Kind: solver.GuardTypeofEquals, TypeofTag: tag}
	}
	return solver.TypeGuard{Kind: solver.GuardTypeofNotEquals, TypeofTag: tag}
}

func typeofTag(text string) (types.PrimitiveTag, bool) {
	switch text {
	case "string":
		return types.TagString, true
	case "number":
		return types.TagNumber, true
	case "boolean":
		return types.TagBoolean, true
	case "bigint":
		return types.TagBigInt, true
	case "symbol":
		return types.TagSymbol, true
	case "undefined":
		return types.TagUndefined, true
	case "object", "function":
		return types.TagObject, true
	default:
		return 0, false
	}
}
