// Package astnode is the external lexer/parser/AST-arena collaborator spec
// 6.1 documents as an interface only: a NodeIndex-based arena with just
// enough node kinds to drive the flow analyzer and lowering layer against
// the spec's end-to-end scenarios. Full lexing and parsing are out of scope
// (spec Non-goals); this is the contract the rest of the checker is built
// against, plus a minimal constructor API tests can use to build fixture
// trees directly.
package astnode

import "github.com/tsz-lang/tszcore/internal/atom"

// NodeIndex is an opaque handle into an Arena (spec 6.1); the zero value
// denotes "no node".
type NodeIndex uint32

const Invalid NodeIndex = 0

// Kind enumerates the node shapes the flow analyzer and lowering layer need
// to recognize. This is deliberately not a full TypeScript AST: only the
// expression and statement forms spec 4.5 and 4.6 name are represented.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindIdentifier
	KindThisExpr
	KindSuperExpr
	KindPropertyAccess // Base, Name
	KindElementAccess  // Base, Index (literal-atom keys only, per spec 4.5)
	KindCallExpr       // Callee, Args
	KindBinaryExpr     // Left, Right, Op
	KindLogicalExpr    // Left, Right, Op (&&, ||, ??)
	KindUnaryExpr      // Operand, Op (!, typeof, etc.)
	KindConditionalExpr // Test, Consequent, Alternate (ternary)
	KindAssignmentExpr // Target, Value
	KindParenExpr      // Inner
	KindNonNullExpr    // Inner (x!)
	KindAsExpr         // Inner (type assertion)
	KindSpreadExpr     // Inner
	KindStringLiteral
	KindNumberLiteral
	KindBigIntLiteral
	KindBooleanLiteral
	KindNullLiteral
	KindUndefinedLiteral
	KindIfStmt    // Test, Then, Else
	KindWhileStmt // Test, Body
	KindVarDecl   // Name, Init, IsConst
	KindBlockStmt // Children
	KindTypeReference
	KindConditionalType
)

// BinaryOp / LogicalOp / UnaryOp tag which operator a Binary/Logical/Unary
// node carries.
type BinaryOp uint8

const (
	OpEq BinaryOp = iota
	OpNotEq
	OpStrictEq
	OpStrictNotEq
	OpInstanceof
	OpIn
)

type LogicalOp uint8

const (
	OpAnd LogicalOp = iota
	OpOr
	OpNullish
)

type UnaryOp uint8

const (
	OpNot UnaryOp = iota
	OpTypeof
)

// Node is one arena slot. Only the fields relevant to Kind are populated;
// unused fields stay at their zero value, mirroring how a compact
// discriminated-union node would be laid out in a real parser's arena.
type Node struct {
	Kind Kind

	Name atom.Atom // Identifier, PropertyAccess.Name, VarDecl.Name

	Base, Index                   NodeIndex // PropertyAccess, ElementAccess
	Callee                        NodeIndex
	Args                          []NodeIndex
	Left, Right                   NodeIndex
	Operand, Inner, Target, Value NodeIndex
	BinOp                         BinaryOp
	LogOp                         LogicalOp
	UnOp                          UnaryOp
	Test, Consequent, Alternate   NodeIndex
	Then, Else, Body              NodeIndex
	Init                          NodeIndex
	IsConst                       bool
	Children                      []NodeIndex
	OptionalChained               bool // true if this call/access used ?.

	StrValue  string
	NumValue  float64
	BigValue  string
	BoolValue bool
}

// Arena owns node storage. The zero value is not ready; use NewArena.
type Arena struct {
	nodes []Node // index 0 is the unused Invalid slot
}

func NewArena() *Arena {
	return &Arena{nodes: make([]Node, 1)}
}

func (a *Arena) Add(n Node) NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return idx
}

func (a *Arena) Get(idx NodeIndex) Node {
	if idx == Invalid || int(idx) >= len(a.nodes) {
		return Node{}
	}
	return a.nodes[idx]
}
