// Package ast defines the node types of the abstract syntax tree built by
// the parser. A program is an ordered []*Node; nodes are owned by the tree
// that created them and never shared.
package ast

import "minic/pkg/token"

type NodeType int

const (
	// Expressions
	Number NodeType = iota // integer, float or string constant
	Variable
	BinaryOp

	// Statements
	Assign
	Print
	If
	While
)

// Node is one AST node. Tok is the token the node was built from (for
// BinaryOp, the operator token); Data holds the variant payload.
type Node struct {
	Type NodeType
	Tok  token.Token
	Data any
}

type NumberNode struct{ Value string }
type VariableNode struct{ Name string }
type BinaryOpNode struct {
	Op          token.Kind
	Left, Right *Node
}
type AssignNode struct{ Target, Value *Node }
type PrintNode struct{ Value *Node }
type IfNode struct {
	Cond *Node
	Then []*Node
	Else []*Node
}
type WhileNode struct {
	Cond *Node
	Body []*Node
}

func NewNumber(tok token.Token) *Node {
	return &Node{Type: Number, Tok: tok, Data: NumberNode{Value: tok.Value}}
}

func NewVariable(tok token.Token) *Node {
	return &Node{Type: Variable, Tok: tok, Data: VariableNode{Name: tok.Value}}
}

func NewBinaryOp(opTok token.Token, left, right *Node) *Node {
	return &Node{Type: BinaryOp, Tok: opTok, Data: BinaryOpNode{Op: opTok.Kind, Left: left, Right: right}}
}

func NewAssign(tok token.Token, target, value *Node) *Node {
	return &Node{Type: Assign, Tok: tok, Data: AssignNode{Target: target, Value: value}}
}

func NewPrint(tok token.Token, value *Node) *Node {
	return &Node{Type: Print, Tok: tok, Data: PrintNode{Value: value}}
}

func NewIf(tok token.Token, cond *Node, thenBody, elseBody []*Node) *Node {
	return &Node{Type: If, Tok: tok, Data: IfNode{Cond: cond, Then: thenBody, Else: elseBody}}
}

func NewWhile(tok token.Token, cond *Node, body []*Node) *Node {
	return &Node{Type: While, Tok: tok, Data: WhileNode{Cond: cond, Body: body}}
}
