package ir

import (
	"fmt"

	"minic/pkg/ast"
	"minic/pkg/config"
	"minic/pkg/token"
)

// Generator lowers an AST to three-address code in one walk. Temporaries
// and labels are numbered from 1 across the whole program. The value
// table maps variable names to the operand that last defined them, so a
// later read can reuse the operand instead of emitting a LOAD.
type Generator struct {
	cfg *config.Config

	code       []Instruction
	tempCount  int
	labelCount int
	line       int
	valueTable map[string]string
}

func NewGenerator(cfg *config.Config) *Generator {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Generator{cfg: cfg, valueTable: make(map[string]string)}
}

// Generate lowers the top-level node sequence. Safe to call repeatedly;
// each call appends to the same program.
func (g *Generator) Generate(nodes []*ast.Node) {
	for _, node := range nodes {
		g.genNode(node)
	}
}

// Code returns the emitted instruction sequence.
func (g *Generator) Code() []Instruction { return g.code }

func (g *Generator) newTemp() string {
	g.tempCount++
	return fmt.Sprintf("t%d", g.tempCount)
}

func (g *Generator) newLabel() string {
	g.labelCount++
	return fmt.Sprintf("L%d", g.labelCount)
}

func (g *Generator) emit(op Op, arg1, arg2, result, comment string) {
	g.code = append(g.code, Instruction{
		Op: op, Arg1: arg1, Arg2: arg2, Result: result,
		Line: g.line, Comment: comment,
	})
}

func (g *Generator) genNode(node *ast.Node) {
	if node == nil {
		return
	}
	g.line = node.Tok.Line
	switch node.Type {
	case ast.Assign:
		g.genAssign(node)
	case ast.Print:
		g.genPrint(node)
	case ast.If:
		g.genIf(node)
	case ast.While:
		g.genWhile(node)
	case ast.Variable:
		// A bare declaration reaches the top level as a plain variable
		// reference and lowers to a LOAD.
		g.genVariable(node)
	case ast.Number:
		g.genNumber(node)
	}
}

func (g *Generator) genAssign(node *ast.Node) {
	d := node.Data.(ast.AssignNode)
	target := d.Target.Data.(ast.VariableNode).Name

	var result string
	switch d.Value.Type {
	case ast.BinaryOp:
		result = g.genBinaryOp(d.Value)
	case ast.Variable:
		result = g.genVariable(d.Value)
	case ast.Number:
		// Literal right-hand sides assign directly, no LOAD.
		result = d.Value.Data.(ast.NumberNode).Value
	default:
		return
	}

	g.emit(OpAssign, result, "", target, fmt.Sprintf("Assign %s to %s", result, target))
	g.valueTable[target] = result
}

// genVariable resolves a variable read. A value-table hit returns the
// defining operand with no instruction emitted; a miss emits a LOAD and
// returns the name itself.
func (g *Generator) genVariable(node *ast.Node) string {
	name := node.Data.(ast.VariableNode).Name
	if g.cfg.IsFeatureEnabled(config.FeatCopyProp) {
		if v, ok := g.valueTable[name]; ok && v != "" {
			return v
		}
	}
	g.emit(OpLoad, name, "", "", fmt.Sprintf("Load variable %s", name))
	return name
}

func (g *Generator) genNumber(node *ast.Node) string {
	text := node.Data.(ast.NumberNode).Value
	g.emit(OpLoad, text, "", "", fmt.Sprintf("Load constant %s", text))
	return text
}

func (g *Generator) genOperand(node *ast.Node) string {
	switch node.Type {
	case ast.BinaryOp:
		return g.genBinaryOp(node)
	case ast.Variable:
		return g.genVariable(node)
	case ast.Number:
		return g.genNumber(node)
	}
	return ""
}

var binOps = map[token.Kind]Op{
	token.Plus:  OpAdd,
	token.Minus: OpSub,
	token.Star:  OpMul,
	token.Slash: OpDiv,
	token.Gt:    OpGt,
	token.Lt:    OpLt,
	token.EqEq:  OpEq,
}

func isRelational(kind token.Kind) bool {
	return kind == token.Gt || kind == token.Lt || kind == token.EqEq
}

func (g *Generator) genBinaryOp(node *ast.Node) string {
	d := node.Data.(ast.BinaryOpNode)
	left := g.genOperand(d.Left)
	right := g.genOperand(d.Right)

	op, ok := binOps[d.Op]
	if !ok {
		return ""
	}
	result := g.newTemp()
	comment := fmt.Sprintf("Perform %s operation", op)
	if isRelational(d.Op) {
		comment = fmt.Sprintf("Compare %s %s %s", left, op, right)
	}
	g.emit(op, left, right, result, comment)
	return result
}

func (g *Generator) genPrint(node *ast.Node) {
	d := node.Data.(ast.PrintNode)
	switch d.Value.Type {
	case ast.Variable:
		// Printed variables always go by name, bypassing the value table.
		name := d.Value.Data.(ast.VariableNode).Name
		g.emit(OpPrint, name, "", "", fmt.Sprintf("Print variable %s", name))
	case ast.Number:
		text := d.Value.Data.(ast.NumberNode).Value
		g.emit(OpPrint, text, "", "", fmt.Sprintf("Print constant %s", text))
	case ast.BinaryOp:
		result := g.genBinaryOp(d.Value)
		if result != "" {
			g.emit(OpPrint, result, "", "", "Print expression result")
		}
	}
}

// genCondition lowers a branch condition and guards it with a CMP against
// zero when the condition is a relational expression, a variable or a
// constant. Arithmetic conditions branch on the raw result.
func (g *Generator) genCondition(cond *ast.Node) string {
	switch cond.Type {
	case ast.BinaryOp:
		result := g.genBinaryOp(cond)
		if isRelational(cond.Data.(ast.BinaryOpNode).Op) {
			g.emit(OpCmp, result, "0", "", fmt.Sprintf("Compare %s with 0", result))
		}
		return result
	case ast.Variable:
		result := g.genVariable(cond)
		g.emit(OpCmp, result, "0", "", fmt.Sprintf("Compare %s with 0", result))
		return result
	case ast.Number:
		result := cond.Data.(ast.NumberNode).Value
		g.emit(OpCmp, result, "0", "", fmt.Sprintf("Compare %s with 0", result))
		return result
	}
	return ""
}

func (g *Generator) genIf(node *ast.Node) {
	d := node.Data.(ast.IfNode)

	cond := g.genCondition(d.Cond)
	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit(OpJz, cond, elseLabel, "", fmt.Sprintf("If %s is false, jump to else", cond))
	for _, stmt := range d.Then {
		g.genNode(stmt)
	}
	g.emit(OpJmp, endLabel, "", "", "Jump to end of if")
	g.emit(OpLabel, elseLabel, "", "", "Else branch")
	for _, stmt := range d.Else {
		g.genNode(stmt)
	}
	g.emit(OpLabel, endLabel, "", "", "End of if")
}

func (g *Generator) genWhile(node *ast.Node) {
	d := node.Data.(ast.WhileNode)

	// Both labels are allocated before the condition lowers, so the start
	// label always numbers directly before the end label.
	startLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit(OpLabel, startLabel, "", "", "Start of while loop")
	cond := g.genCondition(d.Cond)
	g.emit(OpJz, cond, endLabel, "", fmt.Sprintf("If %s is false, exit loop", cond))
	for _, stmt := range d.Body {
		g.genNode(stmt)
	}
	g.emit(OpJmp, startLabel, "", "", "Jump back to start of loop")
	g.emit(OpLabel, endLabel, "", "", "End of while loop")
}
