// Package parser implements the recursive-descent parser. Grammar
// recognition and semantic bookkeeping are deliberately one pass: symbol
// insertion, usage recording and best-effort constant evaluation happen
// while the productions run. Splitting them out would change observable
// behavior (forward references would start to resolve).
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"minic/pkg/ast"
	"minic/pkg/config"
	"minic/pkg/lexer"
	"minic/pkg/symtab"
	"minic/pkg/token"
	"minic/pkg/util"
)

// Parser consumes one token stream exactly once against one symbol table.
// Not restartable; build a new Parser to reparse.
type Parser struct {
	sc      *lexer.Scanner
	table   *symtab.Table
	cfg     *config.Config
	current token.Token
}

func NewParser(sc *lexer.Scanner, table *symtab.Table, cfg *config.Config) *Parser {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Parser{sc: sc, table: table, cfg: cfg}
}

// Parse runs the program production and returns the top-level node
// sequence (declarations followed by statements).
func (p *Parser) Parse() ([]*ast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.program()
}

func (p *Parser) advance() error {
	tok, err := p.sc.Next()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) eat(kind token.Kind) error {
	if p.current.Kind == kind {
		return p.advance()
	}
	return util.Synf(p.current, "expected %s, got %s", kind, p.current.Kind)
}

// isIdentLike matches IDENTIFIER plus warning-carrying ERROR tokens (an
// over-length identifier stays usable; the warning is advisory data).
func isIdentLike(tok token.Token) bool {
	return tok.Kind == token.Ident || tok.IsWarning()
}

func (p *Parser) eatIdent() error {
	if isIdentLike(p.current) {
		return p.advance()
	}
	return util.Synf(p.current, "expected %s, got %s", token.Ident, p.current.Kind)
}

// program := PROGRAM ';'* varDecls stmtList
func (p *Parser) program() ([]*ast.Node, error) {
	if err := p.eat(token.Program); err != nil {
		return nil, err
	}
	for p.current.Kind == token.Semi {
		if err := p.eat(token.Semi); err != nil {
			return nil, err
		}
	}

	decls, err := p.varDeclarations()
	if err != nil {
		return nil, err
	}
	stmts, err := p.statementList()
	if err != nil {
		return nil, err
	}
	if p.current.Kind != token.EOF {
		return nil, util.Synf(p.current, "expected %s, got %s", token.EOF, p.current.Kind)
	}
	return append(decls, stmts...), nil
}

// varDecls := ('var' (IDENT ('=' expr)? ';' ';'* )*)?
func (p *Parser) varDeclarations() ([]*ast.Node, error) {
	var decls []*ast.Node
	if p.current.Kind != token.Var {
		return decls, nil
	}
	if err := p.eat(token.Var); err != nil {
		return nil, err
	}
	for isIdentLike(p.current) {
		ds, err := p.varDeclaration()
		if err != nil {
			return nil, err
		}
		decls = append(decls, ds...)
		if err := p.eat(token.Semi); err != nil {
			return nil, err
		}
		for p.current.Kind == token.Semi {
			if err := p.eat(token.Semi); err != nil {
				return nil, err
			}
		}
	}
	return decls, nil
}

func (p *Parser) varDeclaration() ([]*ast.Node, error) {
	tok := p.current
	varNode := ast.NewVariable(tok)
	name := tok.Value

	// Declaration point: value unknown until an initializer resolves.
	// Re-declaring a name updates the existing symbol in place.
	p.table.Insert(name, nil, tok.Line)

	if err := p.eatIdent(); err != nil {
		return nil, err
	}

	if p.current.Kind != token.Assign {
		p.table.Lookup(name, true, tok.Line)
		return []*ast.Node{varNode}, nil
	}

	if err := p.eat(token.Assign); err != nil {
		return nil, err
	}
	right, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.applyAssignment(name, right, tok); err != nil {
		return nil, err
	}
	p.table.Lookup(name, true, tok.Line)
	return []*ast.Node{ast.NewAssign(tok, varNode, right)}, nil
}

func (p *Parser) startsStatement() bool {
	switch p.current.Kind {
	case token.Print, token.If, token.While, token.Var:
		return true
	}
	return isIdentLike(p.current)
}

// stmtList := ';'* stmt (';'* stmt)*
//
// Semicolons are separators, not terminators: block statements chain
// without one, so `if (...) { ... } while (...) { ... }` parses as two
// statements.
func (p *Parser) statementList() ([]*ast.Node, error) {
	var stmts []*ast.Node
	for {
		for p.current.Kind == token.Semi {
			if err := p.eat(token.Semi); err != nil {
				return nil, err
			}
		}
		if !p.startsStatement() {
			return stmts, nil
		}
		ss, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, ss...)
	}
}

// stmt := assignment | print | if | while | varDecls | ε
func (p *Parser) statement() ([]*ast.Node, error) {
	switch {
	case p.current.Kind == token.Print:
		n, err := p.printStatement()
		if err != nil {
			return nil, err
		}
		return []*ast.Node{n}, nil
	case p.current.Kind == token.If:
		n, err := p.ifStatement()
		if err != nil {
			return nil, err
		}
		return []*ast.Node{n}, nil
	case p.current.Kind == token.While:
		n, err := p.whileStatement()
		if err != nil {
			return nil, err
		}
		return []*ast.Node{n}, nil
	case p.current.Kind == token.Var:
		return p.varDeclarations()
	case isIdentLike(p.current):
		n, err := p.assignmentStatement()
		if err != nil {
			return nil, err
		}
		return []*ast.Node{n}, nil
	}
	return nil, nil
}

// assignment := IDENT '=' expr
func (p *Parser) assignmentStatement() (*ast.Node, error) {
	left, err := p.variable()
	if err != nil {
		return nil, err
	}
	assignTok := p.current
	if err := p.eat(token.Assign); err != nil {
		return nil, err
	}
	right, err := p.expr()
	if err != nil {
		return nil, err
	}

	name := left.Data.(ast.VariableNode).Name
	if err := p.applyAssignment(name, right, assignTok); err != nil {
		return nil, err
	}

	p.table.Lookup(name, true, assignTok.Line)
	return ast.NewAssign(assignTok, left, right), nil
}

// applyAssignment records the semantic effect of `name = right`, shared
// by declarations and assignment statements. A literal stores the
// concrete value, a variable reference with a known value is copied
// forward, a binary expression stores its formula and folds to a value
// when every leaf resolves.
func (p *Parser) applyAssignment(name string, right *ast.Node, at token.Token) error {
	switch right.Type {
	case ast.Number:
		if right.Tok.Kind == token.StringLit {
			p.table.Insert(name, right.Tok.Value, at.Line)
			return nil
		}
		v, err := parseNumeric(right.Tok.Value)
		if err != nil {
			return util.Synf(at, "invalid numeric value: %s", right.Tok.Value)
		}
		p.table.Insert(name, v, at.Line)
	case ast.Variable:
		rightName := right.Data.(ast.VariableNode).Name
		if rs := p.table.Lookup(rightName, true, at.Line); rs != nil && rs.Value != nil {
			p.table.Insert(name, rs.Value, at.Line)
		}
	case ast.BinaryOp:
		sym := p.table.Lookup(name, false, 0)
		if sym == nil {
			return nil
		}
		sym.SetExpression(p.buildExpression(right))
		sym.Info.LastModifiedLine = at.Line
		if p.cfg.IsFeatureEnabled(config.FeatConstFold) {
			if v, ok := p.evalExpression(right); ok {
				sym.UpdateValue(v, at.Line)
			}
		}
	}
	return nil
}

// parseNumeric coerces a literal: a decimal point makes it a float,
// otherwise it stays an integer.
func parseNumeric(text string) (any, error) {
	if strings.Contains(text, ".") {
		return strconv.ParseFloat(text, 64)
	}
	return strconv.ParseInt(text, 10, 64)
}

// evalExpression evaluates a right-hand side if every leaf resolves to a
// known value. Division by zero is not an error here; it just leaves the
// value unresolved.
func (p *Parser) evalExpression(node *ast.Node) (any, bool) {
	switch node.Type {
	case ast.Number:
		if node.Tok.Kind == token.StringLit {
			return nil, false
		}
		v, err := parseNumeric(node.Tok.Value)
		if err != nil {
			return nil, false
		}
		return v, true
	case ast.Variable:
		name := node.Data.(ast.VariableNode).Name
		sym := p.table.Lookup(name, true, p.current.Line)
		if sym != nil && sym.Value != nil {
			return sym.Value, true
		}
		return nil, false
	case ast.BinaryOp:
		d := node.Data.(ast.BinaryOpNode)
		left, ok := p.evalExpression(d.Left)
		if !ok {
			return nil, false
		}
		right, ok := p.evalExpression(d.Right)
		if !ok {
			return nil, false
		}
		return evalBinary(d.Op, left, right)
	}
	return nil, false
}

func evalBinary(op token.Kind, left, right any) (any, bool) {
	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok && op == token.Plus {
			return ls + rs, true
		}
		return nil, false
	}
	if _, rok := right.(string); rok {
		return nil, false
	}

	li, lInt := left.(int64)
	ri, rInt := right.(int64)
	if lInt && rInt {
		switch op {
		case token.Plus:
			return li + ri, true
		case token.Minus:
			return li - ri, true
		case token.Star:
			return li * ri, true
		case token.Slash:
			if ri == 0 {
				return nil, false
			}
			return float64(li) / float64(ri), true
		}
		return nil, false
	}

	lf, ok := toFloat(left)
	if !ok {
		return nil, false
	}
	rf, ok := toFloat(right)
	if !ok {
		return nil, false
	}
	switch op {
	case token.Plus:
		return lf + rf, true
	case token.Minus:
		return lf - rf, true
	case token.Star:
		return lf * rf, true
	case token.Slash:
		if rf == 0 {
			return nil, false
		}
		return lf / rf, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// buildExpression renders a fully parenthesized, left-to-right textual
// formula for an unresolved right-hand side, recording variable usages
// along the way.
func (p *Parser) buildExpression(node *ast.Node) string {
	switch node.Type {
	case ast.Number:
		return node.Tok.Value
	case ast.Variable:
		name := node.Data.(ast.VariableNode).Name
		p.table.Lookup(name, true, p.current.Line)
		return name
	case ast.BinaryOp:
		d := node.Data.(ast.BinaryOpNode)
		left := p.buildExpression(d.Left)
		right := p.buildExpression(d.Right)
		op := "?"
		switch d.Op {
		case token.Plus:
			op = "+"
		case token.Minus:
			op = "-"
		case token.Star:
			op = "*"
		case token.Slash:
			op = "/"
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right)
	}
	return ""
}

// variable := IDENT, which must already be declared. Usage is recorded
// before the identifier is consumed.
func (p *Parser) variable() (*ast.Node, error) {
	tok := p.current
	node := ast.NewVariable(tok)

	if sym := p.table.Lookup(tok.Value, true, tok.Line); sym == nil {
		return nil, util.Synf(tok, "variable '%s' not declared", tok.Value)
	}
	if err := p.eatIdent(); err != nil {
		return nil, err
	}
	return node, nil
}

// registerExprUsage records usages for every variable reference inside an
// expression. The line attributed is the parser's current lookahead line
// at the time of the call, not the line the reference appeared on — a
// quirk of the single-pass design that the symbol-table view preserves.
func (p *Parser) registerExprUsage(node *ast.Node) {
	if node == nil {
		return
	}
	switch node.Type {
	case ast.Variable:
		p.table.Lookup(node.Data.(ast.VariableNode).Name, true, p.current.Line)
	case ast.BinaryOp:
		d := node.Data.(ast.BinaryOpNode)
		p.registerExprUsage(d.Left)
		p.registerExprUsage(d.Right)
	}
}

// expr := term (('+'|'-'|'>'|'<'|'==') term)*
//
// One precedence tier, left associative; relational operators sit at the
// same level as additive ones.
func (p *Parser) expr() (*ast.Node, error) {
	node, err := p.term()
	if err != nil {
		return nil, err
	}
	p.registerExprUsage(node)

	for {
		switch p.current.Kind {
		case token.Plus, token.Minus, token.Gt, token.Lt, token.EqEq:
		default:
			return node, nil
		}
		opTok := p.current
		if err := p.eat(opTok.Kind); err != nil {
			return nil, err
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		node = ast.NewBinaryOp(opTok, node, right)

		d := node.Data.(ast.BinaryOpNode)
		p.registerExprUsage(d.Left)
		p.registerExprUsage(d.Right)
	}
}

// term := factor (('*'|'/') factor)*
func (p *Parser) term() (*ast.Node, error) {
	node, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.current.Kind == token.Star || p.current.Kind == token.Slash {
		opTok := p.current
		if err := p.eat(opTok.Kind); err != nil {
			return nil, err
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		node = ast.NewBinaryOp(opTok, node, right)
	}
	return node, nil
}

// factor := ('+'|'-') factor | NUMBER | STRING | '(' expr ')' | IDENT
func (p *Parser) factor() (*ast.Node, error) {
	tok := p.current
	switch tok.Kind {
	case token.Plus:
		if err := p.eat(token.Plus); err != nil {
			return nil, err
		}
		return p.factor()
	case token.Minus:
		if err := p.eat(token.Minus); err != nil {
			return nil, err
		}
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		// Unary minus lowers as 0 - operand.
		zero := ast.NewNumber(token.Token{Kind: token.IntConst, Value: "0", Line: tok.Line, Column: tok.Column})
		return ast.NewBinaryOp(tok, zero, operand), nil
	case token.IntConst, token.FloatConst, token.StringLit:
		if err := p.eat(tok.Kind); err != nil {
			return nil, err
		}
		return ast.NewNumber(tok), nil
	case token.LParen:
		if err := p.eat(token.LParen); err != nil {
			return nil, err
		}
		node, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.eat(token.RParen); err != nil {
			return nil, err
		}
		return node, nil
	}
	return p.variable()
}

// print := 'print' '(' expr ')' ';'
func (p *Parser) printStatement() (*ast.Node, error) {
	tok := p.current
	if err := p.eat(token.Print); err != nil {
		return nil, err
	}
	if err := p.eat(token.LParen); err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RParen); err != nil {
		return nil, err
	}
	if err := p.eat(token.Semi); err != nil {
		return nil, err
	}
	return ast.NewPrint(tok, value), nil
}

// if := 'if' '(' expr ')' '{' stmtList '}' ('else' '{' stmtList '}')?
func (p *Parser) ifStatement() (*ast.Node, error) {
	tok := p.current
	if err := p.eat(token.If); err != nil {
		return nil, err
	}
	if err := p.eat(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RParen); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBrace); err != nil {
		return nil, err
	}
	thenBody, err := p.statementList()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBrace); err != nil {
		return nil, err
	}

	var elseBody []*ast.Node
	if p.current.Kind == token.Else {
		if err := p.eat(token.Else); err != nil {
			return nil, err
		}
		if err := p.eat(token.LBrace); err != nil {
			return nil, err
		}
		elseBody, err = p.statementList()
		if err != nil {
			return nil, err
		}
		if err := p.eat(token.RBrace); err != nil {
			return nil, err
		}
	}
	return ast.NewIf(tok, cond, thenBody, elseBody), nil
}

// while := 'while' '(' expr ')' '{' stmtList '}'
func (p *Parser) whileStatement() (*ast.Node, error) {
	tok := p.current
	if err := p.eat(token.While); err != nil {
		return nil, err
	}
	if err := p.eat(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RParen); err != nil {
		return nil, err
	}
	if err := p.eat(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.statementList()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.RBrace); err != nil {
		return nil, err
	}
	return ast.NewWhile(tok, cond, body), nil
}
