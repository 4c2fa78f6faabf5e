package parser

import (
	"errors"
	"strings"
	"testing"

	"minic/pkg/ast"
	"minic/pkg/config"
	"minic/pkg/lexer"
	"minic/pkg/symtab"
	"minic/pkg/util"
)

func parseSource(t *testing.T, source string, cfg *config.Config) ([]*ast.Node, *symtab.Table) {
	t.Helper()
	table := symtab.NewTable()
	p := NewParser(lexer.NewScanner(source, cfg), table, cfg)
	nodes, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return nodes, table
}

func parseError(t *testing.T, source string) *util.Diagnostic {
	t.Helper()
	table := symtab.NewTable()
	p := NewParser(lexer.NewScanner(source, nil), table, nil)
	_, err := p.Parse()
	if err == nil {
		t.Fatal("Parse succeeded, want error")
	}
	var d *util.Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("error type = %T, want *util.Diagnostic", err)
	}
	return d
}

func TestConstantFolding(t *testing.T) {
	_, table := parseSource(t, `
program;
var x = 5;
var y = 7;
y = x + 3 * 2;
`, nil)

	x := table.Lookup("x", false, 0)
	if x == nil || x.Value != int64(5) {
		t.Fatalf("x = %+v, want value 5", x)
	}
	y := table.Lookup("y", false, 0)
	if y == nil {
		t.Fatal("y not in table")
	}
	if y.Value != int64(11) {
		t.Errorf("y value = %v (%T), want int64 11", y.Value, y.Value)
	}
	if y.Type != symtab.Integer {
		t.Errorf("y type = %s, want Integer", y.Type)
	}
	if want := "(x + (3 * 2))"; y.Expr != want {
		t.Errorf("y expression = %q, want %q", y.Expr, want)
	}
	if y.Info.LastModifiedLine != 5 {
		t.Errorf("y last modified at line %d, want 5", y.Info.LastModifiedLine)
	}
}

func TestConstantFoldingDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatConstFold, false)
	_, table := parseSource(t, `
program;
var x = 5;
var y = 7;
y = x + 1;
`, cfg)

	y := table.Lookup("y", false, 0)
	if y.Type != symtab.Expression {
		t.Errorf("y type = %s, want Expression when folding is off", y.Type)
	}
	if y.Value != nil {
		t.Errorf("y value = %v, want no folded value", y.Value)
	}
	if want := "(x + 1)"; y.Expr != want {
		t.Errorf("y expression = %q, want %q", y.Expr, want)
	}
}

func TestAssignmentKeepsStaleValueWhenUnresolved(t *testing.T) {
	// The print breaks the declaration section, so the last line is a
	// true assignment statement and y keeps its earlier value.
	_, table := parseSource(t, `
program;
var x = 5;
var y = 7;
print(x);
y = x / 0;
`, nil)

	y := table.Lookup("y", false, 0)
	if y.Type != symtab.Expression {
		t.Errorf("y type = %s, want Expression", y.Type)
	}
	if y.Value != int64(7) {
		t.Errorf("y value = %v, want the earlier 7 untouched", y.Value)
	}
}

func TestCopyPropagationInDeclaration(t *testing.T) {
	_, table := parseSource(t, `
program;
var a = 4;
var b = a;
`, nil)

	b := table.Lookup("b", false, 0)
	if b.Value != int64(4) {
		t.Errorf("b value = %v, want copied 4", b.Value)
	}
	if b.Type != symtab.Integer {
		t.Errorf("b type = %s, want Integer", b.Type)
	}
}

func TestDivisionYieldsFloat(t *testing.T) {
	_, table := parseSource(t, `
program;
var x = 5;
var y = 0;
y = x / 2;
`, nil)

	y := table.Lookup("y", false, 0)
	if y.Value != float64(2.5) {
		t.Errorf("y value = %v (%T), want 2.5", y.Value, y.Value)
	}
	if y.Type != symtab.Float {
		t.Errorf("y type = %s, want Float", y.Type)
	}
}

func TestDivisionByZeroStaysUnresolved(t *testing.T) {
	_, table := parseSource(t, `
program;
var x = 5;
var y = 0;
y = x / 0;
`, nil)

	y := table.Lookup("y", false, 0)
	if y.Type != symtab.Expression {
		t.Errorf("y type = %s, want Expression", y.Type)
	}
	if want := "(x / 0)"; y.Expr != want {
		t.Errorf("y expression = %q, want %q", y.Expr, want)
	}
}

func TestStringAndFloatTypes(t *testing.T) {
	_, table := parseSource(t, `
program;
var s = "hi";
var f = 1.5;
`, nil)

	if s := table.Lookup("s", false, 0); s.Type != symtab.String || s.Value != "hi" {
		t.Errorf("s = %s %v, want String \"hi\"", s.Type, s.Value)
	}
	if f := table.Lookup("f", false, 0); f.Type != symtab.Float || f.Value != float64(1.5) {
		t.Errorf("f = %s %v, want Float 1.5", f.Type, f.Value)
	}
}

func TestUndeclaredVariableFails(t *testing.T) {
	d := parseError(t, `
program;
var x = 1;

print(z + x);
`)
	if d.Kind != util.SyntaxError {
		t.Errorf("kind = %s, want syntax error", d.Kind)
	}
	if !strings.Contains(d.Message, "'z'") {
		t.Errorf("message %q does not name z", d.Message)
	}
	if d.Line != 5 || d.Column != 7 {
		t.Errorf("position %d:%d, want 5:7", d.Line, d.Column)
	}
}

func TestGrammarMismatchFails(t *testing.T) {
	d := parseError(t, `
program;
var x = 1;
print(x;
`)
	if d.Kind != util.SyntaxError {
		t.Errorf("kind = %s, want syntax error", d.Kind)
	}
	if !strings.Contains(d.Message, "expected") {
		t.Errorf("message = %q", d.Message)
	}
}

func TestRedeclarationKeepsOneEntry(t *testing.T) {
	_, table := parseSource(t, `
program;
var x = 1;
var x = 2;
`, nil)

	if n := len(table.AllSymbols()); n != 1 {
		t.Fatalf("table has %d symbols, want 1", n)
	}
	x := table.Lookup("x", false, 0)
	if x.Value != int64(2) {
		t.Errorf("x value = %v, want 2", x.Value)
	}
	if x.Info.DeclaredLine != 3 {
		t.Errorf("x declared line = %d, want the first declaration's 3", x.Info.DeclaredLine)
	}
	if x.Info.LastModifiedLine != 4 {
		t.Errorf("x last modified = %d, want 4", x.Info.LastModifiedLine)
	}
}

func TestBlockStatementsChainWithoutSemicolons(t *testing.T) {
	nodes, _ := parseSource(t, `
program;
var x = 10;
var y = 0;
if (x > 5) { y = 1; }
while (x > 0) { x = x - 1; }
`, nil)

	var types []ast.NodeType
	for _, n := range nodes {
		types = append(types, n.Type)
	}
	want := []ast.NodeType{ast.Assign, ast.Assign, ast.If, ast.While}
	if len(types) != len(want) {
		t.Fatalf("got %d top-level nodes, want %d", len(types), len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("node %d type = %v, want %v", i, types[i], want[i])
		}
	}
}

func TestIfElseBodies(t *testing.T) {
	nodes, _ := parseSource(t, `
program;
var x = 1;
if (x == 1) { x = 2; } else { x = 3; }
`, nil)

	ifNode := nodes[len(nodes)-1]
	if ifNode.Type != ast.If {
		t.Fatalf("last node type = %v, want If", ifNode.Type)
	}
	d := ifNode.Data.(ast.IfNode)
	if len(d.Then) != 1 || len(d.Else) != 1 {
		t.Errorf("then/else sizes = %d/%d, want 1/1", len(d.Then), len(d.Else))
	}
}

func TestUnaryMinusLowersAsSubtraction(t *testing.T) {
	nodes, _ := parseSource(t, `
program;
var x = 1;
x = -x;
`, nil)

	assign := nodes[len(nodes)-1].Data.(ast.AssignNode)
	if assign.Value.Type != ast.BinaryOp {
		t.Fatalf("rhs type = %v, want BinaryOp", assign.Value.Type)
	}
	d := assign.Value.Data.(ast.BinaryOpNode)
	if d.Left.Type != ast.Number || d.Left.Data.(ast.NumberNode).Value != "0" {
		t.Errorf("left operand = %+v, want constant 0", d.Left)
	}
}

func TestUsageRecording(t *testing.T) {
	_, table := parseSource(t, `
program;
var a = 1;
var b = 2;
print(a);
`, nil)

	a := table.Lookup("a", false, 0)
	if a.UsageCount() < 2 {
		t.Errorf("a used on %v, want declaration and print lines", a.UsedLines())
	}
	if unused := table.UnusedNames(); len(unused) != 1 || unused[0] != "b" {
		t.Errorf("unused = %v, want [b]", unused)
	}
}

func TestLongIdentifierStillParses(t *testing.T) {
	long := strings.Repeat("q", 40)
	_, table := parseSource(t, "program;\nvar "+long+" = 3;\n", nil)

	sym := table.Lookup(long, false, 0)
	if sym == nil {
		t.Fatalf("%q missing from table", long)
	}
	if sym.Value != int64(3) {
		t.Errorf("value = %v, want 3", sym.Value)
	}
}
