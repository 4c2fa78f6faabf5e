// Package ir defines the three-address intermediate representation and
// the generator that lowers an AST into it.
package ir

import "fmt"

type Op int

const (
	OpAssign Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpGt
	OpLt
	OpEq
	OpLoad
	OpPrint
	OpCmp
	OpJz
	OpJmp
	OpLabel
)

var opNames = map[Op]string{
	OpAssign: "ASSIGN",
	OpAdd:    "ADD",
	OpSub:    "SUB",
	OpMul:    "MUL",
	OpDiv:    "DIV",
	OpGt:     "GT",
	OpLt:     "LT",
	OpEq:     "EQ",
	OpLoad:   "LOAD",
	OpPrint:  "PRINT",
	OpCmp:    "CMP",
	OpJz:     "JZ",
	OpJmp:    "JMP",
	OpLabel:  "LABEL",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Instruction is one three-address quadruple. Operands are textual: a
// variable name, a literal spelled as written, a temporary tN or a label
// LN. Line is the source line of the statement the instruction lowers.
type Instruction struct {
	Op      Op
	Arg1    string
	Arg2    string
	Result  string
	Line    int
	Comment string
}

// String renders the instruction in the listing format, with the comment
// column attached when a comment is present.
func (in Instruction) String() string {
	var base string
	switch in.Op {
	case OpAssign:
		base = fmt.Sprintf("%s := %s", in.Result, in.Arg1)
	case OpAdd, OpSub, OpMul, OpDiv, OpGt, OpLt, OpEq:
		base = fmt.Sprintf("%s := %s %s %s", in.Result, in.Arg1, in.Op, in.Arg2)
	case OpLoad:
		base = fmt.Sprintf("LOAD %s", in.Arg1)
	case OpPrint:
		base = fmt.Sprintf("PRINT %s", in.Arg1)
	case OpCmp:
		base = fmt.Sprintf("CMP %s %s", in.Arg1, in.Arg2)
	case OpJz:
		base = fmt.Sprintf("JZ %s %s", in.Arg1, in.Arg2)
	case OpJmp:
		base = fmt.Sprintf("JMP %s", in.Arg1)
	case OpLabel:
		base = fmt.Sprintf("%s:", in.Arg1)
	default:
		base = fmt.Sprintf("%s %s %s %s", in.Op, in.Arg1, in.Arg2, in.Result)
	}
	if in.Comment == "" {
		return base
	}
	return fmt.Sprintf("%-30s # %s", base, in.Comment)
}
