package token

import "strings"

type Kind int

const (
	EOF Kind = iota
	Comment
	Error

	// Keywords
	Program
	Var
	Int
	Float
	StringKeyword
	If
	Else
	While
	For
	Do
	Function
	Return
	Print
	And
	Or
	Not
	True
	False

	// Constants
	IntConst
	FloatConst
	StringLit

	// Operators
	Plus
	Minus
	Star
	Slash
	Assign
	EqEq
	Lt
	Gt
	Lte
	Gte

	// Delimiters
	LParen
	RParen
	LBrace
	RBrace
	Semi

	Ident
)

// KeywordMap is consulted case-insensitively; see LookupKeyword.
var KeywordMap = map[string]Kind{
	"program":  Program,
	"var":      Var,
	"int":      Int,
	"float":    Float,
	"string":   StringKeyword,
	"if":       If,
	"else":     Else,
	"while":    While,
	"for":      For,
	"do":       Do,
	"function": Function,
	"return":   Return,
	"print":    Print,
	"and":      And,
	"or":       Or,
	"not":      Not,
	"true":     True,
	"false":    False,
}

var kindNames = map[Kind]string{
	EOF:           "EOF",
	Comment:       "COMMENT",
	Error:         "ERROR",
	Program:       "PROGRAM",
	Var:           "VAR",
	Int:           "INT",
	Float:         "FLOAT",
	StringKeyword: "STRING",
	If:            "IF",
	Else:          "ELSE",
	While:         "WHILE",
	For:           "FOR",
	Do:            "DO",
	Function:      "FUNCTION",
	Return:        "RETURN",
	Print:         "PRINT",
	And:           "AND",
	Or:            "OR",
	Not:           "NOT",
	True:          "TRUE",
	False:         "FALSE",
	IntConst:      "INTEGER_CONST",
	FloatConst:    "FLOAT_CONST",
	StringLit:     "STRING_LITERAL",
	Plus:          "PLUS",
	Minus:         "MINUS",
	Star:          "MULTIPLY",
	Slash:         "DIVIDE",
	Assign:        "ASSIGN",
	EqEq:          "EQUALS",
	Lt:            "LESS_THAN",
	Gt:            "GREATER_THAN",
	Lte:           "LESS_EQUALS",
	Gte:           "GREATER_EQUALS",
	LParen:        "LPAREN",
	RParen:        "RPAREN",
	LBrace:        "LBRACE",
	RBrace:        "RBRACE",
	Semi:          "SEMICOLON",
	Ident:         "IDENTIFIER",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// LookupKeyword maps an identifier spelling to its keyword kind.
// Keywords match case-insensitively, so "While" is a keyword too.
func LookupKeyword(word string) (Kind, bool) {
	k, ok := KeywordMap[strings.ToLower(word)]
	return k, ok
}

// Token is a single lexeme. Immutable once produced by the scanner.
// ErrMsg is set only on Error-kind tokens that carry a non-fatal warning;
// such tokens stay in the stream so scanning continues unbroken.
type Token struct {
	Kind   Kind
	Value  string
	Line   int
	Column int
	ErrMsg string
}

// IsWarning reports whether the token is a non-fatal warning carrier.
func (t Token) IsWarning() bool { return t.Kind == Error && t.ErrMsg != "" }
