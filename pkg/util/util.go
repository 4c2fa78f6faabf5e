// Package util provides the structured diagnostics shared by every stage of
// the pipeline. Stages return *Diagnostic as an error; nothing in the library
// prints or exits, the host decides how a diagnostic is presented.
package util

import (
	"fmt"
	"io"
	"strings"

	"minic/pkg/token"
)

type DiagKind int

const (
	LexicalError DiagKind = iota
	SyntaxError
	Warning
)

func (k DiagKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	case Warning:
		return "warning"
	}
	return "error"
}

// Diagnostic is a single finding with 1-based position context. Lexical and
// syntax diagnostics are fatal to the compilation that produced them;
// warnings are advisory data.
type Diagnostic struct {
	Kind    DiagKind
	Message string
	Line    int
	Column  int
	Width   int // source width of the offending lexeme, for caret rendering
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s at line %d, column %d", d.Kind, d.Message, d.Line, d.Column)
}

func Lexf(tok token.Token, format string, args ...any) *Diagnostic {
	return newDiag(LexicalError, tok, format, args...)
}

func Synf(tok token.Token, format string, args ...any) *Diagnostic {
	return newDiag(SyntaxError, tok, format, args...)
}

func Warnf(tok token.Token, format string, args ...any) *Diagnostic {
	return newDiag(Warning, tok, format, args...)
}

func newDiag(kind DiagKind, tok token.Token, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
		Width:   len(tok.Value),
	}
}

const (
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiGreen  = "\033[32m"
	ansiReset  = "\033[0m"
)

// Render writes a compiler-style report for d: a "name:line:col: kind: msg"
// header followed by the offending source line and a caret. Color toggles
// ANSI escapes for terminal output.
func Render(w io.Writer, name string, src []rune, d *Diagnostic, color bool) {
	label := d.Kind.String()
	if color {
		tint := ansiRed
		if d.Kind == Warning {
			tint = ansiYellow
		}
		label = tint + label + ansiReset
	}
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", name, d.Line, d.Column, label, d.Message)
	printSourceLine(w, src, d, color)
}

func printSourceLine(w io.Writer, src []rune, d *Diagnostic, color bool) {
	if d.Line <= 0 || len(src) == 0 {
		return
	}

	lineStart := 0
	lineNum := d.Line
	for i, r := range src {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}
	lineEnd := len(src)
	for i := lineStart; i < len(src); i++ {
		if src[i] == '\n' {
			lineEnd = i
			break
		}
	}
	if lineStart >= lineEnd && lineStart >= len(src) {
		return
	}

	fmt.Fprintf(w, "  %s\n", string(src[lineStart:lineEnd]))

	pad := d.Column - 1
	if pad < 0 {
		pad = 0
	}
	caret := "^"
	if d.Width > 1 {
		caret += strings.Repeat("~", d.Width-1)
	}
	if color {
		caret = ansiGreen + caret + ansiReset
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), caret)
}
