// Package compiler ties the pipeline together: scan, parse, lower. It is
// the one entry point hosts use; the sub-packages stay independently
// usable.
package compiler

import (
	"github.com/cespare/xxhash/v2"

	"minic/pkg/ast"
	"minic/pkg/config"
	"minic/pkg/ir"
	"minic/pkg/lexer"
	"minic/pkg/parser"
	"minic/pkg/symtab"
	"minic/pkg/token"
	"minic/pkg/util"
)

// Result is everything one successful compilation produced. The token
// stream comes from a dedicated scan pass; the parser consumes its own.
type Result struct {
	Tokens      []token.Token
	Program     []*ast.Node
	Symbols     *symtab.Table
	Code        []ir.Instruction
	Fingerprint uint64
	Warnings    []*util.Diagnostic
}

// Compiler caches the last successful compilation by source fingerprint.
// Hosts that recompile on every edit get a free pass when the buffer has
// not changed. Failed compilations are never cached.
type Compiler struct {
	cfg *config.Config

	lastHash   uint64
	lastResult *Result
}

func New(cfg *config.Config) *Compiler {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Compiler{cfg: cfg}
}

// Compile runs the full pipeline over source. On a fatal lexical or
// syntax condition it returns a *util.Diagnostic error and no result.
func (c *Compiler) Compile(source string) (*Result, error) {
	sum := xxhash.Sum64String(source)
	if c.lastResult != nil && c.lastHash == sum {
		return c.lastResult, nil
	}

	tokens, lexWarnings, err := scanAll(source, c.cfg)
	if err != nil {
		return nil, err
	}

	table := symtab.NewTable()
	p := parser.NewParser(lexer.NewScanner(source, c.cfg), table, c.cfg)
	program, err := p.Parse()
	if err != nil {
		return nil, err
	}

	g := ir.NewGenerator(c.cfg)
	g.Generate(program)

	res := &Result{
		Tokens:      tokens,
		Program:     program,
		Symbols:     table,
		Code:        g.Code(),
		Fingerprint: sum,
		Warnings:    collectWarnings(c.cfg, lexWarnings, table),
	}
	c.lastHash, c.lastResult = sum, res
	return res, nil
}

// Compile is the one-shot form for callers without a Compiler to reuse.
func Compile(source string, cfg *config.Config) (*Result, error) {
	return New(cfg).Compile(source)
}

// scanAll drains a scanner into a full token stream, EOF token included.
// Warning tokens stay in the stream.
func scanAll(source string, cfg *config.Config) ([]token.Token, []token.Token, error) {
	sc := lexer.NewScanner(source, cfg)
	var tokens, warnings []token.Token
	for {
		tok, err := sc.Next()
		if err != nil {
			return nil, nil, err
		}
		tokens = append(tokens, tok)
		if tok.IsWarning() {
			warnings = append(warnings, tok)
		}
		if tok.Kind == token.EOF {
			return tokens, warnings, nil
		}
	}
}

// collectWarnings turns scan-time warning tokens and post-hoc symbol
// table queries into renderable diagnostics, gated by the configured
// warning switches.
func collectWarnings(cfg *config.Config, lexWarnings []token.Token, table *symtab.Table) []*util.Diagnostic {
	var ds []*util.Diagnostic
	for _, tok := range lexWarnings {
		ds = append(ds, util.Warnf(tok, "%s", tok.ErrMsg))
	}
	if cfg.IsWarningEnabled(config.WarnUnused) {
		for _, name := range table.UnusedNames() {
			sym := table.Lookup(name, false, 0)
			at := token.Token{Value: name, Line: sym.Info.DeclaredLine, Column: 1}
			ds = append(ds, util.Warnf(at, "variable '%s' is declared but never used", name))
		}
	}
	if cfg.IsWarningEnabled(config.WarnUninitialized) {
		for _, name := range table.UninitializedNames() {
			sym := table.Lookup(name, false, 0)
			at := token.Token{Value: name, Line: sym.Info.DeclaredLine, Column: 1}
			ds = append(ds, util.Warnf(at, "variable '%s' never receives a value", name))
		}
	}
	return ds
}
