// Package symtab implements the symbol table written by the parser during
// its single pass and read afterward by the host's display surfaces.
package symtab

import "sort"

type Type int

const (
	Unknown Type = iota
	Boolean
	Integer
	Float
	String
	Expression // value is an unresolved formula
	Array      // reserved, unused by the current grammar
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "Boolean"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	case Expression:
		return "Expression"
	case Array:
		return "Array"
	}
	return "Unknown"
}

// Info tracks a symbol's usage history. UsedLines only grows.
type Info struct {
	DeclaredLine     int
	LastModifiedLine int
	UsedLines        map[int]struct{}
	IsInitialized    bool
	ScopeLevel       int
}

// Symbol is one declared name. Value holds a concrete int64, float64,
// string or bool once known; Expr holds the textual formula when the last
// assignment could not be resolved.
type Symbol struct {
	Name  string
	Value any
	Type  Type
	Expr  string
	Info  Info
}

func newSymbol(name string, value any, line, scope int) *Symbol {
	s := &Symbol{
		Name:  name,
		Value: value,
		Type:  inferType(value),
		Info:  Info{DeclaredLine: line, UsedLines: make(map[int]struct{}), ScopeLevel: scope},
	}
	return s
}

func inferType(value any) Type {
	switch value.(type) {
	case nil:
		return Unknown
	case bool:
		return Boolean
	case int64:
		return Integer
	case float64:
		return Float
	case string:
		return String
	}
	return Unknown
}

// UpdateValue stores a concrete value and marks the symbol initialized.
func (s *Symbol) UpdateValue(value any, line int) {
	s.Value = value
	s.Type = inferType(value)
	s.Info.LastModifiedLine = line
	s.Info.IsInitialized = true
}

// SetExpression records an unresolved formula as the symbol's value form.
func (s *Symbol) SetExpression(expr string) {
	s.Expr = expr
	s.Type = Expression
}

func (s *Symbol) RecordUsage(line int) {
	s.Info.UsedLines[line] = struct{}{}
}

func (s *Symbol) UsageCount() int { return len(s.Info.UsedLines) }

// UsedLines returns the recorded usage lines in ascending order.
func (s *Symbol) UsedLines() []int {
	lines := make([]int, 0, len(s.Info.UsedLines))
	for l := range s.Info.UsedLines {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines
}

// Table maps names to symbols. One Table lives for one compilation; the
// parser writes it, later consumers only read.
type Table struct {
	symbols    map[string]*Symbol
	scope      int
	scopeStack []map[string]struct{}
}

func NewTable() *Table {
	return &Table{
		symbols:    make(map[string]*Symbol),
		scopeStack: []map[string]struct{}{make(map[string]struct{})},
	}
}

// EnterScope opens a nested scope level. The current grammar never calls
// this; the capability is kept for a block-scoped extension.
func (t *Table) EnterScope() {
	t.scope++
	t.scopeStack = append(t.scopeStack, make(map[string]struct{}))
}

// ExitScope drops every name declared in the current scope level.
func (t *Table) ExitScope() {
	if t.scope == 0 {
		return
	}
	for name := range t.scopeStack[t.scope] {
		delete(t.symbols, name)
	}
	t.scopeStack = t.scopeStack[:t.scope]
	t.scope--
}

// Insert creates a symbol or, if the name already exists, updates it in
// place. A duplicate entry is never created.
func (t *Table) Insert(name string, value any, line int) *Symbol {
	if sym, ok := t.symbols[name]; ok {
		sym.UpdateValue(value, line)
		return sym
	}
	sym := newSymbol(name, value, line, t.scope)
	t.symbols[name] = sym
	t.scopeStack[t.scope][name] = struct{}{}
	return sym
}

// Lookup returns the symbol for name, or nil. With recordUsage it appends
// line to the symbol's used-line set.
func (t *Table) Lookup(name string, recordUsage bool, line int) *Symbol {
	sym := t.symbols[name]
	if sym != nil && recordUsage {
		sym.RecordUsage(line)
	}
	return sym
}

// Update stores value on an existing symbol; reports whether name existed.
func (t *Table) Update(name string, value any, line int) bool {
	if sym, ok := t.symbols[name]; ok {
		sym.UpdateValue(value, line)
		return true
	}
	return false
}

// AllSymbols returns the live name→symbol mapping for read-only display.
func (t *Table) AllSymbols() map[string]*Symbol { return t.symbols }

// Names returns all symbol names in ascending order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.symbols))
	for name := range t.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UninitializedNames lists symbols that never received a concrete value.
func (t *Table) UninitializedNames() []string {
	var names []string
	for name, sym := range t.symbols {
		if !sym.Info.IsInitialized {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// UnusedNames lists symbols never read outside their declaration. The
// parser records a usage at the declaration line itself, so that single
// self-usage does not count.
func (t *Table) UnusedNames() []string {
	var names []string
	for name, sym := range t.symbols {
		used := false
		for line := range sym.Info.UsedLines {
			if line != sym.Info.DeclaredLine {
				used = true
				break
			}
		}
		if !used {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
