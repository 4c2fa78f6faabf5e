package symtab

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInsertAndTypeInference(t *testing.T) {
	table := NewTable()
	cases := []struct {
		value any
		want  Type
	}{
		{int64(3), Integer},
		{float64(1.5), Float},
		{"text", String},
		{true, Boolean},
		{nil, Unknown},
	}
	for i, tc := range cases {
		name := string(rune('a' + i))
		sym := table.Insert(name, tc.value, 1)
		if sym.Type != tc.want {
			t.Errorf("Insert(%v) type = %s, want %s", tc.value, sym.Type, tc.want)
		}
	}
}

func TestInsertUpdatesInPlace(t *testing.T) {
	table := NewTable()
	first := table.Insert("x", int64(1), 2)
	second := table.Insert("x", int64(2), 5)

	if first != second {
		t.Fatal("re-insert created a second entry")
	}
	if len(table.AllSymbols()) != 1 {
		t.Fatalf("table holds %d symbols, want 1", len(table.AllSymbols()))
	}
	if second.Value != int64(2) {
		t.Errorf("value = %v, want 2", second.Value)
	}
	if second.Info.DeclaredLine != 2 {
		t.Errorf("declared line = %d, want the first declaration's 2", second.Info.DeclaredLine)
	}
	if second.Info.LastModifiedLine != 5 {
		t.Errorf("last modified = %d, want 5", second.Info.LastModifiedLine)
	}
}

func TestLookupRecordsUsage(t *testing.T) {
	table := NewTable()
	table.Insert("x", int64(1), 1)

	table.Lookup("x", true, 3)
	table.Lookup("x", true, 7)
	table.Lookup("x", true, 3)
	table.Lookup("x", false, 9)

	sym := table.Lookup("x", false, 0)
	if diff := cmp.Diff([]int{3, 7}, sym.UsedLines()); diff != "" {
		t.Errorf("used lines mismatch (-want +got):\n%s", diff)
	}
	if sym.UsageCount() != 2 {
		t.Errorf("usage count = %d, want 2", sym.UsageCount())
	}
}

func TestLookupMissing(t *testing.T) {
	table := NewTable()
	if sym := table.Lookup("ghost", true, 1); sym != nil {
		t.Errorf("Lookup(ghost) = %+v, want nil", sym)
	}
}

func TestUpdate(t *testing.T) {
	table := NewTable()
	table.Insert("x", nil, 1)

	if !table.Update("x", float64(2.5), 4) {
		t.Fatal("Update(x) = false, want true")
	}
	if table.Update("ghost", int64(1), 4) {
		t.Error("Update(ghost) = true, want false")
	}
	sym := table.Lookup("x", false, 0)
	if sym.Type != Float || !sym.Info.IsInitialized {
		t.Errorf("x = %s initialized=%v, want Float initialized", sym.Type, sym.Info.IsInitialized)
	}
}

func TestSetExpression(t *testing.T) {
	table := NewTable()
	sym := table.Insert("y", int64(7), 1)
	sym.SetExpression("(x + 1)")

	if sym.Type != Expression {
		t.Errorf("type = %s, want Expression", sym.Type)
	}
	if sym.Expr != "(x + 1)" {
		t.Errorf("expr = %q", sym.Expr)
	}
	if sym.Value != int64(7) {
		t.Errorf("value = %v, want 7 untouched", sym.Value)
	}
}

func TestUninitializedNames(t *testing.T) {
	table := NewTable()
	table.Insert("a", nil, 1)
	table.Insert("b", int64(1), 2)

	if diff := cmp.Diff([]string{"a"}, table.UninitializedNames()); diff != "" {
		t.Errorf("uninitialized mismatch (-want +got):\n%s", diff)
	}
}

func TestUnusedNamesIgnoreDeclarationLine(t *testing.T) {
	table := NewTable()
	table.Insert("a", int64(1), 2)
	table.Lookup("a", true, 2) // self-usage at the declaration
	table.Insert("b", int64(2), 3)
	table.Lookup("b", true, 3)
	table.Lookup("b", true, 5)

	if diff := cmp.Diff([]string{"a"}, table.UnusedNames()); diff != "" {
		t.Errorf("unused mismatch (-want +got):\n%s", diff)
	}
}

func TestScopes(t *testing.T) {
	table := NewTable()
	table.Insert("outer", int64(1), 1)

	table.EnterScope()
	table.Insert("inner", int64(2), 2)
	if table.Lookup("inner", false, 0) == nil {
		t.Fatal("inner missing inside its scope")
	}
	table.ExitScope()

	if table.Lookup("inner", false, 0) != nil {
		t.Error("inner survived ExitScope")
	}
	if table.Lookup("outer", false, 0) == nil {
		t.Error("outer dropped by ExitScope")
	}
}
