package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"minic/pkg/token"
	"minic/pkg/util"
)

func scanKinds(t *testing.T, source string) []token.Kind {
	t.Helper()
	sc := NewScanner(source, nil)
	var kinds []token.Kind
	for {
		tok, err := sc.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			return kinds
		}
	}
}

func TestScanStatement(t *testing.T) {
	got := scanKinds(t, "program;\nvar x = 5;")
	want := []token.Kind{
		token.Program, token.Semi,
		token.Var, token.Ident, token.Assign, token.IntConst, token.Semi,
		token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestScanPositions(t *testing.T) {
	sc := NewScanner("program;\nvar x = 5;", nil)
	wantCols := map[string][2]int{
		"program": {1, 1},
		"var":     {2, 1},
		"x":       {2, 5},
		"=":       {2, 7},
		"5":       {2, 9},
	}
	for {
		tok, err := sc.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tok.Kind == token.EOF {
			break
		}
		if want, ok := wantCols[tok.Value]; ok {
			if tok.Line != want[0] || tok.Column != want[1] {
				t.Errorf("%q at %d:%d, want %d:%d", tok.Value, tok.Line, tok.Column, want[0], want[1])
			}
		}
	}
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	for _, word := range []string{"while", "WHILE", "While"} {
		sc := NewScanner(word, nil)
		tok, err := sc.Next()
		if err != nil {
			t.Fatalf("Next(%q): %v", word, err)
		}
		if tok.Kind != token.While {
			t.Errorf("%q scanned as %s, want %s", word, tok.Kind, token.While)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	got := scanKinds(t, "x // trailing\n/* block\nspanning */ y")
	want := []token.Kind{token.Ident, token.Ident, token.EOF}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestStringEscapes(t *testing.T) {
	sc := NewScanner(`"a\n\t\"b\\"`, nil)
	tok, err := sc.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Kind != token.StringLit {
		t.Fatalf("kind = %s, want %s", tok.Kind, token.StringLit)
	}
	if want := "a\n\t\"b\\"; tok.Value != want {
		t.Errorf("value = %q, want %q", tok.Value, want)
	}
}

func TestFloatLiteral(t *testing.T) {
	sc := NewScanner("3.25", nil)
	tok, err := sc.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Kind != token.FloatConst || tok.Value != "3.25" {
		t.Errorf("got %s %q, want FLOAT_CONST \"3.25\"", tok.Kind, tok.Value)
	}
}

func TestFatalErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		substr string
	}{
		{"unterminated string", `"abc`, "unterminated string literal"},
		{"bad escape", `"a\q"`, "invalid escape sequence"},
		{"double decimal", "1.2.3", "multiple decimal points"},
		{"unterminated block comment", "/* open", "unterminated block comment"},
		{"unrecognized character", "@", "unrecognized character"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := NewScanner(tc.source, nil)
			var err error
			for err == nil {
				var tok token.Token
				tok, err = sc.Next()
				if err == nil && tok.Kind == token.EOF {
					t.Fatalf("scanned to EOF, want error containing %q", tc.substr)
				}
			}
			var d *util.Diagnostic
			if !errors.As(err, &d) {
				t.Fatalf("error type = %T, want *util.Diagnostic", err)
			}
			if d.Kind != util.LexicalError {
				t.Errorf("kind = %s, want lexical error", d.Kind)
			}
			if !strings.Contains(d.Message, tc.substr) {
				t.Errorf("message %q does not contain %q", d.Message, tc.substr)
			}
		})
	}
}

func TestLongIdentifierWarningToken(t *testing.T) {
	long := strings.Repeat("a", 40)
	sc := NewScanner(long, nil)
	tok, err := sc.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !tok.IsWarning() {
		t.Fatalf("token = %s, want warning token", tok.Kind)
	}
	if tok.Value != long {
		t.Errorf("value truncated to %q, want full identifier", tok.Value)
	}
	if !strings.HasPrefix(tok.ErrMsg, "identifier too long: ") {
		t.Errorf("ErrMsg = %q", tok.ErrMsg)
	}
	if sc.WarningCount() != 1 {
		t.Errorf("WarningCount = %d, want 1", sc.WarningCount())
	}
}
