package lexer

import (
	"strings"
	"unicode"

	"minic/pkg/config"
	"minic/pkg/token"
	"minic/pkg/util"
)

// Scanner turns a source buffer into a token stream, one Next call at a
// time. It is single-use: to rescan, construct a fresh Scanner over the
// same text.
type Scanner struct {
	source []rune
	pos    int
	line   int
	column int
	cfg    *config.Config

	warnings int
}

func NewScanner(source string, cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Scanner{source: []rune(source), line: 1, column: 1, cfg: cfg}
}

// WarningCount reports how many warning tokens have been produced so far.
func (s *Scanner) WarningCount() int { return s.warnings }

// Next returns the next token, or a *util.Diagnostic error on a fatal
// lexical condition. After the error, the scanner is dead.
func (s *Scanner) Next() (token.Token, error) {
	for {
		s.skipWhitespace()
		startCol, startLine := s.column, s.line

		if s.isAtEnd() {
			return token.Token{Kind: token.EOF, Line: startLine, Column: startCol}, nil
		}

		ch := s.peek()
		if unicode.IsDigit(ch) {
			return s.number(startCol, startLine)
		}
		if unicode.IsLetter(ch) || ch == '_' {
			return s.identifier(startCol, startLine)
		}
		if ch == '"' {
			return s.stringLiteral(startCol, startLine)
		}

		s.advance()
		switch ch {
		case '+':
			return s.makeToken(token.Plus, "+", startCol, startLine), nil
		case '-':
			return s.makeToken(token.Minus, "-", startCol, startLine), nil
		case '*':
			return s.makeToken(token.Star, "*", startCol, startLine), nil
		case '/':
			if s.peek() == '/' || s.peek() == '*' {
				if err := s.skipComment(startCol, startLine); err != nil {
					return token.Token{}, err
				}
				continue
			}
			return s.makeToken(token.Slash, "/", startCol, startLine), nil
		case '=':
			if s.match('=') {
				return s.makeToken(token.EqEq, "==", startCol, startLine), nil
			}
			return s.makeToken(token.Assign, "=", startCol, startLine), nil
		case '>':
			if s.match('=') {
				return s.makeToken(token.Gte, ">=", startCol, startLine), nil
			}
			return s.makeToken(token.Gt, ">", startCol, startLine), nil
		case '<':
			if s.match('=') {
				return s.makeToken(token.Lte, "<=", startCol, startLine), nil
			}
			return s.makeToken(token.Lt, "<", startCol, startLine), nil
		case '(':
			return s.makeToken(token.LParen, "(", startCol, startLine), nil
		case ')':
			return s.makeToken(token.RParen, ")", startCol, startLine), nil
		case '{':
			return s.makeToken(token.LBrace, "{", startCol, startLine), nil
		case '}':
			return s.makeToken(token.RBrace, "}", startCol, startLine), nil
		case ';':
			return s.makeToken(token.Semi, ";", startCol, startLine), nil
		}

		bad := token.Token{Value: string(ch), Line: startLine, Column: startCol}
		return token.Token{}, util.Lexf(bad, "unrecognized character: '%c'", ch)
	}
}

func (s *Scanner) peek() rune {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *Scanner) peekNext() rune {
	if s.pos+1 >= len(s.source) {
		return 0
	}
	return s.source[s.pos+1]
}

func (s *Scanner) advance() rune {
	if s.isAtEnd() {
		return 0
	}
	ch := s.source[s.pos]
	if ch == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	s.pos++
	return ch
}

func (s *Scanner) match(expected rune) bool {
	if s.isAtEnd() || s.source[s.pos] != expected {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) isAtEnd() bool { return s.pos >= len(s.source) }

func (s *Scanner) makeToken(kind token.Kind, value string, startCol, startLine int) token.Token {
	return token.Token{Kind: kind, Value: value, Line: startLine, Column: startCol}
}

func (s *Scanner) skipWhitespace() {
	for !s.isAtEnd() && unicode.IsSpace(s.peek()) {
		s.advance()
	}
}

// skipComment is entered with the leading '/' already consumed and the
// cursor on the second '/' or the '*'.
func (s *Scanner) skipComment(startCol, startLine int) error {
	if s.peek() == '/' {
		for !s.isAtEnd() && s.peek() != '\n' {
			s.advance()
		}
		return nil
	}

	s.advance() // '*'
	for !s.isAtEnd() {
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			return nil
		}
		s.advance()
	}
	open := token.Token{Value: "/*", Line: startLine, Column: startCol}
	return util.Lexf(open, "unterminated block comment")
}

func (s *Scanner) number(startCol, startLine int) (token.Token, error) {
	var sb strings.Builder
	kind := token.IntConst
	hasDecimal := false

	for !s.isAtEnd() && (unicode.IsDigit(s.peek()) || s.peek() == '.') {
		if s.peek() == '.' {
			if hasDecimal {
				bad := token.Token{Value: sb.String(), Line: startLine, Column: startCol}
				return token.Token{}, util.Lexf(bad, "invalid float literal: multiple decimal points")
			}
			hasDecimal = true
			kind = token.FloatConst
		}
		sb.WriteRune(s.advance())
	}
	return s.makeToken(kind, sb.String(), startCol, startLine), nil
}

func (s *Scanner) stringLiteral(startCol, startLine int) (token.Token, error) {
	s.advance() // opening quote
	var sb strings.Builder

	for !s.isAtEnd() && s.peek() != '"' {
		if s.peek() == '\\' {
			s.advance()
			esc := s.peek()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				bad := token.Token{Value: "\\" + string(esc), Line: s.line, Column: s.column}
				return token.Token{}, util.Lexf(bad, "invalid escape sequence: \\%c", esc)
			}
			s.advance()
			continue
		}
		sb.WriteRune(s.advance())
	}

	if s.isAtEnd() {
		open := token.Token{Value: "\"", Line: startLine, Column: startCol}
		return token.Token{}, util.Lexf(open, "unterminated string literal")
	}
	s.advance() // closing quote
	return s.makeToken(token.StringLit, sb.String(), startCol, startLine), nil
}

func (s *Scanner) identifier(startCol, startLine int) (token.Token, error) {
	var sb strings.Builder
	for !s.isAtEnd() && (unicode.IsLetter(s.peek()) || unicode.IsDigit(s.peek()) || s.peek() == '_') {
		sb.WriteRune(s.advance())
	}
	word := sb.String()

	if len(word) > s.cfg.MaxIdentLen && s.cfg.IsWarningEnabled(config.WarnLongIdent) {
		s.warnings++
		tok := s.makeToken(token.Error, word, startCol, startLine)
		tok.ErrMsg = "identifier too long: " + word[:s.cfg.MaxIdentLen] + "..."
		return tok, nil
	}

	if kind, ok := token.LookupKeyword(word); ok {
		return s.makeToken(kind, word, startCol, startLine), nil
	}
	return s.makeToken(token.Ident, word, startCol, startLine), nil
}
