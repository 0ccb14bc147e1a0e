// Package lexer tokenizes SQL source text for the parser.
package lexer

import (
	"sync"

	"github.com/freeeve/minidb/internal/status"
	"github.com/freeeve/minidb/internal/token"
)

// Lexer scans a SQL source string into token.Items. It is purely forward:
// Peek buffers the one token it scans ahead, so peeking twice in a row is
// idempotent.
type Lexer struct {
	input   string
	pos     int
	start   int
	line    int
	linePos int

	peeked    bool
	peekedTok token.Item
	peekedErr error
}

var pool = sync.Pool{New: func() any { return &Lexer{} }}

// New returns a Lexer over input.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Get returns a pooled Lexer reset to scan input.
func Get(input string) *Lexer {
	l := pool.Get().(*Lexer)
	l.Reset(input)
	return l
}

// Put returns l to the pool. Callers must not use l afterward.
func Put(l *Lexer) { pool.Put(l) }

// Reset rewinds the lexer to scan a new input string from the start.
func (l *Lexer) Reset(input string) {
	l.input = input
	l.pos = 0
	l.start = 0
	l.line = 1
	l.linePos = 0
	l.peeked = false
	l.peekedErr = nil
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (token.Item, error) {
	if l.peeked {
		l.peeked = false
		return l.peekedTok, l.peekedErr
	}
	return l.scan()
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (token.Item, error) {
	if !l.peeked {
		l.peekedTok, l.peekedErr = l.scan()
		l.peeked = true
	}
	return l.peekedTok, l.peekedErr
}

func (l *Lexer) scan() (token.Item, error) {
	l.skipWhitespaceAndComments()
	l.start = l.pos

	if l.pos >= len(l.input) {
		return l.item(token.EOF, ""), nil
	}

	ch := l.input[l.pos]
	switch {
	case ch == '(':
		l.pos++
		return l.item(token.LPAREN, "("), nil
	case ch == ')':
		l.pos++
		return l.item(token.RPAREN, ")"), nil
	case ch == ',':
		l.pos++
		return l.item(token.COMMA, ","), nil
	case ch == ';':
		l.pos++
		return l.item(token.SEMICOLON, ";"), nil
	case ch == '.':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.scanNumber(), nil
		}
		l.pos++
		return l.item(token.DOT, "."), nil
	case ch == '+':
		l.pos++
		return l.item(token.PLUS, "+"), nil
	case ch == '-':
		l.pos++
		return l.item(token.MINUS, "-"), nil
	case ch == '*':
		l.pos++
		return l.item(token.ASTERISK, "*"), nil
	case ch == '/':
		l.pos++
		return l.item(token.SLASH, "/"), nil
	case ch == '=':
		l.pos++
		return l.item(token.EQ, "="), nil
	case ch == '!':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return l.item(token.NEQ, "!="), nil
		}
		l.pos++
		return l.item(token.ILLEGAL, "!"), nil
	case ch == '<':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return l.item(token.LTE, "<="), nil
		}
		l.pos++
		return l.item(token.LT, "<"), nil
	case ch == '>':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return l.item(token.GTE, ">="), nil
		}
		l.pos++
		return l.item(token.GT, ">"), nil
	case ch == '\'' || ch == '"':
		return l.scanString(ch)
	case isIdentStart(ch):
		return l.scanIdentifier(), nil
	case isDigit(ch):
		return l.scanNumber(), nil
	}

	l.pos++
	return l.item(token.ILLEGAL, string(ch)), nil
}

func (l *Lexer) item(k token.Kind, v string) token.Item {
	return token.Item{
		Kind:  k,
		Value: v,
		Pos: token.Pos{
			Offset: l.start,
			Line:   l.line,
			Col:    l.start - l.linePos + 1,
		},
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case ch == '\n':
			l.pos++
			l.line++
			l.linePos = l.pos
		case ch == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '-':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier() token.Item {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	raw := l.input[l.start:l.pos]
	upper := toUpper(raw)
	return l.item(token.LookupUpper(upper), upper)
}

func (l *Lexer) scanNumber() token.Item {
	kind := token.NUMBER_INT
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		kind = token.NUMBER_DECIMAL
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return l.item(kind, l.input[l.start:l.pos])
}

// scanString reads a single- or double-quoted literal, interpreting the
// escape sequences \n \t \r \\ \' \". An unterminated string is a fatal
// lex error — the literal's case is preserved exactly as written.
func (l *Lexer) scanString(quote byte) (token.Item, error) {
	startPos := token.Pos{Offset: l.start, Line: l.line, Col: l.start - l.linePos + 1}
	l.pos++ // skip opening quote
	var buf []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			l.pos++
			return token.Item{Kind: token.STRING_LITERAL, Value: string(buf), Pos: startPos}, nil
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			switch l.input[l.pos+1] {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			case '\\':
				buf = append(buf, '\\')
			case '\'':
				buf = append(buf, '\'')
			case '"':
				buf = append(buf, '"')
			default:
				buf = append(buf, '\\', l.input[l.pos+1])
			}
			l.pos += 2
			continue
		}
		if ch == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		buf = append(buf, ch)
		l.pos++
	}
	return token.Item{}, status.ParseErrorf("line %d, col %d: unterminated string literal", startPos.Line, startPos.Col)
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func toUpper(s string) string {
	b := make([]byte, len(s))
	changed := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
			changed = true
		}
		b[i] = c
	}
	if !changed {
		return s
	}
	return string(b)
}
