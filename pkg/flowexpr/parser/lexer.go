package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
)

const eof = -1

// TokenType identifies a lexical token.
type TokenType int

// Token types.
const (
	TokenEOF TokenType = iota
	TokenString
	TokenNumber
	TokenName
	TokenVariable
	TokenOr
	TokenAnd
	TokenNot
	TokenEqual
	TokenNotEqual
	TokenLess
	TokenLessOrEqual
	TokenGreater
	TokenGreaterOrEqual
	TokenInstanceof
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenQuestion
	TokenColon
	TokenLParen
	TokenRParen
	TokenDot
	TokenTrue
	TokenFalse
	TokenNull
)

var tokenNames = map[TokenType]string{
	TokenEOF:            "end of expression",
	TokenString:         "string",
	TokenNumber:         "number",
	TokenName:           "name",
	TokenVariable:       "variable",
	TokenOr:             "or",
	TokenAnd:            "and",
	TokenNot:            "not",
	TokenEqual:          "==",
	TokenNotEqual:       "!=",
	TokenLess:           "<",
	TokenLessOrEqual:    "<=",
	TokenGreater:        ">",
	TokenGreaterOrEqual: ">=",
	TokenInstanceof:     "instanceof",
	TokenPlus:           "+",
	TokenMinus:          "-",
	TokenStar:           "*",
	TokenSlash:          "/",
	TokenPercent:        "%",
	TokenQuestion:       "?",
	TokenColon:          ":",
	TokenLParen:         "(",
	TokenRParen:         ")",
	TokenDot:            ".",
	TokenTrue:           "true",
	TokenFalse:          "false",
	TokenNull:           "null",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// Token is one lexeme. Value holds the source text; variables omit the #.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
	End   int
}

// keywords are matched case-insensitively.
var keywords = map[string]TokenType{
	"or":         TokenOr,
	"and":        TokenAnd,
	"not":        TokenNot,
	"instanceof": TokenInstanceof,
	"true":       TokenTrue,
	"false":      TokenFalse,
	"null":       TokenNull,
}

// Lexer converts an expression into tokens using the scanning technique
// from Rob Pike's "Lexical Scanning in Go".
//
// Positions are offsets into the full source, so a Lexer started part way
// through a template reports positions a caller can show against the
// whole template text.
type Lexer struct {
	source  string
	limit   int
	start   int
	current int
	width   int
}

// NewLexer scans all of input.
func NewLexer(input string) *Lexer {
	return newRangeLexer(input, 0, len(input))
}

func newRangeLexer(source string, start, end int) *Lexer {
	return &Lexer{
		source:  source,
		limit:   end,
		start:   start,
		current: start,
	}
}

// Next returns the next token. At the end of input it keeps returning
// TokenEOF.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.newToken(TokenEOF), nil
	}

	switch ch {
	case '\'', '"':
		return l.scanString(ch)
	case '#':
		return l.scanVariable()
	case '(':
		return l.newToken(TokenLParen), nil
	case ')':
		return l.newToken(TokenRParen), nil
	case '+':
		return l.newToken(TokenPlus), nil
	case '-':
		return l.newToken(TokenMinus), nil
	case '*':
		return l.newToken(TokenStar), nil
	case '/':
		return l.newToken(TokenSlash), nil
	case '%':
		return l.newToken(TokenPercent), nil
	case '?':
		return l.newToken(TokenQuestion), nil
	case ':':
		return l.newToken(TokenColon), nil
	case '.':
		return l.newToken(TokenDot), nil
	case '=':
		if l.acceptRune('=') {
			return l.newToken(TokenEqual), nil
		}
		return Token{}, l.errorf("unexpected '=', did you mean '=='")
	case '!':
		if l.acceptRune('=') {
			return l.newToken(TokenNotEqual), nil
		}
		return l.newToken(TokenNot), nil
	case '<':
		if l.acceptRune('=') {
			return l.newToken(TokenLessOrEqual), nil
		}
		return l.newToken(TokenLess), nil
	case '>':
		if l.acceptRune('=') {
			return l.newToken(TokenGreaterOrEqual), nil
		}
		return l.newToken(TokenGreater), nil
	case '|':
		if l.acceptRune('|') {
			return l.newToken(TokenOr), nil
		}
		return Token{}, l.errorf("unexpected '|', did you mean '||'")
	case '&':
		if l.acceptRune('&') {
			return l.newToken(TokenAnd), nil
		}
		return Token{}, l.errorf("unexpected '&', did you mean '&&'")
	}

	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}
	if isNameStart(ch) {
		l.backup()
		return l.scanName(), nil
	}
	return Token{}, l.errorf("unexpected character %q", ch)
}

// scanString reads a quoted string. The opening quote has been consumed;
// a doubled quote is an escaped quote. The token keeps both quotes.
func (l *Lexer) scanString(quote rune) (Token, error) {
	for {
		switch l.nextRune() {
		case quote:
			if !l.acceptRune(quote) {
				return l.newToken(TokenString), nil
			}
		case eof:
			return Token{}, l.errorAt(l.start, "unterminated string literal")
		}
	}
}

func (l *Lexer) scanVariable() (Token, error) {
	if !isNameStart(l.peek()) {
		return Token{}, l.errorf("expected a variable name after '#'")
	}
	l.acceptAll(isNamePart)
	t := l.newToken(TokenVariable)
	t.Value = t.Value[1:]
	return t, nil
}

// scanNumber reads digits with an optional fraction and exponent.
func (l *Lexer) scanNumber() (Token, error) {
	l.acceptAll(isDigit)
	if l.peek() == '.' {
		l.nextRune()
		if !isDigit(l.peek()) {
			return Token{}, l.errorf("expected digits after decimal point")
		}
		l.acceptAll(isDigit)
	}
	if r := l.peek(); r == 'e' || r == 'E' {
		l.nextRune()
		l.acceptRunes("+-")
		if !isDigit(l.peek()) {
			return Token{}, l.errorf("expected digits in exponent")
		}
		l.acceptAll(isDigit)
	}
	if isNameStart(l.peek()) {
		return Token{}, l.errorf("invalid number literal")
	}
	return l.newToken(TokenNumber), nil
}

func (l *Lexer) scanName() Token {
	l.acceptAll(isNamePart)
	t := l.newToken(TokenName)
	if kw, ok := keywords[strings.ToLower(t.Value)]; ok {
		t.Type = kw
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:  tt,
		Value: l.source[l.start:l.current],
		Pos:   l.start,
		End:   l.current,
	}
	l.start = l.current
	return t
}

func (l *Lexer) errorf(format string, args ...any) error {
	return l.errorAt(l.start, format, args...)
}

func (l *Lexer) errorAt(pos int, format string, args ...any) error {
	return fxerrors.NewSyntaxError(l.source, pos, format, args...)
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.limit {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.source[l.current:l.limit])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) peek() rune {
	r := l.nextRune()
	l.backup()
	return r
}

func (l *Lexer) acceptRune(r rune) bool {
	if l.nextRune() == r {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptRunes(valid string) bool {
	if strings.ContainsRune(valid, l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) {
	for isValid(l.nextRune()) {
	}
	l.backup()
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(unicode.IsSpace)
	l.start = l.current
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return isNameStart(r) || isDigit(r)
}
