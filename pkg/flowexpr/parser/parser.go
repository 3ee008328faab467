// Package parser turns expression source text into an ast.Node tree.
//
// The grammar, from lowest to highest precedence:
//
//	expression     = ternary
//	ternary        = or [ "?" ternary ":" ternary ]
//	or             = and { ( "or" | "||" ) and }
//	and            = relational { ( "and" | "&&" ) relational }
//	relational     = additive [ ( "==" | "!=" | "<" | "<=" | ">" | ">=" | "instanceof" ) additive ]
//	additive       = multiplicative { ( "+" | "-" ) multiplicative }
//	multiplicative = unary { ( "*" | "/" | "%" ) unary }
//	unary          = ( "!" | "not" | "-" ) unary | primary
//	primary        = string | number | "true" | "false" | "null"
//	               | "#" name | "T" "(" name { "." name } ")" | name
//	               | "(" expression ")"
//
// Keywords are case-insensitive. Strings use single or double quotes; the
// enclosing quote is escaped by doubling it.
package parser

import (
	"strconv"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/ast"
	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// Parse parses a complete expression.
func Parse(source string) (ast.Node, error) {
	return ParseRange(source, 0, len(source))
}

// ParseRange parses the expression in source[start:end]. Node spans and
// syntax error positions are offsets into source.
func ParseRange(source string, start, end int) (ast.Node, error) {
	if start < 0 || end > len(source) || start > end {
		return nil, fxerrors.NewSyntaxError(source, start, "invalid range [%d, %d)", start, end)
	}
	p := &parser{source: source, lex: newRangeLexer(source, start, end)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Type == TokenEOF {
		return nil, fxerrors.NewSyntaxError(source, p.tok.Pos, "empty expression")
	}

	node, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenEOF {
		return nil, p.unexpected()
	}
	return node, nil
}

type parser struct {
	source string
	lex    *Lexer
	tok    Token
}

func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.tok.Type != tt {
		return Token{}, fxerrors.NewSyntaxError(p.source, p.tok.Pos,
			"expected %s but found %s", tt, p.describe())
	}
	tok := p.tok
	return tok, p.advance()
}

func (p *parser) unexpected() error {
	return fxerrors.NewSyntaxError(p.source, p.tok.Pos, "unexpected %s", p.describe())
}

func (p *parser) describe() string {
	if p.tok.Type == TokenEOF {
		return TokenEOF.String()
	}
	return "'" + p.tok.Value + "'"
}

func (p *parser) expression() (ast.Node, error) {
	return p.ternary()
}

func (p *parser) ternary() (ast.Node, error) {
	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenQuestion {
		return cond, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	ifTrue, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	ifFalse, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return ast.NewTernary(cond.Span().Start, ifFalse.Span().End, cond, ifTrue, ifFalse), nil
}

func (p *parser) or() (ast.Node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = ast.NewOpOr(left.Span().Start, right.Span().End, left, right)
	}
	return left, nil
}

func (p *parser) and() (ast.Node, error) {
	left, err := p.relational()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.relational()
		if err != nil {
			return nil, err
		}
		left = ast.NewOpAnd(left.Span().Start, right.Span().End, left, right)
	}
	return left, nil
}

var relationalOps = map[TokenType]eval.Operation{
	TokenEqual:          eval.OpEqual,
	TokenNotEqual:       eval.OpNotEqual,
	TokenLess:           eval.OpLess,
	TokenLessOrEqual:    eval.OpLessOrEqual,
	TokenGreater:        eval.OpGreater,
	TokenGreaterOrEqual: eval.OpGreaterOrEqual,
}

func (p *parser) relational() (ast.Node, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	tt := p.tok.Type
	op, isOp := relationalOps[tt]
	if !isOp && tt != TokenInstanceof {
		return left, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.additive()
	if err != nil {
		return nil, err
	}
	start, end := left.Span().Start, right.Span().End
	if tt == TokenInstanceof {
		return ast.NewOperatorInstanceof(start, end, left, right), nil
	}
	return ast.NewOperator(op, start, end, left, right), nil
}

func (p *parser) additive() (ast.Node, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenPlus || p.tok.Type == TokenMinus {
		op := eval.OpAdd
		if p.tok.Type == TokenMinus {
			op = eval.OpSubtract
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewOperator(op, left.Span().Start, right.Span().End, left, right)
	}
	return left, nil
}

var multiplicativeOps = map[TokenType]eval.Operation{
	TokenStar:    eval.OpMultiply,
	TokenSlash:   eval.OpDivide,
	TokenPercent: eval.OpModulus,
}

func (p *parser) multiplicative() (ast.Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.tok.Type]
		if !ok {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = ast.NewOperator(op, left.Span().Start, right.Span().End, left, right)
	}
}

func (p *parser) unary() (ast.Node, error) {
	switch p.tok.Type {
	case TokenNot, TokenMinus:
		tok := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenMinus {
			return ast.NewNegate(tok.Pos, operand.Span().End, operand), nil
		}
		return ast.NewOpNot(tok.Pos, operand.Span().End, operand), nil
	}
	return p.primary()
}

func (p *parser) primary() (ast.Node, error) {
	tok := p.tok
	switch tok.Type {
	case TokenString:
		return ast.NewStringLiteral(tok.Value, tok.Pos, tok.End), p.advance()
	case TokenNumber:
		n, err := p.number(tok)
		if err != nil {
			return nil, err
		}
		return n, p.advance()
	case TokenTrue, TokenFalse:
		return ast.NewBooleanLiteral(tok.Type == TokenTrue, tok.Pos, tok.End), p.advance()
	case TokenNull:
		return ast.NewNullLiteral(tok.Pos, tok.End), p.advance()
	case TokenVariable:
		return ast.NewVariableReference(tok.Value, tok.Pos, tok.End), p.advance()
	case TokenName:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if (tok.Value == "T" || tok.Value == "t") && p.tok.Type == TokenLParen {
			return p.typeReference(tok)
		}
		return ast.NewPropertyReference(tok.Value, tok.Pos, tok.End), nil
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.unexpected()
}

func (p *parser) number(tok Token) (ast.Node, error) {
	if !strings.ContainsAny(tok.Value, ".eE") {
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err == nil {
			return ast.NewLongLiteral(v, tok.Pos, tok.End), nil
		}
	}
	v, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return nil, fxerrors.NewSyntaxError(p.source, tok.Pos, "invalid number %s", tok.Value)
	}
	return ast.NewDoubleLiteral(v, tok.Pos, tok.End), nil
}

// typeReference parses the parenthesised qualified name of T(...).
// The current token is the opening parenthesis.
func (p *parser) typeReference(t Token) (ast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	first, err := p.expect(TokenName)
	if err != nil {
		return nil, err
	}
	parts := []string{first.Value}
	for p.tok.Type == TokenDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		part, err := p.expect(TokenName)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part.Value)
	}
	closing, err := p.expect(TokenRParen)
	if err != nil {
		return nil, err
	}
	return ast.NewTypeReference(strings.Join(parts, "."), t.Pos, closing.End), nil
}
