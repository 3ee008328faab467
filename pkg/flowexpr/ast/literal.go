package ast

import (
	"strconv"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// Literal is a node with a fixed value.
type Literal interface {
	Node
	LiteralValue() eval.TypedValue
}

type literalBase struct {
	nodeBase
	value eval.TypedValue
}

func (l *literalBase) initLiteral(start, end int, v any, desc eval.Descriptor) {
	l.init(start, end)
	l.value = eval.NewTypedValue(v)
	l.setExit(desc)
}

// LiteralValue implements Literal.
func (l *literalBase) LiteralValue() eval.TypedValue {
	return l.value
}

// Evaluate implements Node.
func (l *literalBase) Evaluate(*eval.State) (eval.TypedValue, error) {
	return l.value, nil
}

// IsCompilable implements Node. Literals always compile.
func (l *literalBase) IsCompilable() bool {
	return true
}

// Emit implements Node.
func (l *literalBase) Emit(cf *CodeFlow) {
	cf.Push(constant(l.ExitDescriptor(), l.value.Value()))
}

// StringLiteral is a quoted string.
type StringLiteral struct {
	literalBase
}

var _ Literal = (*StringLiteral)(nil)

// NewStringLiteral builds a literal from its quoted source token. The
// enclosing quotes are removed and each doubled occurrence of the enclosing
// quote collapses to one; the other quote character is kept as written.
func NewStringLiteral(token string, start, end int) *StringLiteral {
	n := &StringLiteral{}
	n.initLiteral(start, end, unquote(token), eval.DescriptorString)
	return n
}

// NewTextLiteral builds a string literal from already decoded text.
func NewTextLiteral(text string, start, end int) *StringLiteral {
	n := &StringLiteral{}
	n.initLiteral(start, end, text, eval.DescriptorString)
	return n
}

func unquote(token string) string {
	if len(token) < 2 {
		return token
	}
	quote := token[0]
	if (quote != '\'' && quote != '"') || token[len(token)-1] != quote {
		return token
	}
	body := token[1 : len(token)-1]
	q := string(quote)
	return strings.ReplaceAll(body, q+q, q)
}

// Text returns the decoded string.
func (n *StringLiteral) Text() string {
	s, _ := n.value.Value().(string)
	return s
}

func (n *StringLiteral) String() string {
	return "'" + strings.ReplaceAll(n.Text(), "'", "''") + "'"
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	literalBase
}

// NewBooleanLiteral builds a boolean literal.
func NewBooleanLiteral(v bool, start, end int) *BooleanLiteral {
	n := &BooleanLiteral{}
	n.initLiteral(start, end, v, eval.DescriptorBool)
	return n
}

func (n *BooleanLiteral) String() string {
	return strconv.FormatBool(n.value.Value().(bool))
}

// LongLiteral is an integer.
type LongLiteral struct {
	literalBase
}

// NewLongLiteral builds an integer literal.
func NewLongLiteral(v int64, start, end int) *LongLiteral {
	n := &LongLiteral{}
	n.initLiteral(start, end, v, eval.DescriptorLong)
	return n
}

func (n *LongLiteral) String() string {
	return strconv.FormatInt(n.value.Value().(int64), 10)
}

// DoubleLiteral is a floating point number.
type DoubleLiteral struct {
	literalBase
}

// NewDoubleLiteral builds a floating point literal.
func NewDoubleLiteral(v float64, start, end int) *DoubleLiteral {
	n := &DoubleLiteral{}
	n.initLiteral(start, end, v, eval.DescriptorDouble)
	return n
}

func (n *DoubleLiteral) String() string {
	return strconv.FormatFloat(n.value.Value().(float64), 'g', -1, 64)
}

// NullLiteral is null.
type NullLiteral struct {
	literalBase
}

// NewNullLiteral builds the null literal.
func NewNullLiteral(start, end int) *NullLiteral {
	n := &NullLiteral{}
	n.initLiteral(start, end, nil, eval.DescriptorObject)
	return n
}

func (n *NullLiteral) String() string {
	return "null"
}
