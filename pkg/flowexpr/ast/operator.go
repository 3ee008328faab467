package ast

import (
	"math"
	"reflect"
	"strings"
	"sync/atomic"

	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// Operator is a binary arithmetic or comparison operator, or unary minus.
//
// Numbers, strings, and equality are handled by builtin rules. Any other
// operand combination is offered to the context's OperatorOverloader; an
// operator that has ever produced an overloaded result never compiles.
type Operator struct {
	nodeBase
	op         eval.Operation
	overloaded atomic.Bool
}

// NewOperator builds left op right.
func NewOperator(op eval.Operation, start, end int, left, right Node) *Operator {
	n := &Operator{op: op}
	n.init(start, end, left, right)
	return n
}

// NewNegate builds unary minus.
func NewNegate(start, end int, operand Node) *Operator {
	n := &Operator{op: eval.OpSubtract}
	n.init(start, end, operand)
	return n
}

// Operation returns the operation the node performs.
func (n *Operator) Operation() eval.Operation {
	return n.op
}

func (n *Operator) unary() bool {
	return len(n.children) == 1
}

// Evaluate implements Node.
func (n *Operator) Evaluate(s *eval.State) (eval.TypedValue, error) {
	left, err := evaluateOperand(s, n.child(0))
	if err != nil {
		return eval.Null, err
	}
	var right any
	if !n.unary() {
		tv, err := evaluateOperand(s, n.child(1))
		if err != nil {
			return eval.Null, err
		}
		right = tv.Value()
	}

	v, handled, err := n.builtin(s, left.Value(), right)
	if err != nil {
		return eval.Null, err
	}
	if handled {
		n.setExit(n.resultDescriptor(v))
		return eval.NewTypedValue(v), nil
	}

	v, claimed, err := s.Operate(n.op, left.Value(), right)
	if !claimed {
		return eval.Null, fxerrors.UnsupportedOperator(n.span.Start, n.span.End,
			n.op.Symbol(), eval.TypeName(left.Value()), eval.TypeName(right))
	}
	if err != nil {
		return eval.Null, fxerrors.Wrap(fxerrors.KindEvaluation, n.span.Start, n.span.End, err)
	}
	n.overloaded.Store(true)
	n.setExit(eval.DescriptorObject)
	return eval.NewTypedValue(v), nil
}

func (n *Operator) resultDescriptor(v any) eval.Descriptor {
	if n.op.IsComparison() {
		return eval.DescriptorBool
	}
	return eval.Unboxed(eval.DescriptorOf(v))
}

// IsCompilable implements Node.
func (n *Operator) IsCompilable() bool {
	if n.overloaded.Load() || !n.ExitDescriptor().Known() {
		return false
	}
	for _, c := range n.children {
		if !c.IsCompilable() || !c.ExitDescriptor().Known() {
			return false
		}
	}
	if n.unary() {
		return eval.IsNumeric(n.child(0).ExitDescriptor())
	}

	l, r := n.child(0).ExitDescriptor(), n.child(1).ExitDescriptor()
	numeric := eval.IsNumeric(l) && eval.IsNumeric(r)
	text := l == eval.DescriptorString && r == eval.DescriptorString
	switch n.op {
	case eval.OpEqual, eval.OpNotEqual:
		return numeric || text || (eval.IsBooleanCompatible(l) && eval.IsBooleanCompatible(r))
	case eval.OpAdd, eval.OpLess, eval.OpLessOrEqual, eval.OpGreater, eval.OpGreaterOrEqual:
		return numeric || text
	default:
		return numeric
	}
}

// Emit implements Node. The compiled code applies the same builtin rules
// as evaluation.
func (n *Operator) Emit(cf *CodeFlow) {
	cf.Assume(n)
	desc := n.ExitDescriptor()

	left := box(cf.emit(n.child(0)))
	var right ValueFunc
	if !n.unary() {
		right = box(cf.emit(n.child(1)))
	}

	compute := func(s *eval.State) (any, error) {
		l, err := left(s)
		if err != nil {
			return nil, err
		}
		var r any
		if right != nil {
			if r, err = right(s); err != nil {
				return nil, err
			}
		}
		v, handled, err := n.builtin(s, l, r)
		if err != nil {
			return nil, err
		}
		if !handled {
			return nil, stale(n.span, desc, eval.DescriptorObject)
		}
		return v, nil
	}

	if desc == eval.DescriptorBool {
		cf.Push(boolFragment(func(s *eval.State) (bool, error) {
			v, err := compute(s)
			if err != nil {
				return false, err
			}
			b, _ := v.(bool)
			return b, nil
		}))
		return
	}
	cf.Push(valueFragment(desc, compute))
}

// builtin applies the rules that need no overloader. handled is false when
// no rule covers the operands.
func (n *Operator) builtin(s *eval.State, l, r any) (v any, handled bool, err error) {
	if n.unary() {
		switch x := eval.NormalizeNumber(l).(type) {
		case int64:
			return -x, true, nil
		case float64:
			return -x, true, nil
		}
		return nil, false, nil
	}

	switch n.op {
	case eval.OpEqual:
		return equal(l, r), true, nil
	case eval.OpNotEqual:
		return !equal(l, r), true, nil
	case eval.OpAdd:
		ls, lok := l.(string)
		rs, rok := r.(string)
		if lok || rok {
			if !lok {
				if ls, err = n.stringify(s, l); err != nil {
					return nil, true, err
				}
			}
			if !rok {
				if rs, err = n.stringify(s, r); err != nil {
					return nil, true, err
				}
			}
			return ls + rs, true, nil
		}
	}

	a, b := eval.NormalizeNumber(l), eval.NormalizeNumber(r)
	if a != nil && b != nil {
		return n.arithmetic(a, b)
	}
	if n.op.IsComparison() {
		ls, lok := l.(string)
		rs, rok := r.(string)
		if lok && rok {
			return ordered(n.op, strings.Compare(ls, rs)), true, nil
		}
	}
	return nil, false, nil
}

func (n *Operator) stringify(s *eval.State, v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	converted, err := s.Convert(v, eval.DescriptorString)
	if err != nil {
		return "", fxerrors.Wrap(fxerrors.KindConversion, n.span.Start, n.span.End, err)
	}
	str, ok := converted.(string)
	if !ok {
		return "", fxerrors.TypeCoercion(n.span.Start, n.span.End, eval.TypeName(converted), "String")
	}
	return str, nil
}

// arithmetic applies op to normalized numbers. Two longs stay long; any
// double promotes both operands.
func (n *Operator) arithmetic(a, b any) (any, bool, error) {
	ai, aLong := a.(int64)
	bi, bLong := b.(int64)
	if aLong && bLong {
		switch n.op {
		case eval.OpAdd:
			return ai + bi, true, nil
		case eval.OpSubtract:
			return ai - bi, true, nil
		case eval.OpMultiply:
			return ai * bi, true, nil
		case eval.OpDivide, eval.OpModulus:
			if bi == 0 {
				return nil, true, fxerrors.New(fxerrors.KindEvaluation, n.span.Start, n.span.End, "division by zero")
			}
			if n.op == eval.OpDivide {
				return ai / bi, true, nil
			}
			return ai % bi, true, nil
		default:
			return ordered(n.op, compareLongs(ai, bi)), true, nil
		}
	}

	af, bf := toDouble(a), toDouble(b)
	switch n.op {
	case eval.OpAdd:
		return af + bf, true, nil
	case eval.OpSubtract:
		return af - bf, true, nil
	case eval.OpMultiply:
		return af * bf, true, nil
	case eval.OpDivide:
		return af / bf, true, nil
	case eval.OpModulus:
		return math.Mod(af, bf), true, nil
	default:
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false, true, nil
		}
		return ordered(n.op, compareDoubles(af, bf)), true, nil
	}
}

func (n *Operator) String() string {
	if n.unary() {
		return "-" + n.child(0).String()
	}
	return "(" + n.child(0).String() + " " + n.op.Symbol() + " " + n.child(1).String() + ")"
}

// equal compares numbers by value and everything else structurally.
func equal(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	a, b := eval.NormalizeNumber(l), eval.NormalizeNumber(r)
	if a != nil && b != nil {
		ai, aLong := a.(int64)
		bi, bLong := b.(int64)
		if aLong && bLong {
			return ai == bi
		}
		return toDouble(a) == toDouble(b)
	}
	return reflect.DeepEqual(l, r)
}

func ordered(op eval.Operation, cmp int) bool {
	switch op {
	case eval.OpEqual:
		return cmp == 0
	case eval.OpNotEqual:
		return cmp != 0
	case eval.OpLess:
		return cmp < 0
	case eval.OpLessOrEqual:
		return cmp <= 0
	case eval.OpGreater:
		return cmp > 0
	case eval.OpGreaterOrEqual:
		return cmp >= 0
	}
	return false
}

func compareLongs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareDoubles(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toDouble(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}
