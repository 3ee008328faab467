package ast

import (
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// OpOr is the short-circuit logical OR. The right operand is only
// evaluated when the left is false.
type OpOr struct {
	nodeBase
}

// NewOpOr builds left or right.
func NewOpOr(start, end int, left, right Node) *OpOr {
	n := &OpOr{}
	n.init(start, end, left, right)
	n.setExit(eval.DescriptorBool)
	return n
}

// Evaluate implements Node.
func (n *OpOr) Evaluate(s *eval.State) (eval.TypedValue, error) {
	left, err := booleanOperand(s, n.child(0))
	if err != nil {
		return eval.Null, err
	}
	if left {
		return eval.True, nil
	}
	right, err := booleanOperand(s, n.child(1))
	if err != nil {
		return eval.Null, err
	}
	return eval.BoolValue(right), nil
}

// IsCompilable implements Node.
func (n *OpOr) IsCompilable() bool {
	return booleanOperandsCompilable(n.children)
}

// Emit implements Node.
func (n *OpOr) Emit(cf *CodeFlow) {
	cf.Assume(n)
	left := unboxBool(cf.emit(n.child(0)), n.child(0).Span())
	right := unboxBool(cf.emit(n.child(1)), n.child(1).Span())
	cf.Push(boolFragment(func(s *eval.State) (bool, error) {
		l, err := left(s)
		if err != nil || l {
			return l, err
		}
		return right(s)
	}))
}

func (n *OpOr) String() string {
	return "(" + n.child(0).String() + " or " + n.child(1).String() + ")"
}

// OpAnd is the short-circuit logical AND. The right operand is only
// evaluated when the left is true.
type OpAnd struct {
	nodeBase
}

// NewOpAnd builds left and right.
func NewOpAnd(start, end int, left, right Node) *OpAnd {
	n := &OpAnd{}
	n.init(start, end, left, right)
	n.setExit(eval.DescriptorBool)
	return n
}

// Evaluate implements Node.
func (n *OpAnd) Evaluate(s *eval.State) (eval.TypedValue, error) {
	left, err := booleanOperand(s, n.child(0))
	if err != nil {
		return eval.Null, err
	}
	if !left {
		return eval.False, nil
	}
	right, err := booleanOperand(s, n.child(1))
	if err != nil {
		return eval.Null, err
	}
	return eval.BoolValue(right), nil
}

// IsCompilable implements Node.
func (n *OpAnd) IsCompilable() bool {
	return booleanOperandsCompilable(n.children)
}

// Emit implements Node.
func (n *OpAnd) Emit(cf *CodeFlow) {
	cf.Assume(n)
	left := unboxBool(cf.emit(n.child(0)), n.child(0).Span())
	right := unboxBool(cf.emit(n.child(1)), n.child(1).Span())
	cf.Push(boolFragment(func(s *eval.State) (bool, error) {
		l, err := left(s)
		if err != nil || !l {
			return false, err
		}
		return right(s)
	}))
}

func (n *OpAnd) String() string {
	return "(" + n.child(0).String() + " and " + n.child(1).String() + ")"
}

// OpNot negates a boolean operand.
type OpNot struct {
	nodeBase
}

// NewOpNot builds !operand.
func NewOpNot(start, end int, operand Node) *OpNot {
	n := &OpNot{}
	n.init(start, end, operand)
	n.setExit(eval.DescriptorBool)
	return n
}

// Evaluate implements Node.
func (n *OpNot) Evaluate(s *eval.State) (eval.TypedValue, error) {
	v, err := booleanOperand(s, n.child(0))
	if err != nil {
		return eval.Null, err
	}
	return eval.BoolValue(!v), nil
}

// IsCompilable implements Node.
func (n *OpNot) IsCompilable() bool {
	return booleanOperandsCompilable(n.children)
}

// Emit implements Node.
func (n *OpNot) Emit(cf *CodeFlow) {
	cf.Assume(n)
	operand := unboxBool(cf.emit(n.child(0)), n.child(0).Span())
	cf.Push(boolFragment(func(s *eval.State) (bool, error) {
		v, err := operand(s)
		if err != nil {
			return false, err
		}
		return !v, nil
	}))
}

func (n *OpNot) String() string {
	return "!" + n.child(0).String()
}

// booleanOperandsCompilable reports whether every operand compiles and has
// been observed producing a boolean.
func booleanOperandsCompilable(operands []Node) bool {
	for _, op := range operands {
		if !op.IsCompilable() || !eval.IsBooleanCompatible(op.ExitDescriptor()) {
			return false
		}
	}
	return true
}
