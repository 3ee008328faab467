package ast

import (
	"sync/atomic"

	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// OperatorInstanceof tests whether the left operand is an instance of the
// type named by the right operand.
type OperatorInstanceof struct {
	nodeBase
	resolved atomic.Pointer[eval.TypeRef]
}

// NewOperatorInstanceof builds left instanceof right.
func NewOperatorInstanceof(start, end int, left, right Node) *OperatorInstanceof {
	n := &OperatorInstanceof{}
	n.init(start, end, left, right)
	return n
}

// Evaluate implements Node. A null left operand is never an instance.
// A right operand that is not a type fails with KindInvalidOperand.
func (n *OperatorInstanceof) Evaluate(s *eval.State) (eval.TypedValue, error) {
	left, err := evaluateOperand(s, n.child(0))
	if err != nil {
		return eval.Null, err
	}
	right, err := evaluateOperand(s, n.child(1))
	if err != nil {
		return eval.Null, err
	}

	ref, ok := right.Value().(eval.TypeRef)
	if !ok {
		sp := n.child(1).Span()
		return eval.Null, fxerrors.InvalidOperand(sp.Start, sp.End, "instanceof", eval.TypeName(right.Value()))
	}

	result := ref.IsInstance(left.Value())
	n.resolved.Store(&ref)
	if _, direct := n.child(1).(*TypeReference); direct {
		n.setExit(eval.DescriptorBool)
	}
	return eval.BoolValue(result), nil
}

// IsCompilable implements Node. Only a direct T(...) reference compiles,
// since the type must be fixed when the code is generated.
func (n *OperatorInstanceof) IsCompilable() bool {
	return n.ExitDescriptor().Known() && n.resolved.Load() != nil && n.child(0).IsCompilable()
}

// Emit implements Node. The left operand is always evaluated, even for a
// primitive type where the answer is known to be false.
func (n *OperatorInstanceof) Emit(cf *CodeFlow) {
	ref := n.resolved.Load()
	if ref == nil {
		panic("instanceof: type not resolved")
	}
	cf.Assume(n)
	left := box(cf.emit(n.child(0)))
	target := *ref
	if target.IsPrimitive() {
		cf.Push(boolFragment(func(s *eval.State) (bool, error) {
			_, err := left(s)
			return false, err
		}))
		return
	}
	cf.Push(boolFragment(func(s *eval.State) (bool, error) {
		v, err := left(s)
		if err != nil {
			return false, err
		}
		return target.IsInstance(v), nil
	}))
}

// ResolvedType returns the type observed on the last evaluation.
func (n *OperatorInstanceof) ResolvedType() (eval.TypeRef, bool) {
	ref := n.resolved.Load()
	if ref == nil {
		return eval.TypeRef{}, false
	}
	return *ref, true
}

func (n *OperatorInstanceof) String() string {
	return "(" + n.child(0).String() + " instanceof " + n.child(1).String() + ")"
}
