package ast

import (
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// Ternary is condition ? ifTrue : ifFalse. Only the selected branch is
// evaluated.
type Ternary struct {
	nodeBase
}

// NewTernary builds a conditional.
func NewTernary(start, end int, condition, ifTrue, ifFalse Node) *Ternary {
	n := &Ternary{}
	n.init(start, end, condition, ifTrue, ifFalse)
	return n
}

// Evaluate implements Node.
func (n *Ternary) Evaluate(s *eval.State) (eval.TypedValue, error) {
	cond, err := booleanOperand(s, n.child(0))
	if err != nil {
		return eval.Null, err
	}
	branch := n.child(2)
	if cond {
		branch = n.child(1)
	}
	result, err := evaluateOperand(s, branch)
	if err != nil {
		return eval.Null, err
	}
	n.computeExit()
	return result, nil
}

// computeExit records the common branch descriptor, or Object when the
// branches differ. It does nothing until both branches have been observed.
func (n *Ternary) computeExit() {
	a, b := n.child(1).ExitDescriptor(), n.child(2).ExitDescriptor()
	if !a.Known() || !b.Known() {
		return
	}
	if a == b {
		n.setExit(a)
		return
	}
	n.setExit(eval.DescriptorObject)
}

// IsCompilable implements Node.
func (n *Ternary) IsCompilable() bool {
	cond, ifTrue, ifFalse := n.child(0), n.child(1), n.child(2)
	if !cond.IsCompilable() || !eval.IsBooleanCompatible(cond.ExitDescriptor()) {
		return false
	}
	return ifTrue.IsCompilable() && ifFalse.IsCompilable() &&
		ifTrue.ExitDescriptor().Known() && ifFalse.ExitDescriptor().Known()
}

// Emit implements Node. Branches are boxed unless both share the boolean
// descriptor.
func (n *Ternary) Emit(cf *CodeFlow) {
	n.computeExit()
	cf.Assume(n)
	desc := n.ExitDescriptor()

	cond := unboxBool(cf.emit(n.child(0)), n.child(0).Span())
	ifTrue := cf.emit(n.child(1))
	ifFalse := cf.emit(n.child(2))

	if desc == eval.DescriptorBool {
		// A branch may have been re-observed since computeExit; unboxBool
		// refuses emission for anything that is no longer boolean.
		t := unboxBool(ifTrue, n.child(1).Span())
		f := unboxBool(ifFalse, n.child(2).Span())
		cf.Push(boolFragment(func(s *eval.State) (bool, error) {
			c, err := cond(s)
			if err != nil {
				return false, err
			}
			if c {
				return t(s)
			}
			return f(s)
		}))
		return
	}

	t, f := box(ifTrue), box(ifFalse)
	cf.Push(valueFragment(desc, func(s *eval.State) (any, error) {
		c, err := cond(s)
		if err != nil {
			return nil, err
		}
		if c {
			return t(s)
		}
		return f(s)
	}))
}

func (n *Ternary) String() string {
	return "(" + n.child(0).String() + " ? " + n.child(1).String() + " : " + n.child(2).String() + ")"
}
