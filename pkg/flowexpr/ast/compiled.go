package ast

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// ErrNotCompilable is returned by Compile when the tree cannot be compiled
// in its current state.
var ErrNotCompilable = errors.New("expression is not compilable")

// CompiledExpression is the compiled form of a tree. It is immutable and
// safe for concurrent use; each call supplies its own State.
type CompiledExpression struct {
	root        Node
	desc        eval.Descriptor
	run         ValueFunc
	assumptions []assumption
}

// Compile generates the compiled form of root. It fails with
// ErrNotCompilable when root reports it cannot be compiled, and with a
// descriptive error when emission fails.
func Compile(root Node) (ce *CompiledExpression, err error) {
	if root == nil || !root.IsCompilable() {
		return nil, ErrNotCompilable
	}

	defer func() {
		if r := recover(); r != nil {
			ce = nil
			err = fmt.Errorf("%w: %v", ErrNotCompilable, r)
		}
	}()

	cf := NewCodeFlow()
	root.Emit(cf)
	if cf.Depth() != 1 {
		return nil, fmt.Errorf("%w: emission left %d fragments", ErrNotCompilable, cf.Depth())
	}
	top := cf.Pop()

	return &CompiledExpression{
		root:        root,
		desc:        top.Desc,
		run:         box(top),
		assumptions: cf.assumptions,
	}, nil
}

// Evaluate runs the compiled code.
func (c *CompiledExpression) Evaluate(s *eval.State) (eval.TypedValue, error) {
	v, err := c.run(s)
	if err != nil {
		return eval.Null, err
	}
	return eval.NewTypedValue(v), nil
}

// Valid reports whether every node the code relies on still has the
// descriptor it had at compile time.
func (c *CompiledExpression) Valid() bool {
	for _, a := range c.assumptions {
		if a.node.ExitDescriptor() != a.desc {
			return false
		}
	}
	return true
}

// Descriptor returns the descriptor of the compiled result.
func (c *CompiledExpression) Descriptor() eval.Descriptor {
	return c.desc
}

// Assumptions returns the number of nodes the code relies on.
func (c *CompiledExpression) Assumptions() int {
	return len(c.assumptions)
}

// Root returns the tree the code was generated from.
func (c *CompiledExpression) Root() Node {
	return c.root
}
