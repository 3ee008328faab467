// Package ast defines the expression tree and its two execution tiers.
//
// Every Node can be evaluated by walking the tree (Evaluate). After a node
// has been evaluated it carries an exit descriptor recording the kind of
// value it produced. When a whole tree reports IsCompilable, Compile asks
// each node to Emit a closure specialised for those descriptors; the result
// is a CompiledExpression that runs without re-walking the tree.
//
// Compiled code re-checks the runtime shape of every value it did not
// produce itself. A mismatch surfaces as *StaleAssumptionError so the caller
// can discard the compiled form and interpret the call instead. Genuine
// evaluation failures are returned unchanged in both tiers.
package ast

import (
	"sync/atomic"

	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// Span is the [Start, End) byte range of a node in its source text.
type Span struct {
	Start int
	End   int
}

// Node is the protocol every tree node implements.
type Node interface {
	// Evaluate computes the node's value by walking its subtree.
	Evaluate(s *eval.State) (eval.TypedValue, error)

	// IsCompilable reports whether Emit may be called. It has no side
	// effects and is only meaningful after at least one Evaluate.
	IsCompilable() bool

	// Emit pushes the node's compiled fragment onto cf.
	// It must only be called when IsCompilable is true.
	Emit(cf *CodeFlow)

	// Span returns the node's source range.
	Span() Span

	// Children returns the operands in order. The slice must not be modified.
	Children() []Node

	// ExitDescriptor returns the descriptor observed so far,
	// eval.DescriptorNone before the first evaluation.
	ExitDescriptor() eval.Descriptor

	// String renders the node in source form.
	String() string
}

// nodeBase carries the state shared by every node. Only the exit
// descriptor changes after construction.
type nodeBase struct {
	span     Span
	children []Node
	exit     atomic.Uint32
}

func (b *nodeBase) init(start, end int, children ...Node) {
	b.span = Span{Start: start, End: end}
	b.children = children
}

// Span implements Node.
func (b *nodeBase) Span() Span {
	return b.span
}

// Children implements Node.
func (b *nodeBase) Children() []Node {
	return b.children
}

// ExitDescriptor implements Node.
func (b *nodeBase) ExitDescriptor() eval.Descriptor {
	return eval.Descriptor(b.exit.Load())
}

func (b *nodeBase) setExit(d eval.Descriptor) {
	b.exit.Store(uint32(d))
}

func (b *nodeBase) child(i int) Node {
	return b.children[i]
}

// Walk calls fn for n and every descendant in depth-first order.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// evaluateOperand evaluates an operand, attributing unpositioned failures
// to the operand's span.
func evaluateOperand(s *eval.State, operand Node) (eval.TypedValue, error) {
	tv, err := operand.Evaluate(s)
	if err != nil {
		sp := operand.Span()
		return eval.Null, fxerrors.Wrap(fxerrors.KindEvaluation, sp.Start, sp.End, err)
	}
	return tv, nil
}

// booleanOperand evaluates an operand and coerces it to bool. Coercion and
// conversion failures report the operand's span.
func booleanOperand(s *eval.State, operand Node) (bool, error) {
	tv, err := evaluateOperand(s, operand)
	if err != nil {
		return false, err
	}
	return coerceBool(s, tv.Value(), operand.Span())
}

func coerceBool(s *eval.State, v any, sp Span) (bool, error) {
	converted, err := s.Convert(v, eval.DescriptorBool)
	if err != nil {
		return false, fxerrors.Wrap(fxerrors.KindConversion, sp.Start, sp.End, err)
	}
	if converted == nil {
		return false, fxerrors.TypeCoercion(sp.Start, sp.End, "null", "boolean")
	}
	b, ok := converted.(bool)
	if !ok {
		return false, fxerrors.TypeCoercion(sp.Start, sp.End, eval.TypeName(converted), "boolean")
	}
	return b, nil
}
