package ast

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// BoolFunc is a compiled fragment producing a primitive boolean.
type BoolFunc func(s *eval.State) (bool, error)

// ValueFunc is a compiled fragment producing any other value.
type ValueFunc func(s *eval.State) (any, error)

// Fragment is one entry on the CodeFlow stack: a compiled closure and the
// descriptor of the value it leaves behind. Bool is set when Desc is
// eval.DescriptorBool; Value is set otherwise.
type Fragment struct {
	Desc  eval.Descriptor
	Bool  BoolFunc
	Value ValueFunc
}

func boolFragment(fn BoolFunc) Fragment {
	return Fragment{Desc: eval.DescriptorBool, Bool: fn}
}

func valueFragment(desc eval.Descriptor, fn ValueFunc) Fragment {
	return Fragment{Desc: desc, Value: fn}
}

func constant(desc eval.Descriptor, v any) Fragment {
	if desc == eval.DescriptorBool {
		b, _ := v.(bool)
		return boolFragment(func(*eval.State) (bool, error) { return b, nil })
	}
	return valueFragment(desc, func(*eval.State) (any, error) { return v, nil })
}

// assumption records the descriptor a node had when its fragment was emitted.
type assumption struct {
	node Node
	desc eval.Descriptor
}

// CodeFlow is the builder Compile threads through Emit. Nodes pop their
// operands' fragments and push their own.
type CodeFlow struct {
	stack       []Fragment
	assumptions []assumption
}

// NewCodeFlow returns an empty builder.
func NewCodeFlow() *CodeFlow {
	return &CodeFlow{}
}

// Push pushes a fragment.
func (cf *CodeFlow) Push(f Fragment) {
	cf.stack = append(cf.stack, f)
}

// Pop pops the top fragment. Popping an empty stack panics; Compile turns
// the panic into an error.
func (cf *CodeFlow) Pop() Fragment {
	if len(cf.stack) == 0 {
		panic("codeflow: pop on empty stack")
	}
	f := cf.stack[len(cf.stack)-1]
	cf.stack = cf.stack[:len(cf.stack)-1]
	return f
}

// LastDescriptor returns the descriptor on top of the stack, or
// eval.DescriptorNone when the stack is empty.
func (cf *CodeFlow) LastDescriptor() eval.Descriptor {
	if len(cf.stack) == 0 {
		return eval.DescriptorNone
	}
	return cf.stack[len(cf.stack)-1].Desc
}

// Depth returns the number of fragments on the stack.
func (cf *CodeFlow) Depth() int {
	return len(cf.stack)
}

// Assume records that the code being emitted relies on n keeping its
// current exit descriptor.
func (cf *CodeFlow) Assume(n Node) {
	cf.assumptions = append(cf.assumptions, assumption{node: n, desc: n.ExitDescriptor()})
}

// emit asks n to emit itself and pops the result.
func (cf *CodeFlow) emit(n Node) Fragment {
	n.Emit(cf)
	return cf.Pop()
}

// unboxBool adapts f to a primitive boolean. A boxed fragment that yields
// anything but a bool is stale.
func unboxBool(f Fragment, sp Span) BoolFunc {
	if f.Desc == eval.DescriptorBool {
		return f.Bool
	}
	if f.Desc != eval.DescriptorBoxedBool {
		panic(fmt.Sprintf("codeflow: cannot unbox %s to boolean", f.Desc))
	}
	value := f.Value
	return func(s *eval.State) (bool, error) {
		v, err := value(s)
		if err != nil {
			return false, err
		}
		b, ok := v.(bool)
		if !ok {
			return false, stale(sp, eval.DescriptorBoxedBool, eval.DescriptorOf(v))
		}
		return b, nil
	}
}

// box adapts f to a value producer.
func box(f Fragment) ValueFunc {
	if f.Desc != eval.DescriptorBool {
		return f.Value
	}
	fn := f.Bool
	return func(s *eval.State) (any, error) {
		b, err := fn(s)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// StaleAssumptionError reports that compiled code met a value whose shape
// differs from the one observed at compile time. It is never an evaluation
// failure; the caller re-runs the call interpreted.
type StaleAssumptionError struct {
	Span     Span
	Expected eval.Descriptor
	Actual   eval.Descriptor
}

func (e *StaleAssumptionError) Error() string {
	return fmt.Sprintf("compiled code expected %s at position %d, got %s", e.Expected, e.Span.Start, e.Actual)
}

func stale(sp Span, expected, actual eval.Descriptor) *StaleAssumptionError {
	return &StaleAssumptionError{Span: sp, Expected: expected, Actual: actual}
}

// IsStaleAssumption reports whether err is or wraps a *StaleAssumptionError.
func IsStaleAssumption(err error) bool {
	var target *StaleAssumptionError
	return errors.As(err, &target)
}
