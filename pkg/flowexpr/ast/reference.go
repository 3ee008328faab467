package ast

import (
	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// VariableReference is #name. Undefined variables evaluate to null.
type VariableReference struct {
	nodeBase
	name string
}

// NewVariableReference builds #name.
func NewVariableReference(name string, start, end int) *VariableReference {
	n := &VariableReference{name: name}
	n.init(start, end)
	return n
}

// Name returns the variable name without the leading #.
func (n *VariableReference) Name() string {
	return n.name
}

// Evaluate implements Node.
func (n *VariableReference) Evaluate(s *eval.State) (eval.TypedValue, error) {
	tv := s.LookupVariable(n.name)
	n.setExit(tv.Descriptor())
	return tv, nil
}

// IsCompilable implements Node.
func (n *VariableReference) IsCompilable() bool {
	return n.ExitDescriptor().Known()
}

// Emit implements Node. The compiled read checks the value still has the
// observed shape.
func (n *VariableReference) Emit(cf *CodeFlow) {
	cf.Assume(n)
	desc, name, sp := n.ExitDescriptor(), n.name, n.span
	cf.Push(valueFragment(desc, func(s *eval.State) (any, error) {
		tv := s.LookupVariable(name)
		if actual := tv.Descriptor(); !desc.Accepts(actual) {
			return nil, stale(sp, desc, actual)
		}
		return tv.Value(), nil
	}))
}

func (n *VariableReference) String() string {
	return "#" + n.name
}

// PropertyReference is a bare identifier read from the root object.
type PropertyReference struct {
	nodeBase
	name string
}

// NewPropertyReference builds a property read of name.
func NewPropertyReference(name string, start, end int) *PropertyReference {
	n := &PropertyReference{name: name}
	n.init(start, end)
	return n
}

// Name returns the property name.
func (n *PropertyReference) Name() string {
	return n.name
}

func (n *PropertyReference) read(s *eval.State) (any, error) {
	v, err := s.ReadProperty(s.Root().Value(), n.name)
	if err != nil {
		return nil, fxerrors.Wrap(fxerrors.KindEvaluation, n.span.Start, n.span.End, err)
	}
	return v, nil
}

// Evaluate implements Node.
func (n *PropertyReference) Evaluate(s *eval.State) (eval.TypedValue, error) {
	v, err := n.read(s)
	if err != nil {
		return eval.Null, err
	}
	tv := eval.NewTypedValue(v)
	n.setExit(tv.Descriptor())
	return tv, nil
}

// IsCompilable implements Node.
func (n *PropertyReference) IsCompilable() bool {
	return n.ExitDescriptor().Known()
}

// Emit implements Node.
func (n *PropertyReference) Emit(cf *CodeFlow) {
	cf.Assume(n)
	desc := n.ExitDescriptor()
	cf.Push(valueFragment(desc, func(s *eval.State) (any, error) {
		v, err := n.read(s)
		if err != nil {
			return nil, err
		}
		if actual := eval.DescriptorOf(v); !desc.Accepts(actual) {
			return nil, stale(n.span, desc, actual)
		}
		return v, nil
	}))
}

func (n *PropertyReference) String() string {
	return n.name
}

// TypeReference is T(qualified.name). It evaluates to an eval.TypeRef.
type TypeReference struct {
	nodeBase
	name string
}

// NewTypeReference builds T(name).
func NewTypeReference(name string, start, end int) *TypeReference {
	n := &TypeReference{name: name}
	n.init(start, end)
	return n
}

// Name returns the qualified type name.
func (n *TypeReference) Name() string {
	return n.name
}

func (n *TypeReference) find(s *eval.State) (eval.TypeRef, error) {
	ref, err := s.FindType(n.name)
	if err != nil {
		return eval.TypeRef{}, fxerrors.Wrap(fxerrors.KindEvaluation, n.span.Start, n.span.End, err)
	}
	return ref, nil
}

// Evaluate implements Node.
func (n *TypeReference) Evaluate(s *eval.State) (eval.TypedValue, error) {
	ref, err := n.find(s)
	if err != nil {
		return eval.Null, err
	}
	n.setExit(eval.DescriptorObject)
	return eval.NewTypedValue(ref), nil
}

// IsCompilable implements Node.
func (n *TypeReference) IsCompilable() bool {
	return n.ExitDescriptor().Known()
}

// Emit implements Node.
func (n *TypeReference) Emit(cf *CodeFlow) {
	cf.Assume(n)
	cf.Push(valueFragment(eval.DescriptorObject, func(s *eval.State) (any, error) {
		ref, err := n.find(s)
		if err != nil {
			return nil, err
		}
		return ref, nil
	}))
}

func (n *TypeReference) String() string {
	return "T(" + n.name + ")"
}
