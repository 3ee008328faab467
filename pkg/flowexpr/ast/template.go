package ast

import (
	"strings"

	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// Template concatenates literal text and embedded expressions. Parts that
// evaluate to null contribute nothing.
type Template struct {
	nodeBase
}

// NewTemplate builds a template from its parts in source order.
func NewTemplate(start, end int, parts ...Node) *Template {
	n := &Template{}
	n.init(start, end, parts...)
	n.setExit(eval.DescriptorString)
	return n
}

// Evaluate implements Node.
func (n *Template) Evaluate(s *eval.State) (eval.TypedValue, error) {
	var sb strings.Builder
	for _, part := range n.children {
		tv, err := evaluateOperand(s, part)
		if err != nil {
			return eval.Null, err
		}
		if err := appendPart(s, &sb, tv.Value(), part.Span()); err != nil {
			return eval.Null, err
		}
	}
	return eval.NewTypedValue(sb.String()), nil
}

func appendPart(s *eval.State, sb *strings.Builder, v any, sp Span) error {
	if v == nil {
		return nil
	}
	if str, ok := v.(string); ok {
		sb.WriteString(str)
		return nil
	}
	converted, err := s.Convert(v, eval.DescriptorString)
	if err != nil {
		return fxerrors.Wrap(fxerrors.KindConversion, sp.Start, sp.End, err)
	}
	if converted == nil {
		return nil
	}
	str, ok := converted.(string)
	if !ok {
		return fxerrors.TypeCoercion(sp.Start, sp.End, eval.TypeName(converted), "String")
	}
	sb.WriteString(str)
	return nil
}

// IsCompilable implements Node.
func (n *Template) IsCompilable() bool {
	for _, part := range n.children {
		if !part.IsCompilable() {
			return false
		}
	}
	return true
}

// Emit implements Node.
func (n *Template) Emit(cf *CodeFlow) {
	cf.Assume(n)
	parts := make([]ValueFunc, len(n.children))
	spans := make([]Span, len(n.children))
	for i, part := range n.children {
		parts[i] = box(cf.emit(part))
		spans[i] = part.Span()
	}
	cf.Push(valueFragment(eval.DescriptorString, func(s *eval.State) (any, error) {
		var sb strings.Builder
		for i, part := range parts {
			v, err := part(s)
			if err != nil {
				return nil, err
			}
			if err := appendPart(s, &sb, v, spans[i]); err != nil {
				return nil, err
			}
		}
		return sb.String(), nil
	}))
}

func (n *Template) String() string {
	var sb strings.Builder
	for _, part := range n.children {
		if lit, ok := part.(*StringLiteral); ok {
			sb.WriteString(lit.Text())
			continue
		}
		sb.WriteString("#{")
		sb.WriteString(part.String())
		sb.WriteString("}")
	}
	return sb.String()
}
