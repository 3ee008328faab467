// Package eval holds the runtime surface shared by every expression node:
// typed values, descriptors, the evaluation context capabilities an
// embedding application supplies, and the per-call ExpressionState.
package eval

import (
	"sync"
)

// VariableResolver looks up #name variables.
type VariableResolver interface {
	// ResolveVariable returns the value of name and whether it is defined.
	ResolveVariable(name string) (any, bool)
}

// TypeConverter converts values to the kind a node requires.
type TypeConverter interface {
	// Convert returns v converted to target. A nil result with a nil
	// error means the conversion produced no value.
	Convert(v any, target Descriptor) (any, error)
}

// OperatorOverloader extends arithmetic and comparison to operand types
// with no builtin rule.
type OperatorOverloader interface {
	// OverridesOperation reports whether Operate handles op for the operands.
	OverridesOperation(op Operation, left, right any) bool
	// Operate computes op. Only called after OverridesOperation returned true.
	Operate(op Operation, left, right any) (any, error)
}

// TypeLocator resolves the names used in T(name) references.
type TypeLocator interface {
	FindType(name string) (TypeRef, error)
}

// PropertyAccessor reads properties named by bare identifiers.
type PropertyAccessor interface {
	ReadProperty(target any, name string) (any, error)
}

// EvaluationContext is the capability set consumed by evaluation.
//
// The engine never retains a context beyond one Evaluate call and never
// assumes it is safe for concurrent use beyond what the caller guarantees.
type EvaluationContext interface {
	VariableResolver
	TypeConverter
	OperatorOverloader
	TypeLocator
	PropertyAccessor
}

// StandardContext is an EvaluationContext assembled from defaults.
// Variables can be set while other goroutines evaluate against it.
type StandardContext struct {
	mu        sync.RWMutex
	variables map[string]any

	converter  TypeConverter
	overloader OperatorOverloader
	locator    TypeLocator
	properties PropertyAccessor
}

var _ EvaluationContext = (*StandardContext)(nil)

// ContextOption configures a StandardContext.
type ContextOption func(*StandardContext)

// WithVariables seeds the context variables. The map is copied.
func WithVariables(vars map[string]any) ContextOption {
	return func(c *StandardContext) {
		for k, v := range vars {
			c.variables[k] = v
		}
	}
}

// WithConverter replaces the StandardConverter.
func WithConverter(tc TypeConverter) ContextOption {
	return func(c *StandardContext) {
		if tc != nil {
			c.converter = tc
		}
	}
}

// WithOverloader replaces the StandardOverloader, which declines everything.
func WithOverloader(o OperatorOverloader) ContextOption {
	return func(c *StandardContext) {
		if o != nil {
			c.overloader = o
		}
	}
}

// WithTypeLocator replaces the StandardTypeLocator.
func WithTypeLocator(l TypeLocator) ContextOption {
	return func(c *StandardContext) {
		if l != nil {
			c.locator = l
		}
	}
}

// WithPropertyAccessor replaces the ReflectPropertyAccessor.
func WithPropertyAccessor(p PropertyAccessor) ContextOption {
	return func(c *StandardContext) {
		if p != nil {
			c.properties = p
		}
	}
}

// NewStandardContext creates a context with the given options.
func NewStandardContext(opts ...ContextOption) *StandardContext {
	c := &StandardContext{
		variables:  make(map[string]any),
		converter:  StandardConverter{},
		overloader: StandardOverloader{},
		locator:    NewStandardTypeLocator(),
		properties: ReflectPropertyAccessor{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetVariable defines or replaces a variable.
func (c *StandardContext) SetVariable(name string, v any) {
	c.mu.Lock()
	c.variables[name] = v
	c.mu.Unlock()
}

// ResolveVariable implements VariableResolver.
func (c *StandardContext) ResolveVariable(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.variables[name]
	return v, ok
}

// Convert implements TypeConverter.
func (c *StandardContext) Convert(v any, target Descriptor) (any, error) {
	return c.converter.Convert(v, target)
}

// OverridesOperation implements OperatorOverloader.
func (c *StandardContext) OverridesOperation(op Operation, left, right any) bool {
	return c.overloader.OverridesOperation(op, left, right)
}

// Operate implements OperatorOverloader.
func (c *StandardContext) Operate(op Operation, left, right any) (any, error) {
	return c.overloader.Operate(op, left, right)
}

// FindType implements TypeLocator.
func (c *StandardContext) FindType(name string) (TypeRef, error) {
	return c.locator.FindType(name)
}

// ReadProperty implements PropertyAccessor.
func (c *StandardContext) ReadProperty(target any, name string) (any, error) {
	return c.properties.ReadProperty(target, name)
}
