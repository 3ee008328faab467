package flowexpr

import (
	"errors"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/ast"
)

// Sentinel errors returned by the expression handle and parser facade.
var (
	// ErrNilContext indicates Evaluate was called with a nil context.Context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrEmptyExpression indicates a blank source or a nil AST root.
	ErrEmptyExpression = errors.New("expression is empty")

	// ErrNotCompilable indicates CompileNow was refused because the tree
	// cannot be compiled in its current state.
	ErrNotCompilable = ast.ErrNotCompilable
)
