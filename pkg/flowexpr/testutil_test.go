package flowexpr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

// vars builds a standard context over the given variables.
func vars(kv map[string]any) *eval.StandardContext {
	return eval.NewStandardContext(eval.WithVariables(kv))
}

// mustParse parses source with opts or fails the test.
func mustParse(t *testing.T, source string, opts ...flowexpr.Option) *flowexpr.Expression {
	t.Helper()
	expr, err := flowexpr.NewParser(opts...).Parse(source)
	require.NoError(t, err)
	return expr
}

// mustEval evaluates expr against ec and returns the bare value.
func mustEval(t *testing.T, expr *flowexpr.Expression, ec eval.EvaluationContext, opts ...flowexpr.CallOption) any {
	t.Helper()
	v, err := expr.Value(context.Background(), ec, opts...)
	require.NoError(t, err)
	return v
}

var immediate = flowexpr.WithCompilerMode(flowexpr.CompilerImmediate)
