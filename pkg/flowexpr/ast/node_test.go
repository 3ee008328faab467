package ast_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/ast"
	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

func newState(vars map[string]any, root any, opts ...eval.ContextOption) *eval.State {
	opts = append([]eval.ContextOption{eval.WithVariables(vars)}, opts...)
	return eval.NewState(eval.NewStandardContext(opts...), root)
}

func evalErr(t *testing.T, err error) *fxerrors.EvaluationError {
	t.Helper()
	var ee *fxerrors.EvaluationError
	require.True(t, errors.As(err, &ee), "expected *EvaluationError, got %T: %v", err, err)
	return ee
}

// "missing" reads a property from a nil root, which always fails.
func failingOperand(start, end int) ast.Node {
	return ast.NewPropertyReference("missing", start, end)
}

func TestOpOr_ShortCircuit(t *testing.T) {
	s := newState(nil, nil)

	n := ast.NewOpOr(0, 15, ast.NewBooleanLiteral(true, 0, 4), failingOperand(8, 15))
	v, err := n.Evaluate(s)
	require.NoError(t, err)
	assert.Equal(t, true, v.Value())

	n = ast.NewOpOr(0, 16, ast.NewBooleanLiteral(false, 0, 5), failingOperand(9, 16))
	_, err = n.Evaluate(s)
	require.Error(t, err)
	assert.Equal(t, 9, evalErr(t, err).Start)
}

func TestOpOr_Truth(t *testing.T) {
	tests := []struct {
		a, b bool
		want bool
	}{
		{false, false, false},
		{false, true, true},
		{true, false, true},
		{true, true, true},
	}
	for _, tt := range tests {
		n := ast.NewOpOr(0, 9, ast.NewBooleanLiteral(tt.a, 0, 1), ast.NewBooleanLiteral(tt.b, 5, 9))
		v, err := n.Evaluate(newState(nil, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.Value(), "%t or %t", tt.a, tt.b)
		assert.Equal(t, eval.DescriptorBool, n.ExitDescriptor())
	}
}

func TestOpOr_NullOperandReportsOperandPosition(t *testing.T) {
	n := ast.NewOpOr(0, 14, ast.NewBooleanLiteral(false, 0, 5), ast.NewVariableReference("x", 9, 11))

	_, err := n.Evaluate(newState(nil, nil))
	require.Error(t, err)
	ee := evalErr(t, err)
	assert.Equal(t, fxerrors.KindTypeCoercion, ee.Kind)
	assert.Equal(t, 9, ee.Start)
	assert.Contains(t, ee.Error(), "null")
	assert.Contains(t, ee.Error(), "boolean")
}

func TestOpOr_StringOperandIsConverted(t *testing.T) {
	n := ast.NewOpOr(0, 10, ast.NewStringLiteral("'true'", 0, 6), ast.NewBooleanLiteral(false, 10, 15))
	v, err := n.Evaluate(newState(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, true, v.Value())
	assert.False(t, n.IsCompilable(), "string operand is not boolean compatible")
}

func TestOpOr_CompiledMatchesInterpreted(t *testing.T) {
	n := ast.NewOpOr(0, 8, ast.NewVariableReference("a", 0, 2), ast.NewVariableReference("b", 6, 8))
	vars := map[string]any{"a": false, "b": true}

	assert.False(t, n.IsCompilable(), "nothing observed yet")
	_, err := n.Evaluate(newState(vars, nil))
	require.NoError(t, err)
	// b is only observed once a is false, which it was.
	require.True(t, n.IsCompilable())

	ce, err := ast.Compile(n)
	require.NoError(t, err)
	assert.Equal(t, eval.DescriptorBool, ce.Descriptor())

	for _, in := range []map[string]any{
		{"a": false, "b": false},
		{"a": false, "b": true},
		{"a": true, "b": false},
		{"a": true, "b": true},
	} {
		want, err := n.Evaluate(newState(in, nil))
		require.NoError(t, err)
		got, err := ce.Evaluate(newState(in, nil))
		require.NoError(t, err)
		assert.Equal(t, want.Value(), got.Value(), "%v", in)
	}
}

func TestOpOr_CompiledDetectsShapeChange(t *testing.T) {
	n := ast.NewOpOr(0, 8, ast.NewVariableReference("a", 0, 2), ast.NewVariableReference("b", 6, 8))
	_, err := n.Evaluate(newState(map[string]any{"a": false, "b": true}, nil))
	require.NoError(t, err)
	ce, err := ast.Compile(n)
	require.NoError(t, err)

	_, err = ce.Evaluate(newState(map[string]any{"a": "yes", "b": true}, nil))
	require.Error(t, err)
	assert.True(t, ast.IsStaleAssumption(err))

	var sae *ast.StaleAssumptionError
	require.ErrorAs(t, err, &sae)
	assert.Equal(t, 0, sae.Span.Start)
	assert.Equal(t, eval.DescriptorString, sae.Actual)
}

func TestOpAnd_ShortCircuit(t *testing.T) {
	s := newState(nil, nil)

	n := ast.NewOpAnd(0, 16, ast.NewBooleanLiteral(false, 0, 5), failingOperand(10, 16))
	v, err := n.Evaluate(s)
	require.NoError(t, err)
	assert.Equal(t, false, v.Value())

	n = ast.NewOpAnd(0, 15, ast.NewBooleanLiteral(true, 0, 4), ast.NewBooleanLiteral(true, 9, 13))
	v, err = n.Evaluate(s)
	require.NoError(t, err)
	assert.Equal(t, true, v.Value())
}

func TestOpNot(t *testing.T) {
	n := ast.NewOpNot(0, 5, ast.NewVariableReference("flag", 1, 6))
	v, err := n.Evaluate(newState(map[string]any{"flag": true}, nil))
	require.NoError(t, err)
	assert.Equal(t, false, v.Value())

	ce, err := ast.Compile(n)
	require.NoError(t, err)
	v, err = ce.Evaluate(newState(map[string]any{"flag": false}, nil))
	require.NoError(t, err)
	assert.Equal(t, true, v.Value())
}

func TestInstanceof(t *testing.T) {
	t.Run("null is not an instance", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 20, ast.NewNullLiteral(0, 4), ast.NewTypeReference("string", 16, 25))
		v, err := n.Evaluate(newState(nil, nil))
		require.NoError(t, err)
		assert.Equal(t, false, v.Value())
	})

	t.Run("direct type reference", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 25, ast.NewStringLiteral("'abc'", 0, 5), ast.NewTypeReference("string", 17, 26))
		v, err := n.Evaluate(newState(nil, nil))
		require.NoError(t, err)
		assert.Equal(t, true, v.Value())
		assert.Equal(t, eval.DescriptorBool, n.ExitDescriptor())
		assert.True(t, n.IsCompilable())

		ref, ok := n.ResolvedType()
		require.True(t, ok)
		assert.Equal(t, "string", ref.Name)
	})

	t.Run("right operand not a type", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 20, ast.NewStringLiteral("'abc'", 0, 5), ast.NewStringLiteral("'def'", 17, 22))
		_, err := n.Evaluate(newState(nil, nil))
		require.Error(t, err)
		ee := evalErr(t, err)
		assert.Equal(t, fxerrors.KindInvalidOperand, ee.Kind)
		assert.Equal(t, 17, ee.Start)
		assert.Contains(t, ee.Error(), "string")
	})

	t.Run("null left operand with a right operand that is not a type", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 19, ast.NewNullLiteral(0, 4), ast.NewStringLiteral("'x'", 16, 19))
		_, err := n.Evaluate(newState(nil, nil))
		require.Error(t, err)
		ee := evalErr(t, err)
		assert.Equal(t, fxerrors.KindInvalidOperand, ee.Kind)
		assert.Equal(t, 16, ee.Start)
	})

	t.Run("right operand null", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 20, ast.NewLongLiteral(1, 0, 1), ast.NewNullLiteral(13, 17))
		_, err := n.Evaluate(newState(nil, nil))
		require.Error(t, err)
		assert.True(t, fxerrors.IsInvalidOperand(err))
	})

	t.Run("type through a variable is not compilable", func(t *testing.T) {
		vars := map[string]any{"t": eval.TypeOf[string]("string")}
		n := ast.NewOperatorInstanceof(0, 20, ast.NewStringLiteral("'abc'", 0, 5), ast.NewVariableReference("t", 17, 19))
		v, err := n.Evaluate(newState(vars, nil))
		require.NoError(t, err)
		assert.Equal(t, true, v.Value())
		assert.Equal(t, eval.DescriptorNone, n.ExitDescriptor())
		assert.False(t, n.IsCompilable())
	})

	t.Run("primitive type is always false", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 25, ast.NewBooleanLiteral(true, 0, 4), ast.NewTypeReference("boolean", 16, 26))
		v, err := n.Evaluate(newState(nil, nil))
		require.NoError(t, err)
		assert.Equal(t, false, v.Value())

		ce, err := ast.Compile(n)
		require.NoError(t, err)
		v, err = ce.Evaluate(newState(nil, nil))
		require.NoError(t, err)
		assert.Equal(t, false, v.Value())
	})

	t.Run("primitive type still evaluates the left operand", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 25, failingOperand(0, 7), ast.NewTypeReference("boolean", 19, 29))
		_, err := n.Evaluate(newState(nil, nil))
		require.Error(t, err)
		assert.Equal(t, 0, evalErr(t, err).Start)
	})

	t.Run("compiled primitive check evaluates the left operand", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 25, ast.NewPropertyReference("name", 0, 4), ast.NewTypeReference("boolean", 16, 26))
		_, err := n.Evaluate(newState(nil, map[string]any{"name": "x"}))
		require.NoError(t, err)
		ce, err := ast.Compile(n)
		require.NoError(t, err)

		_, err = ce.Evaluate(newState(nil, map[string]any{}))
		require.Error(t, err)
		assert.False(t, ast.IsStaleAssumption(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		n := ast.NewOperatorInstanceof(0, 25, ast.NewLongLiteral(1, 0, 1), ast.NewTypeReference("com.Unknown", 13, 27))
		_, err := n.Evaluate(newState(nil, nil))
		require.Error(t, err)
		assert.ErrorIs(t, err, eval.ErrTypeNotFound)
		assert.Equal(t, 13, evalErr(t, err).Start)
	})
}

func TestTernary_BranchDescriptors(t *testing.T) {
	n := ast.NewTernary(0, 14,
		ast.NewVariableReference("c", 0, 2),
		ast.NewStringLiteral("'a'", 5, 8),
		ast.NewLongLiteral(1, 11, 12),
	)
	v, err := n.Evaluate(newState(map[string]any{"c": true}, nil))
	require.NoError(t, err)
	assert.Equal(t, "a", v.Value())
	assert.Equal(t, eval.DescriptorObject, n.ExitDescriptor(), "branches differ")

	ce, err := ast.Compile(n)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		c := i%2 == 0
		got, err := ce.Evaluate(newState(map[string]any{"c": c}, nil))
		require.NoError(t, err)
		if c {
			assert.Equal(t, "a", got.Value())
		} else {
			assert.Equal(t, int64(1), got.Value())
		}
	}
}

func TestTernary_SharedDescriptor(t *testing.T) {
	n := ast.NewTernary(0, 20,
		ast.NewBooleanLiteral(false, 0, 5),
		ast.NewBooleanLiteral(true, 8, 12),
		ast.NewBooleanLiteral(false, 15, 20),
	)
	_, err := n.Evaluate(newState(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, eval.DescriptorBool, n.ExitDescriptor())

	ce, err := ast.Compile(n)
	require.NoError(t, err)
	v, err := ce.Evaluate(newState(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, false, v.Value())
}

// reobservedNode reports a boolean exit descriptor but emits a fragment of
// another shape, as a node re-observed by a concurrent evaluation would.
type reobservedNode struct {
	emitted eval.Descriptor
}

func (n *reobservedNode) Evaluate(*eval.State) (eval.TypedValue, error) { return eval.True, nil }
func (n *reobservedNode) IsCompilable() bool { return true }
func (n *reobservedNode) Span() ast.Span { return ast.Span{Start: 7, End: 9} }
func (n *reobservedNode) Children() []ast.Node { return nil }
func (n *reobservedNode) ExitDescriptor() eval.Descriptor { return eval.DescriptorBool }
func (n *reobservedNode) String() string { return "#r" }

func (n *reobservedNode) Emit(cf *ast.CodeFlow) {
	cf.Push(ast.Fragment{Desc: n.emitted, Value: func(*eval.State) (any, error) { return true, nil }})
}

func TestTernary_BranchRedescribedBeforeEmit(t *testing.T) {
	build := func(emitted eval.Descriptor) ast.Node {
		n := ast.NewTernary(0, 20,
			ast.NewBooleanLiteral(true, 0, 4),
			&reobservedNode{emitted: emitted},
			ast.NewBooleanLiteral(false, 12, 17),
		)
		_, err := n.Evaluate(newState(nil, nil))
		require.NoError(t, err)
		require.Equal(t, eval.DescriptorBool, n.ExitDescriptor())
		return n
	}

	_, err := ast.Compile(build(eval.DescriptorObject))
	assert.ErrorIs(t, err, ast.ErrNotCompilable)

	ce, err := ast.Compile(build(eval.DescriptorBoxedBool))
	require.NoError(t, err)
	v, err := ce.Evaluate(newState(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, true, v.Value())
}

func TestTernary_UnobservedBranchIsNotCompilable(t *testing.T) {
	n := ast.NewTernary(0, 14,
		ast.NewBooleanLiteral(true, 0, 4),
		ast.NewVariableReference("a", 7, 9),
		ast.NewVariableReference("b", 12, 14),
	)
	_, err := n.Evaluate(newState(map[string]any{"a": 1, "b": 2}, nil))
	require.NoError(t, err)
	assert.False(t, n.IsCompilable())

	_, err = ast.Compile(n)
	assert.ErrorIs(t, err, ast.ErrNotCompilable)
}

func TestTernary_NullCondition(t *testing.T) {
	n := ast.NewTernary(4, 14,
		ast.NewVariableReference("c", 4, 6),
		ast.NewLongLiteral(1, 9, 10),
		ast.NewLongLiteral(2, 13, 14),
	)
	_, err := n.Evaluate(newState(nil, nil))
	require.Error(t, err)
	ee := evalErr(t, err)
	assert.Equal(t, fxerrors.KindTypeCoercion, ee.Kind)
	assert.Equal(t, 4, ee.Start)
}

func TestStringLiteral(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{`'hello'`, "hello"},
		{`''`, ""},
		{`'it''s'`, "it's"},
		{`"a""b"`, `a"b`},
		{`'say "hi"'`, `say "hi"`},
		{`"it''s"`, "it''s"},
		{`'a''''b'`, "a''b"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			n := ast.NewStringLiteral(tt.token, 0, len(tt.token))
			assert.Equal(t, tt.want, n.Text())

			v, err := n.Evaluate(newState(nil, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Value())
			assert.Equal(t, eval.DescriptorString, n.ExitDescriptor())
			assert.True(t, n.IsCompilable())
		})
	}
}

func TestStringLiteral_String(t *testing.T) {
	assert.Equal(t, `'it''s'`, ast.NewStringLiteral(`"it's"`, 0, 6).String())
}

func TestCompile_NotCompilable(t *testing.T) {
	_, err := ast.Compile(ast.NewVariableReference("never", 0, 6))
	assert.ErrorIs(t, err, ast.ErrNotCompilable)

	_, err = ast.Compile(nil)
	assert.ErrorIs(t, err, ast.ErrNotCompilable)
}

func TestCompiledExpression_Valid(t *testing.T) {
	ref := ast.NewVariableReference("x", 0, 2)
	_, err := ref.Evaluate(newState(map[string]any{"x": "a"}, nil))
	require.NoError(t, err)

	ce, err := ast.Compile(ref)
	require.NoError(t, err)
	assert.True(t, ce.Valid())
	assert.Equal(t, 1, ce.Assumptions())
	assert.Same(t, ref, ce.Root())

	_, err = ref.Evaluate(newState(map[string]any{"x": int64(3)}, nil))
	require.NoError(t, err)
	assert.False(t, ce.Valid())
}

func TestWalk(t *testing.T) {
	tree := ast.NewOpOr(0, 10,
		ast.NewOpNot(0, 2, ast.NewVariableReference("a", 1, 2)),
		ast.NewBooleanLiteral(true, 6, 10),
	)
	var seen []string
	ast.Walk(tree, func(n ast.Node) bool {
		seen = append(seen, n.String())
		return true
	})
	assert.Equal(t, []string{"(!#a or true)", "!#a", "#a", "true"}, seen)
}
