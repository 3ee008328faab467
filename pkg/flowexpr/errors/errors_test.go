package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
)

func TestEvaluationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "positioned",
			err:  fxerrors.TypeCoercion(6, 8, "String", "boolean"),
			want: "type_coercion error at position 6: type conversion problem, cannot convert from String to boolean",
		},
		{
			name: "unpositioned",
			err:  fxerrors.New(fxerrors.KindEvaluation, fxerrors.NoPosition, fxerrors.NoPosition, "division by zero"),
			want: "evaluation error: division by zero",
		},
		{
			name: "cause only",
			err:  fxerrors.Conversion(0, 3, errors.New("bad value")),
			want: "conversion error at position 0: bad value",
		},
		{
			name: "invalid operand",
			err:  fxerrors.InvalidOperand(2, 12, "instanceof", "String"),
			want: "invalid_operand error at position 2: the operator 'instanceof' needs the right operand to be a type, not a 'String'",
		},
		{
			name: "unsupported operator",
			err:  fxerrors.UnsupportedOperator(1, 2, "-", "String", "Boolean"),
			want: "unsupported_operator error at position 1: the operator '-' is not supported between objects of type 'String' and 'Boolean'",
		},
		{
			name: "syntax",
			err:  fxerrors.NewSyntaxError("#a or", 5, "expected %s", "operand"),
			want: "syntax error at position 5: expected operand",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, fxerrors.KindEvaluation, fxerrors.KindOf(nil))
	assert.Equal(t, fxerrors.KindEvaluation, fxerrors.KindOf(errors.New("plain")))
	assert.Equal(t, fxerrors.KindSyntax, fxerrors.KindOf(fxerrors.NewSyntaxError("", 0, "x")))

	wrapped := fmt.Errorf("outer: %w", fxerrors.TypeCoercion(0, 1, "null", "boolean"))
	assert.Equal(t, fxerrors.KindTypeCoercion, fxerrors.KindOf(wrapped))
	assert.True(t, fxerrors.IsTypeCoercion(wrapped))
	assert.False(t, fxerrors.IsConversion(wrapped))

	assert.True(t, fxerrors.IsSyntax(fxerrors.NewSyntaxError("", 0, "x")))
	assert.True(t, fxerrors.IsInvalidOperand(fxerrors.InvalidOperand(0, 1, "instanceof", "Long")))
	assert.True(t, fxerrors.IsUnsupportedOperator(fxerrors.UnsupportedOperator(0, 1, "+", "a", "b")))
	assert.True(t, fxerrors.IsConversion(fxerrors.Conversion(0, 1, errors.New("x"))))
	assert.False(t, fxerrors.IsSyntax(nil))

	assert.Equal(t, "unknown", fxerrors.Kind(42).String())
}

func TestWrap(t *testing.T) {
	assert.NoError(t, fxerrors.Wrap(fxerrors.KindConversion, 0, 1, nil))

	cause := errors.New("boom")
	err := fxerrors.Wrap(fxerrors.KindConversion, 3, 5, cause)
	var evalErr *fxerrors.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, fxerrors.KindConversion, evalErr.Kind)
	assert.Equal(t, 3, evalErr.Start)
	assert.Equal(t, 5, evalErr.End)
	assert.ErrorIs(t, err, cause)

	positioned := fxerrors.TypeCoercion(1, 2, "null", "boolean")
	assert.Same(t, positioned, fxerrors.Wrap(fxerrors.KindEvaluation, 7, 9, positioned),
		"a positioned error keeps its span")

	unpositioned := fxerrors.New(fxerrors.KindTypeCoercion, fxerrors.NoPosition, fxerrors.NoPosition, "x")
	err = fxerrors.Wrap(fxerrors.KindEvaluation, 7, 9, unpositioned)
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, fxerrors.KindTypeCoercion, evalErr.Kind, "kind is kept")
	assert.Equal(t, 7, evalErr.Start)
	assert.False(t, unpositioned.HasPosition(), "original is not mutated")
}

func TestReposition(t *testing.T) {
	assert.NoError(t, fxerrors.Reposition(nil, 0, 1))

	orig := fxerrors.TypeCoercion(1, 2, "null", "boolean")
	moved := fxerrors.Reposition(orig, 10, 12)
	var evalErr *fxerrors.EvaluationError
	require.ErrorAs(t, moved, &evalErr)
	assert.Equal(t, 10, evalErr.Start)
	assert.Equal(t, 12, evalErr.End)
	assert.Equal(t, 1, orig.Start)

	plain := fxerrors.Reposition(errors.New("x"), 0, 4)
	require.ErrorAs(t, plain, &evalErr)
	assert.Equal(t, fxerrors.KindEvaluation, evalErr.Kind)
}
