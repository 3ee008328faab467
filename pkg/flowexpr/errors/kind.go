// Package errors defines the error kinds raised while parsing and evaluating
// expressions.
//
// Every evaluation failure is an *EvaluationError carrying the Kind and the
// source span of the operand or operator it is attributed to, so embedding
// applications can point at the offending text. Parse failures are
// *SyntaxError values.
//
// The package is usually imported under an alias:
//
//	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
package errors

import (
	"errors"
)

// Kind classifies an expression error.
type Kind int

const (
	// KindEvaluation is a failure with no more specific kind, such as an
	// overloaded operation that failed or an integer division by zero.
	KindEvaluation Kind = iota

	// KindSyntax indicates malformed source text. Only parsers raise it.
	KindSyntax

	// KindTypeCoercion indicates a required primitive (usually a boolean)
	// could not be obtained from an operand's value.
	KindTypeCoercion

	// KindInvalidOperand indicates an operand has the wrong kind for its
	// operator, e.g. the right side of instanceof is not a type.
	KindInvalidOperand

	// KindUnsupportedOperator indicates neither a built-in rule nor an
	// overload claims the operation.
	KindUnsupportedOperator

	// KindConversion indicates the context's type converter failed.
	KindConversion
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEvaluation:
		return "evaluation"
	case KindSyntax:
		return "syntax"
	case KindTypeCoercion:
		return "type_coercion"
	case KindInvalidOperand:
		return "invalid_operand"
	case KindUnsupportedOperator:
		return "unsupported_operator"
	case KindConversion:
		return "conversion"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of err.
// Errors that are neither *EvaluationError nor *SyntaxError are KindEvaluation.
func KindOf(err error) Kind {
	if err == nil {
		return KindEvaluation
	}

	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		return KindSyntax
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return evalErr.Kind
	}

	return KindEvaluation
}

// IsSyntax reports whether err is a parse failure.
func IsSyntax(err error) bool {
	return err != nil && KindOf(err) == KindSyntax
}

// IsTypeCoercion reports whether err is a failed primitive coercion.
func IsTypeCoercion(err error) bool {
	return err != nil && KindOf(err) == KindTypeCoercion
}

// IsInvalidOperand reports whether err is an operand of the wrong kind.
func IsInvalidOperand(err error) bool {
	return err != nil && KindOf(err) == KindInvalidOperand
}

// IsUnsupportedOperator reports whether err is an unsupported operation.
func IsUnsupportedOperator(err error) bool {
	return err != nil && KindOf(err) == KindUnsupportedOperator
}

// IsConversion reports whether err came from the type converter.
func IsConversion(err error) bool {
	return err != nil && KindOf(err) == KindConversion
}
