package errors

import (
	"errors"
	"fmt"
)

// NoPosition marks an error whose source span is not known yet.
const NoPosition = -1

// EvaluationError is a failure raised while evaluating an expression.
// Start and End are byte offsets into the expression source.
type EvaluationError struct {
	// Kind classifies the failure.
	Kind Kind
	// Start is the offset of the first byte of the offending text.
	Start int
	// End is the offset just past the offending text.
	End int
	// Message describes the failure.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Start >= 0 {
		return fmt.Sprintf("%s error at position %d: %s", e.Kind, e.Start, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// HasPosition reports whether the error is attributed to a source span.
func (e *EvaluationError) HasPosition() bool {
	return e.Start >= 0
}

// SyntaxError is raised by the parser for malformed source text.
type SyntaxError struct {
	// Position is the offset where parsing failed.
	Position int
	// Message describes what was expected.
	Message string
	// Source is the text being parsed.
	Source string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Position, e.Message)
}

// NewSyntaxError creates a syntax error at pos.
func NewSyntaxError(source string, pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
		Source:   source,
	}
}

// New creates an evaluation error of the given kind over [start, end).
func New(kind Kind, start, end int, format string, args ...any) *EvaluationError {
	return &EvaluationError{
		Kind:    kind,
		Start:   start,
		End:     end,
		Message: fmt.Sprintf(format, args...),
	}
}

// TypeCoercion reports that a value of type from could not be used as to.
func TypeCoercion(start, end int, from, to string) *EvaluationError {
	return New(KindTypeCoercion, start, end, "type conversion problem, cannot convert from %s to %s", from, to)
}

// InvalidOperand reports that operator received an operand of kind actual
// where a type reference was required.
func InvalidOperand(start, end int, operator, actual string) *EvaluationError {
	return New(KindInvalidOperand, start, end,
		"the operator '%s' needs the right operand to be a type, not a '%s'", operator, actual)
}

// UnsupportedOperator reports that no rule and no overload handles op for
// the given operand types.
func UnsupportedOperator(start, end int, op, left, right string) *EvaluationError {
	return New(KindUnsupportedOperator, start, end,
		"the operator '%s' is not supported between objects of type '%s' and '%s'", op, left, right)
}

// Conversion wraps a converter failure.
func Conversion(start, end int, err error) *EvaluationError {
	return &EvaluationError{
		Kind:  KindConversion,
		Start: start,
		End:   end,
		Err:   err,
	}
}

// Wrap attributes err to [start, end) with the given kind.
// An *EvaluationError keeps its own kind and, if already positioned, its span.
func Wrap(kind Kind, start, end int, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.HasPosition() {
			return err
		}
		return Reposition(err, start, end)
	}
	return &EvaluationError{
		Kind:  kind,
		Start: start,
		End:   end,
		Err:   err,
	}
}

// Reposition returns err attributed to [start, end).
// An *EvaluationError is copied with the new span; any other error is
// wrapped as KindEvaluation.
func Reposition(err error, start, end int) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		moved := *evalErr
		moved.Start = start
		moved.End = end
		return &moved
	}
	return &EvaluationError{
		Kind:  KindEvaluation,
		Start: start,
		End:   end,
		Err:   err,
	}
}
