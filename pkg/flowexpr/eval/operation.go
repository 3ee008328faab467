package eval

import (
	"errors"
	"fmt"
)

// ErrNoOverload indicates Operate was called for an operation the
// overloader does not claim.
var ErrNoOverload = errors.New("no operation overloaded")

// Operation identifies an overloadable binary operation.
type Operation int

const (
	OpAdd Operation = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
	OpEqual
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

var operationNames = [...]string{
	OpAdd:            "add",
	OpSubtract:       "subtract",
	OpMultiply:       "multiply",
	OpDivide:         "divide",
	OpModulus:        "modulus",
	OpEqual:          "equal",
	OpNotEqual:       "not_equal",
	OpLess:           "less",
	OpLessOrEqual:    "less_or_equal",
	OpGreater:        "greater",
	OpGreaterOrEqual: "greater_or_equal",
}

var operationSymbols = [...]string{
	OpAdd:            "+",
	OpSubtract:       "-",
	OpMultiply:       "*",
	OpDivide:         "/",
	OpModulus:        "%",
	OpEqual:          "==",
	OpNotEqual:       "!=",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
}

// String returns the operation name.
func (op Operation) String() string {
	if op < 0 || int(op) >= len(operationNames) {
		return fmt.Sprintf("operation(%d)", int(op))
	}
	return operationNames[op]
}

// Symbol returns the source operator.
func (op Operation) Symbol() string {
	if op < 0 || int(op) >= len(operationSymbols) {
		return "?"
	}
	return operationSymbols[op]
}

// IsComparison reports whether op yields a boolean.
func (op Operation) IsComparison() bool {
	return op >= OpEqual
}

// StandardOverloader claims no operations.
type StandardOverloader struct{}

var _ OperatorOverloader = StandardOverloader{}

// OverridesOperation always returns false.
func (StandardOverloader) OverridesOperation(Operation, any, any) bool {
	return false
}

// Operate always fails.
func (StandardOverloader) Operate(op Operation, _, _ any) (any, error) {
	return nil, fmt.Errorf("%w by default: %s", ErrNoOverload, op)
}

// OperatorMatch reports whether an overload applies to the operands.
type OperatorMatch func(left, right any) bool

// OperatorFunc computes an overloaded operation.
type OperatorFunc func(left, right any) (any, error)

type overload struct {
	match OperatorMatch
	fn    OperatorFunc
}

// OperatorTable is an OperatorOverloader assembled from functions.
// Entries are tried in registration order; the first match wins.
//
// Build the table before sharing it; Handle is not safe to call
// concurrently with evaluation.
//
// Example:
//
//	table := eval.NewOperatorTable().
//	    Handle(eval.OpAdd, func(l, r any) bool {
//	        _, ls := l.(string)
//	        _, rb := r.(bool)
//	        return ls && rb
//	    }, func(l, r any) (any, error) {
//	        return fmt.Sprintf("%s%t", l, r), nil
//	    })
type OperatorTable struct {
	entries map[Operation][]overload
}

var _ OperatorOverloader = (*OperatorTable)(nil)

// NewOperatorTable creates an empty table.
func NewOperatorTable() *OperatorTable {
	return &OperatorTable{entries: make(map[Operation][]overload)}
}

// Handle registers fn for op when match accepts the operands.
// A nil match accepts every operand pair.
func (t *OperatorTable) Handle(op Operation, match OperatorMatch, fn OperatorFunc) *OperatorTable {
	if match == nil {
		match = func(any, any) bool { return true }
	}
	t.entries[op] = append(t.entries[op], overload{match: match, fn: fn})
	return t
}

func (t *OperatorTable) find(op Operation, left, right any) (OperatorFunc, bool) {
	for _, o := range t.entries[op] {
		if o.match(left, right) {
			return o.fn, true
		}
	}
	return nil, false
}

// OverridesOperation implements OperatorOverloader.
func (t *OperatorTable) OverridesOperation(op Operation, left, right any) bool {
	_, ok := t.find(op, left, right)
	return ok
}

// Operate implements OperatorOverloader.
func (t *OperatorTable) Operate(op Operation, left, right any) (any, error) {
	fn, ok := t.find(op, left, right)
	if !ok {
		return nil, fmt.Errorf("%w: %s between %s and %s", ErrNoOverload, op, TypeName(left), TypeName(right))
	}
	return fn(left, right)
}
