package eval

import (
	"fmt"
	"reflect"
)

// TypedValue pairs a value with its runtime type.
// It is immutable; the zero value is the null value.
type TypedValue struct {
	value any
	typ   reflect.Type
}

// Common values.
var (
	Null  = TypedValue{}
	True  = NewTypedValue(true)
	False = NewTypedValue(false)
)

// NewTypedValue wraps v.
func NewTypedValue(v any) TypedValue {
	if v == nil {
		return Null
	}
	return TypedValue{value: v, typ: reflect.TypeOf(v)}
}

// BoolValue returns True or False.
func BoolValue(b bool) TypedValue {
	if b {
		return True
	}
	return False
}

// Value returns the wrapped value.
func (tv TypedValue) Value() any {
	return tv.value
}

// Type returns the runtime type, or nil for the null value.
func (tv TypedValue) Type() reflect.Type {
	return tv.typ
}

// IsNull reports whether the value is absent.
func (tv TypedValue) IsNull() bool {
	return tv.value == nil
}

// Descriptor returns the boxed tag of the value.
func (tv TypedValue) Descriptor() Descriptor {
	return DescriptorOf(tv.value)
}

// String formats the value for diagnostics.
func (tv TypedValue) String() string {
	if tv.value == nil {
		return "null"
	}
	return fmt.Sprintf("%v (%s)", tv.value, tv.typ)
}

// TypeName returns the type name used in error messages, "null" for nil.
func TypeName(v any) string {
	if v == nil {
		return "null"
	}
	if ref, ok := v.(TypeRef); ok {
		return "type " + ref.Name
	}
	return reflect.TypeOf(v).String()
}
