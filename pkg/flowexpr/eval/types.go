package eval

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/registry"
)

// ErrTypeNotFound indicates a T(...) reference named an unknown type.
var ErrTypeNotFound = errors.New("type not found")

// TypeRef is the value of a T(name) reference.
//
// A TypeRef names either a Go type or a primitive slot tag. Runtime values
// are always boxed, so no value is ever an instance of a primitive TypeRef.
type TypeRef struct {
	// Name is the name the reference was resolved from.
	Name string
	// Type is the Go type. Nil for primitive references.
	Type reflect.Type
	// Primitive is the slot tag for primitive references, DescriptorNone otherwise.
	Primitive Descriptor
}

// IsPrimitive reports whether the reference names a primitive slot.
func (t TypeRef) IsPrimitive() bool {
	return t.Primitive != DescriptorNone
}

// IsInstance reports whether v's runtime type is the referenced type, or
// implements it when the reference names an interface. nil is never an
// instance.
func (t TypeRef) IsInstance(v any) bool {
	if v == nil || t.IsPrimitive() || t.Type == nil {
		return false
	}
	vt := reflect.TypeOf(v)
	if t.Type.Kind() == reflect.Interface {
		return vt.Implements(t.Type)
	}
	return vt == t.Type
}

// String returns the reference in source form.
func (t TypeRef) String() string {
	return "T(" + t.Name + ")"
}

// TypeOf returns a TypeRef for the Go type of T.
func TypeOf[T any](name string) TypeRef {
	return TypeRef{Name: name, Type: reflect.TypeOf((*T)(nil)).Elem()}
}

// StandardTypeLocator resolves type names from a registry.
type StandardTypeLocator struct {
	types *registry.Registry[TypeRef]
}

// NewStandardTypeLocator returns a locator preloaded with the builtin Go
// types and the primitive slot tags boolean, long and double.
func NewStandardTypeLocator() *StandardTypeLocator {
	types := registry.New[TypeRef]()
	for _, ref := range []TypeRef{
		TypeOf[bool]("bool"),
		TypeOf[string]("string"),
		TypeOf[int]("int"),
		TypeOf[int64]("int64"),
		TypeOf[float64]("float64"),
		TypeOf[error]("error"),
		TypeOf[any]("any"),
		TypeOf[map[string]any]("map"),
		TypeOf[[]any]("slice"),
		TypeOf[time.Time]("time.Time"),
		TypeOf[time.Duration]("time.Duration"),
		{Name: "boolean", Primitive: DescriptorBool},
		{Name: "long", Primitive: DescriptorLong},
		{Name: "double", Primitive: DescriptorDouble},
	} {
		_ = types.Register(ref.Name, ref)
	}
	return &StandardTypeLocator{types: types}
}

// Register makes t resolvable as name.
func (l *StandardTypeLocator) Register(name string, t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("register type %q: nil type", name)
	}
	return l.types.Register(name, TypeRef{Name: name, Type: t})
}

// FindType implements TypeLocator.
func (l *StandardTypeLocator) FindType(name string) (TypeRef, error) {
	ref, ok := l.types.Lookup(name)
	if !ok {
		return TypeRef{}, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	}
	return ref, nil
}

// Names returns every resolvable type name.
func (l *StandardTypeLocator) Names() []string {
	return l.types.Names()
}
