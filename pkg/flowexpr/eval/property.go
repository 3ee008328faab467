package eval

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for property access.
var (
	// ErrPropertyNotFound indicates the target has no such property.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrNullTarget indicates a property was read from nil.
	ErrNullTarget = errors.New("property cannot be read on null")
)

// ReflectPropertyAccessor reads map keys and exported struct fields.
type ReflectPropertyAccessor struct{}

var _ PropertyAccessor = ReflectPropertyAccessor{}

// ReadProperty implements PropertyAccessor.
func (ReflectPropertyAccessor) ReadProperty(target any, name string) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrNullTarget, name)
	}
	if m, ok := target.(map[string]any); ok {
		v, found := m[name]
		if !found {
			return nil, fmt.Errorf("%w: %s on map", ErrPropertyNotFound, name)
		}
		return v, nil
	}

	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: %s", ErrNullTarget, name)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		sf, ok := rv.Type().FieldByName(name)
		if !ok || !sf.IsExported() {
			return nil, fmt.Errorf("%w: %s on %s", ErrPropertyNotFound, name, rv.Type())
		}
		return rv.FieldByIndex(sf.Index).Interface(), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, fmt.Errorf("%w: %s on %s", ErrPropertyNotFound, name, rv.Type())
		}
		return v.Interface(), nil
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrPropertyNotFound, name, TypeName(target))
}
