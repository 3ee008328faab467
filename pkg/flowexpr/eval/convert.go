package eval

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrCannotConvert indicates the converter has no rule for a value.
var ErrCannotConvert = errors.New("cannot convert")

// StandardConverter converts between the builtin value kinds.
// nil converts to nil for every target.
type StandardConverter struct{}

var _ TypeConverter = StandardConverter{}

// Convert implements TypeConverter.
func (StandardConverter) Convert(v any, target Descriptor) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch target {
	case DescriptorBool, DescriptorBoxedBool:
		return toBool(v)
	case DescriptorLong, DescriptorBoxedLong:
		return toLong(v)
	case DescriptorDouble, DescriptorBoxedDouble:
		return toDouble(v)
	case DescriptorString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	default:
		return v, nil
	}
}

func toBool(v any) (any, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("%w string %q to boolean", ErrCannotConvert, val)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w %s to boolean", ErrCannotConvert, TypeName(v))
}

func toLong(v any) (any, error) {
	if s, ok := v.(string); ok {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w string %q to long", ErrCannotConvert, s)
		}
		return i, nil
	}
	switch n := NormalizeNumber(v).(type) {
	case int64:
		return n, nil
	case float64:
		if math.IsNaN(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return nil, fmt.Errorf("%w %s %v to long: out of range", ErrCannotConvert, TypeName(v), v)
		}
		return int64(n), nil
	}
	return nil, fmt.Errorf("%w %s to long", ErrCannotConvert, TypeName(v))
}

func toDouble(v any) (any, error) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w string %q to double", ErrCannotConvert, s)
		}
		return f, nil
	}
	switch n := NormalizeNumber(v).(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return nil, fmt.Errorf("%w %s to double", ErrCannotConvert, TypeName(v))
}

// NormalizeNumber maps every Go integer kind to int64 and every float kind
// to float64. Unsigned values above math.MaxInt64 become float64 so they
// keep their sign. Non-numbers return nil.
func NormalizeNumber(v any) any {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return n
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return normalizeUnsigned(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return normalizeUnsigned(n)
	case float32:
		return float64(n)
	}
	return nil
}

func normalizeUnsigned(n uint64) any {
	if n > math.MaxInt64 {
		return float64(n)
	}
	return int64(n)
}
