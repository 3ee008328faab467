package eval

// Descriptor is a nominal tag for the kind of value a node produces.
//
// Primitive tags name unboxed compiled slots; boxed tags and String/Object
// name values carried as any. Descriptors are not inferred: they record
// what evaluation has actually observed.
type Descriptor uint32

const (
	// DescriptorNone means nothing has been observed yet.
	DescriptorNone Descriptor = iota
	// DescriptorBool is a primitive boolean slot.
	DescriptorBool
	// DescriptorLong is a primitive int64 slot.
	DescriptorLong
	// DescriptorDouble is a primitive float64 slot.
	DescriptorDouble
	// DescriptorBoxedBool is a bool carried as any.
	DescriptorBoxedBool
	// DescriptorBoxedLong is an int64 carried as any.
	DescriptorBoxedLong
	// DescriptorBoxedDouble is a float64 carried as any.
	DescriptorBoxedDouble
	// DescriptorString is a string.
	DescriptorString
	// DescriptorObject is anything else, including nil.
	DescriptorObject
)

// String returns the tag name. Primitive tags are lower case.
func (d Descriptor) String() string {
	switch d {
	case DescriptorNone:
		return "none"
	case DescriptorBool:
		return "boolean"
	case DescriptorLong:
		return "long"
	case DescriptorDouble:
		return "double"
	case DescriptorBoxedBool:
		return "Boolean"
	case DescriptorBoxedLong:
		return "Long"
	case DescriptorBoxedDouble:
		return "Double"
	case DescriptorString:
		return "String"
	case DescriptorObject:
		return "Object"
	default:
		return "unknown"
	}
}

// Known reports whether d records an observation.
func (d Descriptor) Known() bool {
	return d != DescriptorNone
}

// IsPrimitive reports whether d is an unboxed slot.
func IsPrimitive(d Descriptor) bool {
	return d == DescriptorBool || d == DescriptorLong || d == DescriptorDouble
}

// IsBooleanCompatible reports whether d can feed a boolean operator.
func IsBooleanCompatible(d Descriptor) bool {
	return d == DescriptorBool || d == DescriptorBoxedBool
}

// IsNumeric reports whether d is a long or double, boxed or not.
func IsNumeric(d Descriptor) bool {
	switch d {
	case DescriptorLong, DescriptorDouble, DescriptorBoxedLong, DescriptorBoxedDouble:
		return true
	}
	return false
}

// IsDouble reports whether d is a double, boxed or not.
func IsDouble(d Descriptor) bool {
	return d == DescriptorDouble || d == DescriptorBoxedDouble
}

// Boxed maps a primitive tag to its boxed tag. Other tags are unchanged.
func Boxed(d Descriptor) Descriptor {
	switch d {
	case DescriptorBool:
		return DescriptorBoxedBool
	case DescriptorLong:
		return DescriptorBoxedLong
	case DescriptorDouble:
		return DescriptorBoxedDouble
	}
	return d
}

// Unboxed maps a boxed tag to its primitive tag. Other tags are unchanged.
func Unboxed(d Descriptor) Descriptor {
	switch d {
	case DescriptorBoxedBool:
		return DescriptorBool
	case DescriptorBoxedLong:
		return DescriptorLong
	case DescriptorBoxedDouble:
		return DescriptorDouble
	}
	return d
}

// DescriptorOf derives the boxed tag of a runtime value. Every Go integer
// kind is a Long and every float kind a Double.
func DescriptorOf(v any) Descriptor {
	switch v.(type) {
	case bool:
		return DescriptorBoxedBool
	case string:
		return DescriptorString
	}
	switch NormalizeNumber(v).(type) {
	case int64:
		return DescriptorBoxedLong
	case float64:
		return DescriptorBoxedDouble
	}
	return DescriptorObject
}

// Accepts reports whether a value observed as actual satisfies a slot
// recorded as d. Object slots accept anything.
func (d Descriptor) Accepts(actual Descriptor) bool {
	if d == DescriptorObject {
		return true
	}
	return Boxed(d) == Boxed(actual)
}
