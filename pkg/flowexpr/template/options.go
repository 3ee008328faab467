package template

// Delimiters mark the start and end of an embedded expression.
type Delimiters struct {
	Prefix string
	Suffix string
}

// DefaultDelimiters are "#{" and "}".
var DefaultDelimiters = Delimiters{Prefix: "#{", Suffix: "}"}

// Option configures a Splitter.
type Option func(*Splitter)

// WithDelimiters sets the prefix and suffix. Empty values keep the default.
//
// Example:
//
//	sp := NewSplitter(WithDelimiters("${", "}"))
func WithDelimiters(prefix, suffix string) Option {
	return func(s *Splitter) {
		if prefix != "" {
			s.delims.Prefix = prefix
		}
		if suffix != "" {
			s.delims.Suffix = suffix
		}
	}
}
