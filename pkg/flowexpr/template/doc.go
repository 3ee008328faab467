// Package template splits template text into literal and expression segments.
//
// A template mixes plain text with embedded expressions between a prefix
// and a suffix, "#{" and "}" by default:
//
//	Hello #{#name}, you have #{#count > 0 ? #count : 'no'} messages
//
// Split only locates the segments. Parsing the embedded expressions and
// concatenating the results is left to the caller, which lets the
// expression engine turn a template into an ordinary tiered expression.
//
// # Nesting
//
// The suffix closes a segment only outside quoted strings and outside
// balanced (), [] and {} pairs, so an expression may contain the suffix
// character inside a string literal:
//
//	#{'}' + #name}
//
// # Configuration
//
//	sp := template.NewSplitter(template.WithDelimiters("${", "}"))
//	segments, err := sp.Split("Hi ${#user}")
//
// A Splitter is immutable and safe for concurrent use.
package template
