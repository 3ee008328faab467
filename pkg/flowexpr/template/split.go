package template

import (
	"strings"

	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
)

// SegmentKind distinguishes literal text from embedded expressions.
type SegmentKind int

const (
	// SegmentLiteral is text copied to the output unchanged.
	SegmentLiteral SegmentKind = iota
	// SegmentExpression is the source of an embedded expression.
	SegmentExpression
)

func (k SegmentKind) String() string {
	if k == SegmentExpression {
		return "expression"
	}
	return "literal"
}

// Segment is one piece of a template. Start and End are offsets into the
// template text; for expressions they exclude the delimiters.
type Segment struct {
	Kind  SegmentKind
	Text  string
	Start int
	End   int
}

// Splitter splits templates using a fixed pair of delimiters.
type Splitter struct {
	delims Delimiters
}

// NewSplitter creates a Splitter. The default delimiters are "#{" and "}".
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{delims: DefaultDelimiters}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delimiters returns the delimiters in use.
func (s *Splitter) Delimiters() Delimiters {
	return s.delims
}

// Split returns the segments of text in order. Empty text yields no
// segments. An unclosed or empty expression is a *errors.SyntaxError.
func (s *Splitter) Split(text string) ([]Segment, error) {
	prefix, suffix := s.delims.Prefix, s.delims.Suffix
	var segments []Segment

	pos := 0
	for pos < len(text) {
		idx := strings.Index(text[pos:], prefix)
		if idx < 0 {
			segments = append(segments, literal(text, pos, len(text)))
			break
		}
		open := pos + idx
		if open > pos {
			segments = append(segments, literal(text, pos, open))
		}

		start := open + len(prefix)
		end, err := s.findSuffix(text, start)
		if err != nil {
			return nil, err
		}
		body := text[start:end]
		if strings.TrimSpace(body) == "" {
			return nil, fxerrors.NewSyntaxError(text, open,
				"no expression defined within delimiter '%s%s'", prefix, suffix)
		}
		segments = append(segments, Segment{Kind: SegmentExpression, Text: body, Start: start, End: end})
		pos = end + len(suffix)
	}
	return segments, nil
}

// findSuffix returns the offset of the suffix closing the expression that
// starts at start. Quoted strings and bracket pairs are skipped.
func (s *Splitter) findSuffix(text string, start int) (int, error) {
	suffix := s.delims.Suffix
	var stack []byte

	for i := start; i < len(text); i++ {
		if len(stack) == 0 && strings.HasPrefix(text[i:], suffix) {
			return i, nil
		}
		switch ch := text[i]; ch {
		case '\'', '"':
			closing := skipQuoted(text, i)
			if closing < 0 {
				return 0, fxerrors.NewSyntaxError(text, i, "unterminated string literal in template")
			}
			i = closing
		case '(', '[', '{':
			stack = append(stack, ch)
		case ')', ']', '}':
			if len(stack) == 0 {
				return 0, fxerrors.NewSyntaxError(text, i, "unmatched '%c' in template expression", ch)
			}
			if stack[len(stack)-1] != opening(ch) {
				return 0, fxerrors.NewSyntaxError(text, i, "mismatched '%c' in template expression", ch)
			}
			stack = stack[:len(stack)-1]
		}
	}
	return 0, fxerrors.NewSyntaxError(text, start-len(s.delims.Prefix),
		"no ending suffix '%s' for expression starting at position %d", suffix, start-len(s.delims.Prefix))
}

// skipQuoted returns the index of the quote closing the string opened at
// i, treating a doubled quote as an escape. It returns -1 if unclosed.
func skipQuoted(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		if text[j] != quote {
			continue
		}
		if j+1 < len(text) && text[j+1] == quote {
			j++
			continue
		}
		return j
	}
	return -1
}

func opening(closing byte) byte {
	switch closing {
	case ')':
		return '('
	case ']':
		return '['
	}
	return '{'
}

func literal(text string, start, end int) Segment {
	return Segment{Kind: SegmentLiteral, Text: text[start:end], Start: start, End: end}
}

var defaultSplitter = NewSplitter()

// Split splits text with the default delimiters.
func Split(text string) ([]Segment, error) {
	return defaultSplitter.Split(text)
}
