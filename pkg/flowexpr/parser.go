package flowexpr

import (
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/ast"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/cache"
	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/parser"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/profile"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/template"
)

// templateKey separates template entries from plain ones in the cache.
const templateKey = "\x00template\x00"

// Parser turns source text into expression handles that share one
// configuration. A Parser is safe for concurrent use.
type Parser struct {
	opts     options
	splitter *template.Splitter
	cache    *cache.Cache[*Expression]
}

// NewParser creates a Parser.
//
// Example:
//
//	p := flowexpr.NewParser(
//	    flowexpr.WithCompilerMode(flowexpr.CompilerAdaptive),
//	    flowexpr.WithThreshold(50),
//	    flowexpr.WithCache(512),
//	)
func NewParser(opts ...Option) *Parser {
	o := buildOptions(opts)
	p := &Parser{
		opts:     o,
		splitter: template.NewSplitter(template.WithDelimiters(o.prefix, o.suffix)),
	}
	if o.cacheCapacity > 0 {
		p.cache = cache.New[*Expression](o.cacheCapacity)
	}
	return p
}

// Parse parses source into a handle. With caching on, the same source
// returns the same handle, warm-up included.
func (p *Parser) Parse(source string) (*Expression, error) {
	return p.cached(source, func() (*Expression, error) {
		if blank(source) {
			return nil, ErrEmptyExpression
		}
		root, err := parser.Parse(source)
		if err != nil {
			return nil, err
		}
		return newExpression(source, root, p.opts), nil
	})
}

// ParseTemplate parses text containing embedded expressions, such as
// "Hello #{#name}!". The result evaluates to a String. Syntax errors carry
// offsets into the whole template.
func (p *Parser) ParseTemplate(text string) (*Expression, error) {
	return p.cached(templateKey+text, func() (*Expression, error) {
		root, err := p.templateRoot(text)
		if err != nil {
			return nil, err
		}
		return newExpression(text, root, p.opts), nil
	})
}

func (p *Parser) templateRoot(text string) (ast.Node, error) {
	segments, err := p.splitter.Split(text)
	if err != nil {
		return nil, err
	}
	parts := make([]ast.Node, 0, len(segments))
	for _, seg := range segments {
		if seg.Kind == template.SegmentLiteral {
			parts = append(parts, ast.NewTextLiteral(seg.Text, seg.Start, seg.End))
			continue
		}
		node, err := parser.ParseRange(text, seg.Start, seg.End)
		if err != nil {
			return nil, err
		}
		parts = append(parts, node)
	}
	// Text without embedded expressions is a plain literal.
	if len(parts) == 1 {
		if lit, ok := parts[0].(*ast.StringLiteral); ok {
			return lit, nil
		}
	}
	return ast.NewTemplate(0, len(text), parts...), nil
}

func (p *Parser) cached(key string, create func() (*Expression, error)) (*Expression, error) {
	if p.cache == nil {
		return create()
	}
	return p.cache.GetOrCreate(key, create)
}

// Cached returns the number of cached handles.
func (p *Parser) Cached() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

// SaveProfiles writes the profile of every cached handle to store. It keeps
// going after a failure and returns the first error.
func (p *Parser) SaveProfiles(store profile.Store) error {
	if p.cache == nil {
		return nil
	}
	var first error
	p.cache.Range(func(_ string, e *Expression) bool {
		if err := e.SaveProfile(store); err != nil && first == nil {
			first = err
		}
		return true
	})
	return first
}

// defaultParser backs the package-level Parse helpers.
var defaultParser = NewParser()

// Parse parses source with default options.
func Parse(source string) (*Expression, error) {
	return defaultParser.Parse(source)
}

// ParseTemplate parses a template with default options.
func ParseTemplate(text string) (*Expression, error) {
	return defaultParser.ParseTemplate(text)
}

// IsSyntaxError reports whether err came from malformed source.
func IsSyntaxError(err error) bool {
	return fxerrors.IsSyntax(err)
}
