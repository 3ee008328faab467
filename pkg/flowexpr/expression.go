package flowexpr

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/ast"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/observability"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/profile"
)

// Invalidation reasons reported to logs, metrics and spans.
const (
	// ReasonStaleAssumption means a covered node changed its exit
	// descriptor before the compiled form ran.
	ReasonStaleAssumption = "stale_assumption"
	// ReasonShapeMismatch means a compiled guard saw an input of a
	// different shape while running.
	ReasonShapeMismatch = "shape_mismatch"
	// ReasonManual means RevertToInterpreted was called.
	ReasonManual = "manual"
)

// defaultContext serves calls that pass a nil EvaluationContext.
var defaultContext = eval.NewStandardContext()

// Expression is a parsed expression handle.
//
// Each Evaluate call runs either the tree or the installed compiled form.
// The compiled form is published with a compare-and-swap, so concurrent
// callers see either no form or a complete one. When the compiled form's
// recorded shapes no longer hold, the affected call is interpreted and the
// form is discarded. Evaluation errors are never retried in the other tier.
//
// Expression is safe for concurrent use.
type Expression struct {
	id     string
	source string
	root   ast.Node
	opts   options

	compiled atomic.Pointer[ast.CompiledExpression]
	disabled atomic.Bool

	// warm counts successful interpreted runs since the last install or
	// invalidation and drives the adaptive threshold.
	warm atomic.Int64

	evaluations     atomic.Int64
	interpretedRuns atomic.Int64
	compiledRuns    atomic.Int64
	compilations    atomic.Int64
	invalidations   atomic.Int64
	failedAttempts  atomic.Int64
}

// New wraps an externally built tree in an expression handle. source is
// kept for diagnostics and may be empty.
//
// Example:
//
//	root := ast.NewOpOr(0, 7, left, right)
//	expr, err := flowexpr.New("#a or #b", root, flowexpr.WithCompilerMode(flowexpr.CompilerImmediate))
func New(source string, root ast.Node, opts ...Option) (*Expression, error) {
	if root == nil {
		return nil, ErrEmptyExpression
	}
	return newExpression(source, root, buildOptions(opts)), nil
}

func newExpression(source string, root ast.Node, opts options) *Expression {
	return &Expression{
		id:     uuid.NewString(),
		source: source,
		root:   root,
		opts:   opts,
	}
}

// ID returns the handle's unique ID.
func (e *Expression) ID() string {
	return e.id
}

// Source returns the text the handle was parsed from.
func (e *Expression) Source() string {
	return e.source
}

// Root returns the tree.
func (e *Expression) Root() ast.Node {
	return e.root
}

// Mode returns the compiler mode.
func (e *Expression) Mode() CompilerMode {
	return e.opts.mode
}

// String returns the canonical rendering of the tree.
func (e *Expression) String() string {
	return e.root.String()
}

// Evaluate evaluates the expression against ec. A nil ec uses a standard
// context with no variables.
//
// Example:
//
//	ec := eval.NewStandardContext(eval.WithVariables(map[string]any{"a": false, "b": true}))
//	tv, err := expr.Evaluate(ctx, ec)
func (e *Expression) Evaluate(ctx context.Context, ec eval.EvaluationContext, opts ...CallOption) (result eval.TypedValue, err error) {
	if ctx == nil {
		return eval.Null, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return eval.Null, err
	}
	if ec == nil {
		ec = defaultContext
	}
	var call callConfig
	for _, opt := range opts {
		opt(&call)
	}

	e.evaluations.Add(1)
	spanCtx, span := e.opts.spans.StartEvaluateSpan(ctx, e.id)
	done := observability.TimedOperation()
	tier := observability.TierInterpreted
	defer func() {
		span.SetAttributes(attribute.String("tier", tier))
		e.opts.metrics.RecordEvaluation(ctx, tier, done(), err)
		if err != nil {
			observability.LogEvaluationError(e.opts.logger, e.id, tier, err)
		}
		e.opts.spans.EndSpanWithError(span, err)
	}()

	if ce := e.compiled.Load(); ce != nil {
		if !ce.Valid() {
			e.invalidate(spanCtx, ce, ReasonStaleAssumption)
		} else {
			result, err = ce.Evaluate(newState(ec, call))
			if !ast.IsStaleAssumption(err) {
				tier = observability.TierCompiled
				if err == nil {
					e.compiledRuns.Add(1)
				}
				return result, err
			}
			e.invalidate(spanCtx, ce, ReasonShapeMismatch)
		}
	}

	// The tier stays interpreted. A call that fell back re-runs from a
	// fresh state.
	result, err = e.root.Evaluate(newState(ec, call))
	if err != nil {
		return eval.Null, err
	}
	e.interpretedRuns.Add(1)
	e.warm.Add(1)
	e.maybeCompile(spanCtx)
	return result, nil
}

// Value evaluates the expression and returns the bare value.
func (e *Expression) Value(ctx context.Context, ec eval.EvaluationContext, opts ...CallOption) (any, error) {
	tv, err := e.Evaluate(ctx, ec, opts...)
	if err != nil {
		return nil, err
	}
	return tv.Value(), nil
}

func newState(ec eval.EvaluationContext, call callConfig) *eval.State {
	s := eval.NewState(ec, call.root)
	if len(call.locals) > 0 {
		s.EnterScope(call.locals)
	}
	return s
}

// maybeCompile applies the compiler mode after a successful interpreted run.
func (e *Expression) maybeCompile(ctx context.Context) {
	switch e.opts.mode {
	case CompilerOff:
		return
	case CompilerAdaptive:
		if e.warm.Load() < e.opts.threshold {
			return
		}
	}
	if e.compiled.Load() != nil || e.disabled.Load() {
		return
	}
	_, _ = e.compile(ctx)
}

// compile generates a compiled form and installs it if none is installed.
// A caller that loses the race gets the winner's form; its own is dropped.
func (e *Expression) compile(ctx context.Context) (*ast.CompiledExpression, error) {
	ce, err := ast.Compile(e.root)
	if err != nil {
		failed := e.failedAttempts.Add(1)
		e.opts.metrics.RecordCompilation(ctx, false)
		observability.LogCompileRefused(e.opts.logger, e.id, err, failed)
		if limit := e.opts.maxFailedAttempts; limit > 0 && failed >= limit && e.disabled.CompareAndSwap(false, true) {
			observability.LogCompileDisabled(e.opts.logger, e.id, failed)
		}
		return nil, err
	}
	if !e.compiled.CompareAndSwap(nil, ce) {
		return e.compiled.Load(), nil
	}
	e.compilations.Add(1)
	e.opts.metrics.RecordCompilation(ctx, true)
	observability.LogCompiled(e.opts.logger, e.id, e.warm.Swap(0), ce.Assumptions())
	e.opts.spans.AddSpanEvent(ctx, observability.EventCompiled,
		attribute.Int("assumptions", ce.Assumptions()),
		attribute.String("descriptor", ce.Descriptor().String()),
	)
	return ce, nil
}

// invalidate discards ce if it is still the installed form.
func (e *Expression) invalidate(ctx context.Context, ce *ast.CompiledExpression, reason string) bool {
	if !e.compiled.CompareAndSwap(ce, nil) {
		return false
	}
	e.warm.Store(0)
	e.invalidations.Add(1)
	e.opts.metrics.RecordInvalidation(ctx, reason)
	observability.LogInvalidated(e.opts.logger, e.id, reason)
	e.opts.spans.AddSpanEvent(ctx, observability.EventInvalidated, attribute.String("reason", reason))
	return true
}

// IsCompilable reports whether the tree could be compiled now.
func (e *Expression) IsCompilable() bool {
	return e.root.IsCompilable()
}

// IsCompiled reports whether a compiled form is installed.
func (e *Expression) IsCompiled() bool {
	return e.compiled.Load() != nil
}

// CompileNow compiles the expression regardless of mode and counters. The
// tree must have been evaluated enough to know its shapes; otherwise the
// error wraps ErrNotCompilable. An already installed form is kept.
func (e *Expression) CompileNow() error {
	if ce := e.compiled.Load(); ce != nil && ce.Valid() {
		return nil
	}
	if ce := e.compiled.Load(); ce != nil {
		e.invalidate(context.Background(), ce, ReasonStaleAssumption)
	}
	if _, err := e.compile(context.Background()); err != nil {
		return fmt.Errorf("compile %q: %w", e.source, err)
	}
	return nil
}

// RevertToInterpreted discards the compiled form, if any. It reports whether
// a form was discarded. The handle may compile again under its mode.
func (e *Expression) RevertToInterpreted() bool {
	ce := e.compiled.Load()
	if ce == nil {
		return false
	}
	return e.invalidate(context.Background(), ce, ReasonManual)
}

// Profile snapshots the handle's tiering counters.
func (e *Expression) Profile() *profile.Profile {
	p := profile.New(e.id, e.source)
	p.Evaluations = e.evaluations.Load()
	p.InterpretedRuns = e.interpretedRuns.Load()
	p.CompiledRuns = e.compiledRuns.Load()
	p.Compilations = e.compilations.Load()
	p.Invalidations = e.invalidations.Load()
	p.FailedAttempts = e.failedAttempts.Load()
	p.Compiled = e.IsCompiled()
	if d := e.root.ExitDescriptor(); d.Known() {
		p.Descriptor = d.String()
	}
	return p
}

// SaveProfile writes the handle's profile to store.
func (e *Expression) SaveProfile(store profile.Store) error {
	if err := store.Save(e.Profile()); err != nil {
		observability.LogProfileError(e.opts.logger, e.id, "save", err)
		return fmt.Errorf("save profile for %s: %w", e.id, err)
	}
	return nil
}

// Eval parses source and evaluates it once against the given variables.
//
// Example:
//
//	v, err := flowexpr.Eval("#age >= 18 ? 'adult' : 'minor'", map[string]any{"age": 30})
func Eval(source string, vars map[string]any) (any, error) {
	expr, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return expr.Value(context.Background(), eval.NewStandardContext(eval.WithVariables(vars)))
}

func blank(source string) bool {
	return strings.TrimSpace(source) == ""
}
