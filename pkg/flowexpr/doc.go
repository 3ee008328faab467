/*
Package flowexpr provides an embeddable expression language with adaptive
compilation.

# Overview

Source text such as "#age >= 18 and #member" is parsed into a tree of
nodes. Each evaluation walks the tree against an EvaluationContext that
supplies variables, conversion, type lookup, property reads and operator
overloads. While it walks, every node records the shape of the value it
produced (its exit descriptor).

Once shapes are known, a handle can compile its tree into a closure tree
specialized for those shapes. The compiled form keeps the same semantics,
short-circuiting included, and is installed atomically. If a later call
sees a different shape, that call is interpreted and the compiled form is
discarded. Operands the compiled attempt already evaluated run again on the
interpreted retry, so property accessors and overloads should be free of
side effects. Genuine evaluation errors are returned as they are and never
retried in the other tier.

# Basic Usage

	expr, err := flowexpr.Parse("#a or #b")
	if err != nil {
	    log.Fatal(err)
	}

	ec := eval.NewStandardContext(eval.WithVariables(map[string]any{
	    "a": false,
	    "b": true,
	}))
	tv, err := expr.Evaluate(context.Background(), ec)
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(tv.Value()) // true

# Compiler Modes

Handles start interpreted. The compiler mode decides when they compile:

  - CompilerOff: never (default)
  - CompilerImmediate: after the first successful interpreted evaluation
  - CompilerAdaptive: after Threshold successful interpreted evaluations

WithThreshold selects the adaptive mode:

	p := flowexpr.NewParser(flowexpr.WithThreshold(50))
	expr, _ := p.Parse("#price * #quantity > 100")

A refused attempt counts toward WithMaxFailedAttempts; past the limit the
handle stays interpreted. CompileNow and RevertToInterpreted give explicit
control.

# Templates

ParseTemplate mixes literal text with embedded expressions:

	expr, _ := flowexpr.ParseTemplate("Hello #{#name}, you are #{#age} years old")

# Operator Overloading

Operand pairs without a built-in rule are offered to the context's
OperatorOverloader. eval.OperatorTable assembles one from functions:

	table := eval.NewOperatorTable().Handle(eval.OpSubtract,
	    func(l, r any) bool { _, ok := l.(string); return ok },
	    func(l, r any) (any, error) { return strings.TrimSuffix(l.(string), fmt.Sprint(r)), nil },
	)
	ec := eval.NewStandardContext(eval.WithOverloader(table))

Without a claiming overloader the call fails with an UnsupportedOperator
error.

# Errors

Evaluation errors are *errors.EvaluationError values carrying a kind and
the source span of the offending operand. Use the predicates in the errors
package:

	if fxerrors.IsTypeCoercion(err) {
	    // e.g. null used as a boolean
	}

# Observability

WithLogger, WithMetrics and WithTracing wire slog and OpenTelemetry. Both
OpenTelemetry integrations use the global providers and are no-ops unless
enabled.

# Profiles

Expression.Profile snapshots a handle's tiering counters. Parser.SaveProfiles
writes every cached handle to a profile.Store such as profile.SQLiteStore.
*/
package flowexpr
