package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/eval"
)

var benchSources = map[string]string{
	"Or":         "#a or #b",
	"Ternary":    "#n > 3 ? 'big' : 'small'",
	"Arithmetic": "#price * #qty + #shipping - 1",
	"Instanceof": "#s instanceof T(string) and #n >= 0",
	"Concat":     "'order ' + #id + ' for ' + #name",
}

func benchContext() *eval.StandardContext {
	return eval.NewStandardContext(eval.WithVariables(map[string]any{
		"a":        false,
		"b":        true,
		"n":        int64(7),
		"price":    12.5,
		"qty":      int64(3),
		"shipping": 4.99,
		"s":        "text",
		"id":       "A-17",
		"name":     "Ada",
	}))
}

// warmed returns a handle parsed with mode that has run once.
func warmed(b *testing.B, source string, mode flowexpr.CompilerMode) *flowexpr.Expression {
	b.Helper()
	expr, err := flowexpr.NewParser(flowexpr.WithCompilerMode(mode)).Parse(source)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := expr.Evaluate(context.Background(), benchContext()); err != nil {
		b.Fatal(err)
	}
	if mode == flowexpr.CompilerImmediate && !expr.IsCompiled() {
		b.Fatalf("%q did not compile", source)
	}
	return expr
}

// BenchmarkEvaluate_Interpreted walks the tree on every call.
func BenchmarkEvaluate_Interpreted(b *testing.B) {
	for name, source := range benchSources {
		b.Run(name, func(b *testing.B) {
			expr := warmed(b, source, flowexpr.CompilerOff)
			ec := benchContext()
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = expr.Evaluate(ctx, ec)
			}
		})
	}
}

// BenchmarkEvaluate_Compiled runs the installed compiled form.
func BenchmarkEvaluate_Compiled(b *testing.B) {
	for name, source := range benchSources {
		b.Run(name, func(b *testing.B) {
			expr := warmed(b, source, flowexpr.CompilerImmediate)
			ec := benchContext()
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = expr.Evaluate(ctx, ec)
			}
		})
	}
}

// BenchmarkEvaluate_CompiledParallel measures contention on a shared handle.
func BenchmarkEvaluate_CompiledParallel(b *testing.B) {
	expr := warmed(b, benchSources["Arithmetic"], flowexpr.CompilerImmediate)
	ec := benchContext()
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			_, _ = expr.Evaluate(ctx, ec)
		}
	})
}

// BenchmarkParse measures parsing without a cache.
func BenchmarkParse(b *testing.B) {
	p := flowexpr.NewParser()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(benchSources["Arithmetic"])
	}
}

// BenchmarkParse_Cached measures cache hits.
func BenchmarkParse_Cached(b *testing.B) {
	p := flowexpr.NewParser(flowexpr.WithCache(16))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(benchSources["Arithmetic"])
	}
}
