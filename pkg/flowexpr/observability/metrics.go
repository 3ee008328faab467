package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	fxerrors "github.com/randalmurphal/flowexpr/pkg/flowexpr/errors"
)

// MetricsRecorder records engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEvaluation records one evaluation with its tier, duration and
	// error status.
	RecordEvaluation(ctx context.Context, tier string, duration time.Duration, err error)

	// RecordCompilation records a compilation attempt.
	RecordCompilation(ctx context.Context, success bool)

	// RecordInvalidation records a discarded compiled form.
	RecordInvalidation(ctx context.Context, reason string)
}

type otelMetrics struct {
	evaluations      metric.Int64Counter
	evaluationTime   metric.Float64Histogram
	evaluationErrors metric.Int64Counter
	compilations     metric.Int64Counter
	invalidations    metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily creates the shared instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flowexpr")

	evaluations, err := meter.Int64Counter("flowexpr.evaluations",
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evaluationTime, err := meter.Float64Histogram("flowexpr.evaluation.latency_ms",
		metric.WithDescription("Expression evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evaluationErrors, err := meter.Int64Counter("flowexpr.evaluation.errors",
		metric.WithDescription("Number of failed evaluations by error kind"),
	)
	if err != nil {
		return nil, err
	}

	compilations, err := meter.Int64Counter("flowexpr.compilations",
		metric.WithDescription("Number of compilation attempts"),
	)
	if err != nil {
		return nil, err
	}

	invalidations, err := meter.Int64Counter("flowexpr.invalidations",
		metric.WithDescription("Number of discarded compiled forms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		evaluations:      evaluations,
		evaluationTime:   evaluationTime,
		evaluationErrors: evaluationErrors,
		compilations:     compilations,
		invalidations:    invalidations,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses the global OTel
// meter provider. If the instruments cannot be created it returns
// NoopMetrics.
//
// Configure the provider first:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEvaluation implements MetricsRecorder.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, tier string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("tier", tier))
	m.evaluations.Add(ctx, 1, attrs)
	m.evaluationTime.Record(ctx, float64(duration)/float64(time.Millisecond), attrs)

	if err != nil {
		m.evaluationErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", fxerrors.KindOf(err).String()),
		))
	}
}

// RecordCompilation implements MetricsRecorder.
func (m *otelMetrics) RecordCompilation(ctx context.Context, success bool) {
	m.compilations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordInvalidation implements MetricsRecorder.
func (m *otelMetrics) RecordInvalidation(ctx context.Context, reason string) {
	m.invalidations.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
