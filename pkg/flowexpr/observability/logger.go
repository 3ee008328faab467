// Package observability provides logging, metrics and tracing for the
// expression engine.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every log helper accepts a nil logger.
package observability

import (
	"log/slog"
	"time"
)

// Evaluation tiers, used as the tier attribute on metrics and spans.
const (
	TierInterpreted = "interpreted"
	TierCompiled    = "compiled"
)

// EnrichLogger adds expression context to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, expr.ID(), expr.Source())
//	enriched.Debug("warming up") // includes expression_id, expression
func EnrichLogger(logger *slog.Logger, exprID, source string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("expression_id", exprID),
		slog.String("expression", source),
	)
}

// LogCompiled logs installation of a compiled form.
func LogCompiled(logger *slog.Logger, exprID string, interpretedRuns int64, assumptions int) {
	if logger == nil {
		return
	}
	logger.Debug("compiled form installed",
		slog.String("expression_id", exprID),
		slog.Int64("interpreted_runs", interpretedRuns),
		slog.Int("assumptions", assumptions),
	)
}

// LogCompileRefused logs a compilation attempt that produced nothing.
func LogCompileRefused(logger *slog.Logger, exprID string, err error, failedAttempts int64) {
	if logger == nil {
		return
	}
	logger.Debug("compilation refused",
		slog.String("expression_id", exprID),
		slog.String("error", err.Error()),
		slog.Int64("failed_attempts", failedAttempts),
	)
}

// LogCompileDisabled logs that a handle stopped trying to compile.
func LogCompileDisabled(logger *slog.Logger, exprID string, failedAttempts int64) {
	if logger == nil {
		return
	}
	logger.Warn("compilation disabled after repeated failures",
		slog.String("expression_id", exprID),
		slog.Int64("failed_attempts", failedAttempts),
	)
}

// LogInvalidated logs that a compiled form was discarded.
func LogInvalidated(logger *slog.Logger, exprID, reason string) {
	if logger == nil {
		return
	}
	logger.Info("compiled form discarded",
		slog.String("expression_id", exprID),
		slog.String("reason", reason),
	)
}

// LogEvaluationError logs a failed evaluation. The error is still returned
// to the caller; this only records it.
func LogEvaluationError(logger *slog.Logger, exprID, tier string, err error) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation failed",
		slog.String("expression_id", exprID),
		slog.String("tier", tier),
		slog.String("error", err.Error()),
	)
}

// LogProfileError logs a profile store failure (non-fatal).
func LogProfileError(logger *slog.Logger, exprID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("profile store failed",
		slog.String("expression_id", exprID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogSettingsRejected logs settings that failed validation and were not
// applied.
func LogSettingsRejected(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("settings rejected",
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures an operation. The returned function reports the
// elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... evaluate ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
