package flowexpr

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/config"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/observability"
)

// CompilerMode selects when an expression's compiled form is generated.
type CompilerMode int

const (
	// CompilerOff never compiles; every call is interpreted.
	CompilerOff CompilerMode = iota
	// CompilerImmediate compiles after the first successful interpreted call.
	CompilerImmediate
	// CompilerAdaptive compiles after the threshold of successful
	// interpreted calls.
	CompilerAdaptive
)

// String returns the configuration name of the mode.
func (m CompilerMode) String() string {
	switch m {
	case CompilerImmediate:
		return config.ModeImmediate
	case CompilerAdaptive:
		return config.ModeAdaptive
	default:
		return config.ModeOff
	}
}

// ParseCompilerMode parses "off", "immediate" or "adaptive", ignoring case.
func ParseCompilerMode(s string) (CompilerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.ModeOff:
		return CompilerOff, nil
	case config.ModeImmediate:
		return CompilerImmediate, nil
	case config.ModeAdaptive:
		return CompilerAdaptive, nil
	}
	return CompilerOff, fmt.Errorf("unknown compiler mode %q", s)
}

// options holds everything a Parser hands to the handles it creates.
type options struct {
	mode              CompilerMode
	threshold         int64
	maxFailedAttempts int64

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	cacheCapacity int
	prefix        string
	suffix        string

	rejected []error
}

func defaultOptions() options {
	return options{
		mode:              CompilerOff,
		threshold:         config.DefaultThreshold,
		maxFailedAttempts: config.DefaultMaxFailedAttempts,
		metrics:           observability.NoopMetrics{},
		spans:             observability.NoopSpanManager{},
		prefix:            config.DefaultTemplatePrefix,
		suffix:            config.DefaultTemplateSuffix,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	for _, err := range o.rejected {
		observability.LogSettingsRejected(o.logger, err)
	}
	o.rejected = nil
	return o
}

// Option configures a Parser or an expression handle.
type Option func(*options)

// WithCompilerMode sets the compiler mode.
// Default: CompilerOff
func WithCompilerMode(m CompilerMode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithThreshold sets the number of successful interpreted evaluations after
// which an adaptive expression compiles. It also selects CompilerAdaptive.
// Default: 100
//
// Example:
//
//	expr, err := flowexpr.NewParser(flowexpr.WithThreshold(10)).Parse("#a or #b")
func WithThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.mode = CompilerAdaptive
			o.threshold = int64(n)
		}
	}
}

// WithMaxFailedAttempts bounds refused compilation attempts. Once reached, the
// handle stays interpreted. Zero means unlimited.
// Default: 100
func WithMaxFailedAttempts(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxFailedAttempts = int64(n)
		}
	}
}

// WithLogger sets the logger. Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics through the global meter
// provider. Configure the provider first:
//
//	otel.SetMeterProvider(yourProvider)
func WithMetrics() Option {
	return func(o *options) {
		o.metrics = observability.NewMetricsRecorder()
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans through the global tracer
// provider.
func WithTracing() Option {
	return func(o *options) {
		o.spans = observability.NewSpanManager()
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(o *options) {
		if sm != nil {
			o.spans = sm
		}
	}
}

// WithCache caches parsed handles by source. Zero disables caching.
func WithCache(capacity int) Option {
	return func(o *options) {
		if capacity >= 0 {
			o.cacheCapacity = capacity
		}
	}
}

// WithTemplateDelimiters sets the delimiters used by ParseTemplate.
// Empty values keep the default "#{" and "}".
func WithTemplateDelimiters(prefix, suffix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
		if suffix != "" {
			o.suffix = suffix
		}
	}
}

// WithSettings applies settings loaded by config.Load. Settings that fail
// validation are not applied; the rejection is logged as a warning through
// the configured logger.
//
// Example:
//
//	settings, err := config.Load("flowexpr.yaml")
//	if err != nil {
//	    return err
//	}
//	p := flowexpr.NewParser(flowexpr.WithSettings(settings))
func WithSettings(s config.Settings) Option {
	return func(o *options) {
		if err := s.Validate(); err != nil {
			o.rejected = append(o.rejected, err)
			return
		}
		// Validate guarantees the mode parses.
		o.mode, _ = ParseCompilerMode(s.Compiler.Mode)
		o.threshold = int64(s.Compiler.Threshold)
		o.maxFailedAttempts = int64(s.Compiler.MaxFailedAttempts)
		o.cacheCapacity = s.Cache.Capacity
		o.prefix = s.Template.Prefix
		o.suffix = s.Template.Suffix
		if s.Observability.Metrics {
			o.metrics = observability.NewMetricsRecorder()
		}
		if s.Observability.Tracing {
			o.spans = observability.NewSpanManager()
		}
	}
}

// callConfig holds per-call settings.
type callConfig struct {
	root   any
	locals map[string]any
}

// CallOption configures one Evaluate call.
type CallOption func(*callConfig)

// WithRoot sets the root object. Bare identifiers read its properties and
// #root names it.
func WithRoot(root any) CallOption {
	return func(c *callConfig) {
		c.root = root
	}
}

// WithLocals binds variables for this call only. Locals shadow context
// variables of the same name.
func WithLocals(locals map[string]any) CallOption {
	return func(c *callConfig) {
		c.locals = locals
	}
}
