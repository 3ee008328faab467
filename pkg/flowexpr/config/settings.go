package config

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings is wrapped by every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Compiler modes accepted in compiler.mode.
const (
	ModeOff       = "off"
	ModeImmediate = "immediate"
	ModeAdaptive  = "adaptive"
)

// Defaults applied to missing keys.
const (
	DefaultThreshold         = 100
	DefaultMaxFailedAttempts = 100
	DefaultTemplatePrefix    = "#{"
	DefaultTemplateSuffix    = "}"
)

// Settings is the engine configuration read from a file.
type Settings struct {
	Compiler      CompilerSettings
	Cache         CacheSettings
	Template      TemplateSettings
	Observability ObservabilitySettings
}

// CompilerSettings controls when expressions compile.
type CompilerSettings struct {
	Mode              string
	Threshold         int
	MaxFailedAttempts int
}

// CacheSettings sizes the parse cache. Capacity 0 disables it.
type CacheSettings struct {
	Capacity int
}

// TemplateSettings holds the template delimiters.
type TemplateSettings struct {
	Prefix string
	Suffix string
}

// ObservabilitySettings switches OpenTelemetry instrumentation on.
type ObservabilitySettings struct {
	Metrics bool
	Tracing bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Compiler: CompilerSettings{
			Mode:              ModeOff,
			Threshold:         DefaultThreshold,
			MaxFailedAttempts: DefaultMaxFailedAttempts,
		},
		Template: TemplateSettings{
			Prefix: DefaultTemplatePrefix,
			Suffix: DefaultTemplateSuffix,
		},
	}
}

// SettingsFrom extracts Settings from cfg, filling defaults for missing
// keys, and validates the result.
func SettingsFrom(cfg Config) (Settings, error) {
	s := DefaultSettings()

	compiler := cfg.Section("compiler")
	s.Compiler.Mode = compiler.String("mode", s.Compiler.Mode)
	s.Compiler.Threshold = compiler.Int("threshold", s.Compiler.Threshold)
	s.Compiler.MaxFailedAttempts = compiler.Int("max_failed_attempts", s.Compiler.MaxFailedAttempts)

	s.Cache.Capacity = cfg.Section("cache").Int("capacity", s.Cache.Capacity)

	tmpl := cfg.Section("template")
	s.Template.Prefix = tmpl.String("prefix", s.Template.Prefix)
	s.Template.Suffix = tmpl.String("suffix", s.Template.Suffix)

	obs := cfg.Section("observability")
	s.Observability.Metrics = obs.Bool("metrics", s.Observability.Metrics)
	s.Observability.Tracing = obs.Bool("tracing", s.Observability.Tracing)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings for values the engine cannot use.
func (s Settings) Validate() error {
	switch s.Compiler.Mode {
	case ModeOff, ModeImmediate, ModeAdaptive:
	default:
		return fmt.Errorf("%w: compiler.mode %q must be off, immediate or adaptive", ErrInvalidSettings, s.Compiler.Mode)
	}
	if s.Compiler.Threshold < 1 {
		return fmt.Errorf("%w: compiler.threshold must be at least 1, got %d", ErrInvalidSettings, s.Compiler.Threshold)
	}
	if s.Compiler.MaxFailedAttempts < 0 {
		return fmt.Errorf("%w: compiler.max_failed_attempts must not be negative, got %d", ErrInvalidSettings, s.Compiler.MaxFailedAttempts)
	}
	if s.Cache.Capacity < 0 {
		return fmt.Errorf("%w: cache.capacity must not be negative, got %d", ErrInvalidSettings, s.Cache.Capacity)
	}
	if s.Template.Prefix == "" || s.Template.Suffix == "" {
		return fmt.Errorf("%w: template delimiters must not be empty", ErrInvalidSettings)
	}
	return nil
}
