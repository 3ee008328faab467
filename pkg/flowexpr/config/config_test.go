package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/config"
)

func TestAccessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"name":    "alice",
		"count":   3,
		"big":     int64(7),
		"ratio":   2.0,
		"frac":    2.5,
		"enabled": true,
	})

	assert.Equal(t, "alice", cfg.String("name", "x"))
	assert.Equal(t, "x", cfg.String("count", "x"))
	assert.Equal(t, 3, cfg.Int("count", 0))
	assert.Equal(t, 7, cfg.Int("big", 0))
	assert.Equal(t, 2, cfg.Int("ratio", 0))
	assert.Equal(t, 9, cfg.Int("frac", 9), "fractional floats are rejected")
	assert.True(t, cfg.Bool("enabled", false))
	assert.False(t, cfg.Bool("name", false))
	assert.True(t, cfg.Has("name"))
	assert.False(t, cfg.Has("missing"))
	assert.NotNil(t, config.New(nil).Raw())
}

func TestSection(t *testing.T) {
	cfg := config.New(map[string]any{
		"compiler": map[string]any{"mode": "adaptive"},
		"legacy":   map[any]any{"mode": "immediate", 1: "ignored"},
		"scalar":   "nope",
	})
	assert.Equal(t, "adaptive", cfg.Section("compiler").String("mode", ""))
	assert.Equal(t, "immediate", cfg.Section("legacy").String("mode", ""))
	assert.Empty(t, cfg.Section("scalar").Raw())
	assert.Empty(t, cfg.Section("missing").Raw())
}

func TestFromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte("compiler:\n  threshold: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Section("compiler").Int("threshold", 0))

	_, err = config.FromYAML([]byte("compiler: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode yaml settings")
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"cache": {"capacity": 16}}`))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Section("cache").Int("capacity", 0))

	_, err = config.FromJSON([]byte(`{`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json settings")
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "settings.YML")
	require.NoError(t, os.WriteFile(yamlPath, []byte("template:\n  prefix: \"${\"\n"), 0o600))
	cfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "${", cfg.Section("template").String("prefix", ""))

	txtPath := filepath.Join(dir, "settings.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o600))
	_, err = config.FromFile(txtPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")

	_, err = config.FromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultSettings(t *testing.T) {
	s := config.DefaultSettings()
	assert.Equal(t, config.ModeOff, s.Compiler.Mode)
	assert.Equal(t, 100, s.Compiler.Threshold)
	assert.Equal(t, 100, s.Compiler.MaxFailedAttempts)
	assert.Equal(t, 0, s.Cache.Capacity)
	assert.Equal(t, "#{", s.Template.Prefix)
	assert.Equal(t, "}", s.Template.Suffix)
	assert.NoError(t, s.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowexpr.yaml")
	body := `
compiler:
  mode: adaptive
  threshold: 10
cache:
  capacity: 64
observability:
  metrics: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.ModeAdaptive, s.Compiler.Mode)
	assert.Equal(t, 10, s.Compiler.Threshold)
	assert.Equal(t, 100, s.Compiler.MaxFailedAttempts)
	assert.Equal(t, 64, s.Cache.Capacity)
	assert.True(t, s.Observability.Metrics)
	assert.False(t, s.Observability.Tracing)
}

func TestSettingsFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		msg  string
	}{
		{"unknown mode", map[string]any{"compiler": map[string]any{"mode": "eager"}}, "compiler.mode"},
		{"zero threshold", map[string]any{"compiler": map[string]any{"threshold": 0}}, "compiler.threshold"},
		{"negative attempts", map[string]any{"compiler": map[string]any{"max_failed_attempts": -1}}, "max_failed_attempts"},
		{"negative capacity", map[string]any{"cache": map[string]any{"capacity": -5}}, "cache.capacity"},
		{"empty prefix", map[string]any{"template": map[string]any{"prefix": ""}}, "delimiters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.SettingsFrom(config.New(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalidSettings)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_EmbeddedSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	body := `{"server": {"port": 8080}, "flowexpr": {"compiler": {"mode": "immediate"}}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.ModeImmediate, s.Compiler.Mode)
	assert.Equal(t, config.DefaultThreshold, s.Compiler.Threshold)
}

func TestLoad_InvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowexpr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compiler:\n  mode: eager\n"), 0o600))

	_, err := config.Load(path)
	require.ErrorIs(t, err, config.ErrInvalidSettings)
	assert.Contains(t, err.Error(), path)
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := config.Decode(config.Format("toml"), []byte("x = 1"))
	assert.Error(t, err)

	f, err := config.FormatOf("a/b.Yaml")
	require.NoError(t, err)
	assert.Equal(t, config.FormatYAML, f)
}
