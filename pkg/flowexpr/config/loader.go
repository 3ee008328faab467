package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmbeddedKey is the top-level key under which engine settings may sit
// inside a larger application file.
const EmbeddedKey = "flowexpr"

// Format names a settings file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("settings file %s: unsupported extension %q", path, ext)
	}
}

// Decode parses data in the given format into a Config.
func Decode(format Format, data []byte) (Config, error) {
	var m map[string]any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	case FormatJSON:
		err = json.Unmarshal(data, &m)
	default:
		return Config{}, fmt.Errorf("decode settings: unknown format %q", format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode %s settings: %w", format, err)
	}
	return New(m), nil
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	return Decode(FormatYAML, data)
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	return Decode(FormatJSON, data)
}

// FromFile reads a .yaml, .yml or .json file into a Config.
func FromFile(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	cfg, err := Decode(format, data)
	if err != nil {
		return Config{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads and validates engine Settings from path. When the file
// carries a top-level flowexpr section only that section is used, so the
// settings can live in the application's own config file.
func Load(path string) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	if cfg.Has(EmbeddedKey) {
		cfg = cfg.Section(EmbeddedKey)
	}
	s, err := SettingsFrom(cfg)
	if err != nil {
		return Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}
