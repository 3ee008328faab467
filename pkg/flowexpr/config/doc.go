/*
Package config loads engine settings and provides type-safe extraction from
map[string]any.

# Settings

Engine settings are usually read from a YAML file:

	compiler:
	  mode: adaptive          # off | immediate | adaptive
	  threshold: 100
	  max_failed_attempts: 100
	cache:
	  capacity: 256           # 0 disables caching
	template:
	  prefix: "#{"
	  suffix: "}"
	observability:
	  metrics: true
	  tracing: false

Load it and hand it to the parser:

	settings, err := config.Load("flowexpr.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	p := flowexpr.NewParser(flowexpr.WithSettings(settings))

The same keys may sit under a top-level flowexpr key inside a larger
application file; Load then reads only that section.

Missing keys take the values from DefaultSettings. Invalid values fail
with an error wrapping ErrInvalidSettings.

# Typed Access

Config wraps a decoded map and returns defaults for missing keys or
mismatched types:

	cfg := config.New(map[string]any{"retries": 3})
	retries := cfg.Int("retries", 5)            // 3
	missing := cfg.String("missing", "default") // "default"
	nested := cfg.Section("compiler")           // empty Config if absent

Config is safe for concurrent reads. The underlying map is never modified.
*/
package config
