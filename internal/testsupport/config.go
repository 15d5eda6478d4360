package testsupport

import (
	"testing"

	"geosplit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a default config with options applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return &cfg
}

// WithScheme selects the correlation scheme.
func WithScheme(name string) ConfigOption {
	return func(c *config.Config) {
		c.Correlator.Scheme = name
	}
}

// WithSkipMissing toggles manifest.skip_missing.
func WithSkipMissing(skip bool) ConfigOption {
	return func(c *config.Config) {
		c.Manifest.SkipMissing = skip
	}
}
