package config

import (
	"fmt"

	"geosplit/internal/correlate"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCorrelator(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateCorrelator() error {
	if err := correlate.ValidateDepthSuffix(c.Correlator.DepthSuffix); err != nil {
		return fmt.Errorf("correlator.depth_suffix: %w", err)
	}
	if _, err := correlate.Lookup(c.Correlator.Scheme, c.Correlator.DepthSuffix); err != nil {
		return fmt.Errorf("correlator.scheme: %w", err)
	}
	return nil
}
