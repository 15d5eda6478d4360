// Package config loads, normalizes, and validates geosplit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the knobs the
// CLI needs: log output, the filename correlation scheme used to pair images
// with orientations and depth maps, and manifest generation behaviour.
//
// Command-line flags override individual values after Load; always obtain
// settings through this package so downstream code receives canonical log
// formats, lower-cased extensions, and clear validation errors.
package config
