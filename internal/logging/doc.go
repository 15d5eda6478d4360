// Package logging assembles structured slog loggers and formatting helpers used
// across geosplit.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes small attribute helpers so pipeline code tags log
// lines with a component, the run identifier, and per-image subjects. A no-op
// logger is provided for tests and for wiring code that cannot fail.
package logging
