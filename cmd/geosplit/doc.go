// Package main hosts the geosplit CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into manifest
// generation runs, manifest inspection, and configuration scaffolding. It
// centralizes configuration resolution and structured logging setup so
// subcommands can focus on flags and output.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
