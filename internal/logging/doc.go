// Package logging assembles structured slog loggers and formatting helpers used
// across orxport.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the run ID, worker index, and emoji shortcode. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit records with the same shape as the rest of the build.
package logging
