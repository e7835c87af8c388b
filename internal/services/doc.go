// Package services defines shared utilities consumed by the export pipeline
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, worker indexes, and emoji shortcodes
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (external tool, validation, I/O, cancellation) and map them to exit
//     codes.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across the build.
package services
