// Package manifest compiles orx manifests into emoji records.
//
// A manifest declares constants, palettes, colormaps, classes and license
// payloads, followed by emoji statements. Each emoji statement is merged with
// its classes, expanded once per listed colormap, and compiled into an
// immutable Emoji whose attributes are strings or codepoint sequences.
// Shortcodes and defined codepoint sequences are unique across the manifest.
//
// The same statement machinery loads parameters files, which declare export
// destinations with dest statements.
package manifest
