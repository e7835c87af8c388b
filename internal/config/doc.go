// Package config loads, normalizes, and validates orxport configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the export
// request defaults, cache policy, and external tool names so the CLI can
// layer flags on top of one sanitized value.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
