// Package config loads, normalizes, and validates karaoke daemon configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays deployment environment variables
// such as TEMP_DIR, GEMINI_API_KEY and the R2_* storage credentials. The Config
// type centralizes every knob the daemon and CLI need so that work directories,
// collaborator binaries and external service credentials are discovered in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
