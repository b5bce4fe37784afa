// Package config loads, normalizes, and validates pcsteps configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TWELVE_LABS_API_KEY and TWELVE_LABS_INDEX_ID. The Config type centralizes
// every knob the CLI and pipeline need so output directories, the video cache,
// and indexing credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
