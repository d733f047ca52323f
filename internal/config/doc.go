// Package config loads, normalizes, and validates recoder configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the legacy environment variables
// (INPUT_DIR, ENCODED_DIR, ARCHIVE_DIR, VCODEC,
// ACODEC, SCODEC, CRF, PRESET). The Config type is the single explicit
// settings value handed to every component at construction; nothing below the
// CLI reads the environment.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language lists, and clear validation errors.
package config
