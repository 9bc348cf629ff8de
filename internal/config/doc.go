// Package config loads, normalizes, and validates clipd configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MINIO_ACCESS_KEY. The Config type centralizes every knob the daemon, CLI,
// and worker need, so object store credentials, transcoder flags, and
// controller tuning are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
