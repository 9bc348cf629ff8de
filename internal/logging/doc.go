// Package logging builds the slog loggers used across clipd.
//
// It offers console (human-oriented key=value) and JSON handlers, multi-writer
// output to stdout plus a daemon log file, and helpers for standardized
// structured fields (job, clip_id, unit, correlation_id) carried through
// context. Components obtain child loggers via NewComponentLogger so every
// line is attributable.
package logging
