// Package logging provides the structured logging facility used across
// rudder.
//
// It wraps log/slog with a small subsystem-tagged API so that every pipeline
// stage logs through the same handler:
//
//	logging.Info("Fetcher", "retrieved %d configuration classes", n)
//
// Call Init (or InitDefault) once at startup; the level gates output for the
// whole process.
package logging
