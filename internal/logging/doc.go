// Package logging assembles structured slog loggers and formatting helpers used
// across recoder.
//
// It owns the console and JSON handlers, writes each run to its own log file
// under the configured log directory, and tags records with the run ID, source
// file, and lifecycle stage carried on the context. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
