// Package services defines shared error markers and context helpers consumed by
// the lifecycle, batch runner, and external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, source files, and stage
//     names for logging.
//   - Structured error markers plus the Wrap helper so per-file failures can
//     be classified (probe, destination exists, encode, archival) without
//     string matching.
//
// Use these helpers when wiring new lifecycle steps so error reporting stays
// uniform across the batch.
package services
