// Package history persists a report of batch runs and per-file outcomes in
// a SQLite database under the state directory.
//
// The filesystem remains the source of truth for what has been encoded;
// history only answers "what happened" for the CLI and never gates
// processing. The schema is versioned; a database written by a different
// version is rejected with ErrSchemaMismatch rather than migrated.
package history
