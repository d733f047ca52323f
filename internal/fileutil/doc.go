// Package fileutil implements the non-destructive file moves recoder relies
// on: renames that never replace an existing destination, and a verified
// copy-then-remove fallback when source and destination are on different
// filesystems.
package fileutil
