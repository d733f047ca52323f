// Package batch discovers source files under the input root and runs them
// through the file lifecycle one at a time.
//
// Discovery is deterministic: files are returned in lexicographic path
// order, hidden entries are skipped, and excluded roots (an encoded or
// archive directory nested inside the input tree) are pruned. The Runner
// never processes two files concurrently and never lets a failure in one
// file stop the batch; cancellation is honoured between files.
package batch
