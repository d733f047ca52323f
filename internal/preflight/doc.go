// Package preflight provides readiness checks for the binaries and
// filesystem paths recoder depends on.
//
// The run and watch commands call RunAll before touching any file; a failed
// check aborts the batch instead of failing every file in turn. The check
// command renders the same results as a table.
package preflight
