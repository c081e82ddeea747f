// Package patch generates unified diffs and applies them back onto text.
//
// The applier is a single-pass, cursor-based reconciliation: it trusts the
// start line stated in each hunk header, copies the untouched original lines in
// between, and tolerates the small deviations language models tend to produce
// (missing file headers, blank spacer lines inside hunks). Reconcile restores
// the original file's line-ending style and trailing newline afterwards.
//
// Every function in the package is pure and safe for concurrent use. Reading
// and writing files is left to the caller.
package patch
