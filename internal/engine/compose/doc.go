// Package compose turns history deltas into applicable document edits.
//
// The central type is Edit, a run-length encoding of an edit as retain,
// insert, and delete spans over an input document of a fixed rune length.
// Edits form a small algebra: they can be applied to a document, composed
// with a subsequent edit into a single equivalent edit, and inverted
// relative to their input document to produce the undoing edit.
//
// CompileDeltas folds an ordered delta sequence into one Edit so the
// caller mutates its live document exactly once per reconciliation, no
// matter how many deltas are replayed.
package compose
