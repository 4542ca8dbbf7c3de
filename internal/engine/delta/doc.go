// Package delta defines the edit primitives that make up a document's
// history log.
//
// A document's history is an append-only sequence of deltas. Each Delta is
// an atomic batch of operations (Insert, Delete) applied together as one
// logical edit step. Operation positions are rune offsets relative to the
// document state produced by everything before them, within and across
// deltas, so order is significant everywhere.
//
// The package is a leaf: it knows nothing about documents, views, or
// compilation. See package compose for turning deltas into applicable
// edits and package replay for navigating a log.
package delta
