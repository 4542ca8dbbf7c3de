package delta

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrUnsupportedOp indicates an operation variant the engine does not
// recognize. Producers may emit new operation kinds before the engine
// learns about them; compilation fails fast rather than guessing.
var ErrUnsupportedOp = errors.New("unsupported operation")

// Op is a single primitive edit operation within a delta.
// The position of every Op is expressed in runes relative to the document
// state immediately preceding it within its containing delta.
//
// Op is a closed set: Insert and Delete are the only variants the engine
// understands. Unknown variants (see Unknown) survive decoding so the
// compiler can reject them with ErrUnsupportedOp.
type Op interface {
	fmt.Stringer
	isOp()
}

// Insert adds Text starting at rune offset Pos.
type Insert struct {
	Pos  int
	Text string
}

func (Insert) isOp() {}

// Len returns the inserted text length in runes.
func (o Insert) Len() int {
	return utf8.RuneCountInString(o.Text)
}

// String returns a human-readable representation of the insert.
func (o Insert) String() string {
	text := o.Text
	if len(text) > 20 {
		text = text[:17] + "..."
	}
	return fmt.Sprintf("Insert(%d, %q)", o.Pos, text)
}

// Delete removes Length runes starting at rune offset Pos.
type Delete struct {
	Pos    int
	Length int
}

func (Delete) isOp() {}

// String returns a human-readable representation of the delete.
func (o Delete) String() string {
	return fmt.Sprintf("Delete(%d, %d)", o.Pos, o.Length)
}

// Unknown is an operation variant the decoder recognized structurally but
// the engine has no semantics for. Kind carries the producer's tag.
type Unknown struct {
	Kind string
}

func (Unknown) isOp() {}

// String returns a human-readable representation of the unknown op.
func (o Unknown) String() string {
	return fmt.Sprintf("Unknown(%q)", o.Kind)
}

// Delta is one atomic batch of operations representing a single logical
// edit step in the history log. Deltas are immutable once created; the
// engine never mutates Ops.
type Delta struct {
	Ops []Op
}

// New creates a delta from the given operations.
func New(ops ...Op) Delta {
	return Delta{Ops: ops}
}

// Len returns the number of operations in the delta.
func (d Delta) Len() int {
	return len(d.Ops)
}

// IsEmpty returns true if the delta carries no operations.
func (d Delta) IsEmpty() bool {
	return len(d.Ops) == 0
}

// Last returns the final operation of the delta, or nil if empty.
// A delta's trailing operation best represents where the edit ended up,
// which is what selection derivation cares about.
func (d Delta) Last() Op {
	if len(d.Ops) == 0 {
		return nil
	}
	return d.Ops[len(d.Ops)-1]
}

// Equal reports whether two deltas are structurally identical:
// same operation count, same variants, same positions and payloads.
func (d Delta) Equal(other Delta) bool {
	if len(d.Ops) != len(other.Ops) {
		return false
	}
	for i, op := range d.Ops {
		if !opEqual(op, other.Ops[i]) {
			return false
		}
	}
	return true
}

// String returns a human-readable summary of the delta.
func (d Delta) String() string {
	if d.IsEmpty() {
		return "Delta()"
	}
	return fmt.Sprintf("Delta(%d ops, last %s)", len(d.Ops), d.Last())
}

func opEqual(a, b Op) bool {
	switch av := a.(type) {
	case Insert:
		bv, ok := b.(Insert)
		return ok && av == bv
	case Delete:
		bv, ok := b.(Delete)
		return ok && av == bv
	case Unknown:
		bv, ok := b.(Unknown)
		return ok && av == bv
	default:
		return false
	}
}

// Log is an ordered sequence of deltas for one file. The producer contract
// is append-only: between two observations of the same file's log, existing
// entries never change; the log only grows at the end (or is deliberately
// truncated to a shorter prefix for a rewind request).
type Log []Delta

// Prefix returns the first n deltas of the log.
func (l Log) Prefix(n int) Log {
	if n > len(l) {
		n = len(l)
	}
	return l[:n]
}

// AgreesWith reports whether every index shared between l and other holds
// a structurally identical delta. A false result on a growing log means
// the producer rewrote history.
func (l Log) AgreesWith(other Log) bool {
	n := len(l)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if !l[i].Equal(other[i]) {
			return false
		}
	}
	return true
}
