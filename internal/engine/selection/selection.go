// Package selection derives a cursor selection from an applied edit.
package selection

import (
	"fmt"

	"github.com/palimpsest-editor/palimpsest/internal/engine/compose"
	"github.com/palimpsest-editor/palimpsest/internal/engine/delta"
)

// Selection represents a range of selected text in rune offsets.
// Anchor is where the selection started; Head is the cursor position.
// When Anchor == Head, this is a bare cursor with no extent.
// Selection is an immutable value type.
type Selection struct {
	Anchor int
	Head   int
}

// New creates a selection from anchor to head.
func New(anchor, head int) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// Cursor creates a selection representing just a cursor (no extent).
func Cursor(offset int) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// IsEmpty returns true if the selection has no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Start returns the lower bound of the selection.
func (s Selection) Start() int {
	if s.Anchor <= s.Head {
		return s.Anchor
	}
	return s.Head
}

// End returns the upper bound of the selection.
func (s Selection) End() int {
	if s.Anchor >= s.Head {
		return s.Anchor
	}
	return s.Head
}

// Len returns the selection extent in runes.
func (s Selection) Len() int {
	return s.End() - s.Start()
}

// String returns a human-readable representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("cursor %d", s.Head)
	}
	return fmt.Sprintf("%d-%d", s.Anchor, s.Head)
}

// Derive computes the selection resulting from an edit produced by d.
// Only d's trailing operation matters: a delta's last operation best
// represents where the user ended up. Returns false when no selection can
// be determined — empty delta, an operation variant Derive does not
// understand, or offsets beyond the edit's resulting document length.
// Deriving never fails; an undeterminable selection simply leaves the
// previous selection untouched.
func Derive(edit *compose.Edit, d delta.Delta) (Selection, bool) {
	var sel Selection
	switch op := d.Last().(type) {
	case delta.Insert:
		sel = New(op.Pos, op.Pos+op.Len())
	case delta.Delete:
		sel = New(op.Pos, op.Pos+op.Length)
	default:
		return Selection{}, false
	}

	// A stale or inconsistent offset is better left alone than turned
	// into an out-of-range selection.
	if sel.Anchor > edit.NewLen() || sel.Head > edit.NewLen() {
		return Selection{}, false
	}
	return sel, true
}
