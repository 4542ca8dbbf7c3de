package compose

import (
	"fmt"

	"github.com/palimpsest-editor/palimpsest/internal/engine/delta"
)

// CompileOp turns a single operation into an edit against a document of
// baseLen runes. Returns delta.ErrUnsupportedOp for variants other than
// Insert and Delete.
func CompileOp(op delta.Op, baseLen int) (*Edit, error) {
	switch o := op.(type) {
	case delta.Insert:
		if o.Pos < 0 || o.Pos > baseLen {
			return nil, fmt.Errorf("insert at %d in document of length %d: %w",
				o.Pos, baseLen, ErrOffsetOutOfRange)
		}
		e := &Edit{}
		e.retain(o.Pos)
		e.insert(o.Text)
		e.retain(baseLen - o.Pos)
		return e, nil

	case delta.Delete:
		if o.Length < 0 {
			return nil, fmt.Errorf("delete of length %d: %w", o.Length, ErrRangeInvalid)
		}
		if o.Pos < 0 || o.Pos+o.Length > baseLen {
			return nil, fmt.Errorf("delete [%d:%d) in document of length %d: %w",
				o.Pos, o.Pos+o.Length, baseLen, ErrOffsetOutOfRange)
		}
		e := &Edit{}
		e.retain(o.Pos)
		e.delete(o.Length)
		e.retain(baseLen - o.Pos - o.Length)
		return e, nil

	default:
		return nil, fmt.Errorf("compile %T: %w", op, delta.ErrUnsupportedOp)
	}
}

// CompileDeltas flattens an ordered sequence of deltas into one composed
// edit against a document of baseLen runes. Operations are compiled and
// composed strictly in order: each operation's offsets are defined
// relative to the document produced by everything before it, so each step
// is anchored at the running length of the accumulated edit. An empty
// sequence compiles to the identity edit of length baseLen.
func CompileDeltas(deltas delta.Log, baseLen int) (*Edit, error) {
	acc := Identity(baseLen)
	for i, d := range deltas {
		for j, op := range d.Ops {
			step, err := CompileOp(op, acc.NewLen())
			if err != nil {
				return nil, fmt.Errorf("delta %d op %d: %w", i, j, err)
			}
			acc, err = acc.Compose(step)
			if err != nil {
				return nil, fmt.Errorf("delta %d op %d: %w", i, j, err)
			}
		}
	}
	return acc, nil
}
