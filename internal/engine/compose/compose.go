package compose

import (
	"fmt"
	"unicode/utf8"
)

// spanIter walks a span slice one span at a time, allowing the current
// span to be partially consumed and replaced with its remainder.
type spanIter struct {
	spans []span
	idx   int
	cur   span
	ok    bool
}

func newSpanIter(spans []span) *spanIter {
	it := &spanIter{spans: spans}
	it.advance()
	return it
}

// advance moves to the next span in the slice.
func (it *spanIter) advance() {
	if it.idx < len(it.spans) {
		it.cur = it.spans[it.idx]
		it.idx++
		it.ok = true
		return
	}
	it.ok = false
}

// avail returns how many runes of the current span remain to be matched:
// span length for retain/delete, text length for insert.
func (it *spanIter) avail() int {
	if it.cur.kind == spanInsert {
		return utf8.RuneCountInString(it.cur.text)
	}
	return it.cur.n
}

// consume uses up n runes of the current span, advancing past it when
// fully spent.
func (it *spanIter) consume(n int) {
	if n >= it.avail() {
		it.advance()
		return
	}
	if it.cur.kind == spanInsert {
		runes := []rune(it.cur.text)
		it.cur.text = string(runes[n:])
		return
	}
	it.cur.n -= n
}

// head returns the first n runes of the current insert span's text.
func (it *spanIter) head(n int) string {
	runes := []rune(it.cur.text)
	return string(runes[:n])
}

// Compose merges e with a subsequent edit b into one edit such that for
// any document S of length e.BaseLen:
//
//	b.Apply(e.Apply(S)) == e.Compose(b).Apply(S)
//
// b must apply to e's result: e.NewLen must equal b.BaseLen.
func (e *Edit) Compose(b *Edit) (*Edit, error) {
	if e.newLen != b.baseLen {
		return nil, fmt.Errorf("compose edit producing %d with edit expecting %d: %w",
			e.newLen, b.baseLen, ErrLengthMismatch)
	}

	out := &Edit{spans: make([]span, 0, len(e.spans)+len(b.spans))}
	ia := newSpanIter(e.spans)
	ib := newSpanIter(b.spans)

	for {
		switch {
		case !ia.ok && !ib.ok:
			return out, nil

		// Deletes from the first edit act on text b never sees;
		// they pass through untouched.
		case ia.ok && ia.cur.kind == spanDelete:
			out.delete(ia.cur.n)
			ia.advance()

		// Inserts from the second edit land in the final output
		// regardless of what e did around them.
		case ib.ok && ib.cur.kind == spanInsert:
			out.insert(ib.cur.text)
			ib.advance()

		case !ia.ok || !ib.ok:
			// Lengths matched, so running out of one side while the
			// other still has retains/deletes means a malformed edit.
			return nil, fmt.Errorf("compose ran out of spans: %w", ErrLengthMismatch)

		default:
			// ia.cur is retain or insert, ib.cur is retain or delete.
			n := ia.avail()
			if m := ib.avail(); m < n {
				n = m
			}
			switch {
			case ia.cur.kind == spanRetain && ib.cur.kind == spanRetain:
				out.retain(n)
			case ia.cur.kind == spanRetain && ib.cur.kind == spanDelete:
				out.delete(n)
			case ia.cur.kind == spanInsert && ib.cur.kind == spanRetain:
				out.insert(ia.head(n))
			case ia.cur.kind == spanInsert && ib.cur.kind == spanDelete:
				// b deletes text e inserted; it never existed.
			}
			ia.consume(n)
			ib.consume(n)
		}
	}
}
