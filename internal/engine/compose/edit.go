package compose

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Errors returned by edit construction and application.
var (
	// ErrLengthMismatch indicates an edit was applied or composed against
	// a document or edit of the wrong length.
	ErrLengthMismatch = errors.New("document length mismatch")

	// ErrOffsetOutOfRange indicates an operation position outside the
	// valid document range.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrRangeInvalid indicates an invalid range (e.g., negative length).
	ErrRangeInvalid = errors.New("invalid range")
)

// spanKind categorizes a single span of an edit.
type spanKind uint8

const (
	spanRetain spanKind = iota // keep n runes of the input
	spanInsert                 // add text to the output
	spanDelete                 // drop n runes of the input
)

// span is one contiguous piece of an edit. n is meaningful for retain and
// delete spans, text for insert spans.
type span struct {
	kind spanKind
	n    int
	text string
}

// Edit is a composed edit: a single descriptor algebraically equivalent to
// applying an ordered sequence of operations one after another. An Edit
// records the document length it applies to (BaseLen) and the length it
// produces (NewLen); applying it to a document of any other length is an
// error.
//
// All lengths and offsets are in runes.
type Edit struct {
	spans   []span
	baseLen int
	newLen  int
}

// Identity returns the no-op edit for a document of length n.
func Identity(n int) *Edit {
	e := &Edit{}
	e.retain(n)
	return e
}

// BaseLen returns the document length the edit applies to.
func (e *Edit) BaseLen() int {
	return e.baseLen
}

// NewLen returns the document length the edit produces.
func (e *Edit) NewLen() int {
	return e.newLen
}

// IsIdentity returns true if applying the edit changes nothing.
func (e *Edit) IsIdentity() bool {
	for _, s := range e.spans {
		if s.kind != spanRetain {
			return false
		}
	}
	return true
}

// retain appends a retain span, merging with a trailing retain.
func (e *Edit) retain(n int) {
	if n <= 0 {
		return
	}
	e.baseLen += n
	e.newLen += n
	if last := len(e.spans) - 1; last >= 0 && e.spans[last].kind == spanRetain {
		e.spans[last].n += n
		return
	}
	e.spans = append(e.spans, span{kind: spanRetain, n: n})
}

// insert appends an insert span, merging with a trailing insert.
func (e *Edit) insert(text string) {
	if text == "" {
		return
	}
	e.newLen += utf8.RuneCountInString(text)
	if last := len(e.spans) - 1; last >= 0 && e.spans[last].kind == spanInsert {
		e.spans[last].text += text
		return
	}
	e.spans = append(e.spans, span{kind: spanInsert, text: text})
}

// delete appends a delete span, merging with a trailing delete.
func (e *Edit) delete(n int) {
	if n <= 0 {
		return
	}
	e.baseLen += n
	if last := len(e.spans) - 1; last >= 0 && e.spans[last].kind == spanDelete {
		e.spans[last].n += n
		return
	}
	e.spans = append(e.spans, span{kind: spanDelete, n: n})
}

// Apply applies the edit to a document, returning the resulting document.
// The document must have exactly BaseLen runes.
func (e *Edit) Apply(doc string) (string, error) {
	if utf8.RuneCountInString(doc) != e.baseLen {
		return "", fmt.Errorf("apply to document of length %d, edit expects %d: %w",
			utf8.RuneCountInString(doc), e.baseLen, ErrLengthMismatch)
	}

	var b strings.Builder
	runes := []rune(doc)
	idx := 0

	for _, s := range e.spans {
		switch s.kind {
		case spanRetain:
			b.WriteString(string(runes[idx : idx+s.n]))
			idx += s.n
		case spanDelete:
			idx += s.n
		case spanInsert:
			b.WriteString(s.text)
		}
	}
	return b.String(), nil
}

// Invert returns the edit that undoes e. The argument must be the document
// e was applied TO (the input, not the result): inverting a delete needs
// the deleted text back, and only the input document still has it.
func (e *Edit) Invert(doc string) (*Edit, error) {
	if utf8.RuneCountInString(doc) != e.baseLen {
		return nil, fmt.Errorf("invert against document of length %d, edit expects %d: %w",
			utf8.RuneCountInString(doc), e.baseLen, ErrLengthMismatch)
	}

	inv := &Edit{}
	runes := []rune(doc)
	idx := 0

	for _, s := range e.spans {
		switch s.kind {
		case spanRetain:
			inv.retain(s.n)
			idx += s.n
		case spanInsert:
			inv.delete(utf8.RuneCountInString(s.text))
		case spanDelete:
			inv.insert(string(runes[idx : idx+s.n]))
			idx += s.n
		}
	}
	return inv, nil
}

// String returns a human-readable representation of the edit.
func (e *Edit) String() string {
	if len(e.spans) == 0 {
		return "Edit(empty)"
	}
	parts := make([]string, 0, len(e.spans))
	for _, s := range e.spans {
		switch s.kind {
		case spanRetain:
			parts = append(parts, fmt.Sprintf("retain %d", s.n))
		case spanInsert:
			text := s.text
			if len(text) > 20 {
				text = text[:17] + "..."
			}
			parts = append(parts, fmt.Sprintf("insert %q", text))
		case spanDelete:
			parts = append(parts, fmt.Sprintf("delete %d", s.n))
		}
	}
	return fmt.Sprintf("Edit(%d -> %d: %s)", e.baseLen, e.newLen, strings.Join(parts, ", "))
}
