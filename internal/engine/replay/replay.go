package replay

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/palimpsest-editor/palimpsest/internal/engine/compose"
	"github.com/palimpsest-editor/palimpsest/internal/engine/delta"
	"github.com/palimpsest-editor/palimpsest/internal/engine/selection"
)

// Errors returned by engine operations.
var (
	// ErrAppendOnlyViolation indicates the new delta log disagrees with
	// the cached log on a shared index while lengths indicate a forward
	// update. This is a producer bug or a true history edit the engine
	// does not support, never a transient condition.
	ErrAppendOnlyViolation = errors.New("append-only violation")

	// ErrReleased indicates the engine was already released.
	ErrReleased = errors.New("engine released")
)

// FileID identifies one document's history log.
type FileID string

// View is the abstract editable-view collaborator the engine drives. The
// engine exclusively owns its views; it assumes Apply either applies an
// edit fully or leaves the view unchanged.
type View interface {
	// Len returns the current document length in runes.
	Len() int
	// Text returns the current document text.
	Text() string
	// Selection returns the current selection and whether one is set.
	Selection() (selection.Selection, bool)
	// Apply applies a composed edit, optionally setting the selection.
	Apply(edit *compose.Edit, sel *selection.Selection) error
}

// ViewFactory constructs a fresh view state holding doc as plain text
// with no edits applied.
type ViewFactory func(fileID FileID, doc string) View

// Params is one reconciliation request: present fileID's document as it
// exists after applying every delta in Deltas to Document.
type Params struct {
	Document string
	Deltas   delta.Log
	FileID   FileID
}

// fileState is one per-file cache entry: the file's live view, the log
// prefix that view reflects, and the original base document (backward
// navigation recompiles against it).
type fileState struct {
	view View
	log  delta.Log
	base string
}

// Engine reconstructs and navigates document states from delta logs.
//
// Each Update moves one file's view from the log prefix it currently
// reflects to the requested prefix, replaying appended deltas forward or
// undoing trailing deltas backward, then derives a selection from the
// operation nearest the transition. Per-file state is cached so switching
// between files never replays history.
//
// An Engine is not safe for concurrent use: callers serialize Update
// calls. Every Update either fully completes or fails without touching
// the cache.
type Engine struct {
	id       string
	newView  ViewFactory
	files    map[FileID]*fileState
	active   FileID
	view     View
	released bool
}

// New creates an engine with no files attached.
func New(factory ViewFactory) *Engine {
	return &Engine{
		id:      uuid.New().String(),
		newView: factory,
		files:   make(map[FileID]*fileState),
	}
}

// Attach creates an engine and reconciles it to the given initial state.
func Attach(factory ViewFactory, p Params) (*Engine, error) {
	e := New(factory)
	if err := e.Update(p); err != nil {
		e.Release()
		return nil, err
	}
	return e, nil
}

// SessionID returns the engine's unique session identifier.
func (e *Engine) SessionID() string {
	return e.id
}

// ActiveFile returns the file the live view currently shows.
func (e *Engine) ActiveFile() FileID {
	return e.active
}

// View returns the live view, or nil before the first Update.
func (e *Engine) View() View {
	return e.view
}

// Released returns true once Release has been called.
func (e *Engine) Released() bool {
	return e.released
}

// Update reconciles the live view with p. Calling Update twice with an
// identical log and file is a no-op: the second call compiles the
// identity edit.
//
// Fails with delta.ErrUnsupportedOp for unknown operation variants and
// ErrAppendOnlyViolation when the new log rewrites cached history; on any
// failure the per-file cache keeps its previous entry.
func (e *Engine) Update(p Params) error {
	if e.released {
		return ErrReleased
	}

	fs, cached := e.files[p.FileID]
	if !cached {
		// First visit: a fresh base state with zero deltas applied.
		// The reconciliation below is then a pure forward replay of
		// the file's entire history.
		fs = &fileState{
			view: e.newView(p.FileID, p.Document),
			base: p.Document,
		}
	}

	live := fs.view

	if len(fs.log) > len(p.Deltas) {
		if err := e.rewind(live, fs, p.Deltas); err != nil {
			return fmt.Errorf("rewind %s to %d deltas: %w", p.FileID, len(p.Deltas), err)
		}
	} else {
		if err := e.advance(live, fs, p.Deltas); err != nil {
			return fmt.Errorf("advance %s to %d deltas: %w", p.FileID, len(p.Deltas), err)
		}
	}

	// Reconciliation succeeded; commit.
	fs.log = append(delta.Log(nil), p.Deltas...)
	e.files[p.FileID] = fs
	e.active = p.FileID
	e.view = live
	return nil
}

// rewind moves fs.view backward to a shorter log prefix by inverting the
// deltas being undone. Inversion needs the document those deltas applied
// to, so the target state is reconstructed from the original base first.
func (e *Engine) rewind(live View, fs *fileState, deltas delta.Log) error {
	baseLen := utf8.RuneCountInString(fs.base)
	target, err := compose.CompileDeltas(deltas, baseLen)
	if err != nil {
		return err
	}
	targetDoc, err := target.Apply(fs.base)
	if err != nil {
		return err
	}

	undone, err := compose.CompileDeltas(fs.log[len(deltas):], target.NewLen())
	if err != nil {
		return err
	}
	inv, err := undone.Invert(targetDoc)
	if err != nil {
		return err
	}

	// The user is rewinding toward the first undone delta, so that is
	// where the selection lands.
	var sel *selection.Selection
	if s, ok := selection.Derive(inv, fs.log[len(deltas)]); ok {
		sel = &s
	}
	return live.Apply(inv, sel)
}

// advance moves fs.view forward by compiling only the deltas appended
// beyond the cached prefix. Shared indexes are verified against the
// cached log first: the log is append-only, and a rewritten entry means
// the rest of the cache is unreliable.
func (e *Engine) advance(live View, fs *fileState, deltas delta.Log) error {
	for i := range fs.log {
		if !fs.log[i].Equal(deltas[i]) {
			return fmt.Errorf("delta %d rewritten: %w", i, ErrAppendOnlyViolation)
		}
	}

	edit, err := compose.CompileDeltas(deltas[len(fs.log):], live.Len())
	if err != nil {
		return err
	}

	var sel *selection.Selection
	if len(deltas) > len(fs.log) {
		if s, ok := selection.Derive(edit, deltas[len(deltas)-1]); ok {
			sel = &s
		}
	}
	return live.Apply(edit, sel)
}

// Release drops the engine's views and caches. Further Update calls fail
// with ErrReleased.
func (e *Engine) Release() {
	e.released = true
	e.view = nil
	e.files = nil
	e.active = ""
}
