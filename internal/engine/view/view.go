// Package view holds the live editable-view state the replay engine
// drives: the reconstructed document text, the current selection, and the
// per-file display configuration. It is deliberately dumb — all edit
// algebra lives in package compose, all navigation policy in package
// replay.
package view

import (
	"unicode/utf8"

	"github.com/palimpsest-editor/palimpsest/internal/engine/compose"
	"github.com/palimpsest-editor/palimpsest/internal/engine/selection"
)

// Config carries per-file display settings. It has no effect on
// reconciliation; the engine threads it through so a host surface can
// render the state.
type Config struct {
	// Language is a display name for the file's language ("go", "text").
	Language string

	// TabWidth is the tab stop width used for rendering.
	TabWidth int
}

// State is one file's live document state at some history prefix.
type State struct {
	doc    string
	docLen int // rune length of doc, kept in sync
	sel    selection.Selection
	hasSel bool
	cfg    Config
}

// NewState creates a fresh state holding doc as plain text with no edits
// applied and no selection.
func NewState(doc string, cfg Config) *State {
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = 4
	}
	return &State{
		doc:    doc,
		docLen: utf8.RuneCountInString(doc),
		cfg:    cfg,
	}
}

// Len returns the current document length in runes.
func (s *State) Len() int {
	return s.docLen
}

// Text returns the current document text.
func (s *State) Text() string {
	return s.doc
}

// Config returns the state's display configuration.
func (s *State) Config() Config {
	return s.cfg
}

// Selection returns the current selection and whether one is set.
func (s *State) Selection() (selection.Selection, bool) {
	return s.sel, s.hasSel
}

// Apply applies a composed edit to the document, optionally setting the
// selection. A nil sel leaves the previous selection in place only if it
// is still in range; otherwise the selection is cleared. The edit either
// applies fully or the state is left unchanged.
func (s *State) Apply(edit *compose.Edit, sel *selection.Selection) error {
	doc, err := edit.Apply(s.doc)
	if err != nil {
		return err
	}
	s.doc = doc
	s.docLen = edit.NewLen()
	if sel != nil {
		s.sel = *sel
		s.hasSel = true
	} else if s.hasSel && (s.sel.Anchor > s.docLen || s.sel.Head > s.docLen) {
		s.sel = selection.Selection{}
		s.hasSel = false
	}
	return nil
}
