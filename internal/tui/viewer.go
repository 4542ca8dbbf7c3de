// Package tui renders the history viewer in a terminal.
//
// The viewer is a thin surface over the replay engine's view state: it
// draws the current document with the derived selection highlighted, a
// status line, and turns keystrokes into navigation intents for the app
// loop. It holds no document state of its own.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/palimpsest-editor/palimpsest/internal/config"
	"github.com/palimpsest-editor/palimpsest/internal/engine/selection"
)

// Intent is a navigation request decoded from an input event.
type Intent int

const (
	IntentNone     Intent = iota // ignorable event
	IntentQuit                   // leave the viewer
	IntentBack                   // rewind one delta
	IntentForward                // advance one delta
	IntentStart                  // jump to the base document
	IntentEnd                    // jump to the full log
	IntentNextFile               // cycle to the next file
	IntentRedraw                 // repaint (resize)
)

// Status is the status line content.
type Status struct {
	File     string
	Language string
	Prefix   int // deltas applied
	Total    int // deltas in the log
	Session  string
	Follow   bool
}

// Viewer owns the terminal screen.
type Viewer struct {
	screen tcell.Screen

	textStyle   tcell.Style
	selStyle    tcell.Style
	statusStyle tcell.Style
	tabWidth    int

	intents chan Intent
}

// New initializes the terminal and starts the input loop.
func New(cfg config.Config) (*Viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	v := &Viewer{
		screen:    screen,
		textStyle: tcell.StyleDefault,
		selStyle: tcell.StyleDefault.
			Foreground(tcell.GetColor(cfg.Theme.SelectionFG)).
			Background(tcell.GetColor(cfg.Theme.SelectionBG)),
		statusStyle: tcell.StyleDefault.
			Foreground(tcell.GetColor(cfg.Theme.StatusFG)).
			Background(tcell.GetColor(cfg.Theme.StatusBG)),
		tabWidth: cfg.TabWidth,
		intents:  make(chan Intent, 8),
	}
	go v.inputLoop()
	return v, nil
}

// Intents delivers navigation intents decoded from input events. The
// channel closes when the screen is shut down.
func (v *Viewer) Intents() <-chan Intent {
	return v.intents
}

// Close restores the terminal.
func (v *Viewer) Close() {
	v.screen.Fini()
}

func (v *Viewer) inputLoop() {
	defer close(v.intents)
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			// Screen finalized.
			return
		}
		if intent := decodeIntent(ev); intent != IntentNone {
			v.intents <- intent
		}
	}
}

func decodeIntent(ev tcell.Event) Intent {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return IntentRedraw
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return IntentQuit
		case tcell.KeyLeft:
			return IntentBack
		case tcell.KeyRight:
			return IntentForward
		case tcell.KeyHome:
			return IntentStart
		case tcell.KeyEnd:
			return IntentEnd
		case tcell.KeyTab:
			return IntentNextFile
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return IntentQuit
			case 'h':
				return IntentBack
			case 'l':
				return IntentForward
			case 'g':
				return IntentStart
			case 'G':
				return IntentEnd
			}
		}
	}
	return IntentNone
}

// Render paints the document, highlighting sel if non-nil, with the
// status line on the bottom row. Content that does not fit is clipped.
func (v *Viewer) Render(text string, sel *selection.Selection, st Status) {
	v.screen.Clear()
	width, height := v.screen.Size()
	if height < 1 {
		return
	}

	selStart, selEnd := -1, -1
	if sel != nil {
		selStart, selEnd = sel.Start(), sel.End()
	}

	x, y := 0, 0
	offset := 0 // rune offset in text
	for _, r := range text {
		selected := offset >= selStart && offset < selEnd
		cursor := sel != nil && sel.IsEmpty() && offset == selStart
		offset++

		if r == '\n' {
			if (selected || cursor) && y < height-1 && x < width {
				v.screen.SetContent(x, y, ' ', nil, v.selStyle)
			}
			x = 0
			y++
			if y >= height-1 {
				break
			}
			continue
		}

		style := v.textStyle
		if selected || cursor {
			style = v.selStyle
		}

		if r == '\t' {
			next := (x/v.tabWidth + 1) * v.tabWidth
			for ; x < next && x < width; x++ {
				v.screen.SetContent(x, y, ' ', nil, style)
			}
			continue
		}

		if x < width {
			v.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}

	// Cursor sitting at the very end of the document.
	if sel != nil && sel.IsEmpty() && selStart == offset && y < height-1 && x < width {
		v.screen.SetContent(x, y, ' ', nil, v.selStyle)
	}

	v.renderStatus(st, width, height-1)
	v.screen.Show()
}

func (v *Viewer) renderStatus(st Status, width, row int) {
	follow := ""
	if st.Follow {
		follow = " [follow]"
	}
	left := fmt.Sprintf(" %s (%s)  delta %d/%d%s", st.File, st.Language, st.Prefix, st.Total, follow)
	right := fmt.Sprintf("session %.8s ", st.Session)

	x := 0
	for _, r := range left {
		if x >= width {
			break
		}
		v.screen.SetContent(x, row, r, nil, v.statusStyle)
		x++
	}
	for ; x < width-len(right); x++ {
		v.screen.SetContent(x, row, ' ', nil, v.statusStyle)
	}
	for _, r := range right {
		if x >= width {
			break
		}
		v.screen.SetContent(x, row, r, nil, v.statusStyle)
		x++
	}
}
