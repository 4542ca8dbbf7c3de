package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestDecodeIntent(t *testing.T) {
	tests := []struct {
		name string
		ev   tcell.Event
		want Intent
	}{
		{"q quits", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), IntentQuit},
		{"escape quits", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), IntentQuit},
		{"left rewinds", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), IntentBack},
		{"h rewinds", tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone), IntentBack},
		{"right advances", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), IntentForward},
		{"l advances", tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone), IntentForward},
		{"home jumps to base", tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone), IntentStart},
		{"G jumps to latest", tcell.NewEventKey(tcell.KeyRune, 'G', tcell.ModNone), IntentEnd},
		{"tab cycles files", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), IntentNextFile},
		{"resize redraws", tcell.NewEventResize(80, 24), IntentRedraw},
		{"unmapped rune is ignored", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), IntentNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeIntent(tt.ev); got != tt.want {
				t.Errorf("decodeIntent = %v, want %v", got, tt.want)
			}
		})
	}
}
