package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/palimpsest-editor/palimpsest/internal/engine/delta"
	"github.com/palimpsest-editor/palimpsest/internal/logio"
)

// Seed writes a small demonstration log to path so a new user has
// something to scrub through.
func Seed(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w, err := logio.NewWriter(f, filepath.Base(path), "")
	if err != nil {
		return err
	}

	deltas := []delta.Delta{
		delta.New(delta.Insert{Pos: 0, Text: "Hello"}),
		delta.New(delta.Insert{Pos: 5, Text: ", world"}),
		delta.New(delta.Insert{Pos: 12, Text: "!\n"}),
		delta.New(delta.Insert{Pos: 14, Text: "A palimpsest keeps every layer of what was written.\n"}),
		delta.New(
			delta.Delete{Pos: 0, Length: 5},
			delta.Insert{Pos: 0, Text: "Goodbye"},
		),
	}
	for _, d := range deltas {
		if err := w.Append(d); err != nil {
			return err
		}
	}
	return nil
}
