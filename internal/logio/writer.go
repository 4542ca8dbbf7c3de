package logio

import (
	"fmt"
	"io"

	"github.com/tidwall/sjson"

	"github.com/palimpsest-editor/palimpsest/internal/engine/delta"
)

// Writer appends deltas to a log stream in the format Decode reads.
// It is the producer side of the log contract: the header is written
// once, then every Append adds exactly one line at the end.
type Writer struct {
	w io.Writer
}

// NewWriter writes the log header for (file, base) to w and returns a
// writer for appending deltas.
func NewWriter(w io.Writer, file, base string) (*Writer, error) {
	header := "{}"
	header, _ = sjson.Set(header, "palimpsest", FormatVersion)
	header, _ = sjson.Set(header, "file", file)
	header, _ = sjson.Set(header, "base", base)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Writer{w: w}, nil
}

// Append writes one delta line.
func (lw *Writer) Append(d delta.Delta) error {
	line, err := encodeDelta(d)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(lw.w, line); err != nil {
		return fmt.Errorf("append delta: %w", err)
	}
	return nil
}

func encodeDelta(d delta.Delta) (string, error) {
	line, _ := sjson.SetRaw("{}", "ops", "[]")
	for _, op := range d.Ops {
		var err error
		switch o := op.(type) {
		case delta.Insert:
			line, err = sjson.Set(line, "ops.-1", map[string]any{
				"op": "insert", "pos": o.Pos, "text": o.Text,
			})
		case delta.Delete:
			line, err = sjson.Set(line, "ops.-1", map[string]any{
				"op": "delete", "pos": o.Pos, "len": o.Length,
			})
		default:
			return "", fmt.Errorf("encode %T: %w", op, delta.ErrUnsupportedOp)
		}
		if err != nil {
			return "", fmt.Errorf("encode delta: %w", err)
		}
	}
	return line, nil
}
