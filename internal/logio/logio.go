// Package logio reads and writes delta-log files.
//
// A log file is JSON lines: a header object identifying the file and its
// base document, followed by one delta object per line, appended by the
// producer as edits happen:
//
//	{"palimpsest":1,"file":"notes.txt","base":"hello"}
//	{"ops":[{"op":"insert","pos":5,"text":" world"}]}
//	{"ops":[{"op":"delete","pos":0,"len":1}]}
//
// Operation kinds the reader does not recognize decode to delta.Unknown
// rather than failing: the log stays readable while the engine rejects
// the unsupported step when it is actually reached.
package logio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/palimpsest-editor/palimpsest/internal/engine/delta"
)

// FormatVersion is the log format version this package reads and writes.
const FormatVersion = 1

// Errors returned by log decoding.
var (
	// ErrBadHeader indicates a missing or malformed header line.
	ErrBadHeader = errors.New("bad log header")

	// ErrBadDelta indicates a malformed delta line.
	ErrBadDelta = errors.New("bad delta line")
)

// Document is one decoded log file: the file identity, the base document
// text, and every delta appended so far.
type Document struct {
	File   string
	Base   string
	Deltas delta.Log
}

// ReadLog reads and decodes the log file at path.
func ReadLog(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// Decode decodes a delta log from r.
func Decode(r io.Reader) (Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("empty log: %w", ErrBadHeader)
	}

	doc, err := decodeHeader(sc.Text())
	if err != nil {
		return Document{}, err
	}

	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			// A producer mid-append may leave a trailing blank line.
			continue
		}
		d, err := decodeDelta(text)
		if err != nil {
			return Document{}, fmt.Errorf("line %d: %w", line, err)
		}
		doc.Deltas = append(doc.Deltas, d)
	}
	if err := sc.Err(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func decodeHeader(line string) (Document, error) {
	if !gjson.Valid(line) {
		return Document{}, fmt.Errorf("not JSON: %w", ErrBadHeader)
	}
	version := gjson.Get(line, "palimpsest")
	if !version.Exists() {
		return Document{}, fmt.Errorf("missing version field: %w", ErrBadHeader)
	}
	if version.Int() != FormatVersion {
		return Document{}, fmt.Errorf("unsupported version %d: %w", version.Int(), ErrBadHeader)
	}
	return Document{
		File: gjson.Get(line, "file").String(),
		Base: gjson.Get(line, "base").String(),
	}, nil
}

func decodeDelta(line string) (delta.Delta, error) {
	if !gjson.Valid(line) {
		return delta.Delta{}, fmt.Errorf("not JSON: %w", ErrBadDelta)
	}
	ops := gjson.Get(line, "ops")
	if !ops.IsArray() {
		return delta.Delta{}, fmt.Errorf("missing ops array: %w", ErrBadDelta)
	}

	var d delta.Delta
	var opErr error
	ops.ForEach(func(_, item gjson.Result) bool {
		op, err := decodeOp(item)
		if err != nil {
			opErr = err
			return false
		}
		d.Ops = append(d.Ops, op)
		return true
	})
	if opErr != nil {
		return delta.Delta{}, opErr
	}
	return d, nil
}

func decodeOp(item gjson.Result) (delta.Op, error) {
	kind := item.Get("op")
	if !kind.Exists() {
		return nil, fmt.Errorf("operation missing op field: %w", ErrBadDelta)
	}
	switch kind.String() {
	case "insert":
		return delta.Insert{
			Pos:  int(item.Get("pos").Int()),
			Text: item.Get("text").String(),
		}, nil
	case "delete":
		return delta.Delete{
			Pos:    int(item.Get("pos").Int()),
			Length: int(item.Get("len").Int()),
		}, nil
	default:
		// Preserved so the compiler can reject it if the prefix is
		// ever replayed through it.
		return delta.Unknown{Kind: kind.String()}, nil
	}
}
