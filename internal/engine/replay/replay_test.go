package replay

import (
	"errors"
	"testing"

	"github.com/palimpsest-editor/palimpsest/internal/engine/delta"
	"github.com/palimpsest-editor/palimpsest/internal/engine/selection"
	"github.com/palimpsest-editor/palimpsest/internal/engine/view"
)

func newTestEngine() *Engine {
	return New(func(_ FileID, doc string) View {
		return view.NewState(doc, view.Config{})
	})
}

func mustUpdate(t *testing.T, e *Engine, doc string, log delta.Log, file FileID) {
	t.Helper()
	if err := e.Update(Params{Document: doc, Deltas: log, FileID: file}); err != nil {
		t.Fatalf("Update(%s, %d deltas): %v", file, len(log), err)
	}
}

func text(t *testing.T, e *Engine) string {
	t.Helper()
	v := e.View()
	if v == nil {
		t.Fatal("engine has no live view")
	}
	return v.Text()
}

func TestUpdateForward(t *testing.T) {
	t.Run("single delta", func(t *testing.T) {
		e := newTestEngine()
		mustUpdate(t, e, "abc", delta.Log{delta.New(delta.Insert{Pos: 1, Text: "X"})}, "a.txt")
		if got := text(t, e); got != "aXbc" {
			t.Errorf("expected %q, got %q", "aXbc", got)
		}
	})

	t.Run("incremental growth matches one-shot replay", func(t *testing.T) {
		log := delta.Log{
			delta.New(delta.Insert{Pos: 1, Text: "X"}),
			delta.New(delta.Delete{Pos: 0, Length: 1}),
		}

		incremental := newTestEngine()
		mustUpdate(t, incremental, "abc", log.Prefix(1), "a.txt")
		if got := text(t, incremental); got != "aXbc" {
			t.Errorf("after first delta expected %q, got %q", "aXbc", got)
		}
		mustUpdate(t, incremental, "abc", log, "a.txt")

		oneShot := newTestEngine()
		mustUpdate(t, oneShot, "abc", log, "a.txt")

		if a, b := text(t, incremental), text(t, oneShot); a != b || a != "Xbc" {
			t.Errorf("expected %q from both paths, got incremental %q one-shot %q", "Xbc", a, b)
		}
	})

	t.Run("idempotent on identical log", func(t *testing.T) {
		e := newTestEngine()
		log := delta.Log{delta.New(delta.Insert{Pos: 0, Text: "hi"})}
		mustUpdate(t, e, "", log, "a.txt")
		first := text(t, e)
		sel1, ok1 := e.View().Selection()

		mustUpdate(t, e, "", log, "a.txt")
		if got := text(t, e); got != first {
			t.Errorf("second update changed text: %q -> %q", first, got)
		}
		sel2, ok2 := e.View().Selection()
		if ok1 != ok2 || sel1 != sel2 {
			t.Errorf("second update changed selection: %v/%v -> %v/%v", sel1, ok1, sel2, ok2)
		}
	})
}

func TestUpdateBackward(t *testing.T) {
	log := delta.Log{
		delta.New(delta.Insert{Pos: 0, Text: "Hello"}),
		delta.New(delta.Insert{Pos: 5, Text: ", world"}),
		delta.New(delta.Delete{Pos: 0, Length: 1}),
	}

	t.Run("rewind to shorter prefix", func(t *testing.T) {
		e := newTestEngine()
		mustUpdate(t, e, "", log, "a.txt")
		if got := text(t, e); got != "ello, world" {
			t.Fatalf("full replay expected %q, got %q", "ello, world", got)
		}

		mustUpdate(t, e, "", log.Prefix(1), "a.txt")
		if got := text(t, e); got != "Hello" {
			t.Errorf("rewind expected %q, got %q", "Hello", got)
		}
	})

	t.Run("rewind to base", func(t *testing.T) {
		e := newTestEngine()
		mustUpdate(t, e, "", log, "a.txt")
		mustUpdate(t, e, "", nil, "a.txt")
		if got := text(t, e); got != "" {
			t.Errorf("expected base document, got %q", got)
		}
	})

	t.Run("forward-backward-forward round trip", func(t *testing.T) {
		direct := newTestEngine()
		mustUpdate(t, direct, "", log, "a.txt")
		want := text(t, direct)

		e := newTestEngine()
		mustUpdate(t, e, "", log, "a.txt")
		mustUpdate(t, e, "", log.Prefix(1), "a.txt")
		mustUpdate(t, e, "", log, "a.txt")
		if got := text(t, e); got != want {
			t.Errorf("round trip expected %q, got %q", want, got)
		}
	})

	t.Run("selection derives from first undone delta", func(t *testing.T) {
		l := delta.Log{
			delta.New(delta.Insert{Pos: 0, Text: "Hello"}),
			delta.New(delta.Delete{Pos: 0, Length: 2}),
		}
		e := newTestEngine()
		mustUpdate(t, e, "", l, "a.txt")
		mustUpdate(t, e, "", l.Prefix(1), "a.txt")

		sel, ok := e.View().Selection()
		if !ok {
			t.Fatal("expected a selection after rewind")
		}
		// Rewinding toward the delete that removed [0:2) of "Hello".
		if sel != selection.New(0, 2) {
			t.Errorf("expected selection 0-2, got %v", sel)
		}
	})
}

func TestAppendOnlyEnforcement(t *testing.T) {
	d0 := delta.New(delta.Insert{Pos: 0, Text: "a"})
	d1 := delta.New(delta.Insert{Pos: 1, Text: "b"})
	d2 := delta.New(delta.Insert{Pos: 1, Text: "c"})

	e := newTestEngine()
	mustUpdate(t, e, "", delta.Log{d0, d1}, "a.txt")

	err := e.Update(Params{Document: "", Deltas: delta.Log{d0, d2}, FileID: "a.txt"})
	if !errors.Is(err, ErrAppendOnlyViolation) {
		t.Fatalf("expected ErrAppendOnlyViolation, got %v", err)
	}

	// The failed update must not have touched the cache: the original
	// log still reconciles as a no-op.
	mustUpdate(t, e, "", delta.Log{d0, d1}, "a.txt")
	if got := text(t, e); got != "ab" {
		t.Errorf("expected %q after failed update, got %q", "ab", got)
	}
}

func TestSelectionDerivation(t *testing.T) {
	t.Run("insert sets anchor and head", func(t *testing.T) {
		e := newTestEngine()
		mustUpdate(t, e, "", delta.Log{delta.New(delta.Insert{Pos: 0, Text: "hi"})}, "a.txt")

		sel, ok := e.View().Selection()
		if !ok {
			t.Fatal("expected a selection")
		}
		if sel != selection.New(0, 2) {
			t.Errorf("expected selection 0-2, got %v", sel)
		}
	})

	t.Run("out-of-range delete leaves no selection", func(t *testing.T) {
		e := newTestEngine()
		mustUpdate(t, e, "hello", delta.Log{delta.New(delta.Delete{Pos: 1, Length: 3})}, "a.txt")

		if got := text(t, e); got != "ho" {
			t.Fatalf("expected %q, got %q", "ho", got)
		}
		if _, ok := e.View().Selection(); ok {
			t.Error("expected no selection for offsets beyond the result")
		}
	})
}

func TestFileSwitch(t *testing.T) {
	e := newTestEngine()
	logA := delta.Log{delta.New(delta.Insert{Pos: 3, Text: "def"})}

	mustUpdate(t, e, "abc", logA, "a.txt")
	if got := text(t, e); got != "abcdef" {
		t.Fatalf("file A expected %q, got %q", "abcdef", got)
	}

	mustUpdate(t, e, "zzz", nil, "b.txt")
	if got := text(t, e); got != "zzz" {
		t.Fatalf("file B expected %q, got %q", "zzz", got)
	}
	if e.ActiveFile() != "b.txt" {
		t.Errorf("expected active file b.txt, got %s", e.ActiveFile())
	}

	// Switching back restores A's cached state; the identical log makes
	// the reconciliation a no-op rather than a replay.
	mustUpdate(t, e, "abc", logA, "a.txt")
	if got := text(t, e); got != "abcdef" {
		t.Errorf("file A after switch expected %q, got %q", "abcdef", got)
	}
	if e.ActiveFile() != "a.txt" {
		t.Errorf("expected active file a.txt, got %s", e.ActiveFile())
	}
}

func TestUnsupportedOperation(t *testing.T) {
	e := newTestEngine()
	err := e.Update(Params{
		Document: "abc",
		Deltas:   delta.Log{delta.New(delta.Unknown{Kind: "retitle"})},
		FileID:   "a.txt",
	})
	if !errors.Is(err, delta.ErrUnsupportedOp) {
		t.Errorf("expected ErrUnsupportedOp, got %v", err)
	}
}

func TestAttachRelease(t *testing.T) {
	t.Run("attach reconciles the initial state", func(t *testing.T) {
		e, err := Attach(func(_ FileID, doc string) View {
			return view.NewState(doc, view.Config{})
		}, Params{
			Document: "abc",
			Deltas:   delta.Log{delta.New(delta.Insert{Pos: 0, Text: "x"})},
			FileID:   "a.txt",
		})
		if err != nil {
			t.Fatalf("Attach: %v", err)
		}
		if got := text(t, e); got != "xabc" {
			t.Errorf("expected %q, got %q", "xabc", got)
		}
		if e.SessionID() == "" {
			t.Error("expected a session id")
		}
	})

	t.Run("attach failure releases the engine", func(t *testing.T) {
		_, err := Attach(func(_ FileID, doc string) View {
			return view.NewState(doc, view.Config{})
		}, Params{
			Document: "abc",
			Deltas:   delta.Log{delta.New(delta.Unknown{Kind: "retitle"})},
			FileID:   "a.txt",
		})
		if err == nil {
			t.Fatal("expected attach to fail")
		}
	})

	t.Run("update after release fails", func(t *testing.T) {
		e := newTestEngine()
		mustUpdate(t, e, "abc", nil, "a.txt")
		e.Release()
		if !e.Released() {
			t.Error("expected Released to report true")
		}
		err := e.Update(Params{Document: "abc", FileID: "a.txt"})
		if !errors.Is(err, ErrReleased) {
			t.Errorf("expected ErrReleased, got %v", err)
		}
	})
}
