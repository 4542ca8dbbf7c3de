package logio

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches the write bursts producers make when appending:
// one reload per burst instead of one per syscall.
const debounceWindow = 50 * time.Millisecond

// Watcher tails a log file, re-reading it whenever the producer appends
// and delivering the decoded result on Documents. The parent directory is
// watched rather than the file so atomic rename-into-place producers are
// seen too.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string

	docs chan Document
	errs chan error

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// Watch starts watching the log file at path. The caller must drain
// Documents and Errors until Close.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		path:    abs,
		docs:    make(chan Document, 1),
		errs:    make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Documents delivers the decoded log after each change.
func (w *Watcher) Documents() <-chan Document {
	return w.docs
}

// Errors delivers watch and decode failures.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}

		case <-fire:
			timer = nil
			fire = nil
			doc, err := ReadLog(w.path)
			if err != nil {
				w.report(err)
				continue
			}
			select {
			case w.docs <- doc:
			case <-w.closeCh:
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

// report delivers an error without blocking a slow consumer; older
// errors are dropped in favor of the newest.
func (w *Watcher) report(err error) {
	select {
	case w.errs <- err:
	default:
		select {
		case <-w.errs:
		default:
		}
		select {
		case w.errs <- err:
		default:
		}
	}
}
