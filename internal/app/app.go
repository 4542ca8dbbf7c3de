// Package app wires the replay engine, log watchers, and terminal viewer
// into the running palimpsest application.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/palimpsest-editor/palimpsest/internal/config"
	"github.com/palimpsest-editor/palimpsest/internal/engine/replay"
	"github.com/palimpsest-editor/palimpsest/internal/engine/view"
	"github.com/palimpsest-editor/palimpsest/internal/logio"
	"github.com/palimpsest-editor/palimpsest/internal/tui"
)

// ErrQuit is returned through Run when the user asks to leave. It is not
// a failure; main treats it as a clean exit.
var ErrQuit = errors.New("quit")

// Options configures the application.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string

	// LogPaths are the delta-log files to open. Each path is one file
	// identity for the replay engine.
	LogPaths []string

	// NoFollow disables auto-advancing when a producer appends.
	NoFollow bool
}

// fileView is the app's per-file navigation state: the latest decoded
// log and the prefix currently on screen.
type fileView struct {
	path   string
	doc    logio.Document
	prefix int
	follow bool
}

// App is the running application.
type App struct {
	cfg    config.Config
	engine *replay.Engine
	viewer *tui.Viewer

	files  []*fileView
	active int

	watchers []*logio.Watcher
	updates  chan fileUpdate
	errs     chan error
}

// fileUpdate carries a re-decoded log from a watcher to the run loop.
type fileUpdate struct {
	index int
	doc   logio.Document
}

// New loads configuration and the initial logs. The terminal is not
// touched until Run.
func New(opts Options) (*App, error) {
	if len(opts.LogPaths) == 0 {
		return nil, errors.New("no log files given")
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = defaultConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if opts.NoFollow {
		cfg.Follow = false
	}

	a := &App{
		cfg:     cfg,
		updates: make(chan fileUpdate, 4),
		errs:    make(chan error, 4),
	}
	a.engine = replay.New(func(fileID replay.FileID, doc string) replay.View {
		name := string(fileID)
		for _, fv := range a.files {
			if fv.path == name {
				name = fv.doc.File
				break
			}
		}
		return view.NewState(doc, view.Config{
			Language: cfg.Language(name),
			TabWidth: cfg.TabWidth,
		})
	})

	for _, path := range opts.LogPaths {
		doc, err := logio.ReadLog(path)
		if err != nil {
			return nil, err
		}
		a.files = append(a.files, &fileView{
			path:   path,
			doc:    doc,
			prefix: len(doc.Deltas),
			follow: cfg.Follow,
		})
	}
	return a, nil
}

// Run takes over the terminal and drives the viewer until quit or error.
func (a *App) Run() error {
	viewer, err := tui.New(a.cfg)
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	a.viewer = viewer

	for i, fv := range a.files {
		w, err := logio.Watch(fv.path)
		if err != nil {
			return fmt.Errorf("watching %s: %w", fv.path, err)
		}
		a.watchers = append(a.watchers, w)
		go a.forward(i, w)
	}

	if err := a.reconcile(); err != nil {
		return err
	}
	a.render()

	for {
		select {
		case intent, ok := <-viewer.Intents():
			if !ok {
				return nil
			}
			if intent == tui.IntentQuit {
				return ErrQuit
			}
			if err := a.handleIntent(intent); err != nil {
				return err
			}

		case up := <-a.updates:
			if err := a.handleUpdate(up); err != nil {
				return err
			}

		case err := <-a.errs:
			return err
		}
	}
}

// Shutdown releases all resources. Safe to call after Run returns.
func (a *App) Shutdown() {
	for _, w := range a.watchers {
		_ = w.Close()
	}
	a.watchers = nil
	if a.viewer != nil {
		a.viewer.Close()
		a.viewer = nil
	}
	if a.engine != nil && !a.engine.Released() {
		a.engine.Release()
	}
}

// forward pumps one watcher's output into the run loop.
func (a *App) forward(index int, w *logio.Watcher) {
	for {
		select {
		case doc, ok := <-w.Documents():
			if !ok {
				return
			}
			a.updates <- fileUpdate{index: index, doc: doc}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			a.errs <- err
		}
	}
}

func (a *App) handleIntent(intent tui.Intent) error {
	fv := a.files[a.active]
	switch intent {
	case tui.IntentBack:
		if fv.prefix > 0 {
			fv.prefix--
		}
		fv.follow = false
	case tui.IntentForward:
		if fv.prefix < len(fv.doc.Deltas) {
			fv.prefix++
		}
		if fv.prefix == len(fv.doc.Deltas) {
			fv.follow = a.cfg.Follow
		}
	case tui.IntentStart:
		fv.prefix = 0
		fv.follow = false
	case tui.IntentEnd:
		fv.prefix = len(fv.doc.Deltas)
		fv.follow = a.cfg.Follow
	case tui.IntentNextFile:
		a.active = (a.active + 1) % len(a.files)
	case tui.IntentRedraw:
		a.render()
		return nil
	default:
		return nil
	}

	if err := a.reconcile(); err != nil {
		return err
	}
	a.render()
	return nil
}

// handleUpdate absorbs a freshly decoded log. When the file is being
// followed at its end, the view advances to include the new deltas;
// otherwise only the status line total changes.
func (a *App) handleUpdate(up fileUpdate) error {
	fv := a.files[up.index]
	fv.doc = up.doc
	if fv.follow || fv.prefix > len(fv.doc.Deltas) {
		fv.prefix = len(fv.doc.Deltas)
	}

	if up.index == a.active {
		if err := a.reconcile(); err != nil {
			return err
		}
		a.render()
	}
	return nil
}

// reconcile brings the engine's live view to the active file's prefix.
func (a *App) reconcile() error {
	fv := a.files[a.active]
	return a.engine.Update(replay.Params{
		Document: fv.doc.Base,
		Deltas:   fv.doc.Deltas.Prefix(fv.prefix),
		FileID:   replay.FileID(fv.path),
	})
}

func (a *App) render() {
	fv := a.files[a.active]
	v := a.engine.View()
	if v == nil {
		return
	}

	st := tui.Status{
		File:     displayName(fv),
		Language: a.cfg.Language(displayName(fv)),
		Prefix:   fv.prefix,
		Total:    len(fv.doc.Deltas),
		Session:  a.engine.SessionID(),
		Follow:   fv.follow,
	}

	if sel, ok := v.Selection(); ok {
		a.viewer.Render(v.Text(), &sel, st)
		return
	}
	a.viewer.Render(v.Text(), nil, st)
}

func displayName(fv *fileView) string {
	if fv.doc.File != "" {
		return fv.doc.File
	}
	return filepath.Base(fv.path)
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "palimpsest", "config.toml")
}
