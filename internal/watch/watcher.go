// Package watch raises the playback loop's dirty flag when the media
// folder or the configuration record changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/handiism/signage-viewer/internal/catalog"
)

// Watcher observes the media folder (not recursively) and, optionally,
// the configuration file.
//
// On a media folder event the watcher rescans the folder, publishes the new
// snapshot and raises the dirty flag. On a config file event it only raises
// the flag. It never filters or orders entries; that is the playback loop's
// job.
type Watcher struct {
	folder     string
	configFile string
	shared     *catalog.Shared
	onError    func(error)
	fsw        *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithConfigFile also raises the dirty flag when path is created,
// written or replaced.
func WithConfigFile(path string) Option {
	return func(w *Watcher) {
		if abs, err := filepath.Abs(path); err == nil {
			w.configFile = abs
		} else {
			w.configFile = filepath.Clean(path)
		}
	}
}

// WithErrorHandler receives scan and notification errors.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// New starts watching folder. The folder must exist.
func New(folder string, shared *catalog.Shared, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve media folder: %w", err)
	}
	w := &Watcher{folder: abs, shared: shared}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}
	if w.configFile != "" {
		dir := filepath.Dir(w.configFile)
		if dir != abs {
			// A missing config directory only costs prompt config pickup;
			// the loop still re-reads the record every tick.
			if err := fsw.Add(dir); err != nil {
				w.report(fmt.Errorf("watch config dir %s: %w", dir, err))
			}
		}
	}
	w.fsw = fsw
	return w, nil
}

// Run handles events until ctx is cancelled or the watcher is closed.
// It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.report(fmt.Errorf("watch: %w", err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	if w.configFile != "" && name == w.configFile {
		w.shared.MarkDirty()
		return
	}
	if filepath.Dir(name) != w.folder {
		return
	}

	cat, err := catalog.Scan(w.folder)
	if err != nil {
		w.report(err)
	}
	w.shared.Replace(cat)
	w.shared.MarkDirty()
}

func (w *Watcher) report(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
