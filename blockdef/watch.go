package blockdef

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a block definition file into a registry whenever it changes
// on disk. Editors replace files with rename/create rather than in-place
// writes, so the parent directory is watched and events filtered by name.
type Watcher struct {
	reg  *Registry
	path string
	log  *slog.Logger
	fw   *fsnotify.Watcher
	done chan struct{}
}

// Watch loads path into reg and starts watching it for changes.
func Watch(reg *Registry, path string, log *slog.Logger) (*Watcher, error) {
	if err := reg.LoadFile(path); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{reg: reg, path: path, log: log, fw: fw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := w.reg.LoadFile(w.path); err != nil {
				if w.log != nil {
					w.log.Warn("block definition reload failed", "path", w.path, "err", err)
				}
				continue
			}
			if w.log != nil {
				w.log.Info("block definitions reloaded", "path", w.path, "generation", w.reg.Generation())
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Warn("block definition watcher error", "err", err)
			}
		case <-w.done:
			return
		}
	}
}

// Close stops watching. The registry keeps its last loaded contents.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
