// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fwconfig

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	mediatorerrors "github.com/flowmediator/mediator/internal/errors"
	"github.com/flowmediator/mediator/internal/logging"
)

// Watcher notifies on external edits to a single config file. Editors
// and atomicWrite's own rename both show up as events on the file's
// parent directory, so the watcher watches the directory and filters
// by name — the approach fsnotify's own docs recommend for files that
// get replaced rather than edited in place.
type Watcher struct {
	inner  *fsnotify.Watcher
	path   string
	name   string
	log    *logging.Logger
	Events chan string
}

// NewWatcher starts watching path's parent directory for changes to
// path specifically.
func NewWatcher(path string, log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Default()
	}
	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, mediatorerrors.Wrap(err, mediatorerrors.KindInternal, "create fsnotify watcher")
	}
	dir := filepath.Dir(path)
	if err := inner.Add(dir); err != nil {
		inner.Close()
		return nil, mediatorerrors.Wrap(err, mediatorerrors.KindInternal, "watch config directory")
	}

	w := &Watcher{
		inner:  inner,
		path:   path,
		name:   filepath.Base(path),
		log:    log.WithComponent("fwconfig"),
		Events: make(chan string, 16),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.Events)
	for {
		select {
		case ev, ok := <-w.inner.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.Events <- w.path:
			default:
				w.log.Debug("dropped config-change event, channel full", "path", w.path)
			}
		case err, ok := <-w.inner.Errors:
			if !ok {
				return
			}
			w.log.Error("fsnotify watch error", "path", w.path, "error", err)
		}
	}
}

// Close stops the watcher and releases its inotify handle.
func (w *Watcher) Close() error {
	return w.inner.Close()
}
