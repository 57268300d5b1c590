// Package watcher watches the patterns directory for new and changed pattern files.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

var skipDirectories = map[string]bool{
	".git": true,
	".jj":  true,
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify.
// Only events for files carrying the pattern extension and for directories are reported.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	extension string
	logger    ports.Logger
	events    chan ports.WatchEvent
	closeOnce sync.Once
}

// NewWatcher creates a watcher reporting files with the given extension.
func NewWatcher(extension string, logger ports.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatcherFailed.Error())
	}
	if extension == "" {
		extension = domain.DefaultPatternExtension
	}
	return &Watcher{
		fsWatcher: fw,
		extension: extension,
		logger:    logger,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Start begins watching root recursively. Events stop when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range directories(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherFailed.Error()), "dir", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsWatcher.Close()
	})
	return err
}

// Events returns an iterator of pattern file events. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are not watched
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !skipDirectories[info.Name()] {
						for dir := range directories(event.Name) {
							_ = w.fsWatcher.Add(dir)
						}
					}
					continue
				}
			}

			watchEvent, ok := w.convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error(zerr.Wrap(err, "pattern watcher error"))
		}
	}
}

func (w *Watcher) convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	if filepath.Ext(event.Name) != w.extension {
		return ports.WatchEvent{}, false
	}

	e := ports.WatchEvent{Path: event.Name}
	switch {
	case event.Has(fsnotify.Write):
		e.Operation = ports.OpWrite
	case event.Has(fsnotify.Create):
		e.Operation = ports.OpCreate
	case event.Has(fsnotify.Remove):
		e.Operation = ports.OpRemove
	case event.Has(fsnotify.Rename):
		e.Operation = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return e, true
}
