// Package fsevent adapts fsnotify into the raw notification source consumed
// by the observer core. It registers directory watches (recursively when
// asked), forwards events onto a single delivery goroutine, and restarts the
// underlying watcher with bounded backoff when it reports errors.
package fsevent

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"editwatch/internal/logging"
	"editwatch/internal/metrics"
)

const (
	maxRestartAttempts = 3
	restartBaseDelay   = 200 * time.Millisecond
)

// New creates a Source. Start must be called before events are delivered.
func New(options Options) (*Source, error) {
	if options.Root == "" {
		return nil, errors.New("fsevent: root is required")
	}
	if options.Handler == nil {
		return nil, errors.New("fsevent: handler is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = logging.NewLoggerWithOutput(nil, logging.LevelInfo, nil)
	}
	registry := options.Registry
	if registry == nil {
		registry = metrics.Default
	}

	return &Source{
		watcher:   watcher,
		handler:   options.Handler,
		skipDir:   options.SkipDir,
		events:    make(chan fsnotify.Event, 16),
		errors:    make(chan error, 4),
		done:      make(chan struct{}),
		logger:    logger.With(map[string]string{"category": "fsevent"}),
		registry:  registry,
		root:      options.Root,
		recursive: options.Recursive,
		watched:   make(map[string]struct{}),
	}, nil
}

// Start registers the watch tree and begins delivering events to the handler.
func (source *Source) Start() error {
	if source == nil {
		return errors.New("fsevent: source is nil")
	}

	if err := source.addDirWatch(source.root); err != nil {
		return err
	}
	if source.recursive {
		if err := source.addTree(source.root); err != nil {
			return err
		}
	}

	source.startForwarder(source.watcher)
	source.loops.Add(1)
	go source.run()
	return nil
}

// Close stops delivery. It returns only after the delivery goroutine has
// exited, so no handler invocation can follow it.
func (source *Source) Close() error {
	if source == nil {
		return nil
	}

	source.mutex.Lock()
	if source.closed {
		source.mutex.Unlock()
		return nil
	}
	source.closed = true
	watcher := source.watcher
	source.mutex.Unlock()

	source.restartMutex.Lock()
	if source.restartTimer != nil {
		source.restartTimer.Stop()
		source.restartTimer = nil
	}
	source.restartMutex.Unlock()

	close(source.done)
	source.loops.Wait()

	if watcher == nil {
		return nil
	}
	return watcher.Close()
}

func (source *Source) run() {
	defer source.loops.Done()
	for {
		select {
		case event := <-source.events:
			source.handleEvent(event)
		case err := <-source.errors:
			source.handleError(err)
		case <-source.done:
			return
		}
	}
}

func (source *Source) startForwarder(watcher *fsnotify.Watcher) {
	if watcher == nil {
		return
	}
	source.loops.Add(1)
	go func() {
		defer source.loops.Done()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				select {
				case source.events <- event:
				case <-source.done:
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case source.errors <- err:
				case <-source.done:
					return
				}
			case <-source.done:
				return
			}
		}
	}()
}

func (source *Source) handleEvent(raw fsnotify.Event) {
	source.mutex.Lock()
	if source.closed {
		source.mutex.Unlock()
		return
	}
	_, wasDir := source.watched[raw.Name]
	source.mutex.Unlock()

	event := Event{
		Path:      raw.Name,
		Timestamp: time.Now().UTC(),
	}

	switch {
	case raw.Op.Has(fsnotify.Create):
		event.Op = OpCreate
		if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
			event.IsDir = true
			source.registerNewDir(raw.Name)
		}
	case raw.Op.Has(fsnotify.Write):
		event.Op = OpWrite
		event.IsDir = wasDir
	case raw.Op.Has(fsnotify.Remove):
		event.Op = OpRemove
		event.IsDir = wasDir
		source.dropDirWatch(raw.Name)
	case raw.Op.Has(fsnotify.Rename):
		event.Op = OpRename
		event.IsDir = wasDir
		source.dropDirWatch(raw.Name)
	case raw.Op.Has(fsnotify.Chmod):
		event.Op = OpChmod
		event.IsDir = wasDir
	default:
		return
	}

	source.registry.IncRawEvents()
	source.handler(event)
}

// registerNewDir watches a directory created after Start so events inside it
// are not missed in recursive mode.
func (source *Source) registerNewDir(path string) {
	if !source.recursive {
		return
	}
	if source.skipDir != nil && source.skipDir(path) {
		return
	}
	if err := source.addDirWatch(path); err != nil {
		source.logWarn("watch add failed", path, err)
		return
	}
	if err := source.addTree(path); err != nil {
		source.logWarn("watch tree failed", path, err)
	}
}

func (source *Source) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() || path == root {
			return nil
		}
		if source.skipDir != nil && source.skipDir(path) {
			return fs.SkipDir
		}
		if err := source.addDirWatch(path); err != nil {
			source.logWarn("watch add failed", path, err)
		}
		return nil
	})
}

func (source *Source) addDirWatch(path string) error {
	source.mutex.Lock()
	if source.closed {
		source.mutex.Unlock()
		return errors.New("fsevent: source is closed")
	}
	if _, ok := source.watched[path]; ok {
		source.mutex.Unlock()
		return nil
	}
	source.watched[path] = struct{}{}
	watcher := source.watcher
	source.mutex.Unlock()

	if watcher == nil {
		return nil
	}
	if err := watcher.Add(path); err != nil {
		source.mutex.Lock()
		delete(source.watched, path)
		source.mutex.Unlock()
		return err
	}
	return nil
}

func (source *Source) dropDirWatch(path string) {
	source.mutex.Lock()
	_, ok := source.watched[path]
	if ok {
		delete(source.watched, path)
	}
	source.mutex.Unlock()
	// fsnotify removes watches for deleted paths on its own; nothing else to do.
}

func (source *Source) logWarn(message, path string, err error) {
	if source == nil || source.logger == nil {
		return
	}
	source.logger.Warn(message, map[string]string{
		"path":  path,
		"error": err.Error(),
	})
}
