package fsevent

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

func (source *Source) handleError(err error) {
	if err == nil {
		return
	}
	source.registry.IncWatchErrors()
	source.logger.Warn("notification source error", map[string]string{
		"error": err.Error(),
	})
	source.scheduleRestart()
}

func restartDelay(attempt int) time.Duration {
	return restartBaseDelay * time.Duration(1<<attempt)
}

func (source *Source) scheduleRestart() {
	if source == nil {
		return
	}
	source.restartMutex.Lock()
	defer source.restartMutex.Unlock()

	if source.restartTimer != nil || source.restartAttempts >= maxRestartAttempts {
		return
	}
	delay := restartDelay(source.restartAttempts)
	source.restartAttempts++
	source.restartTimer = time.AfterFunc(delay, source.performRestart)
}

func (source *Source) performRestart() {
	if source == nil {
		return
	}
	restartErr := source.restart()

	source.restartMutex.Lock()
	source.restartTimer = nil
	if restartErr == nil {
		source.restartAttempts = 0
		source.restartMutex.Unlock()
		return
	}
	source.restartMutex.Unlock()

	source.logger.Warn("notification source restart failed", map[string]string{
		"error": restartErr.Error(),
	})
	source.scheduleRestart()
}

// restart swaps in a fresh fsnotify watcher with the same registrations.
func (source *Source) restart() error {
	source.mutex.Lock()
	if source.closed {
		source.mutex.Unlock()
		return nil
	}
	paths := make([]string, 0, len(source.watched))
	for path := range source.watched {
		paths = append(paths, path)
	}
	source.mutex.Unlock()

	replacement, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := replacement.Add(path); err != nil {
			source.logWarn("watch re-add failed", path, err)
		}
	}

	source.mutex.Lock()
	if source.closed {
		source.mutex.Unlock()
		_ = replacement.Close()
		return nil
	}
	previous := source.watcher
	source.watcher = replacement
	source.mutex.Unlock()

	source.startForwarder(replacement)
	if previous != nil {
		_ = previous.Close()
	}
	return nil
}
