package observer

import (
	"path/filepath"
	"strings"
)

// isTransientArtifact reports editor swap, backup, and probe files that must
// never produce observations. The 4913 prefix is the write-probe file some
// editors create to test directory permissions.
func isTransientArtifact(path string) bool {
	if strings.HasSuffix(path, ".swp") || strings.HasSuffix(path, ".swo") || strings.HasSuffix(path, "~") {
		return true
	}
	return strings.HasPrefix(filepath.Base(path), "4913")
}

// HandleCreated processes a raw create notification.
func (observer *Observer) HandleCreated(path string, isDir bool) {
	if observer == nil || isDir || isTransientArtifact(path) {
		return
	}
	if observer.policy.ShouldIgnore(path) || !observer.policy.ShouldWatch(path) {
		return
	}

	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	if observer.closed {
		return
	}

	if observer.correlateRenameLocked(path) {
		return
	}

	if observer.config.Synchronous {
		observer.commitLocked(path)
		return
	}
	observer.scheduleLocked(path)
}

// HandleModified processes a raw modify notification.
func (observer *Observer) HandleModified(path string, isDir bool) {
	if observer == nil || isDir || isTransientArtifact(path) {
		return
	}
	if observer.policy.ShouldIgnore(path) || !observer.policy.ShouldWatch(path) {
		return
	}

	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	if observer.closed {
		return
	}

	if observer.config.Synchronous {
		observer.commitLocked(path)
		return
	}
	observer.scheduleLocked(path)
}

// HandleDeleted processes a raw delete notification.
func (observer *Observer) HandleDeleted(path string, isDir bool) {
	if observer == nil || isDir || isTransientArtifact(path) {
		return
	}

	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	if observer.closed {
		return
	}

	// A pending coalesced change for a now-deleted file is moot.
	observer.cancelPendingLocked(path)

	if observer.policy.ShouldIgnore(path) || !observer.policy.ShouldWatch(path) {
		return
	}

	oldContent := observer.contents[path]
	delete(observer.contents, path)

	if observer.config.Synchronous {
		observer.emitDeletionLocked(path, oldContent)
		return
	}
	observer.recordDeleteLocked(path, oldContent)
}

// HandleMoved processes an explicit move notification: an atomic delete of
// src plus a create of dest carrying src's former content. Both sides skip
// the debounce and rename heuristics.
func (observer *Observer) HandleMoved(src, dest string, isDir bool) {
	if observer == nil || isDir {
		return
	}
	if isTransientArtifact(src) || isTransientArtifact(dest) {
		return
	}

	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	if observer.closed {
		return
	}

	observer.cancelPendingLocked(src)

	if observer.policy.ShouldIgnore(src) || !observer.policy.ShouldWatch(src) {
		return
	}

	oldContent := observer.contents[src]
	delete(observer.contents, src)
	observer.emitDeletionLocked(src, oldContent)

	if observer.policy.ShouldIgnore(dest) || !observer.policy.ShouldWatch(dest) {
		return
	}
	observer.contents[dest] = oldContent
	if oldContent != "" {
		observer.emitLocked(dest, false, "", oldContent)
	}
}

// cancelPendingLocked stops the debounce task for path, if any. A timer that
// already started firing cannot be stopped; its commit sees the cleared
// pending mark and becomes a no-op.
func (observer *Observer) cancelPendingLocked(path string) {
	if timer, ok := observer.timers[path]; ok {
		if timer.Stop() {
			observer.tasks.Done()
		}
		delete(observer.timers, path)
		delete(observer.pending, path)
	}
}

// emitDeletionLocked emits a deletion observation unless there was nothing
// tracked to delete.
func (observer *Observer) emitDeletionLocked(path, oldContent string) {
	if oldContent == "" {
		return
	}
	observer.emitLocked(path, true, oldContent, "")
}
