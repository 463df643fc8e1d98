package observer

import "time"

// correlateRenameLocked checks whether a create is the second half of an
// atomic rename. It reads the new file's content and scans recent deletions
// inside the rename window for one with equal content. When several match,
// the newest deletion wins; ties on identical content are otherwise
// indistinguishable, and picking the nearest timestamp keeps the choice
// deterministic. A consumed entry produces no observation for either path.
func (observer *Observer) correlateRenameLocked(path string) bool {
	if len(observer.recentDeletes) == 0 {
		return false
	}

	content := observer.readContent(path)
	now := time.Now()

	matched := ""
	var matchedAt time.Time
	for oldPath, entry := range observer.recentDeletes {
		if now.Sub(entry.deletedAt) > observer.config.RenameWindow {
			continue
		}
		if entry.content != content {
			continue
		}
		if matched == "" || entry.deletedAt.After(matchedAt) {
			matched = oldPath
			matchedAt = entry.deletedAt
		}
	}
	if matched == "" {
		return false
	}

	delete(observer.recentDeletes, matched)
	if timer, ok := observer.deleteTimers[matched]; ok {
		if timer.Stop() {
			observer.tasks.Done()
		}
		delete(observer.deleteTimers, matched)
	}
	observer.contents[path] = content
	observer.registry.IncRenamesCorrelated()
	observer.logger.Debug("rename correlated", map[string]string{
		"from": matched,
		"to":   path,
	})
	return true
}

// recordDeleteLocked stores the deleted file's content and arms the
// finalization check. If no content-matching create consumes the entry
// before the rename window elapses, the deletion becomes real.
func (observer *Observer) recordDeleteLocked(path, oldContent string) {
	observer.recentDeletes[path] = recentDelete{
		content:   oldContent,
		deletedAt: time.Now(),
	}
	observer.tasks.Add(1)
	observer.deleteTimers[path] = time.AfterFunc(observer.config.RenameWindow, func() {
		defer observer.tasks.Done()
		observer.finalizeDelete(path)
	})
}

// finalizeDelete fires when a rename window expires. An entry still present
// was never claimed by a matching create, so the deletion is emitted.
func (observer *Observer) finalizeDelete(path string) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()

	if observer.closed {
		return
	}
	entry, ok := observer.recentDeletes[path]
	if !ok {
		return
	}
	delete(observer.recentDeletes, path)
	delete(observer.deleteTimers, path)

	observer.registry.IncDeletionsFinalized()
	observer.emitDeletionLocked(path, entry.content)
}
