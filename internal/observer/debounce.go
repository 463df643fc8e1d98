package observer

import "time"

// scheduleLocked arms (or re-arms) the debounce task for path. At most one
// task per path is outstanding at any instant: an existing timer is cancelled
// before the replacement is armed.
func (observer *Observer) scheduleLocked(path string) {
	if timer, ok := observer.timers[path]; ok {
		if timer.Stop() {
			observer.tasks.Done()
		}
		observer.registry.IncEventsCoalesced()
	}

	observer.pending[path] = struct{}{}
	observer.tasks.Add(1)
	observer.timers[path] = time.AfterFunc(observer.config.DebounceWindow, func() {
		defer observer.tasks.Done()
		observer.commitDebounced(path)
	})
}

// commitDebounced runs when a debounce window closes. The pending mark is
// the arbiter for the cancellation race: a timer that fired concurrently
// with its own cancellation finds the mark gone and does nothing.
func (observer *Observer) commitDebounced(path string) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()

	if observer.closed {
		return
	}
	if _, ok := observer.pending[path]; !ok {
		return
	}
	delete(observer.pending, path)
	delete(observer.timers, path)

	observer.commitLocked(path)
}

// commitLocked re-reads the file and emits one observation when its content
// differs from the cached baseline. Filters are re-applied defensively: the
// path reached this point through an earlier check, but committing is the
// last chance to drop it.
func (observer *Observer) commitLocked(path string) {
	if observer.policy.ShouldIgnore(path) || !observer.policy.ShouldWatch(path) {
		return
	}
	if isTransientArtifact(path) {
		return
	}

	oldContent, prevExist := observer.contents[path]
	newContent := observer.readContent(path)
	if oldContent == newContent {
		return
	}

	observer.contents[path] = newContent
	observer.emitLocked(path, prevExist, oldContent, newContent)
}
