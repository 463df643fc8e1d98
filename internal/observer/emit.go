package observer

import (
	"context"
	"time"

	"editwatch/internal/diff"
	"editwatch/internal/event"
	"editwatch/internal/fsutil"
)

// emitLocked builds the observation for one logical change and publishes it.
// Callers guarantee oldContent != newContent; equal content never reaches
// this point.
func (observer *Observer) emitLocked(path string, prevExist bool, oldContent, newContent string) {
	observation := event.Observation{
		Path:       fsutil.RelPath(observer.config.Directory, path),
		PrevExist:  prevExist,
		OldContent: oldContent,
		NewContent: newContent,
		Diff:       diff.Unified(oldContent, newContent),
		Source:     event.SourceUser,
		ObservedAt: time.Now().UTC(),
	}

	observer.registry.IncObservations()
	if observer.bus != nil {
		observer.bus.Publish(observation)
	}
	if observer.sink != nil {
		if err := observer.sink.Append(context.Background(), observation); err != nil {
			observer.logger.Warn("sink append failed", map[string]string{
				"path":  observation.Path,
				"error": err.Error(),
			})
		}
	}
	observer.logger.Debug("observation emitted", map[string]string{
		"path": observation.Path,
	})
}
