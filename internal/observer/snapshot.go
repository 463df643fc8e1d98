package observer

import (
	"io/fs"
	"path/filepath"

	"editwatch/internal/fsutil"
)

// seed walks the directory tree and records the current text content of
// every watch-eligible file. Ignored subtrees are pruned before descent so
// large metadata or dependency directories are never scanned.
func (observer *Observer) seed() {
	root := observer.config.Directory
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if !observer.config.Recursive {
				return fs.SkipDir
			}
			if observer.policy.ShouldIgnore(path) {
				return fs.SkipDir
			}
			return nil
		}
		if observer.policy.ShouldIgnore(path) || !observer.policy.ShouldWatch(path) {
			return nil
		}
		if content, ok := fsutil.ReadText(path); ok {
			observer.contents[path] = content
		}
		return nil
	})
}
