// Package fsutil provides small filesystem helpers shared by the watcher core.
package fsutil

import (
	"path/filepath"
	"strings"
)

// RelPath returns path relative to root, slash-normalized. When path cannot
// be expressed relative to root the input path is returned slash-normalized.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// WithinRoot reports whether path is root itself or located under root.
func WithinRoot(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// HasSegment reports whether any slash-separated segment of path equals name.
func HasSegment(path, name string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == name {
			return true
		}
	}
	return false
}
