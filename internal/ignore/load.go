package ignore

import (
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the only ignore file consulted, in the watch root.
const IgnoreFileName = ".gitignore"

// LoadIgnoreFile reads the root's ignore file and returns its raw lines.
// A missing or unreadable file yields an empty rule set, never an error.
func LoadIgnoreFile(root string) []string {
	payload, err := os.ReadFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(string(payload), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
