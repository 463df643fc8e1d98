package fsutil

import (
	"os"
	"unicode/utf8"
)

// ReadText reads path as UTF-8 text. The second return is false when the file
// cannot be read or does not decode as text; callers treat both the same way.
func ReadText(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}
