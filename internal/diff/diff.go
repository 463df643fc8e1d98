// Package diff produces zero-context line diffs: change bodies listing only
// removed and added lines, with no unchanged context, file headers, or hunk
// offset markers. The hunk representation keeps enough position information
// for an exact patch application; the rendered body is the positional-free
// form carried inside observations.
package diff

import (
	"errors"
	"strings"
)

// Hunk is one contiguous run of line edits. OldStart indexes the first
// deleted line in the old content's line slice; for pure insertions it is the
// index the inserted lines precede.
type Hunk struct {
	OldStart int
	Deleted  []string
	Inserted []string
}

var errHunkMismatch = errors.New("diff: hunk does not apply to old content")

// Unified returns the zero-context change body between old and new.
func Unified(old, new string) string {
	return Render(Compute(old, new))
}

// Compute derives the minimal line edit script between old and new.
func Compute(old, new string) []Hunk {
	oldLines := splitLines(old)
	newLines := splitLines(new)

	// Trim the common prefix and suffix before the quadratic matching step.
	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) && oldLines[prefix] == newLines[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(oldLines)-prefix && suffix < len(newLines)-prefix &&
		oldLines[len(oldLines)-1-suffix] == newLines[len(newLines)-1-suffix] {
		suffix++
	}

	oldMid := oldLines[prefix : len(oldLines)-suffix]
	newMid := newLines[prefix : len(newLines)-suffix]
	return assemble(oldMid, newMid, prefix)
}

// Render writes hunks as removal and addition marker lines. Lines carry their
// original terminators, so a final line without a newline renders without one.
func Render(hunks []Hunk) string {
	builder := strings.Builder{}
	for _, hunk := range hunks {
		for _, line := range hunk.Deleted {
			builder.WriteString("-")
			builder.WriteString(line)
		}
		for _, line := range hunk.Inserted {
			builder.WriteString("+")
			builder.WriteString(line)
		}
	}
	return builder.String()
}

// Apply reproduces the new content from old and the hunks Compute returned.
func Apply(old string, hunks []Hunk) (string, error) {
	oldLines := splitLines(old)
	builder := strings.Builder{}
	cursor := 0

	for _, hunk := range hunks {
		if hunk.OldStart < cursor || hunk.OldStart > len(oldLines) {
			return "", errHunkMismatch
		}
		for _, line := range oldLines[cursor:hunk.OldStart] {
			builder.WriteString(line)
		}
		cursor = hunk.OldStart
		for _, line := range hunk.Deleted {
			if cursor >= len(oldLines) || oldLines[cursor] != line {
				return "", errHunkMismatch
			}
			cursor++
		}
		for _, line := range hunk.Inserted {
			builder.WriteString(line)
		}
	}
	for _, line := range oldLines[cursor:] {
		builder.WriteString(line)
	}
	return builder.String(), nil
}

// assemble runs an LCS backtrack over the trimmed middle sections and groups
// consecutive edits into hunks. offset shifts hunk positions back into the
// untrimmed line space.
func assemble(oldMid, newMid []string, offset int) []Hunk {
	if len(oldMid) == 0 && len(newMid) == 0 {
		return nil
	}
	if len(oldMid) == 0 || len(newMid) == 0 {
		return []Hunk{{
			OldStart: offset,
			Deleted:  append([]string(nil), oldMid...),
			Inserted: append([]string(nil), newMid...),
		}}
	}

	// lengths[i][j] is the LCS length of oldMid[i:] and newMid[j:].
	lengths := make([][]int, len(oldMid)+1)
	for i := range lengths {
		lengths[i] = make([]int, len(newMid)+1)
	}
	for i := len(oldMid) - 1; i >= 0; i-- {
		for j := len(newMid) - 1; j >= 0; j-- {
			if oldMid[i] == newMid[j] {
				lengths[i][j] = lengths[i+1][j+1] + 1
			} else if lengths[i+1][j] >= lengths[i][j+1] {
				lengths[i][j] = lengths[i+1][j]
			} else {
				lengths[i][j] = lengths[i][j+1]
			}
		}
	}

	var hunks []Hunk
	var current *Hunk

	open := func(position int) *Hunk {
		if current == nil {
			hunks = append(hunks, Hunk{OldStart: position + offset})
			current = &hunks[len(hunks)-1]
		}
		return current
	}

	i, j := 0, 0
	for i < len(oldMid) && j < len(newMid) {
		switch {
		case oldMid[i] == newMid[j]:
			current = nil
			i++
			j++
		case lengths[i+1][j] >= lengths[i][j+1]:
			hunk := open(i)
			hunk.Deleted = append(hunk.Deleted, oldMid[i])
			i++
		default:
			hunk := open(i)
			hunk.Inserted = append(hunk.Inserted, newMid[j])
			j++
		}
	}
	if i < len(oldMid) {
		hunk := open(i)
		hunk.Deleted = append(hunk.Deleted, oldMid[i:]...)
	}
	if j < len(newMid) {
		hunk := open(i)
		hunk.Inserted = append(hunk.Inserted, newMid[j:]...)
	}
	return hunks
}

// splitLines splits content into lines keeping terminators, so a rendered
// body reproduces the original bytes exactly.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	var lines []string
	start := 0
	for index := 0; index < len(content); index++ {
		if content[index] == '\n' {
			lines = append(lines, content[start:index+1])
			start = index + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}
