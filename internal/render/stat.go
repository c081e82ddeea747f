package render

import (
	"fmt"
	"strings"
)

type lineKind int

const (
	kindContext lineKind = iota
	kindHeader
	kindHunk
	kindAdded
	kindRemoved
	kindNote
)

// Summary counts the changes in a diff.
type Summary struct {
	Files   int
	Hunks   int
	Added   int
	Removed int
}

// String renders the summary in the familiar "N files changed" form.
func (s Summary) String() string {
	return fmt.Sprintf("%d %s changed, %d %s(+), %d %s(-)",
		s.Files, plural(s.Files, "file", "files"),
		s.Added, plural(s.Added, "insertion", "insertions"),
		s.Removed, plural(s.Removed, "deletion", "deletions"),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Stat summarises diff. A diff with hunks but no "---"/"+++" headers
// counts as one file.
func Stat(diff string) Summary {
	var summary Summary
	lines := strings.SplitAfter(diff, "\n")
	for i, kind := range classify(diff) {
		switch kind {
		case kindHeader:
			if strings.HasPrefix(lines[i], "+++") {
				summary.Files++
			}
		case kindHunk:
			summary.Hunks++
		case kindAdded:
			summary.Added++
		case kindRemoved:
			summary.Removed++
		}
	}
	if summary.Files == 0 && summary.Hunks > 0 {
		summary.Files = 1
	}
	return summary
}

// classify assigns a kind to every element of strings.SplitAfter(diff, "\n").
// A "---" line only counts as a header when a "+++" line follows it, so
// removed lines that happen to start with "--" stay removals.
func classify(diff string) []lineKind {
	lines := strings.SplitAfter(diff, "\n")
	kinds := make([]lineKind, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "---") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++"):
			kinds[i] = kindHeader
			kinds[i+1] = kindHeader
			i++
		case strings.HasPrefix(line, "@@"):
			kinds[i] = kindHunk
		case strings.HasPrefix(line, "+"):
			kinds[i] = kindAdded
		case strings.HasPrefix(line, "-"):
			kinds[i] = kindRemoved
		case strings.HasPrefix(line, `\`):
			kinds[i] = kindNote
		default:
			kinds[i] = kindContext
		}
	}
	return kinds
}
