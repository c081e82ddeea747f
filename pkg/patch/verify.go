package patch

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// locate searches the original text for the hunk's old side (its context and
// removal lines) and returns the 1-based line where it starts, or zero when it
// cannot be found. It only feeds diagnostics; the hunk is never moved.
func (st *state) locate(hunk Hunk, start int) int {
	var before []string
	for _, line := range hunk.Lines {
		if line.Kind == LineContext || line.Kind == LineRemoval {
			before = append(before, st.normalize(line.Text))
		}
	}
	if len(before) == 0 {
		return 0
	}
	haystack := make([]string, len(st.lines))
	for i, line := range st.lines {
		haystack[i] = st.normalize(trimEOL(line))
	}

	if idx := findSubsequence(haystack, before, start); idx != -1 {
		return idx + 1
	}
	if idx := findSubsequence(haystack, before, 0); idx != -1 {
		return idx + 1
	}
	if idx := findByDiffMatchPatch(haystack, before, start); idx != -1 {
		return idx + 1
	}
	return 0
}

func (st *state) normalize(line string) string {
	if st.options.IgnoreWhitespace {
		return normalizeLine(line)
	}
	return line
}

func findSubsequence(haystack, needle []string, startIndex int) int {
	if len(needle) == 0 {
		return -1
	}
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex > len(haystack) {
		startIndex = len(haystack)
	}
	for i := startIndex; i <= len(haystack)-len(needle); i++ {
		matched := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}

// findByDiffMatchPatch runs a fuzzy bitap search for the block and converts
// the byte offset of the best match back into a line index. Bitap patterns are
// limited to MatchMaxBits bytes, so longer blocks are searched by their
// leading bytes.
func findByDiffMatchPatch(haystack, needle []string, startIndex int) int {
	text := strings.Join(haystack, "\n")
	pattern := strings.Join(needle, "\n")
	if strings.TrimSpace(text) == "" || strings.TrimSpace(pattern) == "" {
		return -1
	}
	matcher := diffmatchpatch.New()
	if limit := matcher.MatchMaxBits; limit > 0 && len(pattern) > limit {
		pattern = pattern[:limit]
	}

	loc := 0
	for i := 0; i < startIndex && i < len(haystack); i++ {
		loc += len(haystack[i]) + 1
	}

	idx := matcher.MatchMain(text, pattern, loc)
	if idx == -1 {
		return -1
	}
	return strings.Count(text[:idx], "\n")
}

func normalizeLine(line string) string {
	if line == "" {
		return ""
	}
	var builder strings.Builder
	builder.Grow(len(line))
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
