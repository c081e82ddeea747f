package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultContext is the number of unchanged lines kept around each change.
	DefaultContext = 3
	// NoNewlineMarker follows a diff line whose source line had no terminator.
	NoNewlineMarker = `\ No newline at end of file`

	defaultFromLabel = "original"
	defaultToLabel   = "modified"
)

// GenerateOptions control the shape of a generated diff.
type GenerateOptions struct {
	// Context is the number of unchanged lines around each change. Negative
	// values select DefaultContext.
	Context   int
	FromLabel string
	ToLabel   string
}

// Generate returns a unified diff turning original into modified, labelled
// "original" and "modified" and using DefaultContext lines of context.
func Generate(original, modified string) string {
	return GenerateWithOptions(original, modified, GenerateOptions{Context: DefaultContext})
}

// GenerateWithOptions returns a unified diff turning original into modified.
//
// The "---" / "+++" header pair is always written, even when there are no
// hunks. Lines keep their own terminators; a line without one is followed by
// NoNewlineMarker, so applying the result reproduces modified exactly.
func GenerateWithOptions(original, modified string, opts GenerateOptions) string {
	context := opts.Context
	if context < 0 {
		context = DefaultContext
	}
	from := opts.FromLabel
	if from == "" {
		from = defaultFromLabel
	}
	to := opts.ToLabel
	if to == "" {
		to = defaultToLabel
	}

	a := splitLines(original)
	b := splitLines(modified)

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n+++ %s\n", from, to)

	matcher := difflib.NewMatcher(a, b)
	for _, group := range matcher.GetGroupedOpCodes(context) {
		first, last := group[0], group[len(group)-1]
		fmt.Fprintf(&out, "@@ -%s +%s @@\n", formatRange(first.I1, last.I2), formatRange(first.J1, last.J2))
		for _, code := range group {
			if code.Tag == 'e' {
				writeHunkLines(&out, ' ', a[code.I1:code.I2])
				continue
			}
			if code.Tag == 'r' || code.Tag == 'd' {
				writeHunkLines(&out, '-', a[code.I1:code.I2])
			}
			if code.Tag == 'r' || code.Tag == 'i' {
				writeHunkLines(&out, '+', b[code.J1:code.J2])
			}
		}
	}
	return out.String()
}

func writeHunkLines(out *strings.Builder, marker byte, lines []string) {
	for _, line := range lines {
		out.WriteByte(marker)
		out.WriteString(line)
		if !strings.HasSuffix(line, LF) {
			out.WriteString(LF)
			out.WriteString(NoNewlineMarker)
			out.WriteString(LF)
		}
	}
}

// formatRange renders a 0-based half-open line range the way unified diff
// headers expect: "start" for a single line, "start,count" otherwise, and
// the line before the range for an empty one.
func formatRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return strconv.Itoa(beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}
