package patch

import (
	"errors"
	"fmt"
	"strings"
)

// Options configure how a diff is applied.
type Options struct {
	// VerifyContext rejects hunks whose context and removal lines do not
	// match the original text at the stated position. Without it the header
	// positions are trusted and the body text is not compared.
	VerifyContext bool
	// IgnoreWhitespace compares lines with all whitespace removed when
	// VerifyContext is set.
	IgnoreWhitespace bool
	// EmptyRangeInsertsAfter reads an explicit zero original count ("-3,0")
	// the way diff(1) writes it: the hunk goes after line OrigStart. Without
	// it every hunk starts at line OrigStart. Zero-context diffs from
	// Generate need this to apply in place.
	EmptyRangeInsertsAfter bool
}

type state struct {
	lines    []string
	output   []string
	cursor   int
	added    bool
	statuses []HunkStatus
	options  Options
}

// Apply applies a unified diff to original and returns the patched text.
func Apply(original, diff string) (string, error) {
	return ApplyWithOptions(original, diff, Options{})
}

// ApplyWithOptions parses diff and applies it to original.
func ApplyWithOptions(original, diff string, opts Options) (string, error) {
	parsed, err := Parse(diff)
	if err != nil {
		return "", err
	}
	return ApplyDiff(original, parsed, opts)
}

// ApplyDiff applies an already parsed diff to original.
func ApplyDiff(original string, diff *Diff, opts Options) (string, error) {
	st := &state{lines: splitLines(original), options: opts}
	if diff != nil {
		for index, hunk := range diff.Hunks {
			number := index + 1
			if err := st.applyHunk(hunk); err != nil {
				return "", st.enhanceHunkError(err, hunk, number, len(diff.Hunks))
			}
			st.statuses = append(st.statuses, HunkStatus{Number: number, Status: StatusApplied})
		}
	}
	st.copyUntil(len(st.lines))
	return strings.Join(st.output, ""), nil
}

// anchor returns the 0-based original index the hunk body starts at.
func anchor(hunk Hunk, emptyRangeAfter bool) int {
	if emptyRangeAfter && hunk.HasOrigCount && hunk.OrigCount == 0 {
		return hunk.OrigStart
	}
	return hunk.OrigStart - 1
}

func (st *state) applyHunk(hunk Hunk) error {
	start := anchor(hunk, st.options.EmptyRangeInsertsAfter)
	if start > len(st.lines) {
		return &Error{
			Code:    CodeContextOutOfRange,
			Message: fmt.Sprintf("hunk starts at line %d but the original has %d lines", hunk.OrigStart, len(st.lines)),
			Line:    hunk.Line,
			Content: hunk.Header,
		}
	}
	st.copyUntil(start)
	st.added = false

	for _, line := range hunk.Lines {
		switch line.Kind {
		case LineBlank:
			continue
		case LineContext, LineRemoval:
			if st.cursor >= len(st.lines) {
				return newError(CodeContextOutOfRange, fmt.Sprintf("%s line past the end of the original text", line.Kind), line.Line, markerFor(line.Kind)+line.Text)
			}
			if st.options.VerifyContext && !st.matches(st.lines[st.cursor], line.Text) {
				return &Error{
					Code:          CodeContextMismatch,
					Message:       fmt.Sprintf("%s line does not match original line %d", line.Kind, st.cursor+1),
					Line:          line.Line,
					Content:       markerFor(line.Kind) + line.Text,
					SuggestedLine: st.locate(hunk, start),
				}
			}
			if line.Kind == LineContext {
				st.output = append(st.output, st.lines[st.cursor])
			}
			st.cursor++
			st.added = false
		case LineAddition:
			eol := line.EOL
			if eol == "" {
				eol = LF
			}
			st.output = append(st.output, line.Text+eol)
			st.added = true
		case LineNoNewline:
			if st.added {
				last := len(st.output) - 1
				st.output[last] = strings.TrimSuffix(st.output[last], LF)
			}
			st.added = false
		}
	}
	return nil
}

// copyUntil copies unchanged original lines from the cursor up to, but not
// including, index. An index behind the cursor copies nothing.
func (st *state) copyUntil(index int) {
	if index > len(st.lines) {
		index = len(st.lines)
	}
	for st.cursor < index {
		st.output = append(st.output, st.lines[st.cursor])
		st.cursor++
	}
}

func (st *state) matches(originalLine, text string) bool {
	have := trimEOL(originalLine)
	if st.options.IgnoreWhitespace {
		return normalizeLine(have) == normalizeLine(text)
	}
	return have == text
}

// enhanceHunkError attaches the per-hunk outcome of the diff to err. total is
// the number of hunks in the diff; those after number are marked skipped.
func (st *state) enhanceHunkError(err error, hunk Hunk, number, total int) *Error {
	var pe *Error
	if !errors.As(err, &pe) {
		pe = &Error{Message: err.Error()}
	}
	pe.Hunk = number
	statuses := append([]HunkStatus{}, st.statuses...)
	statuses = append(statuses, HunkStatus{Number: number, Status: StatusFailed, Code: pe.Code})
	for skipped := number + 1; skipped <= total; skipped++ {
		statuses = append(statuses, HunkStatus{Number: skipped, Status: StatusSkipped})
	}
	pe.HunkStatuses = statuses
	if pe.FailedHunk == nil {
		rawLines := append([]string(nil), hunk.RawPatchLines...)
		pe.FailedHunk = &FailedHunk{Number: number, RawPatchLines: rawLines}
	}
	return pe
}

func markerFor(kind LineKind) string {
	switch kind {
	case LineContext:
		return " "
	case LineRemoval:
		return "-"
	case LineAddition:
		return "+"
	default:
		return ""
	}
}
