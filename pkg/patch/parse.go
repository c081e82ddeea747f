package patch

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind identifies the role of a line inside a hunk body.
type LineKind int

const (
	// LineContext is an unchanged line, prefixed with a space.
	LineContext LineKind = iota
	// LineRemoval is a line dropped from the original, prefixed with "-".
	LineRemoval
	// LineAddition is a line inserted into the result, prefixed with "+".
	LineAddition
	// LineBlank is an empty spacer line some producers put between hunk
	// lines. It carries no information and is skipped.
	LineBlank
	// LineNoNewline is the "\ No newline at end of file" marker.
	LineNoNewline
)

func (k LineKind) String() string {
	switch k {
	case LineContext:
		return "context"
	case LineRemoval:
		return "removal"
	case LineAddition:
		return "addition"
	case LineBlank:
		return "blank"
	case LineNoNewline:
		return "no-newline"
	default:
		return "unknown"
	}
}

// HunkLine is one line of a hunk body.
type HunkLine struct {
	Kind LineKind
	// Text is the line content with the marker and terminator removed.
	Text string
	// EOL is the terminator the diff line itself carried, empty for the last
	// line of an unterminated diff.
	EOL string
	// Line is the 1-based position of the line in the diff text.
	Line int
}

// Hunk captures a single "@@ -a,b +c,d @@" section of a unified diff.
type Hunk struct {
	Header       string
	OrigStart    int
	OrigCount    int
	HasOrigCount bool
	ModStart     int
	ModCount     int
	HasModCount  bool
	Lines        []HunkLine
	// Line is the 1-based position of the header in the diff text.
	Line int
	// RawPatchLines holds the header followed by the body lines as they
	// appeared in the diff, terminators stripped.
	RawPatchLines []string
}

// Diff is the parsed form of a unified diff.
type Diff struct {
	// Headers keeps the leading "---" / "+++" lines. They are informational
	// only and never used to reconstruct text.
	Headers []string
	Hunks   []Hunk
}

var hunkHeaderPattern = regexp.MustCompile(`^@@\s+-(\d+)(?:,(\d+))?\s+\+(\d+)(?:,(\d+))?\s+@@`)

// Parse converts the textual representation of a unified diff into hunks.
//
// Any number of leading "---" / "+++" lines are skipped. After that, every
// line is either a hunk header or part of the body of the preceding hunk.
func Parse(diff string) (*Diff, error) {
	lines := splitLines(diff)
	parsed := &Diff{}

	i := 0
	for ; i < len(lines); i++ {
		text := trimEOL(lines[i])
		if !strings.HasPrefix(text, "---") && !strings.HasPrefix(text, "+++") {
			break
		}
		parsed.Headers = append(parsed.Headers, text)
	}

	current := -1
	for ; i < len(lines); i++ {
		text, eol := cutEOL(lines[i])
		lineNo := i + 1

		if strings.HasPrefix(text, "@@") {
			hunk, err := parseHunkHeader(text, lineNo)
			if err != nil {
				return nil, err
			}
			parsed.Hunks = append(parsed.Hunks, hunk)
			current = len(parsed.Hunks) - 1
			continue
		}

		if current < 0 {
			return nil, newError(CodeUnexpectedContent, "unexpected diff content before the first hunk header", lineNo, text)
		}

		line, err := parseHunkLine(text, eol, lineNo)
		if err != nil {
			err.Hunk = current + 1
			return nil, err
		}
		hunk := &parsed.Hunks[current]
		hunk.Lines = append(hunk.Lines, line)
		hunk.RawPatchLines = append(hunk.RawPatchLines, text)
	}

	return parsed, nil
}

func parseHunkHeader(text string, lineNo int) (Hunk, error) {
	match := hunkHeaderPattern.FindStringSubmatch(text)
	if match == nil {
		return Hunk{}, newError(CodeMalformedHunkHeader, "malformed hunk header", lineNo, text)
	}

	hunk := Hunk{Header: text, Line: lineNo, RawPatchLines: []string{text}}
	var err error
	if hunk.OrigStart, err = strconv.Atoi(match[1]); err != nil {
		return Hunk{}, newError(CodeMalformedHunkHeader, "malformed hunk header", lineNo, text)
	}
	if match[2] != "" {
		if hunk.OrigCount, err = strconv.Atoi(match[2]); err != nil {
			return Hunk{}, newError(CodeMalformedHunkHeader, "malformed hunk header", lineNo, text)
		}
		hunk.HasOrigCount = true
	}
	if hunk.ModStart, err = strconv.Atoi(match[3]); err != nil {
		return Hunk{}, newError(CodeMalformedHunkHeader, "malformed hunk header", lineNo, text)
	}
	if match[4] != "" {
		if hunk.ModCount, err = strconv.Atoi(match[4]); err != nil {
			return Hunk{}, newError(CodeMalformedHunkHeader, "malformed hunk header", lineNo, text)
		}
		hunk.HasModCount = true
	}
	return hunk, nil
}

func parseHunkLine(text, eol string, lineNo int) (HunkLine, *Error) {
	if text == "" {
		return HunkLine{Kind: LineBlank, EOL: eol, Line: lineNo}, nil
	}
	line := HunkLine{Text: text[1:], EOL: eol, Line: lineNo}
	switch text[0] {
	case ' ':
		line.Kind = LineContext
	case '-':
		line.Kind = LineRemoval
	case '+':
		line.Kind = LineAddition
	case '\\':
		// Only the "\ No newline at end of file" form, in any wording.
		if !strings.HasPrefix(text, `\ `) || strings.TrimSpace(text[1:]) == "" {
			return HunkLine{}, newError(CodeUnknownDiffMarker, "unknown diff marker", lineNo, text)
		}
		line.Kind = LineNoNewline
	default:
		return HunkLine{}, newError(CodeUnknownDiffMarker, "unknown diff marker", lineNo, text)
	}
	return line, nil
}
