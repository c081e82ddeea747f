package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorCode classifies why a diff could not be applied.
type ErrorCode string

const (
	// CodeUnexpectedContent marks a line where a hunk header was expected.
	CodeUnexpectedContent ErrorCode = "UNEXPECTED_CONTENT"
	// CodeMalformedHunkHeader marks an "@@" line that does not follow the
	// "@@ -a[,b] +c[,d] @@" grammar.
	CodeMalformedHunkHeader ErrorCode = "MALFORMED_HUNK_HEADER"
	// CodeContextOutOfRange marks a hunk that needs lines past the end of the
	// original text.
	CodeContextOutOfRange ErrorCode = "CONTEXT_OUT_OF_RANGE"
	// CodeUnknownDiffMarker marks a hunk body line with an unrecognised prefix.
	CodeUnknownDiffMarker ErrorCode = "UNKNOWN_DIFF_MARKER"
	// CodeContextMismatch is only reported when Options.VerifyContext is set.
	CodeContextMismatch ErrorCode = "CONTEXT_MISMATCH"
)

// Sentinels usable with errors.Is against any *Error carrying the same code.
var (
	ErrUnexpectedContent   = &Error{Code: CodeUnexpectedContent, Message: "unexpected content"}
	ErrMalformedHunkHeader = &Error{Code: CodeMalformedHunkHeader, Message: "malformed hunk header"}
	ErrContextOutOfRange   = &Error{Code: CodeContextOutOfRange, Message: "context out of range"}
	ErrUnknownDiffMarker   = &Error{Code: CodeUnknownDiffMarker, Message: "unknown diff marker"}
	ErrContextMismatch     = &Error{Code: CodeContextMismatch, Message: "context mismatch"}
)

// Hunk statuses reported in Error.HunkStatuses.
const (
	StatusApplied = "applied"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// HunkStatus tracks how a hunk was applied when processing a diff.
type HunkStatus struct {
	Number int    `json:"number"`
	Status string `json:"status"`

	// Code is set on the failed hunk.
	Code ErrorCode `json:"code,omitempty"`
}

// FailedHunk stores the raw lines of the hunk that could not be applied.
type FailedHunk struct {
	Number        int      `json:"number"`
	RawPatchLines []string `json:"rawPatchLines"`
}

// Error represents a structured failure while parsing or applying a diff. It
// satisfies the error interface so it can be returned directly from Apply.
type Error struct {
	Code    ErrorCode
	Message string
	// Line is the 1-based line of the diff text the failure points at, zero
	// when the failure is not tied to a single diff line.
	Line int
	// Content is the offending diff line without its terminator.
	Content string
	// Hunk is the 1-based number of the hunk being applied, zero while no
	// hunk header has been read yet.
	Hunk         int
	HunkStatuses []HunkStatus
	FailedHunk   *FailedHunk
	// SuggestedLine is the 1-based original line where the hunk's old text
	// was found instead, zero when unknown. Only set for CONTEXT_MISMATCH.
	SuggestedLine int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	message := e.Message
	if message == "" {
		message = "patch error"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s at diff line %d: %q", message, e.Line, e.Content)
	}
	return message
}

// Is reports whether target is an *Error with the same code, which lets the
// package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if e == nil || !ok || other == nil {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

func newError(code ErrorCode, message string, line int, content string) *Error {
	return &Error{Code: code, Message: message, Line: line, Content: content}
}

// describeHunkStatuses summarises which hunks made it in, which one stopped
// the diff and why, and which were never tried.
func describeHunkStatuses(statuses []HunkStatus) string {
	var applied, skipped []string
	var failed string
	for _, status := range statuses {
		number := strconv.Itoa(status.Number)
		switch status.Status {
		case StatusApplied:
			applied = append(applied, number)
		case StatusSkipped:
			skipped = append(skipped, number)
		default:
			if failed != "" {
				continue
			}
			failed = "Hunk " + number + " failed"
			if reason := failureReason(status.Code); reason != "" {
				failed += ": " + reason
			}
			failed += "."
		}
	}

	var parts []string
	if len(applied) > 0 {
		parts = append(parts, fmt.Sprintf("Applied hunks: %s.", strings.Join(applied, ", ")))
	}
	if failed != "" {
		parts = append(parts, failed)
	}
	if len(skipped) > 0 {
		parts = append(parts, fmt.Sprintf("Not attempted: %s.", strings.Join(skipped, ", ")))
	}
	return strings.Join(parts, "\n")
}

func failureReason(code ErrorCode) string {
	switch code {
	case CodeContextOutOfRange:
		return "it reaches past the end of the original text"
	case CodeContextMismatch:
		return "its context does not match the original text"
	case CodeUnknownDiffMarker:
		return "a body line starts with an unknown marker"
	default:
		return ""
	}
}

// FormatError renders Error values into a human readable message suitable for
// surfacing to end users or feeding back to the model that produced the diff.
func FormatError(err *Error) string {
	if err == nil {
		return "Unknown error occurred."
	}
	message := err.Error()
	if err.Message == "" && err.Code == "" {
		message = "Unknown error occurred."
	}
	parts := []string{message}
	if summary := describeHunkStatuses(err.HunkStatuses); summary != "" {
		parts = append(parts, "", summary)
	}
	if err.FailedHunk != nil && len(err.FailedHunk.RawPatchLines) > 0 {
		parts = append(parts, "", "Offending hunk:")
		parts = append(parts, strings.Join(err.FailedHunk.RawPatchLines, "\n"))
	}
	if err.SuggestedLine > 0 {
		parts = append(parts, "", fmt.Sprintf("The hunk's context appears at original line %d; regenerate the diff with that start line.", err.SuggestedLine))
	}
	return strings.Join(parts, "\n")
}
