package patch

import "strings"

// DetectLineEnding returns the dominant line terminator of text, CRLF or LF.
// CRLF wins only when it strictly outnumbers bare LF; text without any
// terminator reports LF.
func DetectLineEnding(text string) string {
	crlf := strings.Count(text, CRLF)
	// Every CRLF also contains an LF.
	lf := strings.Count(text, LF) - crlf
	if crlf > lf {
		return CRLF
	}
	return LF
}

// Reconcile makes updated follow the formatting conventions of original: its
// dominant line-ending style and whether the text ends with a newline. Line
// content is left alone. An empty original has no conventions to inherit, so
// updated is returned unchanged.
//
// A text without a trailing newline cannot end in an empty line, so when
// original lacks one every trailing terminator of updated is removed.
// Carriage returns directly before a line feed belong to the terminator.
func Reconcile(original, updated string) string {
	if original == "" {
		return updated
	}

	ending := DetectLineEnding(original)
	normalized := toLF(updated)
	originalHasTrailing := strings.HasSuffix(original, ending)
	updatedHasTrailing := strings.HasSuffix(normalized, LF)
	switch {
	case originalHasTrailing && !updatedHasTrailing:
		normalized = strings.TrimRight(normalized, "\r") + LF
	case !originalHasTrailing && updatedHasTrailing:
		normalized = strings.TrimRight(normalized, LF)
	}
	if ending == CRLF {
		normalized = strings.ReplaceAll(normalized, LF, CRLF)
	}
	return normalized
}

// toLF folds every run of carriage returns ending in a line feed into a
// single LF.
func toLF(text string) string {
	for strings.Contains(text, CRLF) {
		text = strings.ReplaceAll(text, CRLF, LF)
	}
	return text
}
