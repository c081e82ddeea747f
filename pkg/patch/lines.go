package patch

import "strings"

const (
	// LF is the Unix line terminator.
	LF = "\n"
	// CRLF is the Windows line terminator.
	CRLF = "\r\n"
)

// splitLines splits text into lines that keep their terminators, so joining
// the result reproduces the input byte for byte. Only "\n" ends a line; a lone
// "\r" is treated as content.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, LF)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// cutEOL separates a line from its terminator.
func cutEOL(line string) (string, string) {
	if strings.HasSuffix(line, CRLF) {
		return line[:len(line)-len(CRLF)], CRLF
	}
	if strings.HasSuffix(line, LF) {
		return line[:len(line)-len(LF)], LF
	}
	return line, ""
}

func trimEOL(line string) string {
	text, _ := cutEOL(line)
	return text
}
