package patch

import "testing"

func TestNormalizeLineDropsWhitespace(t *testing.T) {
	t.Parallel()

	if got := normalizeLine(" \t hello world \r"); got != "helloworld" {
		t.Fatalf("normalizeLine() = %q", got)
	}
}

func TestFindSubsequence(t *testing.T) {
	t.Parallel()

	haystack := []string{"a", "b", "c", "a", "b"}
	if idx := findSubsequence(haystack, []string{"a", "b"}, 0); idx != 0 {
		t.Fatalf("expected match at 0, got %d", idx)
	}
	if idx := findSubsequence(haystack, []string{"a", "b"}, 1); idx != 3 {
		t.Fatalf("expected match at 3, got %d", idx)
	}
	if idx := findSubsequence(haystack, []string{"x"}, 0); idx != -1 {
		t.Fatalf("expected no match, got %d", idx)
	}
	if idx := findSubsequence(haystack, nil, 0); idx != -1 {
		t.Fatalf("empty needle should not match, got %d", idx)
	}
}

func TestFindByDiffMatchPatchToleratesTypos(t *testing.T) {
	t.Parallel()

	haystack := []string{"package main", "", "func main() {", "\tfmt.Println(\"hello\")", "}"}
	needle := []string{"func main() {", "\tfmt.Printn(\"hello\")"}
	if idx := findByDiffMatchPatch(haystack, needle, 0); idx != 2 {
		t.Fatalf("expected fuzzy match at line index 2, got %d", idx)
	}
}

func TestSplitLinesKeepsTerminators(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"":           nil,
		"a":          {"a"},
		"a\n":        {"a\n"},
		"a\r\nb":     {"a\r\n", "b"},
		"a\n\nb\n":   {"a\n", "\n", "b\n"},
		"lone\rcr\n": {"lone\rcr\n"},
	}
	for input, want := range cases {
		got := splitLines(input)
		if len(got) != len(want) {
			t.Fatalf("splitLines(%q) = %#v, want %#v", input, got, want)
		}
		joined := ""
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("splitLines(%q)[%d] = %q, want %q", input, i, got[i], want[i])
			}
			joined += got[i]
		}
		if joined != input {
			t.Fatalf("joining splitLines(%q) gave %q", input, joined)
		}
	}
}

func TestCutEOL(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, text, eol string }{
		{"x\r\n", "x", CRLF},
		{"x\n", "x", LF},
		{"x", "x", ""},
		{"x\r", "x\r", ""},
	}
	for _, tc := range cases {
		text, eol := cutEOL(tc.in)
		if text != tc.text || eol != tc.eol {
			t.Fatalf("cutEOL(%q) = %q, %q", tc.in, text, eol)
		}
	}
}
