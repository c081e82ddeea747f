package patch

import (
	"errors"
	"reflect"
	"testing"
)

func TestAnchorForZeroLengthRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		hunk       Hunk
		afterEmpty bool
		want       int
	}{
		{hunk: Hunk{OrigStart: 3, OrigCount: 2, HasOrigCount: true}, want: 2},
		{hunk: Hunk{OrigStart: 3}, want: 2},
		{hunk: Hunk{OrigStart: 3, OrigCount: 0, HasOrigCount: true}, want: 2},
		{hunk: Hunk{OrigStart: 0, OrigCount: 0, HasOrigCount: true}, want: -1},
		{hunk: Hunk{OrigStart: 0}, want: -1},
		{hunk: Hunk{OrigStart: 3, OrigCount: 2, HasOrigCount: true}, afterEmpty: true, want: 2},
		{hunk: Hunk{OrigStart: 3}, afterEmpty: true, want: 2},
		{hunk: Hunk{OrigStart: 3, OrigCount: 0, HasOrigCount: true}, afterEmpty: true, want: 3},
		{hunk: Hunk{OrigStart: 0, OrigCount: 0, HasOrigCount: true}, afterEmpty: true, want: 0},
	}
	for _, tc := range cases {
		if got := anchor(tc.hunk, tc.afterEmpty); got != tc.want {
			t.Fatalf("anchor(%+v, %t) = %d, want %d", tc.hunk, tc.afterEmpty, got, tc.want)
		}
	}
}

func TestCopyUntilNeverMovesBackwards(t *testing.T) {
	t.Parallel()

	st := &state{lines: []string{"a\n", "b\n", "c\n"}}
	st.copyUntil(2)
	st.copyUntil(1)
	if st.cursor != 2 || len(st.output) != 2 {
		t.Fatalf("unexpected state: cursor=%d output=%#v", st.cursor, st.output)
	}
	st.copyUntil(10)
	if st.cursor != 3 || len(st.output) != 3 {
		t.Fatalf("copyUntil should stop at the end: cursor=%d output=%#v", st.cursor, st.output)
	}
}

func TestApplyHunkNoNewlineMarkerOnlyAffectsAdditions(t *testing.T) {
	t.Parallel()

	st := &state{lines: []string{"a\n", "b"}}
	hunk := Hunk{
		OrigStart: 1, OrigCount: 2, HasOrigCount: true,
		Lines: []HunkLine{
			{Kind: LineContext, Text: "a", EOL: LF},
			{Kind: LineContext, Text: "b", EOL: LF},
			{Kind: LineNoNewline, Text: " No newline at end of file", EOL: LF},
			{Kind: LineAddition, Text: "c", EOL: LF},
			{Kind: LineNoNewline, Text: " No newline at end of file", EOL: LF},
		},
	}
	if err := st.applyHunk(hunk); err != nil {
		t.Fatalf("applyHunk returned error: %v", err)
	}
	want := []string{"a\n", "b", "c"}
	if len(st.output) != len(want) {
		t.Fatalf("unexpected output: %#v", st.output)
	}
	for i := range want {
		if st.output[i] != want[i] {
			t.Fatalf("output[%d] = %q, want %q", i, st.output[i], want[i])
		}
	}
}

func TestEnhanceHunkErrorRecordsStatuses(t *testing.T) {
	t.Parallel()

	st := &state{statuses: []HunkStatus{{Number: 1, Status: StatusApplied}}}
	hunk := Hunk{Header: "@@ -9 +9 @@", RawPatchLines: []string{"@@ -9 +9 @@", " gone"}}

	pe := st.enhanceHunkError(newError(CodeContextOutOfRange, "context out of range", 4, " gone"), hunk, 2, 4)
	if pe.Hunk != 2 {
		t.Fatalf("unexpected hunk number: %d", pe.Hunk)
	}
	want := []HunkStatus{
		{Number: 1, Status: StatusApplied},
		{Number: 2, Status: StatusFailed, Code: CodeContextOutOfRange},
		{Number: 3, Status: StatusSkipped},
		{Number: 4, Status: StatusSkipped},
	}
	if !reflect.DeepEqual(pe.HunkStatuses, want) {
		t.Fatalf("unexpected statuses: %#v", pe.HunkStatuses)
	}
	if pe.FailedHunk == nil || len(pe.FailedHunk.RawPatchLines) != 2 {
		t.Fatalf("expected failed hunk lines: %#v", pe.FailedHunk)
	}

	plain := st.enhanceHunkError(errors.New("boom"), hunk, 3, 3)
	if plain.Message != "boom" || plain.Code != "" {
		t.Fatalf("unexpected wrapping of plain error: %#v", plain)
	}
}
