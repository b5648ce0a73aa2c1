package libdiff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiffLines(t *testing.T) {
	got := DiffLines("a\nb\nc\n", "a\nB\nc\nd\n")
	want := []Line{
		{Op: Equal, Text: "a"},
		{Op: Delete, Text: "b"},
		{Op: Insert, Text: "B"},
		{Op: Equal, Text: "c"},
		{Op: Insert, Text: "d"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestHunks(t *testing.T) {
	from := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\n"
	to := "a\nB\nc\nd\ne\nf\ng\nh\ni\nJ\n"
	want := " a\n-b\n+B\n c\n d\n e\n@@\n g\n h\n i\n-j\n+J\n"
	if diff := cmp.Diff(want, Hunks(DiffLines(from, to), 3)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got := Hunks(DiffLines(from, from), 3); got != "" {
		t.Errorf("expected no hunks, got %q", got)
	}
}
