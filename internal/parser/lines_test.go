package parser

import "testing"

func TestSplitLines(t *testing.T) {
	lines := SplitLines("ab\n\ncd\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := []Line{
		{Text: "ab", Offset: 0, Number: 1},
		{Text: "", Offset: 3, Number: 2},
		{Text: "cd", Offset: 4, Number: 3},
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line[%d]: expected %+v, got %+v", i, w, lines[i])
		}
	}
}

func TestSplitLines_Empty(t *testing.T) {
	if got := SplitLines(""); len(got) != 0 {
		t.Errorf("expected no lines, got %d", len(got))
	}
	if got := SplitLines("\n"); len(got) != 1 || got[0].Text != "" {
		t.Errorf("expected one empty line, got %+v", got)
	}
}

func TestOffsetAt(t *testing.T) {
	text := "# A\nbody\n## B\n"
	tests := []struct {
		line, col int
		want      int
	}{
		{1, 1, 0},
		{2, 1, 4},
		{2, 3, 6},
		{2, 99, 8},
		{3, 4, 12},
		{0, 0, 0},
		{10, 1, len(text)},
	}
	for _, tt := range tests {
		if got := OffsetAt(text, tt.line, tt.col); got != tt.want {
			t.Errorf("OffsetAt(%d, %d): expected %d, got %d", tt.line, tt.col, tt.want, got)
		}
	}
}
