package parser

import "strings"

// Line is one source line with its absolute position.
type Line struct {
	Text   string // Line text without the terminating newline
	Offset int    // Absolute offset of the first byte
	Number int    // 1-based line number
}

// SplitLines decomposes text into lines. A trailing newline does not
// produce an extra empty line, and empty text yields no lines.
func SplitLines(text string) []Line {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	lines := make([]Line, 0, len(parts))
	offset := 0
	for i, p := range parts {
		lines = append(lines, Line{Text: p, Offset: offset, Number: i + 1})
		offset += len(p) + 1
	}
	return lines
}

// OffsetAt converts an editor cursor (1-based line and column) into an
// absolute offset. Out-of-range positions are clamped to the text.
func OffsetAt(text string, line, column int) int {
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	lines := SplitLines(text)
	if len(lines) == 0 {
		return 0
	}
	if line > len(lines) {
		return len(text)
	}
	l := lines[line-1]
	col := column - 1
	if col > len(l.Text) {
		col = len(l.Text)
	}
	return l.Offset + col
}
