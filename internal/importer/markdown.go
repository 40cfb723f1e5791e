package importer

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownImporter handles Markdown files. Headings the classifier would miss
// (setext "===" underlines, indented ATX headings) are rewritten as plain
// "# Title" lines. Setext "---" underlines are left alone because a dashed
// line is a horizontal rule to the structuring engine.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))

	return &Document{
		Title: titleFromFilename(filename),
		Text:  canonicalHeadings(src),
	}, nil
}

type lineEdit struct {
	first, last int
	text        string
}

func canonicalHeadings(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	lines := strings.Split(string(src), "\n")
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l) + 1
	}
	lineOf := func(offset int) int {
		return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	}

	var edits []lineEdit
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		segs := h.Lines()
		first := lineOf(segs.At(0).Start)
		last := lineOf(segs.At(segs.Len() - 1).Start)

		parts := make([]string, 0, segs.Len())
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			if s := strings.TrimSpace(string(seg.Value(src))); s != "" {
				parts = append(parts, s)
			}
		}
		title := strings.Join(parts, " ")

		lead := strings.TrimLeft(lines[first], " \t")
		switch {
		case strings.HasPrefix(lead, "#"):
			if lead != lines[first] {
				edits = append(edits, lineEdit{first, first, headingLine(h.Level, title)})
			}
		case h.Level == 1 && last+1 < len(lines):
			edits = append(edits, lineEdit{first, last + 1, headingLine(1, title)})
		}
	}

	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		tail := append([]string{e.text}, lines[e.last+1:]...)
		lines = append(lines[:e.first], tail...)
	}
	return strings.Join(lines, "\n")
}
