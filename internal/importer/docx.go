package importer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXImporter handles .docx files. Heading styles become "#" lines and
// list paragraph styles become list items.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &Document{Title: titleFromFilename(filename)}
	w := &blockWriter{}
	var items []string

	flushList := func() {
		w.block(items...)
		items = nil
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		style := docxStyle(para)
		if kind, ok := docxListMarker(style); ok {
			items = append(items, kind+text)
			continue
		}
		flushList()

		switch level := docxHeadingLevel(style); {
		case strings.EqualFold(style, "Title"):
			if out.Title == titleFromFilename(filename) {
				out.Title = text
			}
			w.block(headingLine(1, text))
		case level > 0:
			w.block(headingLine(level, text))
		default:
			w.block(text)
		}
	}
	flushList()

	out.Text = w.String()
	return out, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel accepts both style ids ("Heading2") and names ("heading 2").
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "heading"))
	if err != nil || n < 1 || n > doctree.MaxHeadingLevel {
		return 0
	}
	return n
}

func docxListMarker(style string) (string, bool) {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch {
	case strings.HasPrefix(s, "listnumber"):
		return "1. ", true
	case strings.HasPrefix(s, "listbullet"), s == "listparagraph":
		return "- ", true
	}
	return "", false
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
