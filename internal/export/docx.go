package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
)

// Run sizes in half-points, indexed by heading level.
var headingSizes = [...]string{"", "40", "32", "28", "26", "24", "22"}

// DOCX converts an HTML fragment into a Word document.
func DOCX(w io.Writer, fragment []byte) error {
	root, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	doc := docx.New().WithDefaultTheme()
	b := &docxBuilder{doc: doc}
	b.walk(root)

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

type docxBuilder struct {
	doc *docx.Docx
}

func (b *docxBuilder) walk(n *html.Node) {
	if n.Type == html.TextNode {
		if t := collapse(n.Data); t != "" {
			b.doc.AddParagraph().AddText(t)
		}
		return
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			b.doc.AddParagraph().AddText(textOf(n)).Bold().Size(headingSizes[level])
			return
		case "p", "blockquote":
			if t := textOf(n); t != "" {
				b.doc.AddParagraph().AddText(t)
			}
			return
		case "pre":
			for _, line := range strings.Split(strings.Trim(rawTextOf(n), "\n"), "\n") {
				b.doc.AddParagraph().AddText(line)
			}
			return
		case "hr":
			b.doc.AddParagraph()
			return
		case "ul", "ol":
			b.list(n, 0)
			return
		case "table":
			b.table(n)
			return
		case "head", "script", "style":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
}

func (b *docxBuilder) list(n *html.Node, depth int) {
	ordered := n.Data == "ol"
	num := 1
	if v, err := strconv.Atoi(attrOf(n, "start")); err == nil {
		num = v
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		marker := "• "
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}

		var text strings.Builder
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, c)
				continue
			}
			text.WriteString(rawTextOf(c))
		}
		b.doc.AddParagraph().AddText(strings.Repeat("    ", depth) + marker + collapse(text.String()))
		for _, c := range nested {
			b.list(c, depth+1)
		}
	}
}

func (b *docxBuilder) table(n *html.Node) {
	type cell struct {
		text   string
		header bool
	}
	var rows [][]cell
	cols := 0
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []cell
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, cell{text: textOf(c), header: c.Data == "th"})
				}
			}
			if len(row) > cols {
				cols = len(row)
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	if len(rows) == 0 || cols == 0 {
		return
	}

	tbl := b.doc.AddTable(len(rows), cols, 0, nil)
	for i, row := range rows {
		for j, c := range row {
			run := tbl.TableRows[i].TableCells[j].AddParagraph().AddText(c.text)
			if c.header {
				run.Bold()
			}
		}
	}
}

func attrOf(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func rawTextOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "br" {
			buf.WriteByte('\n')
			continue
		}
		buf.WriteString(rawTextOf(c))
	}
	return buf.String()
}

func textOf(n *html.Node) string {
	return collapse(rawTextOf(n))
}
