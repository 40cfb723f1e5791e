package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// HTMLImporter handles HTML files. Block elements become structuring lines:
// headings, paragraphs, rules, section markers, indented list items and
// rule-delimited records for tables with a header row.
type HTMLImporter struct {
	SectionTag string
}

func (p *HTMLImporter) Import(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &Document{Title: titleFromFilename(filename)}
	if title := findTitle(doc); title != "" {
		out.Title = title
	}

	tag := p.SectionTag
	if tag == "" {
		tag = "section"
	}
	w := &blockWriter{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := collapseSpace(n.Data); t != "" {
				w.block(t)
			}
			return
		case html.ElementNode:
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			return
		}

		if level := headingLevel(n.Data); level > 0 {
			if t := textContent(n); t != "" {
				w.block(headingLine(level, t))
			}
			return
		}

		switch n.Data {
		case "script", "style", "nav", "footer", "header", "head", "template":
			return
		case "p", "blockquote", "dd", "dt", "figcaption", "caption":
			if t := textContent(n); t != "" {
				w.block(t)
			}
			return
		case "pre":
			if t := strings.Trim(rawText(n), "\n"); t != "" {
				w.block(strings.Split(t, "\n")...)
			}
			return
		case "hr":
			w.block("---")
			return
		case "ul", "ol":
			w.block(listLines(n, 0)...)
			return
		case "table":
			w.block(tableLines(n)...)
			return
		}

		if n.Data == tag {
			w.block("<" + tag + ">")
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			w.block("</" + tag + ">")
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	out.Text = w.String()
	return out, nil
}

// listLines flattens a list into indented "- " / "N. " item lines.
func listLines(list *html.Node, depth int) []string {
	ordered := list.Data == "ol"
	num := 1
	if ordered {
		if v := attr(list, "start"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				num = n
			}
		}
	}

	indent := strings.Repeat("  ", depth)
	var lines []string
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		marker := "- "
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		lines = append(lines, indent+marker+itemText(li))
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				lines = append(lines, listLines(c, depth+1)...)
			}
		}
	}
	return lines
}

// tableLines writes one rule-delimited record per body row, with a heading
// per header cell. Tables without a header row become plain lines.
func tableLines(table *html.Node) []string {
	var rows [][]*html.Node
	hasHeader := false
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []*html.Node
			allTH := true
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, c)
					if c.Data != "th" {
						allTH = false
					}
				}
			}
			if len(cells) > 0 {
				if allTH && len(rows) == 0 {
					hasHeader = true
				}
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(table)

	if !hasHeader {
		var lines []string
		for _, row := range rows {
			var cells []string
			for _, c := range row {
				if t := textContent(c); t != "" {
					cells = append(cells, t)
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " "))
			}
		}
		return lines
	}

	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = textContent(c)
	}
	lines := []string{"---"}
	for _, row := range rows[1:] {
		for i, c := range row {
			t := textContent(c)
			if i < len(header) && header[i] != "" {
				lines = append(lines, headingLine(2, header[i]))
			}
			if t != "" {
				lines = append(lines, t)
			}
		}
		lines = append(lines, "---")
	}
	if len(lines) == 1 {
		return nil
	}
	return lines
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func textContent(n *html.Node) string {
	return collapseSpace(rawText(n))
}

// itemText is the text of a list item without its nested lists.
func itemText(li *html.Node) string {
	var buf strings.Builder
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue
		}
		buf.WriteString(rawText(c))
	}
	return collapseSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
