// Package export renders structured Markdown into downstream formats.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Format names an output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
)

// ParseFormat accepts the format names used by the API and CLI. An empty
// name selects Markdown.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML, FormatDOCX:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/markdown; charset=utf-8"
}

// Extension is the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatDOCX:
		return ".docx"
	}
	return ".md"
}

// Raw HTML passes through so composed list markup survives rendering.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// HTML renders Markdown to an HTML fragment.
func HTML(src string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Page wraps an HTML fragment in a standalone document.
func Page(title string, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</title>\n</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}

// Write renders Markdown in the given format.
func Write(w io.Writer, f Format, title, src string) error {
	switch f {
	case FormatMarkdown:
		_, err := io.WriteString(w, src)
		return err
	case FormatHTML:
		body, err := HTML(src)
		if err != nil {
			return err
		}
		_, err = w.Write(Page(title, body))
		return err
	case FormatDOCX:
		body, err := HTML(src)
		if err != nil {
			return err
		}
		return DOCX(w, body)
	}
	return fmt.Errorf("unknown format %q", f)
}
