// Package importer turns source files into the line-oriented text the
// structuring engine consumes.
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docstruct/internal/parser"
)

// ErrUnsupported is returned by ForFile for unknown extensions.
var ErrUnsupported = errors.New("unsupported file extension")

// Document is an imported source file.
type Document struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Importer converts raw document bytes into structuring text.
type Importer interface {
	Import(r io.Reader, filename string) (*Document, error)
}

// Options configure the importers that need them.
type Options struct {
	Conventions       parser.Conventions
	FallbackPdftotext bool
}

func DefaultOptions() Options {
	return Options{Conventions: parser.DefaultConventions(), FallbackPdftotext: true}
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string, opts Options) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".csv":
		return &CSVImporter{Conventions: opts.Conventions}, nil
	case ".html", ".htm":
		return &HTMLImporter{SectionTag: opts.Conventions.SectionTag}, nil
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// blockWriter accumulates output lines, separating blocks with one blank line.
type blockWriter struct {
	sb strings.Builder
}

func (w *blockWriter) block(lines ...string) {
	if len(lines) == 0 {
		return
	}
	if w.sb.Len() > 0 {
		w.sb.WriteByte('\n')
	}
	for _, l := range lines {
		w.sb.WriteString(l)
		w.sb.WriteByte('\n')
	}
}

func (w *blockWriter) String() string {
	return w.sb.String()
}

func headingLine(level int, title string) string {
	return strings.Repeat("#", level) + " " + title
}
