package parser

import (
	"strings"

	"github.com/dgallion1/docstruct/internal/doctree"
)

// LineKind is the category a line falls into.
type LineKind int

const (
	LineText LineKind = iota
	LineHeading
	LineSectionOpen
	LineSectionClose
	LineRule
)

// Conventions controls the textual markers the classifier recognizes.
type Conventions struct {
	// SectionTag is the element name of the section markers, e.g. "section"
	// for <section ...> and </section>.
	SectionTag string
}

// DefaultConventions returns the standard marker set.
func DefaultConventions() Conventions {
	return Conventions{SectionTag: "section"}
}

func (c Conventions) sectionTag() string {
	if c.SectionTag == "" {
		return "section"
	}
	return strings.ToLower(c.SectionTag)
}

// Classify tests a line against the categories in priority order:
// heading, section-open, section-close, rule, text. For headings the level
// is returned as well.
func Classify(line string, conv Conventions) (LineKind, int) {
	if level := HeadingLevel(line); level > 0 {
		return LineHeading, level
	}
	if IsSectionOpen(line, conv) {
		return LineSectionOpen, 0
	}
	if IsSectionClose(line, conv) {
		return LineSectionClose, 0
	}
	if IsRule(line) {
		return LineRule, 0
	}
	return LineText, 0
}

// HeadingLevel returns the number of leading '#' markers when the line is a
// heading, or 0. The markers must be followed by whitespace or the end of
// the line.
func HeadingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > doctree.MaxHeadingLevel {
		return 0
	}
	if n < len(line) && line[n] != ' ' && line[n] != '\t' && line[n] != '\r' {
		return 0
	}
	return n
}

// IsSectionOpen reports whether the line opens a section, e.g. <section>
// or <section class="record">.
func IsSectionOpen(line string, conv Conventions) bool {
	s := strings.ToLower(strings.TrimSpace(line))
	prefix := "<" + conv.sectionTag()
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	rest := s[len(prefix):]
	return rest == "" || rest[0] == '>' || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '/'
}

// IsSectionClose reports whether the line closes a section.
func IsSectionClose(line string, conv Conventions) bool {
	s := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(s, "</"+conv.sectionTag()+">")
}

// IsRule reports whether the line is a horizontal rule: three or more of the
// same marker ('-', '*' or '_'), optionally separated by spaces, with at
// most three spaces of indentation.
func IsRule(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 {
		return false
	}
	line = line[indent:]
	if line == "" {
		return false
	}
	marker := line[0]
	if marker != '-' && marker != '*' && marker != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}
