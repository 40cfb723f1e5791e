package parser

import (
	"github.com/dgallion1/docstruct/internal/doctree"
)

// Parser converts text into a block tree.
type Parser struct {
	Conventions Conventions
}

// New returns a parser using the given conventions.
func New(conv Conventions) *Parser {
	return &Parser{Conventions: conv}
}

// Parse builds a block tree with the default conventions.
func Parse(text string) *doctree.Collection {
	return New(DefaultConventions()).Parse(text)
}

// Parse builds the block tree for text. It never fails: malformed or empty
// input yields a smaller or empty tree.
func (p *Parser) Parse(text string) *doctree.Collection {
	b := &builder{
		lines: SplitLines(text),
		conv:  p.Conventions,
	}
	b.cur = cursor{limit: len(b.lines)}

	root := doctree.NewRoot()
	for b.cur.more() {
		b.scope(root, 0, 0, false)
	}
	return root
}

// cursor walks the line sequence. It is shared by every level of the
// recursion so a callee that hands a line back leaves the caller positioned
// on it.
type cursor struct {
	pos   int
	limit int
}

func (c *cursor) more() bool {
	return c.pos < c.limit
}

func (c *cursor) back() {
	if c.pos > 0 {
		c.pos--
	}
}

type builder struct {
	lines []Line
	conv  Conventions
	cur   cursor
}

func (b *builder) next() Line {
	l := b.lines[b.cur.pos]
	b.cur.pos++
	return l
}

// scope consumes lines into dst until input ends or a line belongs to an
// enclosing scope. level is the heading level owning dst (0 at the root and
// directly inside a section), sections counts the enclosing sections, and
// inSection is set when dst is the child scope of a section-open block.
// When dst's own section is closed, the closing line is returned.
func (b *builder) scope(dst *doctree.Collection, level, sections int, inSection bool) *Line {
	for b.cur.more() {
		line := b.next()
		kind, hl := Classify(line.Text, b.conv)

		switch kind {
		case LineHeading:
			if hl <= level {
				b.cur.back()
				return nil
			}
			blk := doctree.NewBlock(doctree.Heading(hl), line.Offset, line.Text)
			dst.Append(blk)
			b.scope(blk.Children, hl, sections, false)

		case LineSectionOpen:
			blk := doctree.NewBlock(doctree.TagOf(doctree.KindSectionOpen), line.Offset, line.Text)
			dst.Append(blk)
			if closing := b.scope(blk.Children, 0, sections+1, true); closing != nil {
				dst.Append(doctree.NewBlock(doctree.TagOf(doctree.KindSectionClose), closing.Offset, closing.Text))
			}

		case LineSectionClose:
			if inSection {
				return &line
			}
			if sections > 0 {
				b.cur.back()
				return nil
			}
			// A close with no open section has no structural effect.
			dst.Append(doctree.NewBlock(doctree.TagOf(doctree.KindSectionClose), line.Offset, line.Text))

		case LineRule:
			if dst.OwnsRule() && !dst.RuleClaimed() {
				b.cur.back()
				return nil
			}
			if !dst.RuleClaimed() {
				dst.ClaimRule()
			}
			dst.Append(doctree.NewBlock(doctree.TagOf(doctree.KindRule), line.Offset, line.Text))

		default:
			dst.Append(doctree.NewBlock(doctree.TagOf(doctree.KindText), line.Offset, line.Text))
		}
	}
	return nil
}
