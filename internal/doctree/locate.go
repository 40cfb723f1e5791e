package doctree

import "strings"

// Locate returns the chain of blocks containing offset, outermost first.
// A block's span covers its own line (newline included) and all of its
// descendants. Returns nil when no block contains the offset.
func Locate(root *Collection, offset int) []*Block {
	var path []*Block
	c := root
	for c != nil {
		var hit *Block
		for _, b := range c.Blocks {
			if offset >= b.Start && offset <= spanEnd(b) {
				hit = b
			}
		}
		if hit == nil {
			break
		}
		path = append(path, hit)
		if offset <= hit.Start+hit.Len() {
			break
		}
		c = hit.Children
	}
	return path
}

func spanEnd(b *Block) int {
	end := b.Start + b.Len()
	if n := len(b.Children.Blocks); n > 0 {
		if e := spanEnd(b.Children.Blocks[n-1]); e > end {
			end = e
		}
	}
	return end
}

// Breadcrumb returns the heading titles along a Locate path.
func Breadcrumb(path []*Block) []string {
	var out []string
	for _, b := range path {
		if b.Tag.Kind == KindHeading {
			out = append(out, HeadingTitle(b.Value))
		}
	}
	return out
}

// HeadingTitle strips the leading markers and surrounding space from a
// heading line.
func HeadingTitle(value string) string {
	s := strings.TrimLeft(value, " \t")
	s = strings.TrimLeft(s, "#")
	return strings.TrimSpace(s)
}
