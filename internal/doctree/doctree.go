package doctree

import "fmt"

// Kind identifies what a block represents.
type Kind int

const (
	KindText Kind = iota
	KindHeading
	KindRule
	KindSectionOpen
	KindSectionClose
	KindTableHeader
	KindTableRow
)

var kindNames = [...]string{
	KindText:         "text",
	KindHeading:      "heading",
	KindRule:         "rule",
	KindSectionOpen:  "section_open",
	KindSectionClose: "section_close",
	KindTableHeader:  "table_header",
	KindTableRow:     "table_row",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MaxHeadingLevel is the deepest heading the classifier recognizes.
const MaxHeadingLevel = 9

// Tag is the block variant. Only headings carry a level.
type Tag struct {
	Kind  Kind
	level int
}

// Heading returns the tag for a heading of the given level (1..9).
func Heading(level int) Tag {
	if level < 1 {
		level = 1
	}
	if level > MaxHeadingLevel {
		level = MaxHeadingLevel
	}
	return Tag{Kind: KindHeading, level: level}
}

// TagOf returns the tag for a non-heading kind.
func TagOf(k Kind) Tag {
	if k == KindHeading {
		return Heading(1)
	}
	return Tag{Kind: k}
}

// Level is the heading level, 0 for every other kind.
func (t Tag) Level() int {
	return t.level
}

func (t Tag) String() string {
	if t.Kind == KindHeading {
		return fmt.Sprintf("heading(%d)", t.level)
	}
	return t.Kind.String()
}

// Block is one node of the parsed document.
type Block struct {
	Tag      Tag
	Start    int         // Absolute offset of the originating line
	Value    string      // Raw line text, or synthesized text for rewritten blocks
	Children *Collection // Never nil

	// Consumed marks a block already folded into a composed replacement.
	// Only rewrite passes set it, and they clear it before returning.
	Consumed bool

	parent *Collection
}

// NewBlock creates a detached block with an empty child scope.
func NewBlock(tag Tag, start int, value string) *Block {
	b := &Block{Tag: tag, Start: start, Value: value}
	b.Children = &Collection{owner: b}
	return b
}

// Len is the length of Value in bytes.
func (b *Block) Len() int {
	return len(b.Value)
}

// End is the offset of the last byte of Value, or Start when Value is empty.
func (b *Block) End() int {
	if b.Value == "" {
		return b.Start
	}
	return b.Start + len(b.Value) - 1
}

// Parent returns the collection holding the block, nil when detached.
func (b *Block) Parent() *Collection {
	return b.parent
}

// Collection is an ordered set of blocks sharing one parent scope.
type Collection struct {
	Blocks []*Block

	owner       *Block
	ruleClaimed bool
}

// NewRoot returns an empty document-level collection.
func NewRoot() *Collection {
	return &Collection{}
}

// Owner is the block whose children this collection holds, nil at the root.
func (c *Collection) Owner() *Block {
	return c.owner
}

// Parent is the collection holding the owner block, nil at the root.
func (c *Collection) Parent() *Collection {
	if c.owner == nil {
		return nil
	}
	return c.owner.parent
}

// Len returns the number of direct blocks.
func (c *Collection) Len() int {
	return len(c.Blocks)
}

// Append adds blocks at the end of the collection.
func (c *Collection) Append(blocks ...*Block) {
	for _, b := range blocks {
		b.parent = c
	}
	c.Blocks = append(c.Blocks, blocks...)
}

// Replace swaps Blocks[start:end] for the given blocks and returns the index
// just past the inserted run.
func (c *Collection) Replace(start, end int, blocks ...*Block) int {
	if start < 0 {
		start = 0
	}
	if end > len(c.Blocks) {
		end = len(c.Blocks)
	}
	if end < start {
		end = start
	}
	out := make([]*Block, 0, len(c.Blocks)-(end-start)+len(blocks))
	out = append(out, c.Blocks[:start]...)
	for _, b := range blocks {
		b.parent = c
		out = append(out, b)
	}
	out = append(out, c.Blocks[end:]...)
	for _, b := range c.Blocks[start:end] {
		if b.parent == c && !contains(blocks, b) {
			b.parent = nil
		}
	}
	c.Blocks = out
	return start + len(blocks)
}

// RemoveConsumed drops every consumed block and clears the flag on them.
func (c *Collection) RemoveConsumed() int {
	kept := c.Blocks[:0]
	removed := 0
	for _, b := range c.Blocks {
		if b.Consumed {
			b.Consumed = false
			b.parent = nil
			removed++
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(c.Blocks); i++ {
		c.Blocks[i] = nil
	}
	c.Blocks = kept
	return removed
}

// RuleClaimed reports whether this scope itself owns the rule convention.
func (c *Collection) RuleClaimed() bool {
	return c.ruleClaimed
}

// ClaimRule marks this scope as the owner of horizontal-rule lines. The flag
// is never reset.
func (c *Collection) ClaimRule() {
	c.ruleClaimed = true
}

// OwnsRule reports whether this scope or one of its ancestors has claimed
// the rule convention.
func (c *Collection) OwnsRule() bool {
	for s := c; s != nil; s = s.Parent() {
		if s.ruleClaimed {
			return true
		}
	}
	return false
}

func contains(blocks []*Block, b *Block) bool {
	for _, x := range blocks {
		if x == b {
			return true
		}
	}
	return false
}
