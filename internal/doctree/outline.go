package doctree

import "strings"

// Outline is a JSON-friendly view of a parsed document: headings and
// sections become nodes, everything else is folded into their text.
type Outline struct {
	Title    string         `json:"title"`
	Text     string         `json:"text,omitempty"`
	Children []*OutlineNode `json:"children"`
}

// OutlineNode is a recursive section of the outline.
type OutlineNode struct {
	Title    string         `json:"title,omitempty"` // Heading text (empty for sections and leaf text)
	Kind     string         `json:"kind"`
	Level    int            `json:"level,omitempty"`
	Offset   int            `json:"offset"`
	Text     string         `json:"text,omitempty"` // Body text directly under this node
	Children []*OutlineNode `json:"children,omitempty"`
}

// BuildOutline converts a block tree into an Outline.
func BuildOutline(title string, root *Collection) *Outline {
	type frame struct {
		node *OutlineNode
		text strings.Builder
	}
	top := &frame{node: &OutlineNode{}}
	stack := []*frame{top}
	var frames []*frame

	_ = Walk(root, func(b *Block, depth int) error {
		stack = stack[:depth+1]
		owner := stack[depth]
		switch b.Tag.Kind {
		case KindHeading, KindSectionOpen:
			node := &OutlineNode{
				Kind:   b.Tag.Kind.String(),
				Level:  b.Tag.Level(),
				Offset: b.Start,
			}
			if b.Tag.Kind == KindHeading {
				node.Title = HeadingTitle(b.Value)
			}
			owner.node.Children = append(owner.node.Children, node)
			f := &frame{node: node}
			frames = append(frames, f)
			stack = append(stack, f)
			return nil
		case KindSectionClose:
			return SkipChildren
		}
		// Body text is rendered whole, descendants included.
		owner.text.WriteString(RenderBlock(b))
		return SkipChildren
	})

	for _, f := range frames {
		f.node.Text = strings.TrimSpace(f.text.String())
	}
	out := &Outline{
		Title:    title,
		Text:     strings.TrimSpace(top.text.String()),
		Children: top.node.Children,
	}
	if out.Children == nil {
		out.Children = []*OutlineNode{}
	}
	return out
}
