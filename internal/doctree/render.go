package doctree

import (
	"errors"
	"strings"
)

// Render flattens a collection back to text. Each block contributes its
// value and a newline, followed by its children.
func Render(c *Collection) string {
	var sb strings.Builder
	renderTo(&sb, c)
	return sb.String()
}

// RenderBlock renders a single block together with its descendants.
func RenderBlock(b *Block) string {
	var sb strings.Builder
	sb.WriteString(b.Value)
	sb.WriteByte('\n')
	renderTo(&sb, b.Children)
	return sb.String()
}

func renderTo(sb *strings.Builder, c *Collection) {
	if c == nil {
		return
	}
	for _, b := range c.Blocks {
		sb.WriteString(b.Value)
		sb.WriteByte('\n')
		renderTo(sb, b.Children)
	}
}

// SkipChildren can be returned from a WalkFunc to skip a block's descendants.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each block in depth-first order.
type WalkFunc func(b *Block, depth int) error

// Walk visits every block under c, parents before children.
func Walk(c *Collection, fn WalkFunc) error {
	return walk(c, 0, fn)
}

func walk(c *Collection, depth int, fn WalkFunc) error {
	if c == nil {
		return nil
	}
	for _, b := range c.Blocks {
		err := fn(b, depth)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walk(b.Children, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Scopes returns every collection in the tree, children before parents.
func Scopes(root *Collection) []*Collection {
	var out []*Collection
	var visit func(*Collection)
	visit = func(c *Collection) {
		for _, b := range c.Blocks {
			visit(b.Children)
		}
		out = append(out, c)
	}
	if root != nil {
		visit(root)
	}
	return out
}

// Count returns the number of blocks in the tree.
func Count(c *Collection) int {
	n := 0
	_ = Walk(c, func(*Block, int) error {
		n++
		return nil
	})
	return n
}
