package rewrite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/docstruct/internal/doctree"
)

// ListKind distinguishes bullet lists from numbered lists.
type ListKind int

const (
	Unordered ListKind = iota
	Ordered
)

func (k ListKind) tag() string {
	if k == Ordered {
		return "ol"
	}
	return "ul"
}

var listItemRe = regexp.MustCompile(`^([ \t]*)(-|[0-9]+\.)[ \t]+(.*)$`)

// ListItem is a parsed list-item line.
type ListItem struct {
	Indent int
	Kind   ListKind
	Number int // Ordinal for ordered items (1 when out of range), 0 otherwise
	Text   string
}

// ParseListItem reports whether line is a list item: leading whitespace,
// then '-' or a digit run followed by '.', then the item text.
func ParseListItem(line string) (ListItem, bool) {
	m := listItemRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return ListItem{}, false
	}
	item := ListItem{Indent: len(m[1]), Text: strings.TrimSpace(m[3])}
	if m[2] != "-" {
		item.Kind = Ordered
		// An ordinal that does not fit in an int gets no start attribute.
		if n, err := strconv.Atoi(strings.TrimSuffix(m[2], ".")); err == nil {
			item.Number = n
		} else {
			item.Number = 1
		}
	}
	return item, true
}

type indentFrame struct {
	indent   int
	kind     ListKind
	itemOpen bool
}

// listRun accumulates the composed markup for one run of list-item blocks.
type listRun struct {
	stack []indentFrame
	sb    strings.Builder
	first int
}

func (r *listRun) active() bool {
	return len(r.stack) > 0
}

func (r *listRun) top() *indentFrame {
	return &r.stack[len(r.stack)-1]
}

func (r *listRun) push(item ListItem) {
	if r.active() && r.top().itemOpen {
		r.newline()
	}
	if item.Kind == Ordered && item.Number != 1 {
		fmt.Fprintf(&r.sb, "<ol start=\"%d\">\n", item.Number)
	} else {
		fmt.Fprintf(&r.sb, "<%s>\n", item.Kind.tag())
	}
	r.stack = append(r.stack, indentFrame{indent: item.Indent, kind: item.Kind})
}

func (r *listRun) newline() {
	if s := r.sb.String(); s != "" && !strings.HasSuffix(s, "\n") {
		r.sb.WriteByte('\n')
	}
}

func (r *listRun) add(item ListItem) {
	top := r.top()
	if top.itemOpen {
		r.sb.WriteString("</li>\n")
	}
	r.sb.WriteString("<li>")
	r.sb.WriteString(item.Text)
	top.itemOpen = true
}

func (r *listRun) pop() {
	top := r.top()
	if top.itemOpen {
		r.sb.WriteString("</li>\n")
	}
	fmt.Fprintf(&r.sb, "</%s>\n", top.kind.tag())
	r.stack = r.stack[:len(r.stack)-1]
}

// collapse closes every open frame, rewrites the first consumed block to
// hold the composed markup and removes the rest of the run. It returns the
// index of the rewritten block.
func (r *listRun) collapse(c *doctree.Collection) int {
	for r.active() {
		r.pop()
	}
	first := c.Blocks[r.first]
	first.Value = strings.TrimSuffix(r.sb.String(), "\n")
	first.Consumed = false
	c.RemoveConsumed()

	at := r.first
	r.sb.Reset()
	r.first = -1
	return at
}

// NormalizeLists folds runs of indent-marked list items in one collection
// into nested HTML list markup. Child scopes are not visited. It returns
// the number of list runs collapsed.
func NormalizeLists(c *doctree.Collection) int {
	run := &listRun{first: -1}
	collapsed := 0

	for i := 0; i < len(c.Blocks); i++ {
		b := c.Blocks[i]
		item, ok := listItemOf(b)
		if !ok {
			if run.active() {
				i = run.collapse(c)
				collapsed++
			}
			continue
		}

		for {
			if !run.active() {
				run.first = i
				run.push(item)
				run.add(item)
				break
			}
			top := run.top()
			if item.Indent == top.indent {
				if item.Kind != top.kind {
					run.pop()
					run.push(item)
				}
				run.add(item)
				break
			}
			if item.Indent > top.indent {
				run.push(item)
				run.add(item)
				break
			}

			// Shallower: close frames until one fits.
			for run.active() && run.top().indent > item.Indent {
				run.pop()
			}
			if !run.active() {
				i = run.collapse(c) + 1
				collapsed++
			}
		}
		c.Blocks[i].Consumed = true
	}

	if run.active() {
		run.collapse(c)
		collapsed++
	}
	return collapsed
}

// NormalizeAllLists runs NormalizeLists once for every scope in the tree.
func NormalizeAllLists(root *doctree.Collection) int {
	n := 0
	for _, c := range doctree.Scopes(root) {
		n += NormalizeLists(c)
	}
	return n
}

func listItemOf(b *doctree.Block) (ListItem, bool) {
	if b.Tag.Kind != doctree.KindText {
		return ListItem{}, false
	}
	return ParseListItem(b.Value)
}
