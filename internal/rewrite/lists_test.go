package rewrite

import (
	"strings"
	"testing"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/parser"
)

func assertNoConsumed(t *testing.T, root *doctree.Collection) {
	t.Helper()
	_ = doctree.Walk(root, func(b *doctree.Block, _ int) error {
		if b.Consumed {
			t.Errorf("expected consumed flag cleared on %q", b.Value)
		}
		return nil
	})
}

func TestParseListItem(t *testing.T) {
	tests := []struct {
		line   string
		ok     bool
		indent int
		kind   ListKind
		number int
		text   string
	}{
		{"- apple", true, 0, Unordered, 0, "apple"},
		{"    - nested", true, 4, Unordered, 0, "nested"},
		{"12. twelfth", true, 0, Ordered, 12, "twelfth"},
		{"  1.  spaced ", true, 2, Ordered, 1, "spaced"},
		{"99999999999999999999. huge", true, 0, Ordered, 1, "huge"},
		{"-nospace", false, 0, 0, 0, ""},
		{"1) paren", false, 0, 0, 0, ""},
		{"plain", false, 0, 0, 0, ""},
	}
	for _, tt := range tests {
		item, ok := ParseListItem(tt.line)
		if ok != tt.ok {
			t.Errorf("line=%q: expected ok=%v, got %v", tt.line, tt.ok, ok)
			continue
		}
		if !ok {
			continue
		}
		if item.Indent != tt.indent || item.Kind != tt.kind || item.Number != tt.number || item.Text != tt.text {
			t.Errorf("line=%q: unexpected item %+v", tt.line, item)
		}
	}
}

func TestNormalizeLists_Nested(t *testing.T) {
	root := parser.Parse("- A\n- B\n  - C\n- D\n")
	n := NormalizeLists(root)
	if n != 1 {
		t.Errorf("expected 1 collapsed run, got %d", n)
	}
	if root.Len() != 1 {
		t.Fatalf("expected a single composed block, got %d", root.Len())
	}

	got := root.Blocks[0].Value
	want := "<ul>\n<li>A</li>\n<li>B\n<ul>\n<li>C</li>\n</ul>\n</li>\n<li>D</li>\n</ul>"
	if got != want {
		t.Errorf("expected markup:\n%s\ngot:\n%s", want, got)
	}
	if strings.Count(got, "<ul>") != strings.Count(got, "</ul>") {
		t.Error("expected balanced list tags")
	}
	if strings.Count(got, "<li>") != strings.Count(got, "</li>") {
		t.Error("expected balanced item tags")
	}
	if root.Blocks[0].Start != 0 {
		t.Errorf("expected composed block to keep offset 0, got %d", root.Blocks[0].Start)
	}
	assertNoConsumed(t, root)
}

func TestNormalizeLists_OrderedStart(t *testing.T) {
	root := parser.Parse("3. x\n4. y\n")
	NormalizeLists(root)
	want := "<ol start=\"3\">\n<li>x</li>\n<li>y</li>\n</ol>"
	if got := root.Blocks[0].Value; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizeLists_OrdinalOverflow(t *testing.T) {
	root := parser.Parse("99999999999999999999. x\n")
	NormalizeLists(root)
	want := "<ol>\n<li>x</li>\n</ol>"
	if got := root.Blocks[0].Value; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizeLists_KindSwitchSameIndent(t *testing.T) {
	root := parser.Parse("- a\n1. b\n")
	n := NormalizeLists(root)
	if n != 1 || root.Len() != 1 {
		t.Fatalf("expected one composed block, got %d runs and %d blocks", n, root.Len())
	}
	want := "<ul>\n<li>a</li>\n</ul>\n<ol>\n<li>b</li>\n</ol>"
	if got := root.Blocks[0].Value; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizeLists_KindSwitchInsideNested(t *testing.T) {
	root := parser.Parse("- a\n  - b\n  1. c\n")
	NormalizeLists(root)
	want := "<ul>\n<li>a\n<ul>\n<li>b</li>\n</ul>\n<ol>\n<li>c</li>\n</ol>\n</li>\n</ul>"
	if got := root.Blocks[0].Value; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizeLists_RunsSplitByText(t *testing.T) {
	root := parser.Parse("- a\n- b\nbetween\n- c\n")
	n := NormalizeLists(root)
	if n != 2 {
		t.Errorf("expected 2 runs, got %d", n)
	}
	if root.Len() != 3 {
		t.Fatalf("expected 3 blocks, got %d", root.Len())
	}
	if root.Blocks[1].Value != "between" {
		t.Errorf("expected text to survive between lists, got %q", root.Blocks[1].Value)
	}
	if root.Blocks[2].Value != "<ul>\n<li>c</li>\n</ul>" {
		t.Errorf("unexpected second list %q", root.Blocks[2].Value)
	}
	assertNoConsumed(t, root)
}

func TestNormalizeLists_ShallowerThanFirstFrame(t *testing.T) {
	root := parser.Parse("  - a\n- b\n")
	n := NormalizeLists(root)
	if n != 2 {
		t.Errorf("expected 2 runs, got %d", n)
	}
	if root.Len() != 2 {
		t.Fatalf("expected 2 blocks, got %d", root.Len())
	}
	if root.Blocks[0].Value != "<ul>\n<li>a</li>\n</ul>" || root.Blocks[1].Value != "<ul>\n<li>b</li>\n</ul>" {
		t.Errorf("unexpected blocks %q / %q", root.Blocks[0].Value, root.Blocks[1].Value)
	}
	assertNoConsumed(t, root)
}

func TestNormalizeLists_DoesNotDescend(t *testing.T) {
	root := parser.Parse("# H\n- a\n- b\n")
	if n := NormalizeLists(root); n != 0 {
		t.Errorf("expected no runs at the root, got %d", n)
	}
	if root.Blocks[0].Children.Len() != 2 {
		t.Errorf("expected child scope untouched, got %d blocks", root.Blocks[0].Children.Len())
	}

	if n := NormalizeAllLists(root); n != 1 {
		t.Errorf("expected 1 run across the tree, got %d", n)
	}
	if root.Blocks[0].Children.Len() != 1 {
		t.Errorf("expected child list collapsed, got %d blocks", root.Blocks[0].Children.Len())
	}
}

func TestNormalizeLists_NoLists(t *testing.T) {
	input := "# T\ntext\n---\n"
	root := parser.Parse(input)
	if n := NormalizeAllLists(root); n != 0 {
		t.Errorf("expected 0 runs, got %d", n)
	}
	if got := doctree.Render(root); got != input {
		t.Errorf("expected unchanged text, got %q", got)
	}
}
