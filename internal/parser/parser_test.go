package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docstruct/internal/doctree"
)

func kinds(c *doctree.Collection) []string {
	var out []string
	for _, b := range c.Blocks {
		out = append(out, b.Tag.String())
	}
	return out
}

func assertKinds(t *testing.T, c *doctree.Collection, want ...string) {
	t.Helper()
	got := kinds(c)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected blocks %v, got %v", want, got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain line\n",
		"# Title\n\nIntro text.\n\n## Section A\n\nBody.\n### Deep\nmore\n# Next\n",
		"text before\n---\nbetween\n---\n## Under\n---\nafter\n",
		"<section>\n## X\none\n</section>\n\n<section class=\"r\">\n## X\ntwo\n</section>\n",
		"</section>\nstray close\n<section>\nnever closed\n",
		"##########\n#no space\n   \n\t\n",
	}
	for _, in := range inputs {
		got := doctree.Render(Parse(in))
		if got != in {
			t.Errorf("round trip mismatch:\ninput: %q\n  got: %q", in, got)
		}
	}
}

func TestParse_NoTrailingNewline(t *testing.T) {
	got := doctree.Render(Parse("a\nb"))
	if got != "a\nb\n" {
		t.Errorf("expected %q, got %q", "a\nb\n", got)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	root := Parse("")
	if root.Len() != 0 {
		t.Errorf("expected 0 blocks for empty input, got %d", root.Len())
	}
	if root.Owner() != nil {
		t.Error("expected root collection to have no owner")
	}
}

func TestParse_SingleLevelHeadings(t *testing.T) {
	input := "# One\nalpha\n\nbeta\n# Two\ngamma\n# Three\n"
	root := Parse(input)
	assertKinds(t, root, "heading(1)", "heading(1)", "heading(1)")

	one := root.Blocks[0]
	if one.Children.Len() != 3 {
		t.Fatalf("expected 3 children under first heading, got %d", one.Children.Len())
	}
	for _, b := range one.Children.Blocks {
		if b.Tag.Kind != doctree.KindText {
			t.Errorf("expected text child, got %s", b.Tag)
		}
	}
	if root.Blocks[1].Children.Blocks[0].Value != "gamma" {
		t.Errorf("expected %q under second heading, got %q", "gamma", root.Blocks[1].Children.Blocks[0].Value)
	}
	if root.Blocks[2].Children.Len() != 0 {
		t.Errorf("expected no children under last heading, got %d", root.Blocks[2].Children.Len())
	}
}

func TestParse_NestedHeadings(t *testing.T) {
	root := Parse("# A\n## B\n### C\n# D")
	assertKinds(t, root, "heading(1)", "heading(1)")

	a := root.Blocks[0]
	assertKinds(t, a.Children, "heading(2)")
	b := a.Children.Blocks[0]
	assertKinds(t, b.Children, "heading(3)")
	if b.Children.Blocks[0].Value != "### C" {
		t.Errorf("expected %q, got %q", "### C", b.Children.Blocks[0].Value)
	}

	d := root.Blocks[1]
	if d.Children.Len() != 0 {
		t.Errorf("expected D to have no children, got %d", d.Children.Len())
	}
	if d.Parent() != root {
		t.Error("expected D to belong to the root collection")
	}
}

func TestParse_SameLevelIsSibling(t *testing.T) {
	root := Parse("## A\nx\n## B\ny\n")
	assertKinds(t, root, "heading(2)", "heading(2)")
	if root.Blocks[0].Tag.Level() != 2 {
		t.Errorf("expected level 2, got %d", root.Blocks[0].Tag.Level())
	}
}

func TestParse_ShallowerHeadingPops(t *testing.T) {
	root := Parse("### deep\n## mid\n# top\n")
	assertKinds(t, root, "heading(3)", "heading(2)", "heading(1)")
}

func TestParse_RuleOwnership(t *testing.T) {
	// The first rule sits under # A, so A's child scope claims rules, not the root.
	root := Parse("# A\n---\n## B\n---\n## C")
	assertKinds(t, root, "heading(1)")

	a := root.Blocks[0]
	assertKinds(t, a.Children, "rule", "heading(2)", "rule", "heading(2)")
	if !a.Children.RuleClaimed() {
		t.Error("expected the scope that saw the first rule to claim the convention")
	}
	b := a.Children.Blocks[1]
	if b.Children.Len() != 0 {
		t.Errorf("expected no rule under B, got %v", kinds(b.Children))
	}
	if b.Children.RuleClaimed() {
		t.Error("expected nested scope not to claim the rule convention")
	}
}

func TestParse_RootClaimsRules(t *testing.T) {
	root := Parse("---\n# A\ntext\n---\n## B\n---\n")
	assertKinds(t, root, "rule", "heading(1)", "rule", "heading(2)", "rule")
	if !root.RuleClaimed() {
		t.Error("expected root to claim the rule convention")
	}
	assertKinds(t, root.Blocks[1].Children, "text")
}

func TestParse_Sections(t *testing.T) {
	root := Parse("<section>\n## X\none\n</section>\n<section>\n## X\ntwo\n</section>\n")
	assertKinds(t, root, "section_open", "section_close", "section_open", "section_close")

	first := root.Blocks[0]
	assertKinds(t, first.Children, "heading(2)")
	x := first.Children.Blocks[0]
	if x.Children.Len() != 1 || x.Children.Blocks[0].Value != "one" {
		t.Errorf("expected heading X to hold %q, got %v", "one", kinds(x.Children))
	}
}

func TestParse_SectionInsideHeading(t *testing.T) {
	root := Parse("## A\n<section>\n# X\nv\n</section>\nafter\n")
	assertKinds(t, root, "heading(2)")
	a := root.Blocks[0]
	assertKinds(t, a.Children, "section_open", "section_close", "text")
	assertKinds(t, a.Children.Blocks[0].Children, "heading(1)")
}

func TestParse_NestedSections(t *testing.T) {
	root := Parse("<section>\nouter\n<section>\ninner\n</section>\n</section>\n")
	assertKinds(t, root, "section_open", "section_close")
	outer := root.Blocks[0]
	assertKinds(t, outer.Children, "text", "section_open", "section_close")
}

func TestParse_StrayAndUnclosedSections(t *testing.T) {
	root := Parse("</section>\n<section>\nbody\n")
	assertKinds(t, root, "section_close", "section_open")
	assertKinds(t, root.Blocks[1].Children, "text")
}

func TestParse_Offsets(t *testing.T) {
	input := "# A\nbody\n## B\n"
	root := Parse(input)
	a := root.Blocks[0]
	if a.Start != 0 {
		t.Errorf("expected A at offset 0, got %d", a.Start)
	}
	body := a.Children.Blocks[0]
	if body.Start != 4 {
		t.Errorf("expected body at offset 4, got %d", body.Start)
	}
	b := a.Children.Blocks[1]
	if b.Start != 9 || b.End() != 12 {
		t.Errorf("expected B to span 9..12, got %d..%d", b.Start, b.End())
	}
	if input[b.Start:b.End()+1] != "## B" {
		t.Errorf("expected offsets to address %q, got %q", "## B", input[b.Start:b.End()+1])
	}
}

func TestParse_EveryLineConsumedOnce(t *testing.T) {
	input := "x\n# A\n---\n<section>\n## B\n---\n</section>\n</section>\n### C\n---\ny\n"
	root := Parse(input)
	if n := doctree.Count(root); n != len(SplitLines(input)) {
		t.Errorf("expected %d blocks, got %d", len(SplitLines(input)), n)
	}
	if got := doctree.Render(root); got != input {
		t.Errorf("expected round trip, got %q", got)
	}
}

func TestParser_CustomSectionTag(t *testing.T) {
	p := New(Conventions{SectionTag: "record"})
	root := p.Parse("<record>\nv\n</record>\n<section>\n")
	assertKinds(t, root, "section_open", "section_close", "text")
}
