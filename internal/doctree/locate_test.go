package doctree

import "testing"

// "# A\nbody\n## B\nleaf\ntail\n" built by hand so the package has no
// dependency on the parser.
func sampleTree() *Collection {
	root := NewRoot()
	a := NewBlock(Heading(1), 0, "# A")
	a.Children.Append(NewBlock(TagOf(KindText), 4, "body"))
	b := NewBlock(Heading(2), 9, "## B")
	b.Children.Append(NewBlock(TagOf(KindText), 14, "leaf"))
	a.Children.Append(b)
	root.Append(a)
	root.Append(NewBlock(TagOf(KindText), 19, "tail"))
	return root
}

func TestLocate(t *testing.T) {
	root := sampleTree()
	tests := []struct {
		offset int
		want   []string
	}{
		{0, []string{"# A"}},
		{5, []string{"# A", "body"}},
		{9, []string{"# A", "## B"}},
		{16, []string{"# A", "## B", "leaf"}},
		{20, []string{"tail"}},
		{99, nil},
	}
	for _, tt := range tests {
		path := Locate(root, tt.offset)
		if len(path) != len(tt.want) {
			t.Errorf("offset %d: expected %d blocks, got %d", tt.offset, len(tt.want), len(path))
			continue
		}
		for i := range tt.want {
			if path[i].Value != tt.want[i] {
				t.Errorf("offset %d: block %d expected %q, got %q", tt.offset, i, tt.want[i], path[i].Value)
			}
		}
	}
}

func TestBreadcrumb(t *testing.T) {
	path := Locate(sampleTree(), 16)
	bc := Breadcrumb(path)
	if len(bc) != 2 || bc[0] != "A" || bc[1] != "B" {
		t.Errorf("expected breadcrumb [A B], got %v", bc)
	}
}

func TestHeadingTitle(t *testing.T) {
	tests := map[string]string{
		"# Title":        "Title",
		"###   Spaced  ": "Spaced",
		"#":              "",
	}
	for in, want := range tests {
		if got := HeadingTitle(in); got != want {
			t.Errorf("HeadingTitle(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestBuildOutline(t *testing.T) {
	out := BuildOutline("doc", sampleTree())
	if out.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", out.Title)
	}
	if out.Text != "tail" {
		t.Errorf("expected root text %q, got %q", "tail", out.Text)
	}
	if len(out.Children) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(out.Children))
	}
	a := out.Children[0]
	if a.Title != "A" || a.Level != 1 || a.Text != "body" {
		t.Errorf("unexpected node A: %+v", a)
	}
	if len(a.Children) != 1 || a.Children[0].Title != "B" || a.Children[0].Text != "leaf" {
		t.Errorf("unexpected children of A: %+v", a.Children)
	}
}

func TestBuildOutline_Empty(t *testing.T) {
	out := BuildOutline("empty", NewRoot())
	if out.Children == nil || len(out.Children) != 0 {
		t.Errorf("expected empty non-nil children, got %v", out.Children)
	}
}

func TestBuildOutline_Section(t *testing.T) {
	root := NewRoot()
	open := NewBlock(TagOf(KindSectionOpen), 0, "<section>")
	open.Children.Append(NewBlock(TagOf(KindText), 10, "inside"))
	root.Append(open)
	root.Append(NewBlock(TagOf(KindSectionClose), 17, "</section>"))
	root.Append(NewBlock(TagOf(KindText), 28, "after"))

	out := BuildOutline("doc", root)
	if out.Text != "after" {
		t.Errorf("expected root text %q, got %q", "after", out.Text)
	}
	if len(out.Children) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(out.Children))
	}
	sec := out.Children[0]
	if sec.Kind != "section_open" || sec.Title != "" || sec.Text != "inside" || sec.Offset != 0 {
		t.Errorf("unexpected section node: %+v", sec)
	}
}
