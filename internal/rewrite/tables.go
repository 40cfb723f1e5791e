package rewrite

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/mattn/go-runewidth"
)

var (
	ErrNoSeparator       = errors.New("no valid separator found")
	ErrSingleSeparator   = errors.New("only one separator was found; a separator is required before the first record and after the last")
	ErrNoSection         = errors.New("no valid section found")
	ErrUnclosedSection   = errors.New("the last section is not closed; a section close is required after the last record")
	ErrMismatchedSection = errors.New("section markers do not pair up; every section open needs one close before the next open")
	ErrNoConvention      = errors.New("no record convention found; records must be delimited by separators or sections")
)

// DefaultUnnamedColumn labels the column that collects content found
// outside any heading.
const DefaultUnnamedColumn = "unnamed text"

// Table describes a synthesized table.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`

	Blocks []*doctree.Block `json:"-"` // Emitted header, separator and row blocks
}

// Tabulator turns delimited record regions into pipe tables.
type Tabulator struct {
	UnnamedColumn string
}

// NewTabulator returns a Tabulator with the given unnamed-column label.
func NewTabulator(unnamed string) *Tabulator {
	return &Tabulator{UnnamedColumn: unnamed}
}

func (t *Tabulator) unnamed() string {
	if t == nil || t.UnnamedColumn == "" {
		return DefaultUnnamedColumn
	}
	return t.UnnamedColumn
}

// TableFromRules synthesizes a table from rule-delimited records using the
// default unnamed-column label.
func TableFromRules(c *doctree.Collection) (*Table, error) {
	return (&Tabulator{}).FromRules(c)
}

// TableFromSections synthesizes a table from section-delimited records
// using the default unnamed-column label.
func TableFromSections(c *doctree.Collection) (*Table, error) {
	return (&Tabulator{}).FromSections(c)
}

// Tabulate tries the rule convention, then the section convention.
func Tabulate(root *doctree.Collection) (*Table, error) {
	return (&Tabulator{}).Tabulate(root)
}

// FromRules finds the first scope (this one, or depth-first among its
// descendants) containing rule blocks and replaces the run from its first
// to its last rule with a table. On error the tree is left untouched.
func (t *Tabulator) FromRules(c *doctree.Collection) (*Table, error) {
	tbl, found, err := t.fromRules(c)
	if !found {
		return nil, ErrNoSeparator
	}
	return tbl, err
}

func (t *Tabulator) fromRules(c *doctree.Collection) (*Table, bool, error) {
	var rules []int
	for i, b := range c.Blocks {
		if b.Tag.Kind == doctree.KindRule {
			rules = append(rules, i)
		}
	}
	if len(rules) == 0 {
		for _, b := range c.Blocks {
			if tbl, found, err := t.fromRules(b.Children); found {
				return tbl, true, err
			}
		}
		return nil, false, nil
	}
	if len(rules) == 1 {
		return nil, true, ErrSingleSeparator
	}

	first, last := rules[0], rules[len(rules)-1]
	var records [][]*doctree.Block
	var current []*doctree.Block
	open := false
	for i := first; i <= last; i++ {
		b := c.Blocks[i]
		if b.Tag.Kind != doctree.KindRule {
			current = append(current, b)
			continue
		}
		if open {
			records = append(records, current)
		}
		current, open = nil, i != last
	}

	return t.emit(c, first, last, records), true, nil
}

// FromSections works like FromRules with section-open blocks as record
// starts. The last section in the scope must be closed.
func (t *Tabulator) FromSections(c *doctree.Collection) (*Table, error) {
	tbl, found, err := t.fromSections(c)
	if !found {
		return nil, ErrNoSection
	}
	return tbl, err
}

func (t *Tabulator) fromSections(c *doctree.Collection) (*Table, bool, error) {
	var opens []int
	for i, b := range c.Blocks {
		if b.Tag.Kind == doctree.KindSectionOpen {
			opens = append(opens, i)
		}
	}
	if len(opens) == 0 {
		for _, b := range c.Blocks {
			if tbl, found, err := t.fromSections(b.Children); found {
				return tbl, true, err
			}
		}
		return nil, false, nil
	}

	lastOpen := opens[len(opens)-1]
	end := lastOpen + 1
	if end >= len(c.Blocks) || c.Blocks[end].Tag.Kind != doctree.KindSectionClose {
		return nil, true, ErrUnclosedSection
	}

	first := opens[0]
	if !sectionsPaired(c.Blocks[first : end+1]) {
		return nil, true, ErrMismatchedSection
	}

	var records [][]*doctree.Block
	var current []*doctree.Block
	open := false
	for i := first; i <= end; i++ {
		b := c.Blocks[i]
		switch b.Tag.Kind {
		case doctree.KindSectionOpen:
			if open {
				records = append(records, current)
			}
			current, open = append([]*doctree.Block(nil), b.Children.Blocks...), true
		case doctree.KindSectionClose:
			// Content up to the next open stays with this record.
		default:
			current = append(current, b)
		}
	}
	if open {
		records = append(records, current)
	}

	return t.emit(c, first, end, records), true, nil
}

// sectionsPaired reports whether every open in run is closed exactly once
// before the next open.
func sectionsPaired(run []*doctree.Block) bool {
	pending := false
	for _, b := range run {
		switch b.Tag.Kind {
		case doctree.KindSectionOpen:
			if pending {
				return false
			}
			pending = true
		case doctree.KindSectionClose:
			if !pending {
				return false
			}
			pending = false
		}
	}
	return !pending
}

// Tabulate applies whichever record convention is in use.
func (t *Tabulator) Tabulate(root *doctree.Collection) (*Table, error) {
	tbl, found, err := t.fromRules(root)
	if found {
		return tbl, err
	}
	tbl, found, err = t.fromSections(root)
	if found {
		return tbl, err
	}
	return nil, ErrNoConvention
}

// emit builds the table for records and replaces Blocks[first..last] with it.
func (t *Tabulator) emit(c *doctree.Collection, first, last int, records [][]*doctree.Block) *Table {
	for i := range records {
		records[i] = trimBlank(records[i])
	}

	unnamed := t.unnamed()
	var columns []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, b := range rec {
			if b.Tag.Kind != doctree.KindHeading {
				continue
			}
			name := columnName(b, unnamed)
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	if len(columns) == 0 {
		columns = append(columns, unnamed)
		seen[unnamed] = true
	}

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(columns))
		for _, b := range rec {
			if b.Tag.Kind == doctree.KindHeading {
				name := columnName(b, unnamed)
				row[name] += doctree.Render(b.Children)
				continue
			}
			text := doctree.RenderBlock(b)
			if strings.TrimSpace(text) == "" && !seen[unnamed] {
				continue
			}
			if !seen[unnamed] {
				seen[unnamed] = true
				columns = append(columns, unnamed)
			}
			row[unnamed] += text
		}
		rows = append(rows, row)
	}

	tbl := &Table{Columns: columns}
	start := c.Blocks[first].Start
	tbl.Blocks = append(tbl.Blocks,
		doctree.NewBlock(doctree.TagOf(doctree.KindTableHeader), start, headerLine(columns, unnamed)),
		doctree.NewBlock(doctree.TagOf(doctree.KindTableHeader), start, separatorLine(columns)),
	)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = formatCell(row[col])
		}
		tbl.Rows = append(tbl.Rows, cells)
		tbl.Blocks = append(tbl.Blocks,
			doctree.NewBlock(doctree.TagOf(doctree.KindTableRow), start, "| "+strings.Join(cells, " | ")+" |"))
	}

	c.Replace(first, last+1, tbl.Blocks...)
	return tbl
}

func columnName(b *doctree.Block, unnamed string) string {
	if name := doctree.HeadingTitle(b.Value); name != "" {
		return name
	}
	return unnamed
}

func trimBlank(rec []*doctree.Block) []*doctree.Block {
	for len(rec) > 0 && isBlank(rec[0]) {
		rec = rec[1:]
	}
	for len(rec) > 0 && isBlank(rec[len(rec)-1]) {
		rec = rec[:len(rec)-1]
	}
	return rec
}

func isBlank(b *doctree.Block) bool {
	return b.Tag.Kind == doctree.KindText && strings.TrimSpace(b.Value) == "" && len(b.Children.Blocks) == 0
}

func columnWidth(name string) int {
	w := runewidth.StringWidth(name)
	if w < 3 {
		w = 3
	}
	return w
}

func headerLine(columns []string, unnamed string) string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		if col == unnamed {
			cells[i] = strings.Repeat(" ", columnWidth(col))
			continue
		}
		cells[i] = escapePipes(col)
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func separatorLine(columns []string) string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = strings.Repeat("-", columnWidth(col))
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n[\s]*`)

// formatCell trims a cell and turns its line structure into inline HTML so
// it fits on one table row.
func formatCell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
	if s == "" {
		return ""
	}
	paras := paragraphBreak.Split(s, -1)
	for i, p := range paras {
		lines := strings.Split(p, "\n")
		for j := range lines {
			lines[j] = strings.TrimSpace(lines[j])
		}
		paras[i] = escapePipes(strings.Join(lines, "<br>"))
	}
	if len(paras) == 1 {
		return paras[0]
	}
	return "<p>" + strings.Join(paras, "</p><p>") + "</p>"
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
