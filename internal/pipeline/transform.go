package pipeline

import (
	"fmt"

	"github.com/dgallion1/docstruct/internal/config"
	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/parser"
	"github.com/dgallion1/docstruct/internal/rewrite"
)

// TableMode selects which record convention the table synthesizer uses.
type TableMode string

const (
	TablesNone     TableMode = "none"
	TablesRules    TableMode = "rules"
	TablesSections TableMode = "sections"
	TablesAuto     TableMode = "auto"
)

// ParseTableMode accepts the mode names used by the API and CLI. An empty
// name disables table synthesis.
func ParseTableMode(s string) (TableMode, error) {
	switch TableMode(s) {
	case "", TablesNone:
		return TablesNone, nil
	case TablesRules, TablesSections, TablesAuto:
		return TableMode(s), nil
	}
	return "", fmt.Errorf("unknown table mode %q (want none, rules, sections or auto)", s)
}

// Options select the rewrites applied by Transform.
type Options struct {
	Lists       bool
	Tables      TableMode
	Conventions config.Conventions
}

func DefaultOptions() Options {
	return Options{Tables: TablesNone, Conventions: config.DefaultConventions()}
}

// Outcome is the result of one Transform call.
type Outcome struct {
	Text           string
	Root           *doctree.Collection
	ListsCollapsed int
	Table          *rewrite.Table
	TableErr       error
}

// Message is a one-line summary suitable for a status line.
func (o Outcome) Message() string {
	switch {
	case o.TableErr != nil:
		return o.TableErr.Error()
	case o.Table != nil:
		return fmt.Sprintf("table created with %d columns and %d rows", len(o.Table.Columns), len(o.Table.Rows))
	case o.ListsCollapsed > 0:
		return fmt.Sprintf("%d lists converted", o.ListsCollapsed)
	}
	return "no changes"
}

// Transform parses text, applies the selected rewrites and renders the
// result. A failed table synthesis leaves the document unchanged and is
// reported in TableErr.
func Transform(text string, opts Options) Outcome {
	root := parser.New(opts.Conventions.Parser()).Parse(text)
	out := Outcome{Root: root}

	if opts.Lists {
		out.ListsCollapsed = rewrite.NormalizeAllLists(root)
	}

	tab := rewrite.NewTabulator(opts.Conventions.UnnamedColumn)
	switch opts.Tables {
	case TablesRules:
		out.Table, out.TableErr = tab.FromRules(root)
	case TablesSections:
		out.Table, out.TableErr = tab.FromSections(root)
	case TablesAuto:
		out.Table, out.TableErr = tab.Tabulate(root)
	}

	out.Text = doctree.Render(root)
	return out
}
