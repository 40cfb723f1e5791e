package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/export"
	"github.com/dgallion1/docstruct/internal/parser"
	"github.com/dgallion1/docstruct/internal/pipeline"
)

type transformFlags struct {
	lists  bool
	tables string
	strict bool
}

func (f *transformFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.lists, "lists", "l", false, "convert indented list items to list markup")
	cmd.Flags().StringVarP(&f.tables, "tables", "t", "none", "table synthesis: none, rules, sections or auto")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when table synthesis finds no records")
}

func runTransform(cmd *cobra.Command, root *rootOptions, flags *transformFlags, args []string) (pipeline.Outcome, string, error) {
	mode, err := pipeline.ParseTableMode(flags.tables)
	if err != nil {
		return pipeline.Outcome{}, "", err
	}
	cfg, err := root.config()
	if err != nil {
		return pipeline.Outcome{}, "", err
	}
	doc, err := readInput(cmd, args, cfg)
	if err != nil {
		return pipeline.Outcome{}, "", err
	}

	log := root.logger(cmd)
	out := pipeline.Transform(doc.Text, pipeline.Options{Lists: flags.lists, Tables: mode, Conventions: cfg.Conventions})
	if out.TableErr != nil {
		if flags.strict {
			return out, doc.Title, out.TableErr
		}
		log.Warn("table synthesis skipped", "mode", mode, "error", out.TableErr)
	}
	log.Info("structured", "title", doc.Title, "summary", out.Message())
	return out, doc.Title, nil
}

func newStructureCmd(root *rootOptions) *cobra.Command {
	flags := &transformFlags{}
	var format, output string
	cmd := &cobra.Command{
		Use:   "structure [file]",
		Short: "Apply list and table rewrites and write the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			out, title, err := runTransform(cmd, root, flags, args)
			if err != nil {
				return err
			}
			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := export.Write(w, f, title, out.Text); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown, html or docx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	flags := &transformFlags{}
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Structure the input and print it as an HTML fragment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _, err := runTransform(cmd, root, flags, args)
			if err != nil {
				return err
			}
			body, err := export.HTML(out.Text)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newOutlineCmd(root *rootOptions) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "outline [file]",
		Short: "Print the heading and section tree as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			doc, err := readInput(cmd, args, cfg)
			if err != nil {
				return err
			}
			if title == "" {
				title = doc.Title
			}
			tree := parser.New(cfg.Conventions.Parser()).Parse(doc.Text)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doctree.BuildOutline(title, tree))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "outline title (default: the input's title)")
	return cmd
}

func newLocateCmd(root *rootOptions) *cobra.Command {
	var line, column int
	cmd := &cobra.Command{
		Use:   "locate [file]",
		Short: "Print the heading breadcrumb at a line and column",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if line < 1 || column < 1 {
				return fmt.Errorf("--line and --column are 1-based")
			}
			cfg, err := root.config()
			if err != nil {
				return err
			}
			doc, err := readInput(cmd, args, cfg)
			if err != nil {
				return err
			}
			tree := parser.New(cfg.Conventions.Parser()).Parse(doc.Text)
			offset := parser.OffsetAt(doc.Text, line, column)
			path := doctree.Locate(tree, offset)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "offset %d\n", offset)
			if bc := doctree.Breadcrumb(path); len(bc) > 0 {
				fmt.Fprintln(w, strings.Join(bc, " > "))
			}
			for depth, b := range path {
				fmt.Fprintf(w, "%s%s %q\n", strings.Repeat("  ", depth), b.Tag, b.Value)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&line, "line", 1, "1-based line")
	cmd.Flags().IntVar(&column, "column", 1, "1-based column")
	return cmd
}
