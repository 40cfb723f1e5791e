// Package main provides the docstruct command line tool.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docstruct/internal/config"
	"github.com/dgallion1/docstruct/internal/importer"
)

// Version information (set at build time)
var version = "dev"

type rootOptions struct {
	conventions string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "docstruct",
		Short: "Structure plain-text documents",
		Long: `docstruct parses headings, sections and horizontal rules into a block tree,
turns indented list items into list markup and record groups into pipe tables.

Input is a file (any supported format) or stdin when no file is given.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.conventions, "conventions", "", "YAML conventions file (overrides CONVENTIONS_FILE)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(
		newStructureCmd(opts),
		newRenderCmd(opts),
		newOutlineCmd(opts),
		newLocateCmd(opts),
	)
	return root
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) config() (config.Config, error) {
	cfg, err := config.LoadWithConventions()
	if err != nil {
		return cfg, err
	}
	if o.conventions != "" {
		conv, err := config.LoadConventions(o.conventions)
		if err != nil {
			return cfg, err
		}
		cfg.Conventions = conv
	}
	return cfg, nil
}

// readInput imports the named file, or reads stdin as plain text.
func readInput(cmd *cobra.Command, args []string, cfg config.Config) (*importer.Document, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &importer.Document{Title: "stdin", Text: string(data)}, nil
	}

	path := args[0]
	imp, err := importer.ForFile(path, importer.Options{
		Conventions:       cfg.Conventions.Parser(),
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return imp.Import(f, filepath.Base(path))
}

// openOutput returns the -o target or the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
