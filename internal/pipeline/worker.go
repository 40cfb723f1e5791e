package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/export"
	"github.com/dgallion1/docstruct/internal/importer"
	"github.com/dgallion1/docstruct/internal/parser"
)

// Worker processes a single conversion job.
type Worker struct {
	log               *slog.Logger
	fallbackPdftotext bool
}

func NewWorker(log *slog.Logger, fallbackPdftotext bool) *Worker {
	return &Worker{log: log, fallbackPdftotext: fallbackPdftotext}
}

// Process runs import, structuring and export for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Import
	job.SetStatus(StatusImporting, "importing")
	imp, err := importer.ForFile(job.Filename, importer.Options{
		Conventions:       job.Options.Conventions.Parser(),
		FallbackPdftotext: w.fallbackPdftotext,
	})
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "importing")
		return
	}

	doc, err := imp.Import(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("import failed", "error", err)
		job.AddError(fmt.Sprintf("import: %s", err))
		job.SetStatus(StatusFailed, "importing")
		return
	}
	job.SetImported(doc.Title, ContentHashHex([]byte(doc.Text)))

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "importing")
		return
	}

	// Phase 2: Structure
	job.SetStatus(StatusStructuring, "structuring")
	out := Transform(doc.Text, job.Options)
	rows := 0
	if out.Table != nil {
		rows = len(out.Table.Rows)
	}
	job.SetStructure(len(parser.SplitLines(doc.Text)), doctree.Count(out.Root), out.ListsCollapsed, rows)
	if out.TableErr != nil {
		log.Warn("table synthesis skipped", "mode", job.Options.Tables, "error", out.TableErr)
		job.AddWarning(out.TableErr.Error())
	}
	log.Info("structured document", "lists", out.ListsCollapsed, "table_rows", rows)

	// Phase 3: Export
	job.SetStatus(StatusExporting, "exporting")
	title := job.Snapshot().Title
	var buf bytes.Buffer
	if err := export.Write(&buf, job.Format, title, out.Text); err != nil {
		log.Error("export failed", "format", job.Format, "error", err)
		job.AddError(fmt.Sprintf("export: %s", err))
		job.SetStatus(StatusFailed, "exporting")
		return
	}

	job.SetResult(buf.Bytes())
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion complete", "format", job.Format, "bytes", buf.Len())
}
