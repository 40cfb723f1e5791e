package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docstruct/internal/parser"
)

// CSVImporter handles CSV files. The first row names the columns; every
// data row becomes a rule-delimited record with one heading per column, so
// the table synthesizer reproduces the sheet.
type CSVImporter struct {
	Conventions parser.Conventions
}

func (p *CSVImporter) Import(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	out := &Document{Title: titleFromFilename(filename)}
	if len(records) < 2 {
		return out, nil
	}

	headers := records[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	for _, row := range records[1:] {
		// Cells without a column name go first so no heading claims them.
		for j, cell := range row {
			if j >= len(headers) || headers[j] == "" {
				p.writeCell(&sb, cell)
			}
		}
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				sb.WriteString(headingLine(2, headers[j]))
				sb.WriteByte('\n')
				p.writeCell(&sb, cell)
			}
		}
		sb.WriteString("---\n")
	}

	out.Text = sb.String()
	return out, nil
}

// writeCell escapes lines the classifier would treat as structure.
func (p *CSVImporter) writeCell(sb *strings.Builder, cell string) {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, "\r\n", "\n"))
	if cell == "" {
		return
	}
	for _, line := range strings.Split(cell, "\n") {
		if kind, _ := parser.Classify(line, p.Conventions); kind != parser.LineText {
			sb.WriteByte('\\')
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
