package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"billaudit/internal/audit"
	"billaudit/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a requested export format. Empty means XLSX.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Writer accepts batches of documents and emits them in one format.
type Writer interface {
	WriteDocuments(docs []domain.Document) error
	// Close finishes the export and flushes it to the underlying io.Writer.
	Close() error
}

// NewWriter writes the header row and returns a Writer for the format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	if format == FormatCSV {
		return newCSVWriter(w)
	}
	return newXLSXWriter(w)
}

// BOM is the UTF-8 byte order mark written ahead of CSV exports for Excel on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

type csvWriter struct {
	csv       *csv.Writer
	extractor *audit.Extractor
}

func newCSVWriter(w io.Writer) (*csvWriter, error) {
	if _, err := w.Write(BOM); err != nil {
		return nil, fmt.Errorf("writing bom: %w", err)
	}
	cw := &csvWriter{csv: csv.NewWriter(w), extractor: audit.NewExtractor()}
	if err := cw.csv.Write(columns); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return cw, nil
}

func (w *csvWriter) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		if err := w.csv.Write(documentToRow(&docs[i], w.extractor)); err != nil {
			return err
		}
	}
	return nil
}

func (w *csvWriter) Close() error {
	w.csv.Flush()
	return w.csv.Error()
}

const sheetName = "Audits"

type xlsxWriter struct {
	out       io.Writer
	file      *excelize.File
	stream    *excelize.StreamWriter
	row       int
	extractor *audit.Extractor
}

func newXLSXWriter(w io.Writer) (*xlsxWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating stream writer: %w", err)
	}

	_ = sw.SetColWidth(1, 1, 38)   // id
	_ = sw.SetColWidth(2, 2, 32)   // filename
	_ = sw.SetColWidth(9, 9, 48)   // format reason
	_ = sw.SetColWidth(15, 15, 60) // summary

	xw := &xlsxWriter{out: w, file: f, stream: sw, row: 1, extractor: audit.NewExtractor()}
	if err := xw.writeRow(columns); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return xw, nil
}

func (w *xlsxWriter) writeRow(values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := w.stream.SetRow(cell, row); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *xlsxWriter) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		if err := w.writeRow(documentToRow(&docs[i], w.extractor)); err != nil {
			return fmt.Errorf("writing row %d: %w", w.row, err)
		}
	}
	return nil
}

func (w *xlsxWriter) Close() error {
	defer func() { _ = w.file.Close() }()
	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if _, err := w.file.WriteTo(w.out); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
