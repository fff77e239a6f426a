package export

import (
	"encoding/csv"
	"io"

	"invoicebridge/internal/service"
)

// BOM is the UTF-8 byte order mark, written first so Excel on Windows reads
// accented supplier names correctly.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer for exporting previews as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WritePreview writes one row per previewed item.
func (w *Writer) WritePreview(p *service.PreviewResult) error {
	for _, row := range previewRows(p) {
		record := make([]string, len(row))
		for i, c := range row {
			record[i] = c.String()
		}
		if err := w.csv.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a complete CSV document for p, BOM and header included.
func WriteCSV(out io.Writer, p *service.PreviewResult) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WritePreview(p); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
