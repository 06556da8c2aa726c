package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/errors"
)

// FeatureSheet is the sheet name used for XLSX feature tables
const FeatureSheet = "features"

// TableWriter writes the feature table as CSV or XLSX, chosen by the file
// extension. The file is written under a temporary name and renamed into place.
type TableWriter struct {
	path   string
	logger *internal.Logger
}

// NewTableWriter creates a writer for path
func NewTableWriter(path string, logger *internal.Logger) *TableWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TableWriter{path: path, logger: logger}
}

// Path returns the destination file
func (w *TableWriter) Path() string {
	return w.path
}

// WriteTable writes a header row and one row per record. Undefined values
// become empty cells.
func (w *TableWriter) WriteTable(ctx context.Context, columns []string, records []*connectome.SubjectRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, rec := range records {
		if len(rec.Fields)+2 != len(columns) {
			return errors.InternalError(fmt.Sprintf("record %s has %d cells, header has %d", rec.ID, len(rec.Fields)+2, len(columns)))
		}
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.IOError("create directory", dir, err)
	}

	var encode func(io.Writer) error
	switch strings.ToLower(filepath.Ext(w.path)) {
	case ".csv":
		encode = func(out io.Writer) error { return writeCSV(out, columns, records) }
	case ".xlsx":
		encode = func(out io.Writer) error { return writeXLSX(out, columns, records) }
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported table format %q", filepath.Ext(w.path)))
	}

	tmp, err := os.CreateTemp(dir, ".graphfeat-*"+filepath.Ext(w.path))
	if err != nil {
		return errors.IOError("create temporary file in", dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp); err != nil {
		tmp.Close()
		return errors.IOError("write", w.path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.IOError("close", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return errors.IOError("rename into", w.path, err)
	}

	w.logger.Debug("[TableWriter] wrote %d rows x %d columns to %s", len(records), len(columns), w.path)
	return nil
}

func writeCSV(out io.Writer, columns []string, records []*connectome.SubjectRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(out io.Writer, columns []string, records []*connectome.SubjectRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", FeatureSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(FeatureSheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, rec := range records {
		row := make([]interface{}, 0, len(columns))
		row = append(row, rec.ID.String(), rec.Label)
		for _, field := range rec.Fields {
			if field.Value.IsDefined() {
				row = append(row, field.Value.Float())
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(out)
}
