// Package matrixcsv discovers and reads headerless connectivity matrix CSVs
// from a directory.
package matrixcsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/errors"
	"github.com/BunBunAstrale/AlmostDoctorsAI/ports"
)

// Directory is a ports.MatrixSource over every *.csv file in one directory
type Directory struct {
	dir string
}

// NewDirectory creates a matrix source rooted at dir
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

// ListMatrices returns the *.csv files of the directory sorted by path.
// Subdirectories are not searched.
func (d *Directory) ListMatrices(ctx context.Context) ([]ports.MatrixRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("matrix directory %s", d.dir))
		}
		return nil, errors.IOError("stat", d.dir, err)
	}
	if !info.IsDir() {
		return nil, errors.InvalidInput(fmt.Sprintf("matrix path %s is not a directory", d.dir))
	}

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, errors.IOError("list", d.dir, err)
	}

	refs := make([]ports.MatrixRef, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		refs = append(refs, ports.MatrixRef{
			Path: filepath.Join(d.dir, e.Name()),
			Name: e.Name(),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// ReadMatrix returns the raw cells of a matrix file. Rows may differ in length;
// the normalizer decides what a ragged or non-square matrix means.
func (d *Directory) ReadMatrix(ctx context.Context, ref ports.MatrixRef) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(ref.Path)
	if err != nil {
		return nil, errors.IOError("open", ref.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.IOError("parse", ref.Path, err)
	}

	// whitespace-only lines carry no cells
	cells := records[:0]
	for _, rec := range records {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		cells = append(cells, rec)
	}
	return cells, nil
}
