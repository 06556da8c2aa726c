package excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/errors"
)

// LabelReader loads a cohort label sheet into canonical subject id -> label
type LabelReader struct {
	config LabelConfig
	logger *internal.Logger
}

// NewLabelReader creates a label reader for a CSV or XLSX sheet
func NewLabelReader(config LabelConfig, logger *internal.Logger) *LabelReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LabelReader{config: config, logger: logger}
}

// LoadLabels reads the sheet, picks the id and label columns, canonicalizes
// ids and resolves duplicates keep-last (later rows win).
func (r *LabelReader) LoadLabels(ctx context.Context) (map[core.SubjectID]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := NewDataReader(r.config.FilePath, r.config.Sheet).WithLogger(r.logger).ReadData()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load labels from %s", r.config.FilePath)
	}

	idCol, labelCol, err := DetectLabelColumns(data, r.config.IDColumn, r.config.LabelColumn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load labels from %s", r.config.FilePath)
	}
	r.logger.Debug("[LabelReader] id column %q, label column %q", idCol, labelCol)

	labels := make(map[core.SubjectID]string, len(data.Rows))
	duplicates := 0
	for _, row := range data.Rows {
		rawID := row[idCol]
		if rawID == "" {
			continue
		}
		id := core.CanonicalSubjectID(rawID)
		if _, seen := labels[id]; seen {
			duplicates++
		}
		labels[id] = row[labelCol]
	}
	if duplicates > 0 {
		r.logger.Warn("[LabelReader] %d duplicate subject ids in %s, keeping the last occurrence", duplicates, r.config.FilePath)
	}

	r.logger.Info("[LabelReader] loaded %d labels from %s", len(labels), r.config.FilePath)
	return labels, nil
}

// DetectLabelColumns resolves the id and label columns. A non-empty hint must
// name an existing header; otherwise the first present default name is used.
func DetectLabelColumns(data *SheetData, idHint, labelHint string) (idCol, labelCol string, err error) {
	idCol, idOK := pickColumn(data, idHint, DefaultIDColumns)
	labelCol, labelOK := pickColumn(data, labelHint, DefaultLabelColumns)

	if !idOK || !labelOK {
		return "", "", errors.ConfigInvalid(fmt.Sprintf(
			"label sheet needs an id and a label column; found columns [%s]; set labels.id_column and labels.label_column to choose them",
			strings.Join(data.Headers, ", ")))
	}
	return idCol, labelCol, nil
}

func pickColumn(data *SheetData, hint string, candidates []string) (string, bool) {
	if hint != "" {
		return hint, data.HasColumn(hint)
	}
	for _, c := range candidates {
		if data.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}
