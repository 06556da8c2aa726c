package ports

import (
	"context"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/run"
)

// LabelSource loads the cohort label sheet keyed by canonical subject id
type LabelSource interface {
	LoadLabels(ctx context.Context) (map[core.SubjectID]string, error)
}

// MatrixRef identifies one connectivity matrix file
type MatrixRef struct {
	Path string // full path, used for reading
	Name string // base name, used for subject id matching
}

// MatrixSource discovers and reads raw connectivity matrices. ListMatrices
// returns refs in a stable order; that order is the batch's discovery order.
type MatrixSource interface {
	ListMatrices(ctx context.Context) ([]MatrixRef, error)
	ReadMatrix(ctx context.Context, ref MatrixRef) ([][]string, error)
}

// TableSink persists the assembled feature table
type TableSink interface {
	WriteTable(ctx context.Context, columns []string, records []*connectome.SubjectRecord) error
}

// ReportSink renders a human-readable summary of a finished run
type ReportSink interface {
	WriteReport(ctx context.Context, manifest *run.Manifest) error
}
