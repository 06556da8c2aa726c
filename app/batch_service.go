package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/run"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/errors"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/features"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/metrics"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/profiling"
	"github.com/BunBunAstrale/AlmostDoctorsAI/ports"
)

// BatchService turns a directory of connectivity matrices plus a label sheet
// into one feature table
type BatchService struct {
	labels   ports.LabelSource
	matrices ports.MatrixSource
	sink     ports.TableSink
	report   ports.ReportSink
	recorder *metrics.Recorder
	logger   *internal.Logger
}

// BatchRequest defines the inputs of one run
type BatchRequest struct {
	Features    features.Options
	NodePad     int
	Workers     int
	ZScore      bool
	CodeVersion string
	Settings    map[string]string // fingerprinted into the manifest
	Inputs      run.Inputs
	Output      string // recorded in the manifest
}

// BatchResult contains the complete output of a run
type BatchResult struct {
	Columns  []string
	Records  []*connectome.SubjectRecord
	Manifest *run.Manifest
}

// NewBatchService creates a batch service
func NewBatchService(labels ports.LabelSource, matrices ports.MatrixSource, sink ports.TableSink, logger *internal.Logger) *BatchService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BatchService{
		labels:   labels,
		matrices: matrices,
		sink:     sink,
		recorder: metrics.NewRecorder(),
		logger:   logger,
	}
}

// WithReport adds a report sink, called after the table is written
func (s *BatchService) WithReport(report ports.ReportSink) *BatchService {
	s.report = report
	return s
}

// WithRecorder replaces the per-run metrics recorder
func (s *BatchService) WithRecorder(r *metrics.Recorder) *BatchService {
	s.recorder = r
	return s
}

// Recorder returns the metrics recorder of the service
func (s *BatchService) Recorder() *metrics.Recorder {
	return s.recorder
}

// subjectOutcome is the per-matrix result of the parallel phase
type subjectOutcome struct {
	ref        ports.MatrixRef
	id         core.SubjectID
	label      string
	extraction *features.Extraction
	err        error
}

// Run processes every discovered matrix. Subjects without a label or whose
// matrix cannot be read or extracted are skipped and counted. Extraction runs
// on up to Workers goroutines; assembly is sequential in discovery order, so
// the column schema is fixed by the first processed subject in that order
// regardless of Workers. A schema mismatch or an empty result aborts the run
// before anything is written.
func (s *BatchService) Run(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	startTime := time.Now()

	if err := req.Features.Validate(); err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	workers := req.Workers
	if workers < 1 {
		workers = 1
	}

	labels, err := s.labels.LoadLabels(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := s.matrices.ListMatrices(ctx)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, errors.NotFound(fmt.Sprintf("connectivity matrices (*.csv) in %s", req.Inputs.Matrices))
	}

	manifest := run.NewManifest(req.CodeVersion, req.Settings, labels, req.Inputs)
	s.logger.Info("[BatchService] run %s: %d matrices, %d labels, %d workers",
		manifest.RunID, len(refs), len(labels), workers)

	outcomes := make([]subjectOutcome, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.processSubject(gctx, ref, labels, req.Features)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assembler := features.NewAssembler(req.NodePad)
	var summary run.Summary
	records := make([]*connectome.SubjectRecord, 0, len(outcomes))

	for _, o := range outcomes {
		if o.err != nil {
			s.skip(&summary, o)
			continue
		}
		rec, err := assembler.Assemble(o.id, o.label, o.extraction)
		if err != nil {
			if core.IsBatchFatal(err) {
				return nil, errors.WithCode(errors.CodeSchemaMismatch, fmt.Errorf("%s: %w", o.ref.Name, err))
			}
			o.err = core.NewExtractionError(o.id, err)
			s.skip(&summary, o)
			continue
		}
		records = append(records, rec)
		summary.Used++
		s.recorder.RecordSubject(metrics.OutcomeUsed)
	}

	if len(records) == 0 {
		return nil, errors.WithCode(errors.CodeNoSubjects, fmt.Errorf(
			"%w: %d matrices, %d without a label, %d failed; check that label ids match matrix file names",
			core.ErrNoSubjects, len(refs), summary.SkippedNoLabel, summary.SkippedError))
	}

	features.SortByID(records)
	manifest.Profile = profiling.NewColumnProfiler().ProfileColumns(records, connectome.GlobalFieldNames)
	if req.ZScore {
		features.ZScore(records)
	}

	columns := assembler.Columns()
	summary.Nodes = assembler.Nodes()
	summary.EdgesPerSubject = summary.Nodes * (summary.Nodes - 1) / 2
	summary.Columns = len(columns)
	s.recorder.SetSchema(summary.Nodes, summary.Columns)

	if err := s.sink.WriteTable(ctx, columns, records); err != nil {
		return nil, errors.Wrap(err, "failed to write feature table")
	}

	manifest.Finish(req.Output, summary)
	elapsed := time.Since(startTime)
	s.recorder.SetRunDuration(elapsed)

	s.logger.Info("[BatchService] processed %s subjects, skipped %s without label, %s on error",
		humanize.Comma(int64(summary.Used)), humanize.Comma(int64(summary.SkippedNoLabel)), humanize.Comma(int64(summary.SkippedError)))
	s.logger.Info("[BatchService] %s columns, %s edges per subject, written to %s in %s",
		humanize.Comma(int64(summary.Columns)), humanize.Comma(int64(summary.EdgesPerSubject)), req.Output, elapsed.Round(time.Millisecond))

	if s.report != nil {
		if err := s.report.WriteReport(ctx, manifest); err != nil {
			s.logger.Warn("[BatchService] failed to write run report: %v", err)
		}
	}

	return &BatchResult{Columns: columns, Records: records, Manifest: manifest}, nil
}

// processSubject matches, reads and extracts one matrix. It never fails the
// batch: problems come back in the outcome's err.
func (s *BatchService) processSubject(ctx context.Context, ref ports.MatrixRef, labels map[core.SubjectID]string, opts features.Options) subjectOutcome {
	o := subjectOutcome{ref: ref, id: core.CanonicalSubjectID(ref.Name)}

	label, ok := labels[o.id]
	if !ok {
		o.err = core.NewMissingLabelError(o.id)
		return o
	}
	o.label = label

	cells, err := s.matrices.ReadMatrix(ctx, ref)
	if err != nil {
		o.err = core.NewExtractionError(o.id, err)
		return o
	}
	s.logger.Trace("[BatchService] %s: read %d rows", ref.Name, len(cells))

	start := time.Now()
	ex, err := features.ExtractCells(cells, opts)
	elapsed := time.Since(start)
	s.recorder.ObserveExtraction(elapsed)
	if err != nil {
		if !core.IsSubjectError(err) {
			err = core.NewExtractionError(o.id, err)
		}
		o.err = err
		return o
	}

	s.logger.Debug("[BatchService] %s (id=%s): N=%d extracted in %s", ref.Name, o.id, ex.Matrix.N(), elapsed)
	o.extraction = ex
	return o
}

func (s *BatchService) skip(summary *run.Summary, o subjectOutcome) {
	reason, outcome := run.SkipError, metrics.OutcomeError
	if stderrors.Is(o.err, core.ErrMissingLabel) {
		reason, outcome = run.SkipNoLabel, metrics.OutcomeNoLabel
		s.logger.Debug("[BatchService] skip %s (id=%s): no label", o.ref.Name, o.id)
	} else {
		s.logger.Warn("[BatchService] skip %s (id=%s): %v", o.ref.Name, o.id, o.err)
	}

	summary.AddSkip(run.Skip{Subject: o.id, Source: o.ref.Name, Reason: reason, Detail: o.err.Error()})
	s.recorder.RecordSubject(outcome)
}
