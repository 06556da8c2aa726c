// Package features computes the global and nodal graph descriptors of a
// connectivity matrix and assembles them into fixed-width subject records.
package features

import (
	"fmt"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/connectivity"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/graphs"
)

// Options configures one extraction. It is passed by value into every call;
// nothing is read from package state.
type Options struct {
	Normalize connectivity.NormalizeOptions `json:"normalize"`
	// Threshold is the strict lower bound on weights that become edges
	Threshold float64 `json:"threshold"`
	// Density, when in (0,1], keeps only that fraction of strongest weights
	// for metric computation. 0 disables it.
	Density float64 `json:"density"`
}

// DefaultOptions matches the reference pipeline
func DefaultOptions() Options {
	return Options{
		Normalize: connectivity.DefaultNormalizeOptions(),
		Threshold: 0,
	}
}

// Validate rejects settings the engine cannot honour
func (o Options) Validate() error {
	if o.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %v", o.Threshold)
	}
	if o.Density < 0 || o.Density > 1 {
		return fmt.Errorf("density must be 0 (disabled) or in (0, 1], got %v", o.Density)
	}
	return nil
}

// Extraction is everything computed for one subject
type Extraction struct {
	// Matrix is the normalized matrix; edge columns come from it unthresholded
	Matrix *connectome.Matrix
	Global connectome.GlobalFeatures
	Nodal  connectome.NodalTable
}

// ExtractCells normalizes raw text cells and extracts features
func ExtractCells(cells [][]string, opts Options) (*Extraction, error) {
	m, err := connectivity.NormalizeCells(cells, opts.Normalize)
	if err != nil {
		return nil, err
	}
	return Extract(m, opts)
}

// Extract computes global and nodal features of a normalized matrix. A panic
// inside a measure is returned as an error so a caller can skip the subject.
func Extract(m *connectome.Matrix, opts Options) (ex *Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			ex, err = nil, fmt.Errorf("graph measure failed: %v", r)
		}
	}()

	if m.N() == 0 {
		return nil, core.NewShapeError(0, 0)
	}

	metricMatrix := m
	if opts.Density > 0 {
		metricMatrix, err = connectivity.KeepDensity(m, opts.Density)
		if err != nil {
			return nil, err
		}
	}

	views := graphs.Build(metricMatrix, opts.Threshold)
	return &Extraction{
		Matrix: m,
		Global: ComputeGlobal(views),
		Nodal:  ComputeNodal(views),
	}, nil
}
