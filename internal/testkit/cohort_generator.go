package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
)

// CohortGeneratorConfig configures the synthetic connectome cohort
type CohortGeneratorConfig struct {
	Subjects int      `json:"subjects"`
	Nodes    int      `json:"nodes"`
	Density  float64  `json:"density"`  // probability that an upper-triangle pair carries weight
	Noise    float64  `json:"noise"`    // amplitude of the asymmetric jitter added before normalization
	Negative float64  `json:"negative"` // probability that a cell is negated
	Seed     int64    `json:"seed"`
	Labels   []string `json:"labels"`
}

// DefaultCohortConfig returns a small cohort that exercises every metric
func DefaultCohortConfig() CohortGeneratorConfig {
	return CohortGeneratorConfig{
		Subjects: 6,
		Nodes:    8,
		Density:  0.6,
		Noise:    0.05,
		Negative: 0.1,
		Seed:     42,
		Labels:   []string{"control", "patient"},
	}
}

// CohortGenerator produces raw, unnormalized connectivity matrices
type CohortGenerator struct {
	config CohortGeneratorConfig
	rng    *rand.Rand
}

// NewCohortGenerator creates a generator with a fixed seed
func NewCohortGenerator(config CohortGeneratorConfig) *CohortGenerator {
	return &CohortGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// RawMatrix generates one raw matrix: roughly symmetric, with a noisy
// diagonal and occasional negative cells so normalization has work to do.
func (g *CohortGenerator) RawMatrix() [][]float64 {
	n := g.config.Nodes
	raw := make([][]float64, n)
	for i := range raw {
		raw[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		raw[i][i] = g.rng.Float64()
		for j := i + 1; j < n; j++ {
			if g.rng.Float64() >= g.config.Density {
				continue
			}
			w := 0.1 + 0.9*g.rng.Float64()
			raw[i][j] = w + g.config.Noise*g.rng.NormFloat64()
			raw[j][i] = w + g.config.Noise*g.rng.NormFloat64()
			if g.rng.Float64() < g.config.Negative {
				raw[i][j] = -raw[i][j]
			}
		}
	}
	return raw
}

// Subject is one generated cohort member
type Subject struct {
	FileID string
	Label  string
	Raw    [][]float64
}

// GenerateCohort generates every subject. File ids look like "sub-001".
func (g *CohortGenerator) GenerateCohort() []Subject {
	subjects := make([]Subject, g.config.Subjects)
	for s := range subjects {
		label := ""
		if len(g.config.Labels) > 0 {
			label = g.config.Labels[s%len(g.config.Labels)]
		}
		subjects[s] = Subject{
			FileID: fmt.Sprintf("sub-%03d", s+1),
			Label:  label,
			Raw:    g.RawMatrix(),
		}
	}
	return subjects
}

// WriteCohort writes one headerless CSV matrix per subject under dir/matrices
// and a labels.csv with ID and Label columns under dir. It returns both paths.
func WriteCohort(dir string, subjects []Subject) (labelsPath, matrixDir string, err error) {
	matrixDir = filepath.Join(dir, "matrices")
	if err := os.MkdirAll(matrixDir, 0o755); err != nil {
		return "", "", err
	}

	labels := [][]string{{"ID", "Label"}}
	for _, s := range subjects {
		if err := WriteMatrixCSV(filepath.Join(matrixDir, s.FileID+".csv"), s.Raw); err != nil {
			return "", "", err
		}
		labels = append(labels, []string{s.FileID, s.Label})
	}

	labelsPath = filepath.Join(dir, "labels.csv")
	if err := WriteCSV(labelsPath, labels); err != nil {
		return "", "", err
	}
	return labelsPath, matrixDir, nil
}

// WriteMatrixCSV writes a numeric matrix as a headerless CSV
func WriteMatrixCSV(path string, raw [][]float64) error {
	rows := make([][]string, len(raw))
	for i, r := range raw {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			rows[i][j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return WriteCSV(path, rows)
}

// WriteCSV writes string records to path
func WriteCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// UniformComplete returns the normalized complete graph on n nodes with every
// off-diagonal weight equal to w.
func UniformComplete(n int, w float64) *connectome.Matrix {
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				data[i*n+j] = w
			}
		}
	}
	m, err := connectome.NewMatrix(n, data)
	if err != nil {
		panic(err)
	}
	return m
}

// FromEdges builds a normalized n-node matrix from undirected weighted edges
func FromEdges(n int, edges map[[2]int]float64) *connectome.Matrix {
	data := make([]float64, n*n)
	for e, w := range edges {
		data[e[0]*n+e[1]] = w
		data[e[1]*n+e[0]] = w
	}
	m, err := connectome.NewMatrix(n, data)
	if err != nil {
		panic(err)
	}
	return m
}
