package features

import (
	"fmt"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
)

// DefaultNodePad is the zero-pad width of node indices in nodal column names
const DefaultNodePad = 3

// Assembler turns extractions into records that share one column schema. The
// schema is fixed by the first record assembled; a later subject with a
// different node count is a core.ErrSchemaMismatch.
type Assembler struct {
	nodePad int
	n       int
	columns []string
	fixed   bool
}

// NewAssembler creates an assembler; a non-positive pad uses DefaultNodePad
func NewAssembler(nodePad int) *Assembler {
	if nodePad <= 0 {
		nodePad = DefaultNodePad
	}
	return &Assembler{nodePad: nodePad}
}

// Assemble flattens one subject: upper-triangle edge weights, global fields,
// then nodal metrics metric-major (every node of degree_bin, then strength, ...).
func (a *Assembler) Assemble(id core.SubjectID, label string, ex *Extraction) (*connectome.SubjectRecord, error) {
	n := ex.Matrix.N()
	if len(ex.Nodal) != n {
		return nil, fmt.Errorf("nodal table has %d rows for a %d-node matrix", len(ex.Nodal), n)
	}

	if !a.fixed {
		a.n = n
		a.columns = ColumnNames(n, a.nodePad)
		a.fixed = true
	} else if n != a.n {
		return nil, core.NewSchemaMismatchError(id, n, a.n)
	}

	fields := make([]connectome.Field, 0, len(a.columns)-2)

	for k, w := range ex.Matrix.UpperTriangle() {
		fields = append(fields, connectome.Field{Name: a.columns[2+k], Value: connectome.Defined(w)})
	}

	fields = append(fields, ex.Global.Fields()...)

	for mi := range connectome.NodalMetricNames {
		for node, row := range ex.Nodal {
			fields = append(fields, connectome.Field{
				Name:  a.columns[2+ex.Matrix.EdgeCount()+len(connectome.GlobalFieldNames)+mi*n+node],
				Value: connectome.Defined(row.Values()[mi]),
			})
		}
	}

	return &connectome.SubjectRecord{ID: id, Label: label, Fields: fields}, nil
}

// Columns returns the fixed schema, or nil before the first record
func (a *Assembler) Columns() []string {
	if !a.fixed {
		return nil
	}
	out := make([]string, len(a.columns))
	copy(out, a.columns)
	return out
}

// Nodes returns the node count fixed by the first record
func (a *Assembler) Nodes() int {
	return a.n
}

// ColumnNames builds the full schema for n nodes: id, label, edge_0..edge_{E-1},
// the global fields and {metric}_n{index} for each nodal metric and node.
func ColumnNames(n, nodePad int) []string {
	if nodePad <= 0 {
		nodePad = DefaultNodePad
	}
	edges := n * (n - 1) / 2
	cols := make([]string, 0, 2+edges+len(connectome.GlobalFieldNames)+len(connectome.NodalMetricNames)*n)
	cols = append(cols, "id", "label")
	for k := 0; k < edges; k++ {
		cols = append(cols, fmt.Sprintf("edge_%d", k))
	}
	cols = append(cols, connectome.GlobalFieldNames...)
	for _, metric := range connectome.NodalMetricNames {
		for node := 0; node < n; node++ {
			cols = append(cols, fmt.Sprintf("%s_n%0*d", metric, nodePad, node))
		}
	}
	return cols
}
