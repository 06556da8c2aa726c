package connectome

import (
	"fmt"
	"math"
	"strconv"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
)

// Value is a metric value. NaN is the undefined state: the metric has no
// mathematical meaning for the graph (no edges, a single node). Zero is a
// legitimate value and never stands in for undefined.
type Value float64

// Undefined returns the undefined value
func Undefined() Value {
	return Value(math.NaN())
}

// Defined wraps a float; NaN and ±Inf collapse to undefined
func Defined(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined()
	}
	return Value(v)
}

// IsDefined reports whether the value carries a number
func (v Value) IsDefined() bool {
	return !math.IsNaN(float64(v))
}

// Float returns the raw float64 (NaN when undefined)
func (v Value) Float() float64 {
	return float64(v)
}

// String renders the value for tabular output; undefined renders as an empty cell
func (v Value) String() string {
	if !v.IsDefined() {
		return ""
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

// Global feature field names, in output order
const (
	FieldNodes            = "gf_n_nodes"
	FieldBinaryDensity    = "gf_binary_density"
	FieldTotalStrength    = "gf_total_strength"
	FieldMeanStrength     = "gf_mean_strength"
	FieldCharPathLength   = "gf_charpath_len_w"
	FieldGlobalEfficiency = "gf_global_eff_w"
	FieldTransitivity     = "gf_transitivity_bin"
	FieldAvgClustering    = "gf_avg_weighted_clust"
	FieldCommunities      = "gf_n_communities"
	FieldModularity       = "gf_modularity_bin"
)

// GlobalFieldNames lists the global fields in output order
var GlobalFieldNames = []string{
	FieldNodes,
	FieldBinaryDensity,
	FieldTotalStrength,
	FieldMeanStrength,
	FieldCharPathLength,
	FieldGlobalEfficiency,
	FieldTransitivity,
	FieldAvgClustering,
	FieldCommunities,
	FieldModularity,
}

// GlobalFeatures holds the graph-level descriptors of one subject
type GlobalFeatures struct {
	Nodes                 Value
	BinaryDensity         Value
	TotalStrength         Value
	MeanStrength          Value
	CharPathLength        Value
	GlobalEfficiency      Value
	Transitivity          Value
	AvgWeightedClustering Value
	Communities           Value
	Modularity            Value
}

// Fields returns the features as ordered name/value pairs
func (g GlobalFeatures) Fields() []Field {
	return []Field{
		{FieldNodes, g.Nodes},
		{FieldBinaryDensity, g.BinaryDensity},
		{FieldTotalStrength, g.TotalStrength},
		{FieldMeanStrength, g.MeanStrength},
		{FieldCharPathLength, g.CharPathLength},
		{FieldGlobalEfficiency, g.GlobalEfficiency},
		{FieldTransitivity, g.Transitivity},
		{FieldAvgClustering, g.AvgWeightedClustering},
		{FieldCommunities, g.Communities},
		{FieldModularity, g.Modularity},
	}
}

// Nodal metric names, in output order
const (
	MetricDegree      = "degree_bin"
	MetricStrength    = "strength"
	MetricClustering  = "clustering_w"
	MetricBetweenness = "betweenness_len"
	MetricEigenvector = "eigenvector_w"
	MetricLocalEff    = "local_eff_bin"
)

// NodalMetricNames lists the per-node metrics in output order
var NodalMetricNames = []string{
	MetricDegree,
	MetricStrength,
	MetricClustering,
	MetricBetweenness,
	MetricEigenvector,
	MetricLocalEff,
}

// NodeMetrics are the per-node descriptors. They are plain floats: degenerate
// inputs yield 0, never undefined.
type NodeMetrics struct {
	DegreeBin      float64
	Strength       float64
	ClusteringW    float64
	BetweennessLen float64
	EigenvectorW   float64
	LocalEffBin    float64
}

// Values returns the metrics in NodalMetricNames order
func (m NodeMetrics) Values() []float64 {
	return []float64{m.DegreeBin, m.Strength, m.ClusteringW, m.BetweennessLen, m.EigenvectorW, m.LocalEffBin}
}

// NodalTable holds one row per node, indexed by node number
type NodalTable []NodeMetrics

// Column returns one metric for every node, in node order
func (t NodalTable) Column(metric string) ([]float64, error) {
	idx := -1
	for i, name := range NodalMetricNames {
		if name == metric {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("unknown nodal metric %q", metric)
	}
	out := make([]float64, len(t))
	for n, row := range t {
		out[n] = row.Values()[idx]
	}
	return out, nil
}

// Field is one named scalar of an assembled record
type Field struct {
	Name  string
	Value Value
}

// SubjectRecord is the assembled, fixed-width feature row of one subject
type SubjectRecord struct {
	ID     core.SubjectID
	Label  string
	Fields []Field
}

// Lookup returns the value of a named field
func (r *SubjectRecord) Lookup(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Undefined(), false
}

// Row renders the record as strings in column order: id, label, fields...
func (r *SubjectRecord) Row() []string {
	row := make([]string, 0, len(r.Fields)+2)
	row = append(row, r.ID.String(), r.Label)
	for _, f := range r.Fields {
		row = append(row, f.Value.String())
	}
	return row
}
