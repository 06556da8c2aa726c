package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/run"
)

// ColumnProfiler summarizes feature columns of an assembled table
type ColumnProfiler struct{}

// NewColumnProfiler creates a new column profiler
func NewColumnProfiler() *ColumnProfiler {
	return &ColumnProfiler{}
}

// ProfileColumns profiles the named columns, in the order given. Columns that
// no record carries are skipped.
func (cp *ColumnProfiler) ProfileColumns(records []*connectome.SubjectRecord, names []string) []run.ColumnProfile {
	profiles := make([]run.ColumnProfile, 0, len(names))
	for _, name := range names {
		values, undefined, found := columnValues(records, name)
		if !found {
			continue
		}
		profile := cp.ProfileColumn(values, name)
		profile.Undefined = undefined
		profiles = append(profiles, profile)
	}
	return profiles
}

// ProfileColumn computes summary statistics of one column of defined values.
// An empty column yields a profile with only the name set.
func (cp *ColumnProfiler) ProfileColumn(data []float64, name string) run.ColumnProfile {
	p := run.ColumnProfile{Name: name, Count: len(data)}
	if len(data) == 0 {
		return p
	}

	// stats only errors on empty input, ruled out above
	p.Mean, _ = stats.Mean(data)
	p.StdDev, _ = stats.StandardDeviationPopulation(data)
	p.Min, _ = stats.Min(data)
	p.Max, _ = stats.Max(data)
	p.Median, _ = stats.Median(data)
	p.Q25 = quartile(data, 25, p.Min)
	p.Q75 = quartile(data, 75, p.Max)

	p.Constant = p.Min == p.Max
	p.Skewness = calculateSkewness(data, p.Mean, p.StdDev)
	p.Outliers = detectOutliers(data, p.Q25, p.Q75)
	return p
}

// quartile falls back when the sample is too small for the percentile
func quartile(data []float64, pct, fallback float64) float64 {
	q, err := stats.Percentile(data, pct)
	if err != nil || math.IsNaN(q) {
		return fallback
	}
	return q
}

func columnValues(records []*connectome.SubjectRecord, name string) (values []float64, undefined int, found bool) {
	values = make([]float64, 0, len(records))
	for _, r := range records {
		v, ok := r.Lookup(name)
		if !ok {
			continue
		}
		found = true
		if !v.IsDefined() {
			undefined++
			continue
		}
		values = append(values, v.Float())
	}
	return values, undefined, found
}
