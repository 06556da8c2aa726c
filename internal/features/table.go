package features

import (
	"sort"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"

	"github.com/montanaflynn/stats"
)

// zEpsilon keeps constant columns finite after standardization
const zEpsilon = 1e-12

// SortByID orders records by subject id, lexicographically
func SortByID(records []*connectome.SubjectRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}

// ZScore standardizes every feature column in place as (x-mean)/(std+1e-12),
// using the population standard deviation. Undefined cells are ignored when
// computing the column statistics and stay undefined.
func ZScore(records []*connectome.SubjectRecord) {
	if len(records) == 0 {
		return
	}
	width := len(records[0].Fields)
	for c := 0; c < width; c++ {
		column := make([]float64, 0, len(records))
		for _, r := range records {
			if c < len(r.Fields) && r.Fields[c].Value.IsDefined() {
				column = append(column, r.Fields[c].Value.Float())
			}
		}

		mu, err := stats.Mean(column)
		if err != nil {
			continue
		}
		sd, err := stats.StandardDeviationPopulation(column)
		if err != nil {
			continue
		}

		for _, r := range records {
			if c >= len(r.Fields) || !r.Fields[c].Value.IsDefined() {
				continue
			}
			r.Fields[c].Value = connectome.Defined((r.Fields[c].Value.Float() - mu) / (sd + zEpsilon))
		}
	}
}
