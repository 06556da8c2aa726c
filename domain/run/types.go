package run

import (
	"crypto/sha256"
	"fmt"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
)

// SkipReason classifies why a subject did not reach the feature table
type SkipReason string

const (
	SkipNoLabel SkipReason = "no_label"
	SkipError   SkipReason = "error"
)

// Skip records one subject left out of the table
type Skip struct {
	Subject core.SubjectID `json:"subject"`
	Source  string         `json:"source"`
	Reason  SkipReason     `json:"reason"`
	Detail  string         `json:"detail,omitempty"`
}

// Summary is the outcome of one batch
type Summary struct {
	Used            int    `json:"used"`
	SkippedNoLabel  int    `json:"skipped_no_label"`
	SkippedError    int    `json:"skipped_error"`
	Nodes           int    `json:"nodes"`
	EdgesPerSubject int    `json:"edges_per_subject"`
	Columns         int    `json:"columns"`
	Skips           []Skip `json:"skips,omitempty"`
}

// Discovered is the number of matrices seen by the batch
func (s Summary) Discovered() int {
	return s.Used + s.SkippedNoLabel + s.SkippedError
}

// AddSkip records a skipped subject and bumps the matching counter
func (s *Summary) AddSkip(skip Skip) {
	switch skip.Reason {
	case SkipNoLabel:
		s.SkippedNoLabel++
	default:
		s.SkippedError++
	}
	s.Skips = append(s.Skips, skip)
}

// RunFingerprint ties a table to the exact inputs and settings that produced it
type RunFingerprint struct {
	ConfigHash  core.ConfigHash `json:"config_hash"`
	CohortHash  core.CohortHash `json:"cohort_hash"`
	CodeVersion string          `json:"code_version"`
	Fingerprint core.Hash       `json:"fingerprint"`
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(configHash core.ConfigHash, cohortHash core.CohortHash, codeVersion string) RunFingerprint {
	return RunFingerprint{
		ConfigHash:  configHash,
		CohortHash:  cohortHash,
		CodeVersion: codeVersion,
		Fingerprint: computeRunFingerprint(configHash, cohortHash, codeVersion),
	}
}

func computeRunFingerprint(configHash core.ConfigHash, cohortHash core.CohortHash, codeVersion string) core.Hash {
	data := fmt.Sprintf("config:%s|cohort:%s|code:%s", configHash, cohortHash, codeVersion)
	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}

// ColumnProfile summarizes one feature column across the subjects of a run.
// Statistics cover the defined cells only.
type ColumnProfile struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	Undefined int     `json:"undefined"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Median    float64 `json:"median"`
	Q25       float64 `json:"q25"`
	Q75       float64 `json:"q75"`
	Skewness  float64 `json:"skewness"`
	Outliers  int     `json:"outliers"`
	Constant  bool    `json:"constant"`
}
