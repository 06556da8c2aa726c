package run

import (
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"
)

// Manifest describes one extraction run: what went in, which settings were
// used and what came out. It is written next to the feature table.
type Manifest struct {
	RunID       core.RunID        `json:"run_id"`
	CodeVersion string            `json:"code_version"`
	Settings    map[string]string `json:"settings"`
	Fingerprint RunFingerprint    `json:"fingerprint"`
	Inputs      Inputs            `json:"inputs"`
	Output      string            `json:"output"`
	Summary     Summary           `json:"summary"`
	Profile     []ColumnProfile   `json:"global_profile,omitempty"`
	CreatedAt   core.Timestamp    `json:"created_at"`
	FinishedAt  core.Timestamp    `json:"finished_at"`
}

// Inputs names the files a run read
type Inputs struct {
	Labels   string `json:"labels"`
	Matrices string `json:"matrices"`
}

// NewManifest creates a manifest for a run that is about to start
func NewManifest(codeVersion string, settings map[string]string, labels map[core.SubjectID]string, inputs Inputs) *Manifest {
	configHash := core.ComputeConfigHash(settings)
	cohortHash := core.ComputeCohortHash(labels)

	return &Manifest{
		RunID:       core.NewRunID(),
		CodeVersion: codeVersion,
		Settings:    settings,
		Fingerprint: NewRunFingerprint(configHash, cohortHash, codeVersion),
		Inputs:      inputs,
		CreatedAt:   core.Now(),
	}
}

// Finish stamps the outcome of the run
func (m *Manifest) Finish(output string, summary Summary) {
	m.Output = output
	m.Summary = summary
	m.FinishedAt = core.Now()
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if _, err := core.ParseRunID(m.RunID.String()); err != nil {
		return core.NewValidationError("run_manifest", err.Error())
	}
	if m.Fingerprint.ConfigHash == "" {
		return core.NewValidationError("run_manifest", "config_hash cannot be empty")
	}
	if m.Fingerprint.CohortHash == "" {
		return core.NewValidationError("run_manifest", "cohort_hash cannot be empty")
	}
	if m.CodeVersion == "" {
		return core.NewValidationError("run_manifest", "code_version cannot be empty")
	}
	if !m.FinishedAt.IsZero() && m.FinishedAt.Time().Before(m.CreatedAt.Time()) {
		return core.NewValidationError("run_manifest", "finished_at precedes created_at")
	}
	return nil
}
