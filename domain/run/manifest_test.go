package run

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFingerprint_Deterministic(t *testing.T) {
	fp1 := NewRunFingerprint("cfg", "cohort", "1.0.0")
	fp2 := NewRunFingerprint("cfg", "cohort", "1.0.0")
	assert.Equal(t, fp1.Fingerprint, fp2.Fingerprint)
	assert.Len(t, fp1.Fingerprint.String(), 64)
}

func TestRunFingerprint_Unique(t *testing.T) {
	base := NewRunFingerprint("cfg", "cohort", "1.0.0")

	testCases := []struct {
		name string
		fp   RunFingerprint
	}{
		{"different_config", NewRunFingerprint("cfg2", "cohort", "1.0.0")},
		{"different_cohort", NewRunFingerprint("cfg", "cohort2", "1.0.0")},
		{"different_code", NewRunFingerprint("cfg", "cohort", "1.0.1")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, base.Fingerprint, tc.fp.Fingerprint)
		})
	}
}

func TestManifest_Lifecycle(t *testing.T) {
	labels := map[core.SubjectID]string{"1": "pte", "2": "control"}
	settings := map[string]string{"threshold": "0", "density": "0"}

	m := NewManifest("1.0.0", settings, labels, Inputs{Labels: "labels.csv", Matrices: "mats"})
	require.NoError(t, m.Validate())
	assert.False(t, core.ID(m.RunID).IsEmpty())
	assert.Equal(t, core.ComputeCohortHash(labels), m.Fingerprint.CohortHash)

	var s Summary
	s.Used = 1
	s.AddSkip(Skip{Subject: "3", Reason: SkipNoLabel})
	s.AddSkip(Skip{Subject: "4", Reason: SkipError, Detail: "shape"})
	m.Finish("features.csv", s)

	require.NoError(t, m.Validate())
	assert.Equal(t, 3, m.Summary.Discovered())
	assert.Equal(t, 1, m.Summary.SkippedNoLabel)
	assert.Equal(t, 1, m.Summary.SkippedError)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"skipped_no_label":1`)
}

func TestManifest_ValidateMissingFields(t *testing.T) {
	m := &Manifest{}
	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Contains(t, err.Error(), "run ID cannot be empty")

	m = NewManifest("1.0.0", map[string]string{}, nil, Inputs{})
	m.RunID = "  "
	assert.Error(t, m.Validate(), "blank run id is rejected")

	m = NewManifest("", map[string]string{}, nil, Inputs{})
	assert.Error(t, m.Validate(), "code version is required")
}
