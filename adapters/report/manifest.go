package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/run"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/errors"
)

// WriteManifest writes the run manifest as indented JSON
func WriteManifest(path string, m *run.Manifest) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "refusing to write an incomplete manifest")
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IOError("create directory", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return errors.IOError("write manifest", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest
func ReadManifest(path string) (*run.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("read manifest", path, err)
	}
	var m run.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to decode manifest %s", path)
	}
	return &m, nil
}
