// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package build

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/reportbuild/pkg/types"
)

// ManifestFile is the per-run summary written into the build directory.
const ManifestFile = "manifest.yaml"

// WriteManifest replaces path with a YAML rendering of run.
func WriteManifest(path string, run types.RunRecord) error {
	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (types.RunRecord, error) {
	var run types.RunRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return run, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &run); err != nil {
		return run, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return run, nil
}
