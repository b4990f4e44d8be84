// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package envfile loads a project's .env file into the process environment
// so REPORTBUILD_* settings can live next to the report sources.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
)

// Name is the env file looked up in the report directory.
const Name = ".env"

// Load reads dir/.env and sets every key not already present in the
// environment. It returns the keys it applied, sorted. A missing file is
// not an error.
func Load(dir string) ([]string, error) {
	path := filepath.Join(dir, Name)
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	var applied []string
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return applied, fmt.Errorf("setting %s: %w", k, err)
		}
		applied = append(applied, k)
	}
	sort.Strings(applied)
	return applied, nil
}
