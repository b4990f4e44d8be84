// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for reportbuild developer tooling.
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories a report project expects.
var projectDirs = []string{
	"report",
	"report/build",
	"media",
}

// Init creates the report project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "reportbuild"
	cmdPkg  = "./cmd/reportbuild"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests for every package.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Clean removes the CLI binary and the report build directory.
func Clean() error {
	for _, dir := range []string{binDir, filepath.Join("report", "build")} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}

// Stats prints Go line counts and the word count of the report sources.
func Stats() error {
	prod, tests, err := countGoLines(".")
	if err != nil {
		return err
	}
	words, err := countTeXWords("report")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", tests)
	fmt.Printf("Words (report/*.tex):           %d\n", words)
	return nil
}

// countGoLines counts non-blank lines in production and _test.go files,
// skipping directories that start with "_" or ".".
func countGoLines(root string) (prod, tests int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := scanFile(path, func(line string) int {
			if strings.TrimSpace(line) == "" {
				return 0
			}
			return 1
		})
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			tests += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, tests, err
}

// countTeXWords counts words in the .tex files of dir, ignoring comment
// lines. A missing directory counts as zero.
func countTeXWords(dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.tex"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, f := range files {
		n, err := scanFile(f, func(line string) int {
			if strings.HasPrefix(strings.TrimSpace(line), "%") {
				return 0
			}
			return len(strings.Fields(line))
		})
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// scanFile sums count over every line of path.
func scanFile(path string, count func(line string) int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	total := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		total += count(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return total, nil
}
